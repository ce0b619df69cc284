package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/service"
)

// SetupRoutes настраивает все маршруты приложения
// Приложению нужен StrictRouting: GET /sms/outgoing — отправка,
// GET /sms/outgoing/ — листинг каталога outgoing
func SetupRoutes(
	app *fiber.App,
	smsHandler *SMSHandler,
	quotaHandler *QuotaHandler,
	authCfg config.AuthConfig,
) {
	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1
	api := app.Group("/api/v1")

	// Проверка доступности — без аутентификации
	// @Summary Мониторинг
	// @Description Возвращает статус шлюза
	// @Tags system
	// @Produce json
	// @Success 200 {object} map[string]string "Статус"
	// @Router /monitoring [get]
	api.Get("/monitoring", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"monitoring": "ok",
		})
	})

	// Всё остальное — под Basic-аутентификацией
	if authCfg.Enabled {
		api.Use(basicauth.New(basicauth.Config{
			Users: authCfg.Users,
		}))
	}

	// Отправка: точный маршрут регистрируется раньше параметризованных
	api.Get("/sms/outgoing", smsHandler.Send)
	api.Post("/sms/outgoing", smsHandler.Send)

	// Спул
	api.Get("/sms/:kind/", smsHandler.List)
	api.Get("/sms/:kind/:message_id", smsHandler.Get)
	api.Delete("/sms/:kind/:message_id", smsHandler.Delete)

	// Квота
	api.Get("/quota", quotaHandler.Get)
	api.Delete("/quota", quotaHandler.Reset)

	// Stats
	// @Summary Статистика шлюза
	// @Description Возвращает счётчики работы шлюза
	// @Tags system
	// @Produce json
	// @Success 200 {object} map[string]interface{} "Статистика"
	// @Router /stats [get]
	app.Get("/stats", func(c *fiber.Ctx) error {
		stats := service.GlobalStats.GetStats()
		return c.JSON(fiber.Map{
			"total_accepted": stats.TotalAccepted,
			"total_rejected": stats.TotalRejected,
			"total_segments": stats.TotalSegments,
			"total_inbound":  stats.TotalInbound,
			"last_quota_reset": func() string {
				if stats.LastQuotaReset.IsZero() {
					return ""
				}
				return stats.LastQuotaReset.Format("2006-01-02 15:04:05")
			}(),
		})
	})
}
