package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/milaq/smstools-http-api/internal/service"
)

// QuotaHandler — обработчик запросов к квоте
type QuotaHandler struct {
	quota *service.QuotaService
}

// NewQuotaHandler создаёт новый обработчик
func NewQuotaHandler(quota *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

// Get возвращает текущее состояние квоты
// @Summary Состояние квоты
// @Description Возвращает остаток квоты, максимум и число полных дней до конца расчётного периода
// @Tags quota
// @Produce json
// @Success 200 {object} map[string]int "Состояние квоты"
// @Failure 405 {object} ErrorResponse "Квота не сконфигурирована"
// @Router /quota [get]
func (h *QuotaHandler) Get(c *fiber.Ctx) error {
	if !h.quota.Enabled() {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{
			Error: "quota disabled",
		})
	}

	info, err := h.quota.Query()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Внутренняя ошибка сервера",
		})
	}

	// Ключ quota_billing_day исторически несёт число оставшихся дней —
	// сохранено ради совместимости с существующими клиентами
	return c.JSON(fiber.Map{
		"quota":             info.Remaining,
		"quota_max":         info.Max,
		"quota_billing_day": info.DaysLeft,
	})
}

// Reset очищает журнал квоты
// @Summary Сбросить квоту
// @Description Очищает журнал квоты. Только для администраторов.
// @Tags quota
// @Produce json
// @Success 200 {object} map[string]string "Подтверждение"
// @Failure 403 {object} ErrorResponse "Доступ запрещён"
// @Failure 405 {object} ErrorResponse "Квота не сконфигурирована"
// @Failure 500 {object} ErrorResponse "Ошибка журнала квоты"
// @Router /quota [delete]
func (h *QuotaHandler) Reset(c *fiber.Ctx) error {
	// Права проверяются раньше, чем включённость квоты
	if err := h.quota.Reset(username(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error: "Доступ запрещён",
			})
		case errors.Is(err, service.ErrQuotaDisabled):
			return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{
				Error: "quota disabled",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Внутренняя ошибка сервера",
		})
	}
	return c.JSON(fiber.Map{"response": "quota cleared"})
}
