package main

// @title smstools HTTP API
// @version 1.0
// @description HTTP-шлюз к спулу smstools: отправка SMS, просмотр спула, квота
// @termsOfService http://swagger.io/terms/

// @license.name GPL-3.0
// @license.url https://www.gnu.org/licenses/gpl-3.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.basic BasicAuth

// @schemes http https

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/handler"
	"github.com/milaq/smstools-http-api/internal/repository"
	"github.com/milaq/smstools-http-api/internal/service"
	smtpserver "github.com/milaq/smstools-http-api/internal/smtp"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Ошибка загрузки конфигурации:", err)
	}

	fmt.Println("=== smstools HTTP API ===")

	// Создаём репозитории
	spoolRepo := repository.NewSpoolRepository(cfg.Spool)
	quotaRepo := repository.NewQuotaRepository(cfg.Quota.Filename)

	// Предикаты доступа
	authorizer := auth.New(cfg.Auth)

	// Создаём сервисы
	quotaService := service.NewQuotaService(quotaRepo, authorizer, cfg.Quota)
	spoolService := service.NewSpoolService(spoolRepo, authorizer)
	sendService := service.NewSendService(spoolRepo, quotaService, authorizer, cfg.Spool.Sent)

	// Создаём обработчики
	smsHandler := handler.NewSMSHandler(spoolService, sendService, cfg.Spool)
	quotaHandler := handler.NewQuotaHandler(quotaService)

	// Создаём Fiber-приложение
	// StrictRouting различает /sms/outgoing (отправка) и /sms/outgoing/ (листинг)
	app := fiber.New(fiber.Config{
		AppName:       "smstools HTTP API",
		StrictRouting: true,
	})

	// Настраиваем маршруты
	handler.SetupRoutes(app, smsHandler, quotaHandler, cfg.Auth)

	// Создаём SMTP-шлюз email-to-SMS
	smtpServer := smtpserver.NewServer(cfg.Server, cfg.Spool, sendService)

	// Запускаем SMTP-шлюз в отдельной горутине
	go func() {
		if err := smtpServer.Start(); err != nil {
			log.Printf("SMTP-шлюз остановлен: %v", err)
		}
	}()

	// Запускаем HTTP-сервер в отдельной горутине
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		if err := app.Listen(addr); err != nil {
			log.Printf("HTTP-сервер остановлен: %v", err)
		}
	}()

	fmt.Printf("\nHTTP API: http://localhost:%d\n", cfg.Server.HTTPPort)
	fmt.Printf("SMTP: localhost:%d\n", cfg.Server.SMTPPort)
	fmt.Printf("Спул outgoing: %s\n", cfg.Spool.Outgoing)
	if cfg.Quota.Enabled() {
		fmt.Printf("Квота: %d сегментов, расчётный день %d\n", cfg.Quota.MaxSMS, cfg.Quota.BillingDay)
	}
	fmt.Println("\nНажмите Ctrl+C для остановки")

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nОстановка серверов...")
	smtpServer.Close()
	app.Shutdown()
}
