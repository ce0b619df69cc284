package main

import (
	"fmt"
	"log"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
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

	fmt.Println("=== smstools SMTP-шлюз ===")

	// Создаём репозитории
	spoolRepo := repository.NewSpoolRepository(cfg.Spool)
	quotaRepo := repository.NewQuotaRepository(cfg.Quota.Filename)

	// Предикаты доступа
	authorizer := auth.New(cfg.Auth)

	// Создаём сервисы
	quotaService := service.NewQuotaService(quotaRepo, authorizer, cfg.Quota)
	sendService := service.NewSendService(spoolRepo, quotaService, authorizer, cfg.Spool.Sent)

	// Создаём и запускаем SMTP-шлюз
	server := smtpserver.NewServer(cfg.Server, cfg.Spool, sendService)

	fmt.Printf("\nSMTP-шлюз запущен на порту %d\n", cfg.Server.SMTPPort)
	fmt.Printf("Домен: %s\n", cfg.Server.SMTPDomain)
	fmt.Println("Нажмите Ctrl+C для остановки")

	if err := server.Start(); err != nil {
		log.Fatal("Ошибка SMTP-шлюза:", err)
	}
}
