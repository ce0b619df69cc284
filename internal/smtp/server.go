package smtp

import (
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-smtp"

	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/service"
)

// Server — SMTP-шлюз email-to-SMS
// Принимает письма вида <номер>@<домен> и ставит их в спул на отправку
type Server struct {
	server  *smtp.Server
	backend *Backend
	config  config.ServerConfig
}

// NewServer создаёт новый SMTP-шлюз
func NewServer(
	cfg config.ServerConfig,
	spoolCfg config.SpoolConfig,
	sendService *service.SendService,
) *Server {
	backend := NewBackend(sendService, cfg.SMTPDomain, spoolCfg.DefaultQueue)

	server := smtp.NewServer(backend)

	server.Addr = fmt.Sprintf(":%d", cfg.SMTPPort) // Адрес для прослушивания
	server.Domain = cfg.SMTPDomain                 // Наш домен
	server.ReadTimeout = 30 * time.Second          // Таймаут чтения
	server.WriteTimeout = 30 * time.Second         // Таймаут записи
	server.MaxMessageBytes = 1024 * 1024           // SMS длинными не бывают
	server.MaxRecipients = 10                      // Макс. получателей
	server.AllowInsecureAuth = true                // Разрешаем без TLS (для разработки)

	return &Server{
		server:  server,
		backend: backend,
		config:  cfg,
	}
}

// Start запускает SMTP-шлюз
func (s *Server) Start() error {
	log.Printf("SMTP-шлюз запущен на порту %d", s.config.SMTPPort)
	log.Printf("Домен: %s", s.server.Domain)

	// ListenAndServe блокирует выполнение
	return s.server.ListenAndServe()
}

// Close останавливает SMTP-шлюз
func (s *Server) Close() error {
	return s.server.Close()
}
