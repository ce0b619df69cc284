package smtp

import (
	"log"

	"github.com/emersion/go-smtp"

	"github.com/milaq/smstools-http-api/internal/service"
)

// Backend реализует интерфейс smtp.Backend
// Он создаёт сессии для каждого входящего соединения
type Backend struct {
	sendService  *service.SendService // Оркестратор отправки SMS
	domain       string               // Наш домен (sms.localdomain)
	defaultQueue string               // Очередь smsd по умолчанию
}

// NewBackend создаёт новый SMTP-бэкенд
func NewBackend(sendService *service.SendService, domain, defaultQueue string) *Backend {
	return &Backend{
		sendService:  sendService,
		domain:       domain,
		defaultQueue: defaultQueue,
	}
}

// NewSession создаёт новую сессию для входящего соединения
// Вызывается при каждом новом подключении к шлюзу
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	log.Printf("Новое SMTP-соединение от %s", c.Hostname())

	return &Session{
		backend: b,
	}, nil
}
