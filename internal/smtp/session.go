package smtp

import (
	"bytes"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/emersion/go-smtp"

	"github.com/milaq/smstools-http-api/internal/service"
)

// Session обрабатывает одну SMTP-сессию (одно письмо)
type Session struct {
	backend *Backend // Ссылка на бэкенд
	from    string   // Адрес отправителя
	mobiles []string // Номера получателей из local part адресов
}

// AuthPlain обрабатывает PLAIN-аутентификацию
// Шлюз рассчитан на доверенную сеть, аутентификация не требуется
func (s *Session) AuthPlain(username, password string) error {
	return nil
}

// Mail вызывается, когда клиент сообщает адрес отправителя (MAIL FROM)
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	log.Printf("MAIL FROM: %s", from)
	s.from = extractEmail(from)
	return nil
}

// Rcpt вызывается для каждого получателя (RCPT TO)
// Адрес должен иметь вид <номер>@<наш домен>
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	log.Printf("RCPT TO: %s", to)

	address := extractEmail(to)

	if !strings.HasSuffix(address, "@"+s.backend.domain) {
		return &smtp.SMTPError{
			Code:    550,
			Message: "Письма принимаются только для домена " + s.backend.domain,
		}
	}

	mobile := strings.TrimSuffix(address, "@"+s.backend.domain)
	if !service.ValidateMobile(mobile) {
		return &smtp.SMTPError{
			Code:    550,
			Message: "Получатель не является номером телефона",
		}
	}

	s.mobiles = append(s.mobiles, mobile)
	return nil
}

// Data вызывается, когда клиент отправляет содержимое письма
// Текстовая часть письма уходит как SMS всем собранным номерам
func (s *Session) Data(r io.Reader) error {
	log.Println("Получение данных письма...")

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return err
	}

	msg, err := mail.ReadMessage(&buf)
	if err != nil {
		log.Printf("Ошибка парсинга письма: %v", err)
		return err
	}

	text := parseBody(msg.Body, msg.Header.Get("Content-Type"))
	if text == "" {
		// Письмо без тела — отправляем тему
		text = decodeHeader(msg.Header.Get("Subject"))
	}
	text = strings.TrimSpace(text)

	log.Printf("Письмо от %s для %d номеров", s.from, len(s.mobiles))
	service.GlobalStats.IncrementInbound()

	result, err := s.backend.sendService.Send(service.SendRequest{
		Caller:  s.from,
		Mobiles: s.mobiles,
		Text:    text,
		Queue:   s.backend.defaultQueue,
	})
	if err != nil {
		return err
	}

	for mobile, recipient := range result.Mobiles {
		if recipient.Response != service.ResponseOK {
			log.Printf("SMS для %s не принято: %s", mobile, recipient.Response)
		}
	}
	return nil
}

// parseBody извлекает текстовую часть письма
func parseBody(body io.Reader, contentType string) string {
	// Если Content-Type не указан, считаем plain text
	if contentType == "" {
		data, _ := io.ReadAll(body)
		return string(data)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		data, _ := io.ReadAll(body)
		return string(data)
	}

	// Письмо из нескольких частей — ищем text/plain
	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			data, _ := io.ReadAll(body)
			return string(data)
		}

		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			if strings.HasPrefix(part.Header.Get("Content-Type"), "text/plain") {
				data, _ := io.ReadAll(part)
				return string(data)
			}
		}
		return ""
	}

	if strings.HasPrefix(mediaType, "text/") {
		data, _ := io.ReadAll(body)
		return string(data)
	}
	return ""
}

// decodeHeader декодирует заголовок письма (поддержка UTF-8)
func decodeHeader(s string) string {
	// Декодируем MIME-encoded слова (=?UTF-8?B?...?=)
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// Reset вызывается для сброса сессии
func (s *Session) Reset() {
	s.from = ""
	s.mobiles = nil
}

// Logout вызывается при завершении сессии
func (s *Session) Logout() error {
	log.Println("SMTP-сессия завершена")
	return nil
}

// extractEmail извлекает email из строки вида "Name <email@domain.com>"
func extractEmail(s string) string {
	if start := strings.Index(s, "<"); start != -1 {
		if end := strings.Index(s, ">"); end != -1 {
			return strings.TrimSpace(s[start+1 : end])
		}
	}
	return strings.TrimSpace(s)
}
