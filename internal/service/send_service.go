package service

import (
	"log"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/domain"
	"github.com/milaq/smstools-http-api/internal/repository"
	"github.com/milaq/smstools-http-api/internal/sms"
)

// Ответы по каждому получателю — wire-контракт, менять нельзя
const (
	ResponseOK              = "Ok"
	ResponseInvalidMobile   = "Failed: invalid mobile number"
	ResponseQuotaReached    = "Failed: message quota reached"
	ResponseForbiddenMobile = "Failed: forbidden mobile number"
	ResponseInternalError   = "Failed: internal error"
)

// Номер: цифры, допускается ведущий +
var mobilePattern = regexp.MustCompile(`^\+?\d+$`)

// SendRequest — один запрос на рассылку
type SendRequest struct {
	Caller     string   // Учётная запись отправителя
	Mobiles    []string // Номера получателей в исходном порядке
	Text       string   // Текст сообщения, один для всех
	Queue      string   // Очередь smsd (необязательно)
	StatusBase string   // Базовый URL для ссылок на статус доставки
}

// SendService — оркестратор рассылки: кодировка, валидация номера,
// квота, контроль доступа, постановка в спул. Ошибки по отдельным
// номерам никогда не валят запрос целиком
type SendService struct {
	spool    *repository.SpoolRepository
	quota    *QuotaService
	auth     *auth.Authorizer
	sentName string // Имя каталога sent для ссылок dlr_status
}

// NewSendService создаёт новый сервис
// sentDir — каталог sent из конфигурации; в ссылках dlr_status
// используется только его последний компонент
func NewSendService(
	spool *repository.SpoolRepository,
	quota *QuotaService,
	authorizer *auth.Authorizer,
	sentDir string,
) *SendService {
	return &SendService{
		spool:    spool,
		quota:    quota,
		auth:     authorizer,
		sentName: filepath.Base(sentDir),
	}
}

// ValidateMobile проверяет формат номера получателя
func ValidateMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// Send рассылает один текст списку номеров
// Кодировка определяется один раз; каждый принятый получатель
// расходует PartsCount сегментов квоты независимо
func (s *SendService) Send(req SendRequest) (*domain.SendResult, error) {
	body, alphabet, partsCount := sms.Detect(req.Text)

	result := &domain.SendResult{
		SentText:   req.Text,
		PartsCount: partsCount,
		Queue:      req.Queue,
		Mobiles:    make(map[string]*domain.RecipientResult, len(req.Mobiles)),
	}

	for _, mobile := range req.Mobiles {
		messageID := uuid.New().String()
		recipient := &domain.RecipientResult{
			MessageID: messageID,
			DLRStatus: req.StatusBase + "/" + s.sentName + "/" + messageID,
		}
		result.Mobiles[mobile] = recipient

		if !ValidateMobile(mobile) {
			log.Printf("Сообщение от [%s] к [%s]: недопустимый номер", req.Caller, mobile)
			recipient.Response = ResponseInvalidMobile
			GlobalStats.IncrementRejected()
			continue
		}

		// Квота перечитывается на каждого получателя: предыдущие
		// получатели этого же запроса уже могли её израсходовать
		if s.quota.Enabled() {
			info, err := s.quota.Query()
			if err != nil {
				log.Printf("Ошибка чтения квоты: %v", err)
				recipient.Response = ResponseInternalError
				continue
			}
			if info.Remaining < partsCount {
				log.Printf("Сообщение от [%s] к [%s] не отправлено: квота исчерпана (%d/%d)",
					req.Caller, mobile, info.Remaining, info.Max)
				recipient.Response = ResponseQuotaReached
				GlobalStats.IncrementRejected()
				continue
			}
		}

		if !s.auth.CanAccess(req.Caller, mobile) {
			log.Printf("Сообщение от [%s] к [%s]: номер запрещён", req.Caller, mobile)
			recipient.Response = ResponseForbiddenMobile
			GlobalStats.IncrementRejected()
			continue
		}

		msg := &domain.Message{
			ID:       messageID,
			From:     req.Caller,
			To:       mobile,
			Alphabet: alphabet,
			Queue:    req.Queue,
		}
		if err := s.spool.Create("outgoing", msg, body); err != nil {
			// Неудача одного получателя не трогает остальных
			log.Printf("Ошибка постановки в спул от [%s] к [%s]: %v", req.Caller, mobile, err)
			recipient.Response = ResponseInternalError
			continue
		}

		log.Printf("Сообщение от [%s] к [%s] поставлено в спул как [%s]", req.Caller, mobile, messageID)
		recipient.Response = ResponseOK
		GlobalStats.IncrementAccepted(partsCount)

		if s.quota.Enabled() {
			if err := s.quota.Record(partsCount); err != nil {
				log.Printf("Ошибка записи квоты: %v", err)
			}
		}
	}

	return result, nil
}
