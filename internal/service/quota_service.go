package service

import (
	"errors"
	"log"
	"time"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/domain"
	"github.com/milaq/smstools-http-api/internal/repository"
)

// Ошибки сервиса квоты
var (
	ErrQuotaDisabled = errors.New("квота не сконфигурирована")
	ErrQuotaInternal = errors.New("ошибка журнала квоты")
)

// QuotaService — учёт квоты SMS-сегментов за расчётный период
// Период начинается в расчётный день месяца и длится до расчётного
// дня следующего месяца; вся арифметика — в UTC
type QuotaService struct {
	repo *repository.QuotaRepository
	auth *auth.Authorizer
	cfg  config.QuotaConfig
	now  func() time.Time // Подменяется в тестах
}

// NewQuotaService создаёт новый сервис
func NewQuotaService(repo *repository.QuotaRepository, authorizer *auth.Authorizer, cfg config.QuotaConfig) *QuotaService {
	return &QuotaService{
		repo: repo,
		auth: authorizer,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Enabled сообщает, включена ли квота
func (s *QuotaService) Enabled() bool {
	return s.cfg.Enabled()
}

// Record фиксирует расход count сегментов текущим моментом
func (s *QuotaService) Record(count int) error {
	return s.repo.Append(s.now().UTC().Unix(), count)
}

// Query возвращает остаток квоты за текущий расчётный период
// Считаются только метки внутри окна [начало, конец); старые записи
// в журнале не мешают и вычищаются административно
func (s *QuotaService) Query() (*domain.QuotaInfo, error) {
	stamps, err := s.repo.Timestamps()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start, end := s.window(now)

	used := 0
	for _, ts := range stamps {
		if ts >= start.Unix() && ts < end.Unix() {
			used++
		}
	}

	return &domain.QuotaInfo{
		Remaining: s.cfg.MaxSMS - used,
		Max:       s.cfg.MaxSMS,
		DaysLeft:  int(end.Sub(now) / (24 * time.Hour)),
	}, nil
}

// Reset очищает журнал квоты; только для администраторов
func (s *QuotaService) Reset(user string) error {
	if !s.auth.IsAdmin(user) {
		return ErrForbidden
	}
	if !s.Enabled() {
		return ErrQuotaDisabled
	}
	if err := s.repo.Truncate(); err != nil {
		log.Printf("Ошибка очистки журнала квоты: %v", err)
		return ErrQuotaInternal
	}
	GlobalStats.MarkQuotaReset()
	log.Printf("Пользователь [%s] очистил журнал квоты", user)
	return nil
}

// window возвращает границы текущего расчётного периода
// Начало — ближайшая расчётная дата не позже now, конец — следующая
// расчётная дата после now
func (s *QuotaService) window(now time.Time) (start, end time.Time) {
	for off := -1; off <= 1; off++ {
		b := billingBoundary(now.Year(), now.Month()+time.Month(off), s.cfg.BillingDay)
		if !b.After(now) {
			start = b
		} else if end.IsZero() {
			end = b
		}
	}
	return start, end
}

// billingBoundary строит расчётную дату для месяца
// Если расчётного дня в месяце нет (например, 31 февраля) —
// граница переносится на первое число следующего месяца
// time.Date сам нормализует выход месяца за пределы года
func billingBoundary(year int, month time.Month, day int) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		t = time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}
