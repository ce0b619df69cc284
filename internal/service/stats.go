package service

import (
	"sync"
	"time"
)

// Stats хранит статистику работы шлюза
type Stats struct {
	mu             sync.RWMutex // Мьютекс для безопасного доступа
	TotalAccepted  int64        // Принято сообщений (по получателям)
	TotalRejected  int64        // Отклонено получателей
	TotalSegments  int64        // Поставлено в спул SMS-сегментов
	TotalInbound   int64        // Принято писем через SMTP-шлюз
	LastQuotaReset time.Time    // Время последней очистки квоты
}

// GlobalStats — глобальная статистика
var GlobalStats = &Stats{}

// IncrementAccepted учитывает принятое сообщение и его сегменты
func (s *Stats) IncrementAccepted(segments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalAccepted++
	s.TotalSegments += int64(segments)
}

// IncrementRejected учитывает отклонённого получателя
func (s *Stats) IncrementRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRejected++
}

// IncrementInbound учитывает письмо, принятое SMTP-шлюзом
func (s *Stats) IncrementInbound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalInbound++
}

// MarkQuotaReset запоминает время очистки квоты
func (s *Stats) MarkQuotaReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastQuotaReset = time.Now()
}

// GetStats возвращает копию статистики
func (s *Stats) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		TotalAccepted:  s.TotalAccepted,
		TotalRejected:  s.TotalRejected,
		TotalSegments:  s.TotalSegments,
		TotalInbound:   s.TotalInbound,
		LastQuotaReset: s.LastQuotaReset,
	}
}
