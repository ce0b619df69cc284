package repository

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// QuotaRepository — журнал расхода квоты
// Формат файла: по одной метке времени (unix-секунды) на строку,
// одна строка — один израсходованный сегмент, только дозапись
type QuotaRepository struct {
	filename string
}

// NewQuotaRepository создаёт новый репозиторий журнала
func NewQuotaRepository(filename string) *QuotaRepository {
	return &QuotaRepository{filename: filename}
}

// Append дописывает count строк с меткой времени ts
// Файл создаётся при первом обращении; параллельные вызовы безопасны,
// потому что каждая запись — целые строки в режиме O_APPEND
func (r *QuotaRepository) Append(ts int64, count int) error {
	f, err := os.OpenFile(r.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return fmt.Errorf("открытие журнала квоты: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(strconv.FormatInt(ts, 10))
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("запись в журнал квоты: %w", err)
	}
	return nil
}

// Timestamps читает все метки времени из журнала
// Отсутствующий файл равнозначен пустому журналу
// Порядок строк в файле не гарантирован, поэтому всегда сортируем
func (r *QuotaRepository) Timestamps() ([]int64, error) {
	f, err := os.Open(r.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("открытие журнала квоты: %w", err)
	}
	defer f.Close()

	var stamps []int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ts, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			// Битые строки пропускаем, журнал могли править вручную
			continue
		}
		stamps = append(stamps, ts)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("чтение журнала квоты: %w", err)
	}

	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
	return stamps, nil
}

// Truncate очищает журнал
func (r *QuotaRepository) Truncate() error {
	f, err := os.OpenFile(r.filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o660)
	if err != nil {
		return fmt.Errorf("очистка журнала квоты: %w", err)
	}
	return f.Close()
}
