package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/repository"
)

type sendFixture struct {
	svc       *SendService
	outgoing  string
	quotaFile string
}

// newSendFixture собирает оркестратор с включённой квотой max=10
// и белым списком: alice может слать только на +111 и +222
func newSendFixture(t *testing.T) *sendFixture {
	t.Helper()

	spoolCfg := config.SpoolConfig{
		Incoming: t.TempDir(),
		Outgoing: t.TempDir(),
		Sent:     t.TempDir(),
		Failed:   t.TempDir(),
	}
	quotaFile := filepath.Join(t.TempDir(), "quota")
	quotaCfg := config.QuotaConfig{Filename: quotaFile, MaxSMS: 10, BillingDay: 1}

	authorizer := auth.New(config.AuthConfig{
		Enabled:   true,
		Admins:    []string{"root"},
		Whitelist: map[string]string{"alice": "+111;+222"},
	})

	spoolRepo := repository.NewSpoolRepository(spoolCfg)
	quotaRepo := repository.NewQuotaRepository(quotaFile)
	quotaSvc := NewQuotaService(quotaRepo, authorizer, quotaCfg)
	quotaSvc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	return &sendFixture{
		svc:       NewSendService(spoolRepo, quotaSvc, authorizer, spoolCfg.Sent),
		outgoing:  spoolCfg.Outgoing,
		quotaFile: quotaFile,
	}
}

func (f *sendFixture) spooledCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.outgoing)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func (f *sendFixture) ledgerLines(t *testing.T) int {
	t.Helper()
	data, err := os.ReadFile(f.quotaFile)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Count(string(data), "\n")
}

func TestSendOk(t *testing.T) {
	f := newSendFixture(t)

	result, err := f.svc.Send(SendRequest{
		Caller:     "alice",
		Mobiles:    []string{"+111"},
		Text:       "hello",
		StatusBase: "http://localhost:8080/api/v1/sms",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	recipient := result.Mobiles["+111"]
	if recipient == nil {
		t.Fatal("нет результата для +111")
	}
	if recipient.Response != ResponseOK {
		t.Fatalf("response = %q", recipient.Response)
	}
	if recipient.MessageID == "" {
		t.Error("пустой message_id")
	}
	if !strings.HasSuffix(recipient.DLRStatus, "/"+recipient.MessageID) {
		t.Errorf("dlr_status = %q", recipient.DLRStatus)
	}
	if !strings.HasPrefix(recipient.DLRStatus, "http://localhost:8080/api/v1/sms/") {
		t.Errorf("dlr_status = %q", recipient.DLRStatus)
	}
	if result.PartsCount != 1 {
		t.Errorf("parts_count = %d", result.PartsCount)
	}
	if f.spooledCount(t) != 1 {
		t.Errorf("в спуле %d файлов", f.spooledCount(t))
	}
	if f.ledgerLines(t) != 1 {
		t.Errorf("в журнале %d строк", f.ledgerLines(t))
	}
}

func TestSendInvalidMobile(t *testing.T) {
	f := newSendFixture(t)

	result, err := f.svc.Send(SendRequest{
		Caller:  "alice",
		Mobiles: []string{"abc"},
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := result.Mobiles["abc"].Response; got != ResponseInvalidMobile {
		t.Errorf("response = %q", got)
	}
	if f.spooledCount(t) != 0 {
		t.Error("в спуле не должно быть файлов")
	}
	if f.ledgerLines(t) != 0 {
		t.Error("квота не должна расходоваться")
	}
}

func TestSendForbiddenMobile(t *testing.T) {
	f := newSendFixture(t)

	result, err := f.svc.Send(SendRequest{
		Caller:  "alice",
		Mobiles: []string{"+333"}, // Не в белом списке alice
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := result.Mobiles["+333"].Response; got != ResponseForbiddenMobile {
		t.Errorf("response = %q", got)
	}
	if f.spooledCount(t) != 0 {
		t.Error("в спуле не должно быть файлов")
	}
}

func TestSendUserWithoutWhitelistIsUnrestricted(t *testing.T) {
	f := newSendFixture(t)

	result, err := f.svc.Send(SendRequest{
		Caller:  "bob", // Для bob записи в белом списке нет
		Mobiles: []string{"+999"},
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := result.Mobiles["+999"].Response; got != ResponseOK {
		t.Errorf("response = %q", got)
	}
}

func TestSendQuotaReached(t *testing.T) {
	f := newSendFixture(t)

	// 12 сегментов при максимуме 10: отказ без расхода квоты
	result, err := f.svc.Send(SendRequest{
		Caller:  "alice",
		Mobiles: []string{"+111"},
		Text:    strings.Repeat("a", 153*11+1),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if result.PartsCount != 12 {
		t.Fatalf("parts_count = %d, ожидалось 12", result.PartsCount)
	}
	if got := result.Mobiles["+111"].Response; got != ResponseQuotaReached {
		t.Errorf("response = %q", got)
	}
	if f.spooledCount(t) != 0 {
		t.Error("в спуле не должно быть файлов")
	}
	if f.ledgerLines(t) != 0 {
		t.Error("квота не должна расходоваться")
	}
}

func TestSendConsumesQuotaPerRecipient(t *testing.T) {
	f := newSendFixture(t)
	text := strings.Repeat("a", 700) // 5 сегментов

	// Две отправки по 5 сегментов исчерпывают квоту ровно в ноль
	for i := 0; i < 2; i++ {
		result, err := f.svc.Send(SendRequest{
			Caller:  "alice",
			Mobiles: []string{"+111"},
			Text:    text,
		})
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if got := result.Mobiles["+111"].Response; got != ResponseOK {
			t.Fatalf("отправка %d: response = %q", i+1, got)
		}
	}
	if f.ledgerLines(t) != 10 {
		t.Errorf("в журнале %d строк, ожидалось 10", f.ledgerLines(t))
	}

	// Третья отправка упирается в квоту
	result, err := f.svc.Send(SendRequest{
		Caller:  "alice",
		Mobiles: []string{"+111"},
		Text:    text,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := result.Mobiles["+111"].Response; got != ResponseQuotaReached {
		t.Errorf("response = %q", got)
	}
	if f.ledgerLines(t) != 10 {
		t.Errorf("в журнале %d строк, ожидалось 10", f.ledgerLines(t))
	}
}

func TestSendPartialFailure(t *testing.T) {
	f := newSendFixture(t)

	// Ошибка одного получателя не мешает остальным
	result, err := f.svc.Send(SendRequest{
		Caller:  "alice",
		Mobiles: []string{"abc", "+111", "+333"},
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := result.Mobiles["abc"].Response; got != ResponseInvalidMobile {
		t.Errorf("abc: %q", got)
	}
	if got := result.Mobiles["+111"].Response; got != ResponseOK {
		t.Errorf("+111: %q", got)
	}
	if got := result.Mobiles["+333"].Response; got != ResponseForbiddenMobile {
		t.Errorf("+333: %q", got)
	}
	if f.spooledCount(t) != 1 {
		t.Errorf("в спуле %d файлов, ожидался 1", f.spooledCount(t))
	}
}

func TestSendEmptyText(t *testing.T) {
	f := newSendFixture(t)

	// Пустой текст занимает 0 сегментов и не расходует квоту
	result, err := f.svc.Send(SendRequest{
		Caller:  "alice",
		Mobiles: []string{"+111"},
		Text:    "",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.PartsCount != 0 {
		t.Errorf("parts_count = %d", result.PartsCount)
	}
	if got := result.Mobiles["+111"].Response; got != ResponseOK {
		t.Errorf("response = %q", got)
	}
	if f.ledgerLines(t) != 0 {
		t.Errorf("в журнале %d строк, ожидалось 0", f.ledgerLines(t))
	}
}

func TestValidateMobile(t *testing.T) {
	valid := []string{"+79991234567", "79991234567", "+1", "42"}
	invalid := []string{"", "abc", "+", "7999 123", "7-999", "++7"}

	for _, m := range valid {
		if !ValidateMobile(m) {
			t.Errorf("%q должен быть допустимым", m)
		}
	}
	for _, m := range invalid {
		if ValidateMobile(m) {
			t.Errorf("%q должен быть недопустимым", m)
		}
	}
}
