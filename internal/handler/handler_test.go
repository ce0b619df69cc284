package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/repository"
	"github.com/milaq/smstools-http-api/internal/service"
)

// newTestApp собирает приложение с выключенной аутентификацией:
// все запросы идут от имени anonymous с правами администратора
func newTestApp(t *testing.T, quotaCfg config.QuotaConfig) *fiber.App {
	t.Helper()

	spoolCfg := config.SpoolConfig{
		Incoming: t.TempDir(),
		Outgoing: t.TempDir(),
		Sent:     t.TempDir(),
		Failed:   t.TempDir(),
	}
	authCfg := config.AuthConfig{Enabled: false}

	authorizer := auth.New(authCfg)
	spoolRepo := repository.NewSpoolRepository(spoolCfg)
	quotaRepo := repository.NewQuotaRepository(quotaCfg.Filename)

	quotaService := service.NewQuotaService(quotaRepo, authorizer, quotaCfg)
	spoolService := service.NewSpoolService(spoolRepo, authorizer)
	sendService := service.NewSendService(spoolRepo, quotaService, authorizer, spoolCfg.Sent)

	app := fiber.New(fiber.Config{StrictRouting: true})
	SetupRoutes(app,
		NewSMSHandler(spoolService, sendService, spoolCfg),
		NewQuotaHandler(quotaService),
		authCfg,
	)
	return app
}

func TestMonitoring(t *testing.T) {
	app := newTestApp(t, config.QuotaConfig{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/monitoring", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("статус = %d", resp.StatusCode)
	}
}

func TestSendAndList(t *testing.T) {
	app := newTestApp(t, config.QuotaConfig{})

	body := `{"mobiles": ["+79991234567"], "text": "hello"}`
	req := httptest.NewRequest("POST", "/api/v1/sms/outgoing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("статус = %d", resp.StatusCode)
	}

	var result struct {
		SentText   string `json:"sent_text"`
		PartsCount int    `json:"parts_count"`
		Mobiles    map[string]struct {
			MessageID string `json:"message_id"`
			DLRStatus string `json:"dlr_status"`
			Response  string `json:"response"`
		} `json:"mobiles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	recipient := result.Mobiles["+79991234567"]
	if recipient.Response != "Ok" {
		t.Fatalf("response = %q", recipient.Response)
	}
	if !strings.Contains(recipient.DLRStatus, "/"+recipient.MessageID) {
		t.Errorf("dlr_status = %q", recipient.DLRStatus)
	}

	// Сообщение видно в листинге (маршрут с завершающим слэшем)
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/sms/outgoing/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("статус листинга = %d", resp.StatusCode)
	}
	var listing struct {
		TotalCount int      `json:"total_count"`
		MessageIDs []string `json:"message_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatal(err)
	}
	if listing.TotalCount != 1 || len(listing.MessageIDs) != 1 {
		t.Errorf("листинг: %+v", listing)
	}
	if listing.MessageIDs[0] != recipient.MessageID {
		t.Errorf("в листинге %q, ожидалось %q", listing.MessageIDs[0], recipient.MessageID)
	}
}

func TestSendValidation(t *testing.T) {
	app := newTestApp(t, config.QuotaConfig{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"не json", "not json", "Wrong JSON object"},
		{"нет mobiles", `{"text": "hi"}`, "Missing required: mobiles"},
		{"нет text", `{"mobiles": ["+1"]}`, "Missing required: text"},
		{"mobiles не массив", `{"mobiles": "+1", "text": "hi"}`, "mobiles is not array"},
		{"пустой массив", `{"mobiles": [], "text": "hi"}`, "mobiles array is empty"},
		{"номер не строка", `{"mobiles": [1], "text": "hi"}`, "mobiles is not unicode"},
		{"text не строка", `{"mobiles": ["+1"], "text": 5}`, "text is not unicode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/sms/outgoing", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("статус = %d", resp.StatusCode)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatal(err)
			}
			if errResp.Error != tt.want {
				t.Errorf("ошибка = %q, ожидалось %q", errResp.Error, tt.want)
			}
		})
	}
}

func TestSendViaGet(t *testing.T) {
	app := newTestApp(t, config.QuotaConfig{})

	// Плюс в query приходит пробелом и должен восстановиться
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sms/outgoing?mobiles=%2B111,%2B222&text=hi", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("статус = %d", resp.StatusCode)
	}

	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `"+111"`) || !strings.Contains(string(data), `"+222"`) {
		t.Errorf("в ответе нет обоих номеров: %s", data)
	}
}

func TestUnknownKindReturns404(t *testing.T) {
	app := newTestApp(t, config.QuotaConfig{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sms/archive/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("статус = %d", resp.StatusCode)
	}
}

func TestQuotaDisabledReturns405(t *testing.T) {
	app := newTestApp(t, config.QuotaConfig{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/quota", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusMethodNotAllowed {
		t.Errorf("статус = %d", resp.StatusCode)
	}
}

func TestQuotaEndpoint(t *testing.T) {
	quotaCfg := config.QuotaConfig{
		Filename:   filepath.Join(t.TempDir(), "quota"),
		MaxSMS:     10,
		BillingDay: 1,
	}
	app := newTestApp(t, quotaCfg)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/quota", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("статус = %d", resp.StatusCode)
	}

	var quota struct {
		Quota    int `json:"quota"`
		QuotaMax int `json:"quota_max"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&quota); err != nil {
		t.Fatal(err)
	}
	if quota.Quota != 10 || quota.QuotaMax != 10 {
		t.Errorf("quota = %+v", quota)
	}

	// Сброс квоты: аутентификация выключена, anonymous — администратор
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/v1/quota", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("статус сброса = %d", resp.StatusCode)
	}
}
