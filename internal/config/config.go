package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config — главная структура конфигурации приложения
// Все поля заполняются из переменных окружения
type Config struct {
	Server ServerConfig // Настройки серверов
	Spool  SpoolConfig  // Настройки спула smstools
	Quota  QuotaConfig  // Настройки квоты на отправку
	Auth   AuthConfig   // Настройки аутентификации
}

// ServerConfig — настройки HTTP и SMTP серверов
type ServerConfig struct {
	HTTPPort   int    `envconfig:"HTTP_PORT" default:"8080"`              // Порт HTTP API
	SMTPPort   int    `envconfig:"SMTP_PORT" default:"2525"`              // Порт SMTP-шлюза (email-to-SMS)
	SMTPDomain string `envconfig:"SMTP_DOMAIN" default:"sms.localdomain"` // Домен, для которого принимаем письма
}

// SpoolConfig — каталоги спула smstools
// Формат совместим со спулером smsd: каждый файл — одно сообщение
type SpoolConfig struct {
	Incoming     string `envconfig:"SPOOL_INCOMING" default:"/var/spool/sms/incoming"` // Входящие сообщения
	Outgoing     string `envconfig:"SPOOL_OUTGOING" default:"/var/spool/sms/outgoing"` // Очередь на отправку
	Sent         string `envconfig:"SPOOL_SENT" default:"/var/spool/sms/sent"`         // Отправленные (статусы доставки)
	Failed       string `envconfig:"SPOOL_FAILED" default:"/var/spool/sms/failed"`     // Неотправленные
	Limit        int    `envconfig:"SPOOL_LIMIT" default:"0"`                          // Макс. элементов в листинге (0 — без ограничения)
	DefaultQueue string `envconfig:"DEFAULT_QUEUE"`                                    // Очередь smsd по умолчанию (необязательно)
}

// Kinds возвращает соответствие имени вида спула его каталогу
// Только виды из этого набора принимаются в запросах
func (c SpoolConfig) Kinds() map[string]string {
	kinds := make(map[string]string)
	for kind, dir := range map[string]string{
		"incoming": c.Incoming,
		"outgoing": c.Outgoing,
		"sent":     c.Sent,
		"failed":   c.Failed,
	} {
		if dir != "" {
			kinds[kind] = dir
		}
	}
	return kinds
}

// QuotaConfig — настройки квоты на количество SMS-сегментов
// Квота включена, только если заданы все три параметра
type QuotaConfig struct {
	Filename   string `envconfig:"QUOTA_FILENAME"`    // Файл журнала квоты
	MaxSMS     int    `envconfig:"QUOTA_MAX_SMS"`     // Макс. сегментов за расчётный период
	BillingDay int    `envconfig:"QUOTA_BILLING_DAY"` // День месяца, с которого начинается период (1-31)
}

// Enabled проверяет, что квота полностью сконфигурирована
func (c QuotaConfig) Enabled() bool {
	return c.Filename != "" && c.MaxSMS != 0 && c.BillingDay != 0
}

// AuthConfig — настройки Basic-аутентификации и контроля доступа
type AuthConfig struct {
	Enabled bool `envconfig:"AUTH_ENABLED" default:"true"` // Если false — все запросы от имени anonymous с правами администратора

	// Учётные записи в формате "user1:pass1,user2:pass2"
	Users map[string]string `envconfig:"AUTH_USERS"`

	// Список администраторов
	Admins []string `envconfig:"ADMIN_ACCOUNTS"`

	// Белый список номеров на пользователя: "user1:+111;+222,user2:+333"
	// Пользователь без записи в списке не ограничен
	Whitelist map[string]string `envconfig:"USER_WHITELIST"`
}

// WhitelistFor возвращает список разрешённых номеров пользователя
// Второе значение false означает, что ограничений для пользователя нет
func (c AuthConfig) WhitelistFor(user string) ([]string, bool) {
	raw, ok := c.Whitelist[user]
	if !ok || raw == "" {
		return nil, false
	}
	return strings.Split(raw, ";"), true
}

// Load загружает конфигурацию из переменных окружения
// Сначала пытается прочитать файл .env, затем читает переменные окружения
func Load() (*Config, error) {
	// Если файла .env нет — не страшно, читаем системные переменные
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
