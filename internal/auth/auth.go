// Package auth — предикаты контроля доступа: администраторы
// и белые списки номеров на пользователя
package auth

import (
	"github.com/milaq/smstools-http-api/internal/config"
)

// AnonymousUser — имя, под которым работают запросы при выключенной аутентификации
const AnonymousUser = "anonymous"

// Authorizer отвечает на два вопроса: администратор ли пользователь
// и разрешён ли ему конкретный номер
type Authorizer struct {
	enabled   bool
	admins    map[string]struct{}
	whitelist map[string]map[string]struct{} // Пользователь → множество разрешённых номеров
}

// New строит Authorizer из конфигурации
func New(cfg config.AuthConfig) *Authorizer {
	a := &Authorizer{
		enabled:   cfg.Enabled,
		admins:    make(map[string]struct{}),
		whitelist: make(map[string]map[string]struct{}),
	}

	for _, admin := range cfg.Admins {
		a.admins[admin] = struct{}{}
	}

	for user := range cfg.Whitelist {
		mobiles, ok := cfg.WhitelistFor(user)
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(mobiles))
		for _, m := range mobiles {
			set[m] = struct{}{}
		}
		a.whitelist[user] = set
	}

	return a
}

// IsAdmin проверяет права администратора
// При выключенной аутентификации администраторы — все
func (a *Authorizer) IsAdmin(user string) bool {
	if !a.enabled {
		return true
	}
	_, ok := a.admins[user]
	return ok
}

// CanAccess проверяет, разрешён ли пользователю номер
// Пользователь без записи в белом списке не ограничен
func (a *Authorizer) CanAccess(user, mobile string) bool {
	if !a.enabled {
		return true
	}
	set, ok := a.whitelist[user]
	if !ok {
		return true
	}
	_, ok = set[mobile]
	return ok
}
