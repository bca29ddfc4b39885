package models

import "time"

// Права, выдаваемые тарифом.
const (
	EntitlementPersonalization = "personalization"
)

// Session явный контекст пользователя, передается в каждый вызов сервиса.
type Session struct {
	UserID       int64
	Plan         string
	Entitlements []string
	TokenID      string
	ExpiresAt    time.Time
}

// HasEntitlement проверяет право тарифа.
func (s Session) HasEntitlement(name string) bool {
	for _, e := range s.Entitlements {
		if e == name {
			return true
		}
	}
	return false
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
