package models

import "errors"

// Общие ошибки приложения
var (
	// Ресурсы
	ErrStoryNotFound          = errors.New("story not found")
	ErrChapterNotFound        = errors.New("chapter not found")
	ErrReadingSessionNotFound = errors.New("reading session not found")
	ErrCharacterNotFound      = errors.New("character not found")
	ErrThemeNotFound          = errors.New("theme not found")

	// Аутентификация
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenRevoked = errors.New("token has been revoked")

	// Выбор в мастере
	ErrInvalidSelection    = errors.New("invalid story selection")
	ErrInvalidAgeGroup     = errors.New("invalid age group")
	ErrMissingAgeGroup     = errors.New("age group is required")
	ErrMissingCharacters   = errors.New("at least one character is required")
	ErrTooManyCharacters   = errors.New("too many characters selected")
	ErrDuplicateCharacter  = errors.New("character selected twice")
	ErrMissingTheme        = errors.New("theme is required")
	ErrThemeNotAllowed     = errors.New("theme is not available for the age group")
	ErrCharacterNotAllowed = errors.New("character is not available for the age group")

	// Чтение
	ErrInvalidProgress = errors.New("invalid reading progress")

	// Иллюстрации
	ErrIllustrationInProgress = errors.New("illustration is already in progress for this chapter")
	ErrBackupPoolExhausted    = errors.New("no backup image available")

	// Сервер
	ErrInternalServer = errors.New("internal server error")
)
