package ai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
)

// ErrorKind класс ошибки провайдера.
type ErrorKind string

const (
	KindAuth         ErrorKind = "auth"
	KindRateLimit    ErrorKind = "rate_limit"
	KindConnectivity ErrorKind = "connectivity"
	KindFormat       ErrorKind = "format"
)

// Сентинелы для errors.Is по классу ошибки.
var (
	ErrProviderAuth         = errors.New("ai provider rejected credentials")
	ErrProviderRateLimit    = errors.New("ai provider rate limit exceeded")
	ErrProviderConnectivity = errors.New("ai provider unreachable")
	ErrGenerationFormat     = errors.New("ai provider returned malformed content")
)

// ProviderError типизированная ошибка провайдера.
type ProviderError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai provider error (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai provider error (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is сопоставляет ошибку с сентинелом ее класса.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProviderAuth:
		return e.Kind == KindAuth
	case ErrProviderRateLimit:
		return e.Kind == KindRateLimit
	case ErrProviderConnectivity:
		return e.Kind == KindConnectivity
	case ErrGenerationFormat:
		return e.Kind == KindFormat
	}
	return false
}

// Retryable ошибки лимита и связности можно повторить.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimit || e.Kind == KindConnectivity
}

// NewFormatError ошибка формата ответа. Не повторяется.
func NewFormatError(format string, args ...any) error {
	return &ProviderError{Kind: KindFormat, Err: fmt.Errorf(format, args...)}
}

// IsRetryable сообщает, имеет ли смысл повторить вызов.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

// KindOf возвращает класс ошибки или пустую строку.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// classifyError приводит ошибку SDK к ProviderError.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}

	status := 0
	var apiErr *openaigo.APIError
	var reqErr *openaigo.RequestError
	var ollamaErr api.StatusError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.As(err, &ollamaErr):
		status = ollamaErr.StatusCode
	}

	return &ProviderError{Kind: kindForStatus(status), StatusCode: status, Err: err}
}

// kindForStatus без HTTP-статуса (сеть, таймаут, обрыв) считаем ошибкой связности.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= http.StatusInternalServerError:
		return KindConnectivity
	case status >= http.StatusBadRequest:
		// остальные 4xx: запрос не принят в таком виде, повтор не поможет
		return KindFormat
	}
	return KindConnectivity
}

// UserMessage человекочитаемое сообщение для конечного пользователя.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindAuth:
		return "O serviço de geração está indisponível no momento por um problema de configuração. Avise o suporte."
	case KindRateLimit:
		return "Muitas solicitações ao mesmo tempo. Aguarde um pouco e tente novamente."
	case KindConnectivity:
		return "Não foi possível falar com o serviço de geração. Tente novamente."
	case KindFormat:
		return "A história gerada veio em um formato inesperado. Tente gerar novamente com outras escolhas."
	}
	return "Ocorreu um erro inesperado. Tente novamente."
}
