package models

// ErrorResponse стандартное тело ответа об ошибке.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
