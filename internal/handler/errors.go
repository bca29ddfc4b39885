package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/models"
	"storybook-server/internal/wizard"
)

// selectionMessages сообщения для конкретных нарушений выбора, от частного к общему.
var selectionMessages = []struct {
	err     error
	code    string
	message string
}{
	{models.ErrMissingAgeGroup, "missing_age_group", "Escolha a faixa etária."},
	{models.ErrInvalidAgeGroup, "invalid_age_group", "Faixa etária desconhecida."},
	{models.ErrMissingCharacters, "missing_characters", "Escolha pelo menos um personagem."},
	{models.ErrTooManyCharacters, "too_many_characters", "Escolha no máximo 3 personagens."},
	{models.ErrDuplicateCharacter, "duplicate_character", "O mesmo personagem foi escolhido duas vezes."},
	{models.ErrCharacterNotFound, "character_not_found", "Um dos personagens escolhidos não existe."},
	{models.ErrCharacterNotAllowed, "character_not_allowed", "Um dos personagens não está disponível para esta faixa etária."},
	{models.ErrMissingTheme, "missing_theme", "Escolha um tema para continuar."},
	{models.ErrThemeNotFound, "theme_not_found", "O tema escolhido não existe."},
	{models.ErrThemeNotAllowed, "theme_not_allowed", "O tema não está disponível para esta faixa etária."},
}

// handleServiceError единая точка перевода ошибок сервисов в HTTP-ответ.
func (h *StoryHandler) handleServiceError(c *gin.Context, err error) {
	status, body := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		// попадет в лог запроса через c.Errors
		_ = c.Error(err)
	} else {
		h.logger.Debug("Request rejected", zap.Int("status", status), zap.String("code", body.Code), zap.Error(err))
	}
	c.JSON(status, body)
}

func mapServiceError(err error) (int, models.ErrorResponse) {
	for _, m := range selectionMessages {
		if errors.Is(err, m.err) {
			return http.StatusBadRequest, models.ErrorResponse{Code: m.code, Message: m.message}
		}
	}

	var gateErr *wizard.GateError
	switch {
	case errors.As(err, &gateErr), errors.Is(err, models.ErrInvalidSelection):
		return http.StatusBadRequest, models.ErrorResponse{Code: "invalid_selection", Message: "Revise as escolhas da história."}
	case errors.Is(err, wizard.ErrSubmitInProgress):
		return http.StatusConflict, models.ErrorResponse{Code: "submit_in_progress", Message: "A história já está sendo criada."}
	case errors.Is(err, models.ErrIllustrationInProgress):
		return http.StatusConflict, models.ErrorResponse{Code: "illustration_in_progress", Message: "A ilustração deste capítulo já está sendo gerada.", Retryable: true}
	case errors.Is(err, models.ErrStoryNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: "story_not_found", Message: "História não encontrada."}
	case errors.Is(err, models.ErrChapterNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: "chapter_not_found", Message: "Capítulo não encontrado."}
	case errors.Is(err, models.ErrReadingSessionNotFound):
		return http.StatusNotFound, models.ErrorResponse{Code: "reading_session_not_found", Message: "Sessão de leitura não encontrada."}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, models.ErrorResponse{Code: "forbidden", Message: "Você não tem acesso a este recurso."}
	case errors.Is(err, models.ErrInvalidProgress):
		return http.StatusBadRequest, models.ErrorResponse{Code: "invalid_progress", Message: "Progresso de leitura inválido."}
	case errors.Is(err, errAsyncUnavailable):
		return http.StatusServiceUnavailable, models.ErrorResponse{Code: "async_unavailable", Message: "A geração em segundo plano está indisponível no momento."}
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrTokenRevoked), errors.Is(err, models.ErrTokenInvalid):
		return http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "É preciso entrar na sua conta."}
	}

	switch ai.KindOf(err) {
	case ai.KindAuth:
		return http.StatusBadGateway, models.ErrorResponse{Code: "ai_auth", Message: ai.UserMessage(err)}
	case ai.KindRateLimit:
		return http.StatusTooManyRequests, models.ErrorResponse{Code: "ai_rate_limit", Message: ai.UserMessage(err), Retryable: true}
	case ai.KindConnectivity:
		return http.StatusServiceUnavailable, models.ErrorResponse{Code: "ai_unavailable", Message: ai.UserMessage(err), Retryable: true}
	case ai.KindFormat:
		return http.StatusBadGateway, models.ErrorResponse{Code: "ai_format", Message: ai.UserMessage(err), Retryable: ai.IsRetryable(err)}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, models.ErrorResponse{Code: "timeout", Message: "A operação demorou demais. Tente novamente.", Retryable: true}
	}
	return http.StatusInternalServerError, models.ErrorResponse{Code: "internal_error", Message: "Ocorreu um erro inesperado. Tente novamente.", Retryable: true}
}
