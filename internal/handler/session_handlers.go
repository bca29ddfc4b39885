package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// logout явный сигнал завершения сессии: токен отзывается, открытые
// соединения получают session.invalidated.
// @Summary Выход и закрытие всех соединений
// @Tags session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /session/logout [post]
func (h *StoryHandler) logout(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	if h.deps.Invalidator != nil {
		if err := h.deps.Invalidator.Invalidate(c.Request.Context(), session); err != nil {
			h.logger.Error("Failed to revoke session", zap.Int64("user_id", session.UserID), zap.Error(err))
			h.handleServiceError(c, err)
			return
		}
	}
	if h.deps.Notifier != nil {
		h.deps.Notifier.NotifySessionInvalidated(session.UserID)
	}
	c.JSON(http.StatusOK, mutationResponse[gin.H]{
		Data:        gin.H{"loggedOut": true},
		Invalidates: []string{keySession},
	})
}
