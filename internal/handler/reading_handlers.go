package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-server/internal/models"
	"storybook-server/internal/reading"
)

// recordProgress отметка о прочитанной главе, создает сессию при первом вызове.
// @Summary Запись прогресса чтения
// @Tags reading
// @Accept json
// @Produce json
// @Param request body recordProgressRequest true "Прогресс"
// @Success 200 {object} mutationResponse[models.ReadingSession]
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reading-sessions [post]
func (h *StoryHandler) recordProgress(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req recordProgressRequest
	if !bindJSON(c, &req) {
		return
	}
	rs, err := h.deps.Reading.RecordProgress(c.Request.Context(), session, reading.ProgressUpdate{
		ChildID:        req.ChildID,
		StoryID:        req.StoryID,
		ChapterIndex:   req.ChapterIndex,
		TotalChapters:  req.TotalChapters,
		ElapsedMinutes: req.ElapsedMinutes,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse[*models.ReadingSession]{
		Data:        rs,
		Invalidates: []string{keyReadingSessions, readingSessionKey(rs.ID)},
	})
}

// @Summary Обновление сессии чтения
// @Tags reading
// @Accept json
// @Produce json
// @Param id path int true "ID сессии"
// @Param request body updateReadingSessionRequest true "Прогресс"
// @Success 200 {object} mutationResponse[models.ReadingSession]
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reading-sessions/{id} [patch]
func (h *StoryHandler) updateReadingSession(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateReadingSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	rs, err := h.deps.Reading.UpdateSession(c.Request.Context(), session, id, *req.ChapterIndex, req.ElapsedMinutes)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse[*models.ReadingSession]{
		Data:        rs,
		Invalidates: []string{keyReadingSessions, readingSessionKey(rs.ID)},
	})
}

// @Summary Сессия чтения
// @Tags reading
// @Produce json
// @Param id path int true "ID сессии"
// @Success 200 {object} models.ReadingSession
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reading-sessions/{id} [get]
func (h *StoryHandler) getReadingSession(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rs, err := h.deps.Reading.GetSession(c.Request.Context(), session, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}
