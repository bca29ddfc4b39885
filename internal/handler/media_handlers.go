package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storybook-server/internal/illustration"
	"storybook-server/internal/models"
)

// generateChapterImage генерирует или перегенерирует иллюстрацию одной главы.
// Сбой провайдера не ошибка HTTP: ответ несет результат с запасной картинкой
// или флагом неуспеха.
// @Summary Иллюстрация главы
// @Tags illustrations
// @Accept json
// @Produce json
// @Param id path int true "ID истории"
// @Param index path int true "Индекс главы"
// @Param request body chapterImageRequest false "Свой промпт"
// @Success 200 {object} mutationResponse[models.IllustrationResult]
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /stories/{id}/chapters/{index}/image [post]
func (h *StoryHandler) generateChapterImage(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	idx, ok := parseIndexParam(c)
	if !ok {
		return
	}
	var req chapterImageRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	story, ok := h.loadOwnStory(c, session, id)
	if !ok {
		return
	}

	result, err := h.deps.Illustrator.GenerateChapterImage(c.Request.Context(), story, idx, illustration.ChapterOptions{PromptOverride: req.Prompt})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse[models.IllustrationResult]{
		Data:        result,
		Invalidates: []string{storyKey(id)},
	})
}

// @Summary Озвучка главы
// @Tags narration
// @Produce json
// @Param id path int true "ID истории"
// @Param index path int true "Индекс главы"
// @Success 200 {object} mutationResponse[models.NarrationResult]
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /stories/{id}/chapters/{index}/audio [post]
func (h *StoryHandler) generateChapterAudio(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	idx, ok := parseIndexParam(c)
	if !ok {
		return
	}
	story, ok := h.loadOwnStory(c, session, id)
	if !ok {
		return
	}

	result, err := h.deps.Narrator.GenerateChapterAudio(c.Request.Context(), story, idx)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mutationResponse[models.NarrationResult]{
		Data:        result,
		Invalidates: []string{storyKey(id)},
	})
}

// generateIllustrations пакетная генерация. ?async=true ставит задачу воркеру
// и отвечает 202, прогресс приходит по websocket.
// @Summary Иллюстрации всех глав
// @Tags illustrations
// @Produce json
// @Param id path int true "ID истории"
// @Param async query bool false "Поставить задачу воркеру"
// @Success 200 {object} mutationResponse[models.BulkIllustrationResult]
// @Success 202 {object} mutationResponse[illustrationTaskResponse]
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /stories/{id}/generateIllustrations [post]
func (h *StoryHandler) generateIllustrations(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	story, ok := h.loadOwnStory(c, session, id)
	if !ok {
		return
	}

	if c.Query("async") == "true" {
		taskID, err := h.publishIllustrationTask(c, session, story.ID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		if taskID == "" {
			h.handleServiceError(c, errAsyncUnavailable)
			return
		}
		c.JSON(http.StatusAccepted, mutationResponse[illustrationTaskResponse]{
			Data:        illustrationTaskResponse{TaskID: taskID, StoryID: story.ID},
			Invalidates: []string{storyKey(id)},
		})
		return
	}

	bulk := h.deps.Illustrator.GenerateAllIllustrations(c.Request.Context(), story, uuid.NewString())
	c.JSON(http.StatusOK, mutationResponse[models.BulkIllustrationResult]{
		Data:        bulk,
		Invalidates: []string{storyKey(id)},
	})
}

var errAsyncUnavailable = errors.New("async illustration queue is not configured")
