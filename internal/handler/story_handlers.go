package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storybook-server/internal/messaging"
	"storybook-server/internal/models"
	"storybook-server/internal/wizard"
)

const defaultListLimit = 20

// generateStory проводит выбор через мастер и отправляет его на сборку.
// Для историй с иллюстрациями сразу ставится задача пакетной генерации.
// @Summary Сборка истории из выбора мастера
// @Tags stories
// @Accept json
// @Produce json
// @Param request body generateStoryRequest true "Выбор мастера"
// @Success 201 {object} mutationResponse[generateStoryResponse]
// @Failure 400 {object} validationErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /stories/generate [post]
func (h *StoryHandler) generateStory(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req generateStoryRequest
	if !bindJSON(c, &req) {
		return
	}

	submitter := wizard.NewAssemblySubmitter(h.deps.Assembler, session)
	sel := req.selection()
	w := wizard.New(submitter)
	if err := w.Apply(sel); err != nil {
		h.handleServiceError(c, err)
		return
	}
	if _, err := w.Submit(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	story := submitter.Story()

	resp := generateStoryResponse{Story: story}
	if !sel.TextOnly {
		taskID, err := h.publishIllustrationTask(c, session, story.ID)
		if err != nil {
			// история уже сохранена, иллюстрации можно запросить позже
			h.logger.Error("Failed to enqueue illustrations for new story", zap.Int64("story_id", story.ID), zap.Error(err))
		}
		resp.IllustrationTaskID = taskID
	}

	c.JSON(http.StatusCreated, mutationResponse[generateStoryResponse]{
		Data:        resp,
		Invalidates: []string{keyStories},
	})
}

// @Summary Истории пользователя
// @Tags stories
// @Produce json
// @Param limit query int false "Размер страницы" minimum(1) maximum(100)
// @Param offset query int false "Смещение" minimum(0)
// @Success 200 {object} listResponse[models.StorySummary]
// @Failure 400 {object} validationErrorResponse
// @Security BearerAuth
// @Router /stories [get]
func (h *StoryHandler) listStories(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var q listStoriesQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}
	items, err := h.deps.Stories.ListStoriesByUser(c.Request.Context(), session.UserID, q.Limit, q.Offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if items == nil {
		items = []models.StorySummary{}
	}
	c.JSON(http.StatusOK, listResponse[models.StorySummary]{Items: items, Limit: q.Limit, Offset: q.Offset})
}

// @Summary История с главами
// @Tags stories
// @Produce json
// @Param id path int true "ID истории"
// @Success 200 {object} models.Story
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /stories/{id} [get]
func (h *StoryHandler) getStory(c *gin.Context) {
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
	c.JSON(http.StatusOK, story)
}

// publishIllustrationTask ставит задачу воркеру. Пустой taskID без ошибки
// означает, что очередь не настроена.
func (h *StoryHandler) publishIllustrationTask(c *gin.Context, session models.Session, storyID int64) (string, error) {
	if h.deps.Tasks == nil {
		return "", nil
	}
	task := messaging.IllustrationTaskPayload{
		TaskID:    uuid.NewString(),
		UserID:    session.UserID,
		StoryID:   storyID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.deps.Tasks.Publish(c.Request.Context(), task, task.TaskID); err != nil {
		return "", err
	}
	h.logger.Info("Illustration task published", zap.String("task_id", task.TaskID), zap.Int64("story_id", storyID))
	return task.TaskID, nil
}
