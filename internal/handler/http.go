package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "storybook-server/docs"
	"storybook-server/internal/illustration"
	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
	"storybook-server/internal/models"
	"storybook-server/internal/reading"
	"storybook-server/internal/wizard"
)

// CatalogService справочник персонажей и тем.
type CatalogService interface {
	ListCharacters(ctx context.Context, ag models.AgeGroup) ([]models.Character, error)
	ListThemes(ctx context.Context, ag models.AgeGroup) ([]models.Theme, error)
}

// StoryStore чтение историй.
type StoryStore interface {
	GetStory(ctx context.Context, id int64) (*models.Story, error)
	ListStoriesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.StorySummary, error)
}

// Illustrator генерация иллюстраций глав.
type Illustrator interface {
	GenerateChapterImage(ctx context.Context, story *models.Story, chapterIndex int, opts illustration.ChapterOptions) (models.IllustrationResult, error)
	GenerateAllIllustrations(ctx context.Context, story *models.Story, taskID string) models.BulkIllustrationResult
}

// Narrator озвучка глав.
type Narrator interface {
	GenerateChapterAudio(ctx context.Context, story *models.Story, chapterIndex int) (models.NarrationResult, error)
}

// ReadingTracker прогресс чтения.
type ReadingTracker interface {
	RecordProgress(ctx context.Context, session models.Session, upd reading.ProgressUpdate) (*models.ReadingSession, error)
	UpdateSession(ctx context.Context, session models.Session, sessionID int64, chapterIndex, elapsedMinutes int) (*models.ReadingSession, error)
	GetSession(ctx context.Context, session models.Session, sessionID int64) (*models.ReadingSession, error)
}

// SessionInvalidator отзывает токен сессии.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, session models.Session) error
}

// SessionNotifier сообщает открытым соединениям пользователя о завершении сессии.
type SessionNotifier interface {
	NotifySessionInvalidated(userID int64)
}

// Dependencies зависимости обработчиков. Tasks может быть nil: тогда
// асинхронная генерация недоступна и текстовые истории не иллюстрируются сразу.
type Dependencies struct {
	Catalog     CatalogService
	Assembler   wizard.Assembler
	Stories     StoryStore
	Illustrator Illustrator
	Narrator    Narrator
	Reading     ReadingTracker
	Verifier    middleware.SessionVerifier
	Invalidator SessionInvalidator
	Notifier    SessionNotifier
	Tasks       messaging.Publisher
	WebSocket   gin.HandlerFunc
}

// StoryHandler HTTP API сервиса историй.
type StoryHandler struct {
	deps   Dependencies
	logger *zap.Logger
}

func NewStoryHandler(deps Dependencies, logger *zap.Logger) *StoryHandler {
	registerValidators()
	return &StoryHandler{deps: deps, logger: logger.Named("StoryHandler")}
}

// RegisterRoutes регистрирует маршруты. /health, /metrics, /swagger и /ws без bearer-токена.
func (h *StoryHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if h.deps.WebSocket != nil {
		r.GET("/ws", middleware.QueryTokenAuth(h.deps.Verifier, h.logger), h.deps.WebSocket)
	}

	authed := r.Group("", middleware.AuthMiddleware(h.deps.Verifier, h.logger))
	{
		authed.GET("/catalog/characters", h.listCharacters)
		authed.GET("/catalog/themes", h.listThemes)

		authed.POST("/stories/generate", h.generateStory)
		authed.GET("/stories", h.listStories)
		authed.GET("/stories/:id", h.getStory)
		authed.POST("/stories/:id/chapters/:index/image", h.generateChapterImage)
		authed.POST("/stories/:id/chapters/:index/audio", h.generateChapterAudio)
		authed.POST("/stories/:id/generateIllustrations", h.generateIllustrations)

		authed.POST("/reading-sessions", h.recordProgress)
		authed.PATCH("/reading-sessions/:id", h.updateReadingSession)
		authed.GET("/reading-sessions/:id", h.getReadingSession)

		authed.POST("/session/logout", h.logout)
	}
}

// --- Вспомогательные функции --- //

func sessionFrom(c *gin.Context) (models.Session, bool) {
	s, ok := middleware.GetSession(c)
	if !ok || s.UserID <= 0 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "É preciso entrar na sua conta."})
		return models.Session{}, false
	}
	return s, true
}

// parseIDParam читает положительный int64 из пути.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "Identificador inválido."})
		return 0, false
	}
	return id, true
}

func parseIndexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "invalid_chapter", Message: "Capítulo inválido."})
		return 0, false
	}
	return idx, true
}

// loadOwnStory загружает историю пользователя. Чужая история неотличима от
// отсутствующей.
func (h *StoryHandler) loadOwnStory(c *gin.Context, session models.Session, id int64) (*models.Story, bool) {
	story, err := h.deps.Stories.GetStory(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	if !story.OwnedBy(session.UserID) {
		h.handleServiceError(c, models.ErrStoryNotFound)
		return nil, false
	}
	return story, true
}
