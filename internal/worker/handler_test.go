package worker_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/illustration"
	"storybook-server/internal/messaging"
	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
	"storybook-server/internal/worker"
)

func story(chapters int) *models.Story {
	s := &models.Story{ID: 42, UserID: 7, AgeGroup: models.AgeGroup3To5, Title: "O Dragão Gentil"}
	for i := 0; i < chapters; i++ {
		s.Chapters = append(s.Chapters, models.Chapter{Index: i, Title: "Capítulo", Content: "Texto.", ImagePrompt: "Capítulo: Texto."})
	}
	return s
}

func delivery(t *testing.T, task messaging.IllustrationTaskPayload) amqp091.Delivery {
	t.Helper()
	body, err := json.Marshal(task)
	require.NoError(t, err)
	return amqp091.Delivery{Body: body, CorrelationId: task.TaskID}
}

type handlerFixture struct {
	stories  *mocks.MockStoryRepository
	images   *mocks.MockImageGenerator
	notifier *mocks.MockNotifier
	handler  *worker.Handler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	f := &handlerFixture{
		stories:  mocks.NewMockStoryRepository(t),
		images:   mocks.NewMockImageGenerator(t),
		notifier: mocks.NewMockNotifier(t),
	}
	orchestrator := illustration.NewOrchestrator(f.images, f.stories, nil, nil,
		illustration.NewBackupPool(nil, []string{"https://cdn/backup.png"}), nil,
		illustration.Options{Concurrency: 2}, zap.NewNop()).WithNotifier(f.notifier)
	f.handler = worker.NewHandler(f.stories, orchestrator, f.notifier, zap.NewNop())
	return f
}

func TestHandleDelivery_RunsBulkIllustration(t *testing.T) {
	f := newHandlerFixture(t)
	task := messaging.IllustrationTaskPayload{TaskID: "task-1", UserID: 7, StoryID: 42}

	f.stories.On("GetStory", mock.Anything, int64(42)).Return(story(3), nil).Once()
	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).
		Return(nil, &ai.ProviderError{Kind: ai.KindConnectivity, Err: errors.New("timeout")}).Times(3)
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), mock.AnythingOfType("int"), "https://cdn/backup.png", true).
		Return(nil).Times(3)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e messaging.IllustrationEvent) bool {
		return e.Type == messaging.EventChapterIllustrated && e.TaskID == "task-1" && e.UserID == 7
	})).Return(nil).Times(3)

	var summary *models.BulkIllustrationResult
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e messaging.IllustrationEvent) bool {
		return e.Type == messaging.EventIllustrationComplete
	})).Run(func(args mock.Arguments) {
		summary = args.Get(1).(messaging.IllustrationEvent).Summary
	}).Return(nil).Once()

	assert.True(t, f.handler.HandleDelivery(t.Context(), delivery(t, task)))

	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 3, summary.BackupCount)
	assert.Equal(t, 0, summary.SuccessCount)
	f.stories.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestHandleDelivery_StoryNotFound(t *testing.T) {
	f := newHandlerFixture(t)
	task := messaging.IllustrationTaskPayload{TaskID: "task-2", UserID: 7, StoryID: 404}

	f.stories.On("GetStory", mock.Anything, int64(404)).Return(nil, models.ErrStoryNotFound).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e messaging.IllustrationEvent) bool {
		return e.Type == messaging.EventIllustrationFailed && e.StoryID == 404 && e.Error != ""
	})).Return(nil).Once()

	assert.True(t, f.handler.HandleDelivery(t.Context(), delivery(t, task)))
	f.images.AssertNotCalled(t, "GenerateChapterImage", mock.Anything, mock.Anything)
	f.notifier.AssertExpectations(t)
}

func TestHandleDelivery_ForeignStory(t *testing.T) {
	f := newHandlerFixture(t)
	task := messaging.IllustrationTaskPayload{TaskID: "task-3", UserID: 8, StoryID: 42}

	f.stories.On("GetStory", mock.Anything, int64(42)).Return(story(2), nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e messaging.IllustrationEvent) bool {
		return e.Type == messaging.EventIllustrationFailed && e.UserID == 8
	})).Return(nil).Once()

	assert.True(t, f.handler.HandleDelivery(t.Context(), delivery(t, task)))
	f.images.AssertNotCalled(t, "GenerateChapterImage", mock.Anything, mock.Anything)
}

func TestHandleDelivery_RequeuesOnLoadFailure(t *testing.T) {
	f := newHandlerFixture(t)
	task := messaging.IllustrationTaskPayload{TaskID: "task-4", UserID: 7, StoryID: 42}

	f.stories.On("GetStory", mock.Anything, int64(42)).Return(nil, errors.New("connection refused")).Once()

	assert.False(t, f.handler.HandleDelivery(t.Context(), delivery(t, task)))
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestHandleDelivery_MalformedBody(t *testing.T) {
	f := newHandlerFixture(t)
	assert.False(t, f.handler.HandleDelivery(t.Context(), amqp091.Delivery{Body: []byte("not json")}))
	f.stories.AssertNotCalled(t, "GetStory", mock.Anything, mock.Anything)
}
