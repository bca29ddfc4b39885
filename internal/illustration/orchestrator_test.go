package illustration_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/illustration"
	"storybook-server/internal/messaging"
	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
)

var errImageRateLimited = &ai.ProviderError{Kind: ai.KindRateLimit, StatusCode: 429, Err: errors.New("rate limited")}

func testStory(chapters int) *models.Story {
	s := &models.Story{ID: 42, UserID: 7, AgeGroup: models.AgeGroup6To8, Title: "A Coruja", CharacterIDs: []int64{1, 2}}
	for i := 0; i < chapters; i++ {
		title := "Capítulo " + string(rune('A'+i))
		s.Chapters = append(s.Chapters, models.Chapter{
			Index:       i,
			Title:       title,
			Content:     "Texto do capítulo.",
			ImagePrompt: title + ": Texto do capítulo.",
		})
	}
	return s
}

// urlFromKey имитирует хранилище: публичный URL = префикс + ключ.
func urlFromKey(_ context.Context, key string, _ []byte, _ string) string {
	return "https://media.test/" + key
}

type orchestratorFixture struct {
	images  *mocks.MockImageGenerator
	stories *mocks.MockStoryRepository
	media   *mocks.MockMediaStore
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	return &orchestratorFixture{
		images:  mocks.NewMockImageGenerator(t),
		stories: mocks.NewMockStoryRepository(t),
		media:   mocks.NewMockMediaStore(t),
	}
}

func (f *orchestratorFixture) build(backups *illustration.BackupPool, guard illustration.Guard) *illustration.Orchestrator {
	return illustration.NewOrchestrator(f.images, f.stories, nil, f.media, backups, guard,
		illustration.Options{Style: "aquarela", Mood: "alegre", Concurrency: 2}, zap.NewNop())
}

func defaultBackups() *illustration.BackupPool {
	return illustration.NewBackupPool(nil, []string{"https://cdn/backup-1.png", "https://cdn/backup-2.png"})
}

func TestGenerateChapterImage_ProviderSuccess(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(3)

	f.images.On("GenerateChapterImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == story.Chapters[1].ImagePrompt &&
			req.ChapterTitle == "Capítulo B" &&
			req.Style == "aquarela" &&
			req.AgeGroup == models.AgeGroup6To8 &&
			req.UserID == 7
	})).Return(&ai.GeneratedImage{Data: []byte("png"), ContentType: "image/png"}, nil).Once()
	f.media.On("Save", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "stories/42/chapter-1-") && strings.HasSuffix(key, ".png")
	}), []byte("png"), "image/png").Return(urlFromKey, nil).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), 1, mock.AnythingOfType("string"), false).Return(nil).Once()

	res, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), story, 1, illustration.ChapterOptions{})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.IsBackup)
	assert.Equal(t, models.OutcomeSuccess, res.Outcome)
	require.NotNil(t, story.Chapters[1].ImageURL)
	assert.Equal(t, res.ImageURL, *story.Chapters[1].ImageURL)
	assert.Nil(t, story.Chapters[0].ImageURL)

	f.images.AssertExpectations(t)
	f.media.AssertExpectations(t)
	f.stories.AssertExpectations(t)
}

func TestGenerateChapterImage_ProviderURLIsNotStored(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(1)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).
		Return(&ai.GeneratedImage{URL: "https://provider/img.png"}, nil).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), 0, "https://provider/img.png", false).Return(nil).Once()

	res, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), story, 0, illustration.ChapterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://provider/img.png", res.ImageURL)
	f.media.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateChapterImage_BackupOnProviderFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(2)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(nil, errImageRateLimited).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), 0, "https://cdn/backup-1.png", true).Return(nil).Once()

	res, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), story, 0, illustration.ChapterOptions{})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.IsBackup)
	assert.Equal(t, models.OutcomeSuccessWithBackup, res.Outcome)
	assert.NotEmpty(t, res.Error)
	assert.True(t, story.Chapters[0].ImageIsBackup)
	f.stories.AssertExpectations(t)
}

func TestGenerateChapterImage_StorageFailureFallsBackToBackup(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(1)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(&ai.GeneratedImage{Data: []byte("x")}, nil).Once()
	f.media.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full")).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), 0, mock.Anything, true).Return(nil).Once()

	res, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), story, 0, illustration.ChapterOptions{})
	require.NoError(t, err)
	assert.True(t, res.IsBackup)
}

func TestGenerateChapterImage_EmptyBackupPoolFails(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(1)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(nil, errImageRateLimited).Once()

	res, err := f.build(illustration.NewBackupPool(nil, nil), nil).GenerateChapterImage(context.Background(), story, 0, illustration.ChapterOptions{})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, models.OutcomeFailure, res.Outcome)
	assert.NotEmpty(t, res.Error)
	assert.Nil(t, story.Chapters[0].ImageURL)
	f.stories.AssertNotCalled(t, "UpdateChapterImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateChapterImage_RegenerateCallsProviderEachTime(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(2)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(&ai.GeneratedImage{URL: "https://provider/v1.png"}, nil).Once()
	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(&ai.GeneratedImage{URL: "https://provider/v2.png"}, nil).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), 1, mock.Anything, false).Return(nil).Twice()

	orch := f.build(defaultBackups(), nil)
	_, err := orch.GenerateChapterImage(context.Background(), story, 1, illustration.ChapterOptions{})
	require.NoError(t, err)
	res, err := orch.GenerateChapterImage(context.Background(), story, 1, illustration.ChapterOptions{})
	require.NoError(t, err)

	f.images.AssertNumberOfCalls(t, "GenerateChapterImage", 2)
	assert.Equal(t, "https://provider/v2.png", res.ImageURL)
	assert.Equal(t, "https://provider/v2.png", *story.Chapters[1].ImageURL, "latest URL wins")
}

func TestGenerateChapterImage_PromptOverride(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(1)

	f.images.On("GenerateChapterImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == "a coruja voando à noite"
	})).Return(&ai.GeneratedImage{URL: "https://provider/x.png"}, nil).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), story, 0,
		illustration.ChapterOptions{PromptOverride: "a coruja voando à noite"})
	require.NoError(t, err)
	assert.Equal(t, "Capítulo A: Texto do capítulo.", story.Chapters[0].ImagePrompt, "override is not stored")
	f.images.AssertExpectations(t)
}

func TestGenerateChapterImage_PersistFailureKeepsResult(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(1)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(&ai.GeneratedImage{URL: "https://provider/ok.png"}, nil).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), 0, "https://provider/ok.png", false).
		Return(errors.New("connection refused")).Once()

	res, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), story, 0, illustration.ChapterOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, story.Chapters[0].ImageURL)
	assert.Equal(t, "https://provider/ok.png", *story.Chapters[0].ImageURL)
	f.stories.AssertExpectations(t)
}

func TestGenerateChapterImage_UnknownChapter(t *testing.T) {
	f := newOrchestratorFixture(t)
	_, err := f.build(defaultBackups(), nil).GenerateChapterImage(context.Background(), testStory(2), 5, illustration.ChapterOptions{})
	assert.ErrorIs(t, err, models.ErrChapterNotFound)
	f.images.AssertNotCalled(t, "GenerateChapterImage", mock.Anything, mock.Anything)
}

// busyGuard всегда считает главу занятой.
type busyGuard struct{}

func (busyGuard) Acquire(context.Context, int64, int) (func(), error) {
	return nil, models.ErrIllustrationInProgress
}

// brokenGuard имитирует недоступный Redis.
type brokenGuard struct{}

func (brokenGuard) Acquire(context.Context, int64, int) (func(), error) {
	return nil, errors.New("redis: connection refused")
}

func TestGenerateChapterImage_InProgressRejected(t *testing.T) {
	f := newOrchestratorFixture(t)
	_, err := f.build(defaultBackups(), busyGuard{}).GenerateChapterImage(context.Background(), testStory(1), 0, illustration.ChapterOptions{})
	assert.ErrorIs(t, err, models.ErrIllustrationInProgress)
	f.images.AssertNotCalled(t, "GenerateChapterImage", mock.Anything, mock.Anything)
}

func TestGenerateChapterImage_GuardUnavailableStillGenerates(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(&ai.GeneratedImage{URL: "https://provider/ok.png"}, nil).Once()
	f.stories.On("UpdateChapterImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.build(defaultBackups(), brokenGuard{}).GenerateChapterImage(context.Background(), testStory(1), 0, illustration.ChapterOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestGenerateAllIllustrations_PartialFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(4)

	failing := map[string]bool{"Capítulo B": true, "Capítulo D": true}
	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(
		func(_ context.Context, req ai.ImageRequest) *ai.GeneratedImage {
			if failing[req.ChapterTitle] {
				return nil
			}
			return &ai.GeneratedImage{URL: "https://provider/" + req.ChapterTitle}
		},
		func(_ context.Context, req ai.ImageRequest) error {
			if failing[req.ChapterTitle] {
				return errImageRateLimited
			}
			return nil
		},
	)
	f.stories.On("UpdateChapterImage", mock.Anything, int64(42), mock.Anything, mock.Anything, mock.Anything).Return(nil)

	notifier := mocks.NewMockNotifier(t)
	var chapterEvents atomic.Int32
	var mu sync.Mutex
	var completed *messaging.IllustrationEvent
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		ev := args.Get(1).(messaging.IllustrationEvent)
		switch ev.Type {
		case messaging.EventChapterIllustrated:
			chapterEvents.Add(1)
		case messaging.EventIllustrationComplete:
			mu.Lock()
			completed = &ev
			mu.Unlock()
		}
	})

	orch := f.build(defaultBackups(), nil).WithNotifier(notifier)
	bulk := orch.GenerateAllIllustrations(context.Background(), story, "task-1")

	assert.Equal(t, 4, bulk.TotalCount)
	assert.Equal(t, 2, bulk.SuccessCount)
	assert.Equal(t, 2, bulk.BackupCount)
	assert.Zero(t, bulk.FailedCount)
	assert.Less(t, bulk.SuccessCount, bulk.TotalCount)

	require.Len(t, bulk.Results, 4)
	for i, r := range bulk.Results {
		assert.Equal(t, i, r.ChapterIndex, "results in chapter order")
		assert.True(t, r.Success)
		assert.NotEmpty(t, r.ImageURL)
		require.NotNil(t, story.Chapters[i].ImageURL)
	}
	assert.True(t, bulk.Results[1].IsBackup)
	assert.True(t, bulk.Results[3].IsBackup)

	f.images.AssertNumberOfCalls(t, "GenerateChapterImage", 4)
	assert.EqualValues(t, 4, chapterEvents.Load())
	require.NotNil(t, completed)
	assert.Equal(t, "task-1", completed.TaskID)
	assert.Equal(t, int64(7), completed.UserID)
	require.NotNil(t, completed.Summary)
	assert.Equal(t, 4, completed.Summary.TotalCount)
}

func TestGenerateAllIllustrations_NoBackupsMarksFailures(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(3)

	f.images.On("GenerateChapterImage", mock.Anything, mock.Anything).Return(nil, errImageRateLimited)

	bulk := f.build(illustration.NewBackupPool(nil, nil), nil).GenerateAllIllustrations(context.Background(), story, "")
	assert.Equal(t, 3, bulk.TotalCount)
	assert.Equal(t, 3, bulk.FailedCount)
	for _, r := range bulk.Results {
		assert.False(t, r.Success)
		assert.Equal(t, models.OutcomeFailure, r.Outcome)
	}
	f.images.AssertNumberOfCalls(t, "GenerateChapterImage", 3)
}

func TestGenerateAllIllustrations_CancelledContext(t *testing.T) {
	f := newOrchestratorFixture(t)
	story := testStory(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bulk := illustration.NewOrchestrator(f.images, f.stories, nil, f.media, defaultBackups(), nil,
		illustration.Options{Concurrency: 1, Interval: 1}, zap.NewNop()).GenerateAllIllustrations(ctx, story, "")

	assert.Equal(t, 3, bulk.TotalCount)
	assert.Equal(t, 3, bulk.FailedCount, "every chapter gets an outcome")
	f.images.AssertNotCalled(t, "GenerateChapterImage", mock.Anything, mock.Anything)
}
