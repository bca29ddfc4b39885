package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/assembly"
	"storybook-server/internal/illustration"
	"storybook-server/internal/models"
	"storybook-server/internal/narration"
	"storybook-server/internal/reading"
)

// MockStoryRepository is a mock type for the story repository
type MockStoryRepository struct {
	mock.Mock
}

// CreateStory provides a mock function with given fields: ctx, story
func (_m *MockStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	ret := _m.Called(ctx, story)

	if rf, ok := ret.Get(0).(func(context.Context, *models.Story) error); ok {
		return rf(ctx, story)
	}
	return ret.Error(0)
}

// GetStory provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, int64) *models.Story); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}

	return r0, ret.Error(1)
}

// ListStoriesByUser provides a mock function with given fields: ctx, userID, limit, offset
func (_m *MockStoryRepository) ListStoriesByUser(ctx context.Context, userID int64, limit, offset int) ([]models.StorySummary, error) {
	ret := _m.Called(ctx, userID, limit, offset)

	var r0 []models.StorySummary
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.StorySummary)
	}

	return r0, ret.Error(1)
}

// UpdateChapterImage provides a mock function with given fields: ctx, storyID, chapterIndex, imageURL, isBackup
func (_m *MockStoryRepository) UpdateChapterImage(ctx context.Context, storyID int64, chapterIndex int, imageURL string, isBackup bool) error {
	ret := _m.Called(ctx, storyID, chapterIndex, imageURL, isBackup)
	return ret.Error(0)
}

// UpdateChapterAudio provides a mock function with given fields: ctx, storyID, chapterIndex, audioURL
func (_m *MockStoryRepository) UpdateChapterAudio(ctx context.Context, storyID int64, chapterIndex int, audioURL string) error {
	ret := _m.Called(ctx, storyID, chapterIndex, audioURL)
	return ret.Error(0)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var (
	_ assembly.StoryCreator          = (*MockStoryRepository)(nil)
	_ illustration.ChapterImageStore = (*MockStoryRepository)(nil)
	_ narration.ChapterAudioStore    = (*MockStoryRepository)(nil)
	_ reading.StoryReader            = (*MockStoryRepository)(nil)
)
