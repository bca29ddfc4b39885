package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/ai"
)

// MockStoryGenerator is a mock type for the ai.StoryGenerator type
type MockStoryGenerator struct {
	mock.Mock
}

// GenerateStory provides a mock function with given fields: ctx, req
func (_m *MockStoryGenerator) GenerateStory(ctx context.Context, req ai.StoryRequest) (string, ai.UsageInfo, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, ai.StoryRequest) string); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.String(0)
	}

	var r1 ai.UsageInfo
	if v, ok := ret.Get(1).(ai.UsageInfo); ok {
		r1 = v
	}

	return r0, r1, ret.Error(2)
}

// NewMockStoryGenerator creates a new instance of MockStoryGenerator.
func NewMockStoryGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockStoryGenerator {
	m := &MockStoryGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockImageGenerator is a mock type for the ai.ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

// GenerateChapterImage provides a mock function with given fields: ctx, req
func (_m *MockImageGenerator) GenerateChapterImage(ctx context.Context, req ai.ImageRequest) (*ai.GeneratedImage, error) {
	ret := _m.Called(ctx, req)

	var r0 *ai.GeneratedImage
	if rf, ok := ret.Get(0).(func(context.Context, ai.ImageRequest) *ai.GeneratedImage); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*ai.GeneratedImage)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, ai.ImageRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockImageGenerator creates a new instance of MockImageGenerator.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockAudioGenerator is a mock type for the ai.AudioGenerator type
type MockAudioGenerator struct {
	mock.Mock
}

// GenerateAudio provides a mock function with given fields: ctx, userID, text
func (_m *MockAudioGenerator) GenerateAudio(ctx context.Context, userID int64, text string) ([]byte, error) {
	ret := _m.Called(ctx, userID, text)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// NewMockAudioGenerator creates a new instance of MockAudioGenerator.
func NewMockAudioGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockAudioGenerator {
	m := &MockAudioGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var (
	_ ai.StoryGenerator = (*MockStoryGenerator)(nil)
	_ ai.ImageGenerator = (*MockImageGenerator)(nil)
	_ ai.AudioGenerator = (*MockAudioGenerator)(nil)
)
