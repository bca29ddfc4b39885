package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/models"
	"storybook-server/internal/reading"
)

// MockReadingRepository is a mock type for the reading.Repository type
type MockReadingRepository struct {
	mock.Mock
}

// GetByChildAndStory provides a mock function with given fields: ctx, childID, storyID
func (_m *MockReadingRepository) GetByChildAndStory(ctx context.Context, childID, storyID int64) (*models.ReadingSession, error) {
	ret := _m.Called(ctx, childID, storyID)

	var r0 *models.ReadingSession
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ReadingSession)
	}
	return r0, ret.Error(1)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockReadingRepository) GetByID(ctx context.Context, id int64) (*models.ReadingSession, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.ReadingSession
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ReadingSession)
	}
	return r0, ret.Error(1)
}

// Upsert provides a mock function with given fields: ctx, s
func (_m *MockReadingRepository) Upsert(ctx context.Context, s *models.ReadingSession) (*models.ReadingSession, error) {
	ret := _m.Called(ctx, s)

	var r0 *models.ReadingSession
	if rf, ok := ret.Get(0).(func(context.Context, *models.ReadingSession) *models.ReadingSession); ok {
		r0 = rf(ctx, s)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ReadingSession)
	}
	return r0, ret.Error(1)
}

// NewMockReadingRepository creates a new instance of MockReadingRepository.
func NewMockReadingRepository(t interface {
	mock.TestingT
	Helper()
}) *MockReadingRepository {
	m := &MockReadingRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ reading.Repository = (*MockReadingRepository)(nil)
