package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/catalog"
	"storybook-server/internal/models"
)

// MockCatalogRepository is a mock type for the catalog.Repository type
type MockCatalogRepository struct {
	mock.Mock
}

// ListCharacters provides a mock function with given fields: ctx
func (_m *MockCatalogRepository) ListCharacters(ctx context.Context) ([]models.Character, error) {
	ret := _m.Called(ctx)

	var r0 []models.Character
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Character)
	}
	return r0, ret.Error(1)
}

// ListThemes provides a mock function with given fields: ctx
func (_m *MockCatalogRepository) ListThemes(ctx context.Context) ([]models.Theme, error) {
	ret := _m.Called(ctx)

	var r0 []models.Theme
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Theme)
	}
	return r0, ret.Error(1)
}

// NewMockCatalogRepository creates a new instance of MockCatalogRepository.
func NewMockCatalogRepository(t interface {
	mock.TestingT
	Helper()
}) *MockCatalogRepository {
	m := &MockCatalogRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ catalog.Repository = (*MockCatalogRepository)(nil)
