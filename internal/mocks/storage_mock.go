package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/illustration"
	"storybook-server/internal/narration"
)

// MockMediaStore is a mock type for the MediaStore type
type MockMediaStore struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, key, data, contentType
func (_m *MockMediaStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ret := _m.Called(ctx, key, data, contentType)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, []byte, string) string); ok {
		r0 = rf(ctx, key, data, contentType)
	} else {
		r0 = ret.String(0)
	}

	return r0, ret.Error(1)
}

// NewMockMediaStore creates a new instance of MockMediaStore.
func NewMockMediaStore(t interface {
	mock.TestingT
	Helper()
}) *MockMediaStore {
	m := &MockMediaStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var (
	_ illustration.MediaStore = (*MockMediaStore)(nil)
	_ narration.MediaStore    = (*MockMediaStore)(nil)
)
