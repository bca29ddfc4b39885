package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/illustration"
	"storybook-server/internal/messaging"
)

// MockNotifier is a mock type for the illustration.Notifier type
type MockNotifier struct {
	mock.Mock
}

// Notify provides a mock function with given fields: ctx, event
func (_m *MockNotifier) Notify(ctx context.Context, event messaging.IllustrationEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

// NewMockNotifier creates a new instance of MockNotifier.
func NewMockNotifier(t interface {
	mock.TestingT
	Helper()
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockPublisher is a mock type for the messaging.Publisher type
type MockPublisher struct {
	mock.Mock
}

// Publish provides a mock function with given fields: ctx, payload, correlationID
func (_m *MockPublisher) Publish(ctx context.Context, payload interface{}, correlationID string) error {
	ret := _m.Called(ctx, payload, correlationID)
	return ret.Error(0)
}

// NewMockPublisher creates a new instance of MockPublisher.
func NewMockPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockPublisher {
	m := &MockPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var (
	_ illustration.Notifier = (*MockNotifier)(nil)
	_ messaging.Publisher   = (*MockPublisher)(nil)
)
