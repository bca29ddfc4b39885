package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/auth"
)

// MockRevoker is a mock type for the auth.Revoker type
type MockRevoker struct {
	mock.Mock
}

// Revoke provides a mock function with given fields: ctx, tokenID, ttl
func (_m *MockRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	ret := _m.Called(ctx, tokenID, ttl)
	return ret.Error(0)
}

// IsRevoked provides a mock function with given fields: ctx, tokenID
func (_m *MockRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ret := _m.Called(ctx, tokenID)
	return ret.Bool(0), ret.Error(1)
}

// NewMockRevoker creates a new instance of MockRevoker.
func NewMockRevoker(t interface {
	mock.TestingT
	Helper()
}) *MockRevoker {
	m := &MockRevoker{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ auth.Revoker = (*MockRevoker)(nil)
