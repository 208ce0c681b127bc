package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, title, text string) (string, error) {
	args := m.Called(ctx, title, text)
	return args.String(0), args.Error(1)
}
