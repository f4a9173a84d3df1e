package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Godevs04/TeamTaatom-sub013/internal/notify"
)

type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) Dispatch(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *DispatcherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ notify.Dispatcher = (*DispatcherMock)(nil)
