package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcherWithoutRedisFallsBackToNoop(t *testing.T) {
	dispatcher := NewDispatcher("")

	assert.Equal(t, "noop", DispatcherMode(dispatcher))

	err := dispatcher.Dispatch(context.Background(), Notification{
		RecipientID: 2,
		Title:       "New message",
		Body:        "hi",
		Data:        NotificationData{ConversationID: 5},
	})
	require.NoError(t, err)
	require.NoError(t, dispatcher.Close())
}

func TestNewDispatcherBadURLFallsBackToNoop(t *testing.T) {
	dispatcher := NewDispatcher("not-a-url")

	assert.Equal(t, "noop", DispatcherMode(dispatcher))
}
