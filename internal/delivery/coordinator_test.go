package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Godevs04/TeamTaatom-sub013/internal/mocks"
	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
	"github.com/Godevs04/TeamTaatom-sub013/internal/notify"
)

type recordingBus struct {
	present   map[int]bool
	published []struct {
		UserID int
		Event  models.LiveEvent
	}
}

func newRecordingBus(present ...int) *recordingBus {
	bus := &recordingBus{present: map[int]bool{}}
	for _, userID := range present {
		bus.present[userID] = true
	}
	return bus
}

func (b *recordingBus) IsPresent(userID int) bool {
	return b.present[userID]
}

func (b *recordingBus) Publish(userID int, event models.LiveEvent) int {
	b.published = append(b.published, struct {
		UserID int
		Event  models.LiveEvent
	}{userID, event})
	if b.present[userID] {
		return 1
	}
	return 0
}

var testConv = models.Conversation{ID: 5, UserA: 1, UserB: 2}

func TestMessageStoredPublishesToPresentRecipient(t *testing.T) {
	bus := newRecordingBus(2)
	readRepo := new(mocks.ReadStateRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	coordinator := NewCoordinator(bus, readRepo, dispatcher)

	msg := models.Message{ID: 7, ConversationID: 5, SenderID: 1, Seq: 1, Body: "hi"}
	coordinator.MessageStored(context.Background(), testConv, msg)

	require.Len(t, bus.published, 1)
	assert.Equal(t, 2, bus.published[0].UserID)
	assert.Equal(t, models.EventMessageNew, bus.published[0].Event.Type)
	assert.Equal(t, 5, bus.published[0].Event.ConversationID)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	readRepo.AssertNotCalled(t, "IsMuted", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageStoredFallsBackToNotificationWhenAbsent(t *testing.T) {
	bus := newRecordingBus()
	readRepo := new(mocks.ReadStateRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	coordinator := NewCoordinator(bus, readRepo, dispatcher)

	readRepo.On("IsMuted", mock.Anything, 5, 2).Return(false, nil).Once()
	dispatcher.On("Dispatch", mock.Anything, notify.Notification{
		RecipientID: 2,
		Title:       "New message",
		Body:        "hi",
		Data:        notify.NotificationData{ConversationID: 5},
	}).Return(nil).Once()

	msg := models.Message{ID: 7, ConversationID: 5, SenderID: 1, Seq: 1, Body: "hi"}
	coordinator.MessageStored(context.Background(), testConv, msg)

	assert.Empty(t, bus.published)
	readRepo.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestMessageStoredSkipsNotificationWhenMuted(t *testing.T) {
	bus := newRecordingBus()
	readRepo := new(mocks.ReadStateRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	coordinator := NewCoordinator(bus, readRepo, dispatcher)

	readRepo.On("IsMuted", mock.Anything, 5, 1).Return(true, nil).Once()

	msg := models.Message{ID: 8, ConversationID: 5, SenderID: 2, Seq: 2, Body: "hello"}
	coordinator.MessageStored(context.Background(), testConv, msg)

	assert.Empty(t, bus.published)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	readRepo.AssertExpectations(t)
}

func TestMessageStoredSurvivesDispatchFailure(t *testing.T) {
	bus := newRecordingBus()
	readRepo := new(mocks.ReadStateRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	coordinator := NewCoordinator(bus, readRepo, dispatcher)

	readRepo.On("IsMuted", mock.Anything, 5, 2).Return(false, nil).Once()
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	msg := models.Message{ID: 9, ConversationID: 5, SenderID: 1, Seq: 3, Body: "hi"}
	coordinator.MessageStored(context.Background(), testConv, msg)

	dispatcher.AssertExpectations(t)
}

func TestMessageStoredNotifiesWhenMuteLookupFails(t *testing.T) {
	bus := newRecordingBus()
	readRepo := new(mocks.ReadStateRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	coordinator := NewCoordinator(bus, readRepo, dispatcher)

	readRepo.On("IsMuted", mock.Anything, 5, 2).Return(false, assert.AnError).Once()
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	msg := models.Message{ID: 10, ConversationID: 5, SenderID: 1, Seq: 4, Body: "hi"}
	coordinator.MessageStored(context.Background(), testConv, msg)

	dispatcher.AssertExpectations(t)
}

func TestMessageStoredTruncatesPreview(t *testing.T) {
	bus := newRecordingBus()
	readRepo := new(mocks.ReadStateRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	coordinator := NewCoordinator(bus, readRepo, dispatcher)

	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}

	readRepo.On("IsMuted", mock.Anything, 5, 2).Return(false, nil).Once()
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(n notify.Notification) bool {
		return len([]rune(n.Body)) == previewLimit+1
	})).Return(nil).Once()

	msg := models.Message{ID: 11, ConversationID: 5, SenderID: 1, Seq: 5, Body: string(long)}
	coordinator.MessageStored(context.Background(), testConv, msg)

	dispatcher.AssertExpectations(t)
}

func TestSeenAdvancedAlwaysPublishesToPeer(t *testing.T) {
	bus := newRecordingBus()
	coordinator := NewCoordinator(bus, new(mocks.ReadStateRepositoryMock), new(mocks.DispatcherMock))

	coordinator.SeenAdvanced(context.Background(), testConv, 2, 4)

	require.Len(t, bus.published, 1)
	assert.Equal(t, 1, bus.published[0].UserID)
	assert.Equal(t, models.EventMessageSeen, bus.published[0].Event.Type)
	require.NotNil(t, bus.published[0].Event.Seen)
	assert.Equal(t, int64(4), bus.published[0].Event.Seen.SeenSeq)
	assert.Equal(t, 2, bus.published[0].Event.Seen.UserID)
}

func TestMuteChangedAlwaysPublishesToPeer(t *testing.T) {
	bus := newRecordingBus()
	coordinator := NewCoordinator(bus, new(mocks.ReadStateRepositoryMock), new(mocks.DispatcherMock))

	coordinator.MuteChanged(context.Background(), testConv, 1, true)

	require.Len(t, bus.published, 1)
	assert.Equal(t, 2, bus.published[0].UserID)
	assert.Equal(t, models.EventChatMute, bus.published[0].Event.Type)
	require.NotNil(t, bus.published[0].Event.Mute)
	assert.True(t, bus.published[0].Event.Mute.Muted)
}
