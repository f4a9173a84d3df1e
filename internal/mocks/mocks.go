package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Godevs04/TeamTaatom-sub013/internal/authclient"
	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
	"github.com/Godevs04/TeamTaatom-sub013/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateOrGetConversation(ctx context.Context, userID int, peerID int) (models.Conversation, error) {
	args := m.Called(ctx, userID, peerID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, convID int) (models.Conversation, error) {
	args := m.Called(ctx, convID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversationWithPeer(ctx context.Context, userID int, peerID int) (models.Conversation, error) {
	args := m.Called(ctx, userID, peerID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, convID int, userID int) (bool, error) {
	args := m.Called(ctx, convID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) ClearConversation(ctx context.Context, convID int, userID int) error {
	args := m.Called(ctx, convID, userID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) AppendMessage(ctx context.Context, convID int, senderID int, body string, attachments []string, clientToken string) (models.Message, error) {
	args := m.Called(ctx, convID, senderID, body, attachments, clientToken)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, convID int, userID int, afterSeq int64, limit int) ([]models.Message, error) {
	args := m.Called(ctx, convID, userID, afterSeq, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type ReadStateRepositoryMock struct {
	mock.Mock
}

func (m *ReadStateRepositoryMock) MarkAllSeen(ctx context.Context, convID int, userID int) (int64, error) {
	args := m.Called(ctx, convID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReadStateRepositoryMock) GetSeen(ctx context.Context, convID int, userID int) (int64, error) {
	args := m.Called(ctx, convID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReadStateRepositoryMock) ToggleMuted(ctx context.Context, convID int, userID int) (bool, error) {
	args := m.Called(ctx, convID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ReadStateRepositoryMock) IsMuted(ctx context.Context, convID int, userID int) (bool, error) {
	args := m.Called(ctx, convID, userID)
	return args.Bool(0), args.Error(1)
}

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) ValidateToken(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReadStateRepository = (*ReadStateRepositoryMock)(nil)
var _ authclient.Validator = (*ValidatorMock)(nil)
