package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Godevs04/TeamTaatom-sub013/internal/delivery"
	"github.com/Godevs04/TeamTaatom-sub013/internal/repositories"
	"github.com/Godevs04/TeamTaatom-sub013/internal/telemetry"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

// ChatHandler manages the direct-messaging endpoints. Every route is scoped
// by peer id; the conversation is resolved (or lazily created on first send)
// from the authenticated user and the peer.
type ChatHandler struct {
	convRepo    repositories.ConversationRepository
	messageRepo repositories.MessageRepository
	readRepo    repositories.ReadStateRepository
	coordinator *delivery.Coordinator
	emitter     *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(
	convRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	readRepo repositories.ReadStateRepository,
	coordinator *delivery.Coordinator,
	emitter *telemetry.AuditEmitter,
) *ChatHandler {
	return &ChatHandler{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		readRepo:    readRepo,
		coordinator: coordinator,
		emitter:     emitter,
	}
}

// ListChats returns the conversations of the authenticated user.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.convRepo.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChat returns conversation metadata with a peer, including both seen
// cursors so clients can render the peer's seen indicator.
func (h *ChatHandler) GetChat(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	conv, err := h.convRepo.GetConversationWithPeer(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	seenSeq, err := h.readRepo.GetSeen(c.Request.Context(), conv.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load read state"})
		return
	}
	peerSeenSeq, err := h.readRepo.GetSeen(c.Request.Context(), conv.ID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load read state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id":  conv.ID,
		"peer_id":          peerID,
		"last_message_seq": conv.LastMessageSeq,
		"last_message_at":  conv.LastMessageAt,
		"seen_seq":         seenSeq,
		"peer_seen_seq":    peerSeenSeq,
		"created_at":       conv.CreatedAt,
	})
}

// GetMessages returns messages for the conversation with the peer, filtered
// for the caller. A cursor returns messages after that sequence (reconnect
// catch-up); without one the most recent page comes back.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	afterSeq := int64(-1)
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		afterSeq = parsed
	}

	limit := defaultMessageLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > maxMessageLimit {
			parsed = maxMessageLimit
		}
		limit = parsed
	}

	conv, err := h.convRepo.GetConversationWithPeer(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), conv.ID, userID, afterSeq, limit)
	if err != nil {
		if errors.Is(err, repositories.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID, "messages": msgs})
}

// PostMessage appends a message and hands it to the delivery coordinator.
// The response reports success as soon as the message is durable; live
// delivery to the recipient is part of the same call, notification fallback
// is asynchronous and best-effort.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	var req struct {
		Body        string   `json:"body"`
		Attachments []string `json:"attachments"`
		ClientToken string   `json:"client_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Reject before the lazy create so an empty send to a new peer does not
	// leave an empty conversation behind.
	if strings.TrimSpace(req.Body) == "" && len(req.Attachments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		return
	}

	conv, err := h.convRepo.CreateOrGetConversation(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	msg, err := h.messageRepo.AppendMessage(c.Request.Context(), conv.ID, userID, req.Body, req.Attachments, req.ClientToken)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		case errors.Is(err, repositories.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		case errors.Is(err, repositories.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		}
		return
	}

	h.coordinator.MessageStored(c.Request.Context(), conv, msg)
	h.audit(c, "message_sent", conv.ID)

	c.JSON(http.StatusCreated, msg)
}

// MarkAllSeen advances the caller's seen cursor to the latest message and
// notifies the peer's live sessions.
func (h *ChatHandler) MarkAllSeen(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	conv, err := h.convRepo.GetConversationWithPeer(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	seenSeq, err := h.readRepo.MarkAllSeen(c.Request.Context(), conv.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update read state"})
		return
	}

	h.coordinator.SeenAdvanced(c.Request.Context(), conv, userID, seenSeq)
	c.JSON(http.StatusOK, gin.H{"seen_seq": seenSeq})
}

// GetMuteStatus reads the caller's mute flag for the conversation.
func (h *ChatHandler) GetMuteStatus(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	conv, err := h.convRepo.GetConversationWithPeer(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	muted, err := h.readRepo.IsMuted(c.Request.Context(), conv.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mute status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"muted": muted})
}

// ToggleMute flips the caller's mute flag and notifies the peer's sessions.
func (h *ChatHandler) ToggleMute(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	conv, err := h.convRepo.GetConversationWithPeer(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	muted, err := h.readRepo.ToggleMuted(c.Request.Context(), conv.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update mute status"})
		return
	}

	h.coordinator.MuteChanged(c.Request.Context(), conv, userID, muted)
	c.JSON(http.StatusOK, gin.H{"muted": muted})
}

// ClearChat hides the conversation history for the caller only. Messages
// stay stored and the peer's view is untouched.
func (h *ChatHandler) ClearChat(c *gin.Context) {
	userID, peerID, ok := parsePeer(c)
	if !ok {
		return
	}

	conv, err := h.convRepo.GetConversationWithPeer(c.Request.Context(), userID, peerID)
	if err != nil {
		respondConversationError(c, err)
		return
	}

	if err := h.convRepo.ClearConversation(c.Request.Context(), conv.ID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear chat"})
		return
	}

	h.audit(c, "chat_cleared", conv.ID)
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) audit(c *gin.Context, text string, conversationID int) {
	if h.emitter == nil {
		return
	}
	h.emitter.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c), conversationID)
}

func parsePeer(c *gin.Context) (int, int, bool) {
	userID := c.GetInt("userID")
	peerID, err := strconv.Atoi(c.Param("peer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
		return 0, 0, false
	}
	if peerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return 0, 0, false
	}
	return userID, peerID, true
}

func respondConversationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, repositories.ErrSelfConversation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
	case errors.Is(err, repositories.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation lookup failed"})
	}
}
