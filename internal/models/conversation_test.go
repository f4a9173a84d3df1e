package models

import "testing"

func TestConversationPeerOf(t *testing.T) {
	conv := Conversation{ID: 5, UserA: 1, UserB: 2}

	if got := conv.PeerOf(1); got != 2 {
		t.Fatalf("expected peer 2, got %d", got)
	}
	if got := conv.PeerOf(2); got != 1 {
		t.Fatalf("expected peer 1, got %d", got)
	}
}

func TestConversationHasParticipant(t *testing.T) {
	conv := Conversation{ID: 5, UserA: 1, UserB: 2}

	if !conv.HasParticipant(1) || !conv.HasParticipant(2) {
		t.Fatalf("expected both participants to be recognized")
	}
	if conv.HasParticipant(3) {
		t.Fatalf("expected user 3 to be rejected")
	}
}
