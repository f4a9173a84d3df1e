package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEnvelopeStampsService(t *testing.T) {
	envelope := NewEnvelope("ws_events", "ws_connect", map[string]int{"user_id": 7})

	assert.Equal(t, "taatom-chat", envelope.Service)
	assert.Equal(t, "ws_events", envelope.EventType)
	assert.Equal(t, "ws_connect", envelope.EventName)
	assert.False(t, envelope.EmittedAt.IsZero())
}

func TestBuildHeadersSkipsEmptyCorrelationIDs(t *testing.T) {
	headers := BuildHeaders("req-1", "")

	assert.Equal(t, "taatom-chat", headers["x-service"])
	assert.Equal(t, "req-1", headers["x-request-id"])
	_, ok := headers["trace_id"]
	assert.False(t, ok)
}
