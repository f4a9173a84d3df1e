package observability

import "time"

const serviceLabel = "taatom-chat"

// EventEnvelope frames everything this service publishes to the platform
// exchange. Consumers route on event_type and filter on service, so the
// label is stamped here rather than left to each call site.
type EventEnvelope struct {
	Service   string      `json:"service"`
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	EmittedAt time.Time   `json:"emitted_at"`
	Payload   interface{} `json:"payload"`
}

// NewEnvelope builds a stamped envelope for the given event.
func NewEnvelope(eventType, eventName string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		Service:   serviceLabel,
		EventType: eventType,
		EventName: eventName,
		EmittedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// BuildHeaders carries correlation ids into the broker message so downstream
// consumers can tie session events back to the originating request.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{"x-service": serviceLabel}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
