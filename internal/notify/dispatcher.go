package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Godevs04/TeamTaatom-sub013/internal/observability"
)

// TaskPush is the queue task name consumed by the platform's push worker.
const TaskPush = "notify:push"

// Notification is the outbound contract toward the push worker.
type Notification struct {
	RecipientID int              `json:"recipient_id"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	Data        NotificationData `json:"data"`
}

// NotificationData is the deep-link payload attached to the push.
type NotificationData struct {
	ConversationID int `json:"conversation_id"`
}

// Dispatcher hands notifications off for best-effort asynchronous delivery.
// Dispatch failures never affect the durable message they announce; the queue
// retries with backoff on its side.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
	Close() error
}

// NewDispatcher builds a Redis-backed queue dispatcher, or a noop dispatcher
// when the queue is not configured.
func NewDispatcher(redisURL string) Dispatcher {
	if redisURL == "" {
		log.Printf("notify queue disabled, using noop: empty redis url")
		return noopDispatcher{reason: "empty redis url"}
	}

	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		log.Printf("notify queue disabled, using noop: %v", err)
		return noopDispatcher{reason: err.Error()}
	}

	log.Printf("notify queue connected")
	return &asynqDispatcher{client: asynq.NewClient(opt)}
}

type asynqDispatcher struct {
	client *asynq.Client
}

func (d *asynqDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskPush, payload)
	_, err = d.client.EnqueueContext(ctx, task,
		asynq.Queue("notifications"),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		observability.IncNotifyError()
		return fmt.Errorf("enqueue push: %w", err)
	}
	observability.IncNotifyDispatched()
	return nil
}

func (d *asynqDispatcher) Close() error {
	return d.client.Close()
}

type noopDispatcher struct {
	reason string
}

func (noopDispatcher) Dispatch(ctx context.Context, n Notification) error {
	log.Printf("notify noop dispatch recipient_id=%d conversation_id=%d", n.RecipientID, n.Data.ConversationID)
	return nil
}

func (noopDispatcher) Close() error {
	return nil
}

// DispatcherMode reports the dispatcher mode for logging.
func DispatcherMode(d Dispatcher) string {
	switch d.(type) {
	case *asynqDispatcher:
		return "asynq"
	case noopDispatcher, *noopDispatcher:
		return "noop"
	default:
		return "unknown"
	}
}
