// Package audit publishes administrative-action events to a message
// broker. Publishing is best-effort: a broker failure is logged and
// never fails the originating request.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/userpanel/adminserver/config"
	"github.com/userpanel/adminserver/internal/logging"
)

// Channel is the broker channel carrying audit events.
const Channel = "admin-audit"

// Event records one administrative action.
type Event struct {
	ID     string    `json:"id"`
	Action string    `json:"action"`
	Actor  string    `json:"actor"`
	Target string    `json:"target,omitempty"`
	At     time.Time `json:"at"`
}

// Message represents a broker-agnostic payload delivered to
// subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the recorder
// and the tail command.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Open constructs the backend selected by config, or nil when auditing
// is disabled.
func Open(ctx context.Context, cfg config.AuditConfig) (Backend, error) {
	switch cfg.Backend {
	case config.AuditBackendNone:
		return nil, nil
	case config.AuditBackendRabbitMQ:
		return NewRabbitMQBackend(cfg.RabbitMQ)
	case config.AuditBackendPubSub:
		return NewPubSubBackend(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

// Recorder serializes events and hands them to the backend. A nil
// backend disables recording.
type Recorder struct {
	backend Backend
	log     logging.Logger
}

func NewRecorder(backend Backend, log logging.Logger) *Recorder {
	return &Recorder{backend: backend, log: log}
}

// Record publishes one event. Failures are logged, not returned.
func (r *Recorder) Record(ctx context.Context, action, actor, target string) {
	if r.backend == nil {
		return
	}

	event := Event{
		ID:     uuid.NewString(),
		Action: action,
		Actor:  actor,
		Target: target,
		At:     time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		r.log.Error(ctx, "failed to encode audit event", "action", action, "error", err)
		return
	}

	attrs := map[string]string{"action": action}
	if _, err := r.backend.Publish(ctx, Channel, data, attrs); err != nil {
		r.log.Error(ctx, "failed to publish audit event", "action", action, "error", err)
	}
}

// Close releases the backend, if any.
func (r *Recorder) Close() error {
	if r.backend == nil {
		return nil
	}
	return r.backend.Close()
}
