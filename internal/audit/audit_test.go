package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/userpanel/adminserver/internal/logging"
)

type captureBackend struct {
	published []Message
	err       error
}

func (c *captureBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.published = append(c.published, Message{ID: channel, Data: data, Attributes: attrs})
	return "msg-1", nil
}

func (c *captureBackend) Subscribe(context.Context, string, Handler) error { return nil }
func (c *captureBackend) Close() error                                     { return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecorder_PublishesEvent(t *testing.T) {
	t.Parallel()

	backend := &captureBackend{}
	recorder := NewRecorder(backend, testLogger())

	recorder.Record(context.Background(), "delete_user", "admin", "bob")

	require.Len(t, backend.published, 1)
	msg := backend.published[0]
	require.Equal(t, Channel, msg.ID)
	require.Equal(t, "delete_user", msg.Attributes["action"])

	var event Event
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	require.NotEmpty(t, event.ID)
	require.Equal(t, "delete_user", event.Action)
	require.Equal(t, "admin", event.Actor)
	require.Equal(t, "bob", event.Target)
	require.False(t, event.At.IsZero())
}

func TestRecorder_BackendFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(&captureBackend{err: errors.New("broker down")}, testLogger())

	// Must not panic or propagate; the originating request succeeds.
	recorder.Record(context.Background(), "login", "admin", "")
}

func TestRecorder_Disabled(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(nil, testLogger())
	recorder.Record(context.Background(), "login", "admin", "")
	require.NoError(t, recorder.Close())
}
