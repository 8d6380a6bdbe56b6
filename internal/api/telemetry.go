package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Telemetry posts fire-and-forget usage events. Failures are swallowed and
// never reach the user; at most they show up at debug level.
type Telemetry struct {
	client  *Client
	enabled bool
	log     *slog.Logger
	// sent signals event completion so tests can wait deterministically.
	sent chan struct{}
}

// NewTelemetry creates a reporter on top of an existing Client. A disabled
// reporter drops every event locally.
func NewTelemetry(client *Client, enabled bool, logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Telemetry{
		client:  client,
		enabled: enabled,
		log:     logger.With("component", "telemetry"),
	}
}

type telemetryEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Scope      string    `json:"scope,omitempty"`
}

// ComposerOpened records that the delegation composer was opened.
func (t *Telemetry) ComposerOpened(ctx context.Context) {
	t.post("/telemetry/composer-open", telemetryEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	})
}

// DelegationCreated records a confirmed delegation creation.
func (t *Telemetry) DelegationCreated(ctx context.Context, scope string) {
	t.post("/telemetry/delegation-created", telemetryEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Scope:      scope,
	})
}

func (t *Telemetry) post(path string, event telemetryEvent) {
	if !t.enabled || t.client == nil {
		return
	}
	go func() {
		// Detached from the caller's context: abandoning a view must not
		// cancel an event already handed off.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := t.client.do(ctx, http.MethodPost, path, nil, event, nil); err != nil {
			t.log.Debug("telemetry event dropped", "path", path, "error", err)
		}
		if t.sent != nil {
			t.sent <- struct{}{}
		}
	}()
}
