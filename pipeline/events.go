// Package pipeline orchestrates harvest runs: reading a source catalog,
// transforming its records and publishing the results to the target
// catalog, with metrics and run events along the way.
package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event subjects emitted during a harvest run.
const (
	SubjectRunStarted      = "harvest.run.started"
	SubjectRunCompleted    = "harvest.run.completed"
	SubjectDatasetRejected = "harvest.dataset.rejected"
)

// Publisher emits harvest run events to NATS. A nil Publisher, or one
// without a connection, skips publishing so the pipeline runs unchanged
// without an event bus.
type Publisher struct {
	nc  *nats.Conn
	log *slog.Logger
}

// NewPublisher wraps a NATS connection. conn may be nil.
func NewPublisher(nc *nats.Conn, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{nc: nc, log: log}
}

// Event is the envelope for every harvest event.
type Event struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Detail    any       `json:"detail,omitempty"`
}

// Publish emits one event. Skipped silently without a connection.
func (p *Publisher) Publish(subject string, event Event) error {
	if p == nil || p.nc == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("event published", "subject", subject, "run_id", event.RunID)
	return nil
}
