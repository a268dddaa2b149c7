package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/metrics"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/validate"
)

// Subjects and queue group for the analyzer.
const (
	SubjectEventsBatch = "events.batch"
	SubjectEventsRaw   = "events.raw"
	SubjectReports     = "analysis.reports"
	DefaultQueue       = "analyzer"
)

// BatchFunc runs one analysis pass over a batch of events.
type BatchFunc func(events []model.Event)

// Subscriber handles NATS subscriptions for event batches and raw events.
// Batch messages trigger one pass each; raw events accumulate in the
// collector until it flushes.
type Subscriber struct {
	nc        *nats.Conn
	validator *validate.Validator
	collector *Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
	queue     string
	process   BatchFunc

	batchSub *nats.Subscription
	rawSub   *nats.Subscription
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(nc *nats.Conn, validator *validate.Validator, collector *Collector, m *metrics.Metrics, queue string, process BatchFunc, logger *slog.Logger) *Subscriber {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Subscriber{
		nc:        nc,
		validator: validator,
		collector: collector,
		metrics:   m,
		logger:    logger,
		queue:     queue,
		process:   process,
	}
}

// Subscribe starts listening on both event subjects, blocks until ctx is
// cancelled, then drains the subscriptions and stops the collector.
func (s *Subscriber) Subscribe(ctx context.Context) error {
	s.logger.Info("Subscribing to events", "queue", s.queue)

	batchSub, err := s.nc.QueueSubscribe(SubjectEventsBatch, s.queue, s.handleBatchMessage)
	if err != nil {
		s.logger.Error("Failed to subscribe to event batches", "error", err)
		return err
	}
	s.batchSub = batchSub
	s.logger.Info("Subscribed to event batches", "subject", SubjectEventsBatch, "queue", s.queue)

	rawSub, err := s.nc.QueueSubscribe(SubjectEventsRaw, s.queue, s.handleRawMessage)
	if err != nil {
		s.logger.Error("Failed to subscribe to raw events", "error", err)
		batchSub.Unsubscribe()
		return err
	}
	s.rawSub = rawSub
	s.logger.Info("Subscribed to raw events", "subject", SubjectEventsRaw, "queue", s.queue)

	s.collector.Start()

	<-ctx.Done()

	s.logger.Info("Starting graceful shutdown")
	s.drain()
	s.collector.Stop()
	s.logger.Info("Graceful shutdown completed")
	return nil
}

// handleBatchMessage runs one analysis pass for an incoming event batch.
func (s *Subscriber) handleBatchMessage(msg *nats.Msg) {
	s.logger.Debug("Received event batch", "subject", msg.Subject, "data_length", len(msg.Data))

	events, dropped, err := s.parseBatch(msg.Data)
	if err != nil {
		s.logger.Error("Failed to parse event batch", "error", err)
		s.metrics.IncrementEventsInvalid()
		return
	}
	if dropped > 0 {
		s.logger.Warn("Dropped invalid events from batch", "dropped", dropped, "kept", len(events))
	}

	// A batch message requests a pass even when every event was dropped.
	s.process(events)
}

// handleRawMessage buffers an incoming raw event in the collector.
func (s *Subscriber) handleRawMessage(msg *nats.Msg) {
	s.logger.Debug("Received raw event", "subject", msg.Subject, "data_length", len(msg.Data))

	event, err := s.parseEvent(msg.Data)
	if err != nil {
		s.logger.Warn("Dropping invalid raw event", "error", err)
		s.metrics.IncrementEventsInvalid()
		return
	}
	s.collector.Add(event)
}

// parseBatch decodes a JSON array of events, dropping the entries that fail
// validation and counting them.
func (s *Subscriber) parseBatch(data []byte) ([]model.Event, int, error) {
	var rawEvents []json.RawMessage
	if err := json.Unmarshal(data, &rawEvents); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal event batch: %w", err)
	}

	events := make([]model.Event, 0, len(rawEvents))
	dropped := 0
	for _, raw := range rawEvents {
		event, err := s.parseEvent(raw)
		if err != nil {
			s.metrics.IncrementEventsInvalid()
			dropped++
			continue
		}
		events = append(events, event)
	}
	return events, dropped, nil
}

// parseEvent validates one raw event against the schema and decodes it.
func (s *Subscriber) parseEvent(data []byte) (model.Event, error) {
	if err := s.validator.ValidateRaw(data); err != nil {
		return model.Event{}, err
	}

	var event model.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return model.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}

func (s *Subscriber) drain() {
	if s.batchSub != nil {
		if err := s.batchSub.Drain(); err != nil {
			s.logger.Error("Failed to drain batch subscription", "error", err)
		}
	}
	if s.rawSub != nil {
		if err := s.rawSub.Drain(); err != nil {
			s.logger.Error("Failed to drain raw subscription", "error", err)
		}
	}
}
