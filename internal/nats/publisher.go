package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// Connection settings for the report publisher.
const (
	ConnectTimeout    = 10 * time.Second
	ReconnectInterval = 5 * time.Second
)

// ReportPublisher publishes analysis reports to NATS on its own connection,
// reconnecting when a publish finds the connection gone.
type ReportPublisher struct {
	subject string
	logger  *slog.Logger

	mu    sync.RWMutex
	conn  *nats.Conn
	ready bool

	reconnect chan struct{}
	closed    chan struct{}
}

// NewReportPublisher connects to NATS and starts the reconnect routine.
func NewReportPublisher(natsURL, subject string, logger *slog.Logger) (*ReportPublisher, error) {
	if subject == "" {
		subject = SubjectReports
	}

	p := &ReportPublisher{
		subject:   subject,
		logger:    logger,
		reconnect: make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}

	if err := p.connect(natsURL); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	go p.reconnectLoop(natsURL)

	logger.Info("Report publisher initialized", "url", natsURL, "subject", subject)
	return p, nil
}

// connect establishes the connection to NATS.
func (p *ReportPublisher) connect(natsURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
	}

	conn, err := nats.Connect(natsURL, nats.Timeout(ConnectTimeout))
	if err != nil {
		p.ready = false
		return fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
	}

	p.conn = conn
	p.ready = true

	p.logger.Info("Connected to NATS", "url", natsURL)
	return nil
}

// reconnectLoop re-establishes the connection whenever a failed publish
// nudges it.
func (p *ReportPublisher) reconnectLoop(natsURL string) {
	for {
		select {
		case <-p.closed:
			return
		case <-p.reconnect:
		}

		if p.IsReady() {
			continue
		}

		p.logger.Warn("Attempting to reconnect to NATS", "url", natsURL)
		if err := p.connect(natsURL); err != nil {
			p.logger.Error("Reconnection failed", "error", err)
			time.Sleep(ReconnectInterval)
			p.nudgeReconnect()
			continue
		}
		p.logger.Info("Successfully reconnected to NATS")
	}
}

// PublishReport publishes one report. A failed publish marks the publisher
// not ready and wakes the reconnect routine.
func (p *ReportPublisher) PublishReport(ctx context.Context, report *model.Report) error {
	p.mu.RLock()
	conn := p.conn
	ready := p.ready
	p.mu.RUnlock()

	if !ready || conn == nil {
		return fmt.Errorf("report publisher not ready")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set("x-report-id", report.ReportID)
	if report.Statistics != nil {
		msg.Header.Set("x-threat-level", report.Statistics.ThreatLevel)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish cancelled: %w", err)
	}

	if err := conn.PublishMsg(msg); err != nil {
		p.logger.Error("Failed to publish report", "report_id", report.ReportID, "error", err)
		p.markNotReady()
		return fmt.Errorf("failed to publish report: %w", err)
	}

	p.logger.Debug("Report published", "report_id", report.ReportID, "subject", p.subject)
	return nil
}

// IsReady returns the readiness status of the publisher.
func (p *ReportPublisher) IsReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready && p.conn != nil && p.conn.IsConnected()
}

// Close stops the reconnect routine and closes the connection.
func (p *ReportPublisher) Close() error {
	close(p.closed)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.ready = false

	p.logger.Info("Report publisher closed")
	return nil
}

func (p *ReportPublisher) markNotReady() {
	p.mu.Lock()
	p.ready = false
	p.mu.Unlock()

	p.nudgeReconnect()
}

func (p *ReportPublisher) nudgeReconnect() {
	select {
	case p.reconnect <- struct{}{}:
	default:
	}
}
