package config

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// changeSubject carries live configuration updates.
const changeSubject = "config.changed"

// ChangeMessage represents a configuration change received over NATS.
type ChangeMessage struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Scope     string          `json:"scope"`
	UpdatedBy string          `json:"updated_by"`
	Timestamp int64           `json:"timestamp"`
}

// Manager holds the live configuration and applies updates from the
// config.changed subject. Only the batch and threshold tunables are
// live-updatable; path and address settings stay fixed for the process
// lifetime.
type Manager struct {
	nats   *nats.Conn
	logger *slog.Logger

	mu          sync.RWMutex
	current     Config
	subscribers []func(Config)

	sub *nats.Subscription
}

// NewManager wraps the startup snapshot with live-update handling.
func NewManager(conn *nats.Conn, logger *slog.Logger, initial Config) *Manager {
	return &Manager{
		nats:    conn,
		logger:  logger,
		current: initial,
	}
}

// Start subscribes to config.changed.
func (m *Manager) Start() error {
	sub, err := m.nats.Subscribe(changeSubject, func(msg *nats.Msg) {
		m.handleChange(msg.Data)
	})
	if err != nil {
		return err
	}
	m.sub = sub
	m.logger.Info("Subscribed to config changes", "subject", changeSubject)
	return nil
}

// Stop drains the subscription.
func (m *Manager) Stop() {
	if m.sub != nil {
		if err := m.sub.Drain(); err != nil {
			m.logger.Warn("Failed to drain config subscription", "error", err)
		}
	}
}

// Current returns a copy of the live configuration.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers a callback invoked with the new snapshot after every
// applied change.
func (m *Manager) Subscribe(callback func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, callback)
}

func (m *Manager) handleChange(data []byte) {
	var change ChangeMessage
	if err := json.Unmarshal(data, &change); err != nil {
		m.logger.Error("Failed to unmarshal config change", "error", err)
		return
	}

	m.mu.Lock()
	updated := m.current
	applied := applyChange(&updated, &change)
	if applied {
		m.current = updated
	}
	m.mu.Unlock()

	if !applied {
		m.logger.Debug("Ignoring config change", "key", change.Key)
		return
	}

	m.logger.Info("Configuration updated live",
		"key", change.Key,
		"updated_by", change.UpdatedBy,
		"unusual_port_threshold", updated.UnusualPortThreshold,
		"batch_size", updated.BatchSize,
		"batch_interval", updated.BatchInterval,
		"max_reports", updated.MaxReports)

	m.notifySubscribers(updated)
}

// applyChange mutates the snapshot for a known key and reports whether it was
// applied. Values arrive either JSON-encoded or as bare strings; all live
// tunables are positive integers.
func applyChange(cfg *Config, change *ChangeMessage) bool {
	intValue, ok := decodeInt(change.Value)
	if !ok || intValue <= 0 {
		return false
	}

	switch change.Key {
	case "analyzer.unusual_port_threshold":
		cfg.UnusualPortThreshold = intValue
	case "analyzer.batch_size":
		cfg.BatchSize = intValue
	case "analyzer.batch_interval_seconds":
		cfg.BatchInterval = time.Duration(intValue) * time.Second
	case "analyzer.max_reports":
		cfg.MaxReports = intValue
	default:
		return false
	}
	return true
}

func decodeInt(raw json.RawMessage) (int, bool) {
	var value int
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if value, err := strconv.Atoi(str); err == nil {
			return value, true
		}
	}
	return 0, false
}

func (m *Manager) notifySubscribers(cfg Config) {
	m.mu.RLock()
	subscribers := make([]func(Config), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.RUnlock()

	for _, callback := range subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("Panic in config subscriber", "panic", r)
				}
			}()
			callback(cfg)
		}()
	}
}
