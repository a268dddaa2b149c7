// Package nats wires the analyzer into the message bus: a queue subscriber
// for event batches and raw events, a collector that windows raw events into
// batches, and a report publisher with reconnect handling.
package nats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

// Default flush settings for the raw-event collector.
const (
	DefaultMaxBatchSize  = 500
	DefaultFlushInterval = 30 * time.Second
)

// Collector accumulates single raw events and hands them off as one batch
// when the size cap is reached or the flush interval elapses. Empty windows
// are skipped rather than flushed.
type Collector struct {
	logger *slog.Logger
	flush  func([]model.Event)

	mu       sync.Mutex
	events   []model.Event
	maxSize  int
	interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
}

// NewCollector creates a collector that hands full batches to flush.
// Non-positive sizes and intervals fall back to the defaults.
func NewCollector(maxSize int, interval time.Duration, flush func([]model.Event), logger *slog.Logger) *Collector {
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Collector{
		logger:   logger,
		flush:    flush,
		maxSize:  maxSize,
		interval: interval,
	}
}

// Start begins the interval flush routine.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ticker != nil {
		return // Already started
	}

	c.ticker = time.NewTicker(c.interval)
	c.stop = make(chan struct{})
	go c.flushLoop(c.ticker, c.stop)
}

// Stop halts the interval routine and flushes whatever is still buffered.
func (c *Collector) Stop() {
	c.mu.Lock()
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	batch := c.takeLocked()
	c.mu.Unlock()

	c.dispatch(batch)
}

func (c *Collector) flushLoop(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.C:
			c.Flush()
		case <-stop:
			return
		}
	}
}

// Add buffers one event, flushing when the batch reaches the size cap.
func (c *Collector) Add(event model.Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	var batch []model.Event
	if len(c.events) >= c.maxSize {
		batch = c.takeLocked()
	}
	c.mu.Unlock()

	c.dispatch(batch)
}

// Flush hands any buffered events to the flush callback.
func (c *Collector) Flush() {
	c.mu.Lock()
	batch := c.takeLocked()
	c.mu.Unlock()

	c.dispatch(batch)
}

// Pending returns the number of buffered events.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// SetMaxSize updates the flush size cap, flushing immediately when the buffer
// already meets it. Non-positive values are ignored.
func (c *Collector) SetMaxSize(maxSize int) {
	if maxSize <= 0 {
		return
	}

	c.mu.Lock()
	c.maxSize = maxSize
	var batch []model.Event
	if len(c.events) >= c.maxSize {
		batch = c.takeLocked()
	}
	c.mu.Unlock()

	c.dispatch(batch)
}

// SetInterval updates the flush interval, resetting a running ticker.
// Non-positive values are ignored.
func (c *Collector) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	c.mu.Lock()
	c.interval = interval
	if c.ticker != nil {
		c.ticker.Reset(interval)
	}
	c.mu.Unlock()
}

func (c *Collector) takeLocked() []model.Event {
	if len(c.events) == 0 {
		return nil
	}
	batch := c.events
	c.events = nil
	return batch
}

// dispatch runs outside the lock so a slow analysis pass never blocks Add.
func (c *Collector) dispatch(batch []model.Event) {
	if len(batch) == 0 {
		return
	}
	c.logger.Debug("Flushing collected events", "count", len(batch))
	c.flush(batch)
}
