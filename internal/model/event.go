package model

import (
	"encoding/json"
	"time"
)

// Event represents one recorded interaction against a honeypot sensor. Every
// field is optional on the wire; absent fields decode to zero values and the
// pipeline degrades instead of failing.
type Event struct {
	SourceIP  string    `json:"src_ip,omitempty"`
	DstPort   int       `json:"dst_port,omitempty"`
	Protocol  string    `json:"protocol,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasTimestamp reports whether the event carried a parseable timestamp.
func (e *Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

type eventWire struct {
	SourceIP  string          `json:"src_ip"`
	DstPort   int             `json:"dst_port"`
	Protocol  string          `json:"protocol"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// UnmarshalJSON decodes an event, tolerating the timestamp shapes sensors
// actually send: RFC 3339 with or without zone, and numeric epoch seconds or
// milliseconds. Unparseable timestamps decode to the zero time.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	e.SourceIP = wire.SourceIP
	e.DstPort = wire.DstPort
	e.Protocol = wire.Protocol
	e.Message = wire.Message
	e.Timestamp = parseTimestamp(wire.Timestamp)
	return nil
}

// parseTimestamp tries string layouts first, then numeric epochs. Values above
// 1e12 are treated as milliseconds.
func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(int64(n)).UTC()
		}
		return time.Unix(int64(n), 0).UTC()
	}

	return time.Time{}
}
