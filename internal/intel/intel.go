// Package intel holds the known-malicious source set consulted by feature
// extraction, reputation scoring, and threat-level statistics.
package intel

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultSources seeds the set with addresses flagged by prior incidents.
var defaultSources = []string{
	"192.168.1.100",
	"10.0.0.50",
	"172.16.0.10",
}

// Set is a concurrency-safe set of known-malicious source addresses. It is
// read-only during an analysis pass; additions happen between passes.
type Set struct {
	mu      sync.RWMutex
	sources map[string]struct{}
}

// NewSet returns a set populated with the default seed sources.
func NewSet() *Set {
	s := &Set{sources: make(map[string]struct{})}
	s.Add(defaultSources...)
	return s
}

// NewEmptySet returns a set with no seed entries.
func NewEmptySet() *Set {
	return &Set{sources: make(map[string]struct{})}
}

// Contains reports whether the source is known malicious.
func (s *Set) Contains(source string) bool {
	if source == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[source]
	return ok
}

// Add inserts sources into the set; empty strings are ignored.
func (s *Set) Add(sources ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, source := range sources {
		if source == "" {
			continue
		}
		s.sources[source] = struct{}{}
	}
}

// Len returns the number of tracked sources.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// intelFile is the YAML shape of an external intel file.
type intelFile struct {
	KnownMalicious []string `yaml:"known_malicious"`
}

// LoadFile merges sources from a YAML intel file into the set and returns the
// number of entries the file contributed.
func (s *Set) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read intel file %s: %w", path, err)
	}

	var file intelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse intel file %s: %w", path, err)
	}

	s.Add(file.KnownMalicious...)
	return len(file.KnownMalicious), nil
}
