// Package storage abstracts the blob store that holds report images.
package storage

import (
	"context"
	"fmt"
	"sync"

	dErrors "civicpulse/pkg/domain-errors"
)

// Store persists binary attachments and returns a stable reference.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
}

// InMemory keeps attachments in process memory. Suitable for tests and
// single-node development setups.
type InMemory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{blobs: make(map[string][]byte)}
}

func (s *InMemory) Put(_ context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", dErrors.New(dErrors.CodeValidation, "attachment name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[name] = buf
	return fmt.Sprintf("mem://%s", name), nil
}

func (s *InMemory) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "attachment not found")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}
