package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store and MarkerStore for tests and
// development runs without a database.
type MemoryStore struct {
	mu        sync.Mutex
	snap      *Snapshot
	marker    time.Time
	failSaves error
	failLoads error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetFailSaves makes Save and SaveMarker return err until cleared with
// nil. For tests exercising persistence failure paths.
func (m *MemoryStore) SetFailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaves = err
}

// SetFailLoads makes Load and LoadMarker return err until cleared with
// nil.
func (m *MemoryStore) SetFailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoads = err
}

// Load returns the stored snapshot, or ErrNoSnapshot when empty.
func (m *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoads != nil {
		return nil, m.failLoads
	}
	if m.snap == nil {
		return nil, ErrNoSnapshot
	}
	dup := *m.snap
	return &dup, nil
}

// Save replaces the stored snapshot.
func (m *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves != nil {
		return m.failSaves
	}
	dup := *snap
	m.snap = &dup
	return nil
}

// LoadMarker returns the stored marker, zero when never saved.
func (m *MemoryStore) LoadMarker(ctx context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoads != nil {
		return time.Time{}, m.failLoads
	}
	return m.marker, nil
}

// SaveMarker replaces the stored marker.
func (m *MemoryStore) SaveMarker(ctx context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves != nil {
		return m.failSaves
	}
	m.marker = at
	return nil
}
