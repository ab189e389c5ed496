package db

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

const (
	ModePostgres       = "postgres"
	ModeMemoryFallback = "memory-fallback"
)

// Status tracks whether the relational store is usable. Services consult it
// before every store call and flip it down when a call fails at the
// connection level.
type Status struct {
	mu        sync.RWMutex
	db        *gorm.DB
	connected bool
	lastErr   string
}

// NewStatus returns a tracker for db. A nil db means the process runs on the
// in-memory store only.
func NewStatus(db *gorm.DB, startErr error) *Status {
	s := &Status{db: db, connected: db != nil && startErr == nil}
	if startErr != nil {
		s.lastErr = startErr.Error()
	}
	return s
}

func (s *Status) Connected() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Status) Mode() string {
	if s.Connected() {
		return ModePostgres
	}
	return ModeMemoryFallback
}

// LastError is the most recent connection failure, empty when none.
func (s *Status) LastError() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Status) MarkDown(err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if err != nil {
		s.lastErr = err.Error()
	}
}

// Observe marks the store down when err is a connection-level failure and
// reports whether it did.
func (s *Status) Observe(err error) bool {
	if !IsUnavailable(err) {
		return false
	}
	s.MarkDown(err)
	return true
}

// Check pings a configured database and restores the connected flag when it
// answers again.
func (s *Status) Check(ctx context.Context) bool {
	if s == nil || s.db == nil {
		return false
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		s.MarkDown(err)
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		s.MarkDown(err)
		return false
	}
	s.mu.Lock()
	s.connected = true
	s.lastErr = ""
	s.mu.Unlock()
	return true
}
