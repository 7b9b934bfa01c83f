// Package view loads the data behind one screen: it fetches resources
// concurrently, normalizes and summarizes them, and hands the results to the
// screen only while the screen is still showing.
package view

import (
	"errors"
	"sync"
)

// ErrSessionClosed is returned when results arrive after their session ended.
var ErrSessionClosed = errors.New("view session closed")

// Session tracks whether the screen that started a load is still active.
// Results delivered after Close are discarded.
type Session struct {
	mu     sync.Mutex
	closed bool
}

// NewSession returns a live session.
func NewSession() *Session {
	return &Session{}
}

// Deliver runs fn while holding the session lock if the session is alive and
// reports whether fn ran. Close waits for an in-flight delivery to finish.
func (s *Session) Deliver(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Alive reports whether Close has not been called.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}
