// Package voice connects an asynchronous speech transcriber to the frame loop
// through a single-slot handoff.
package voice

import (
	"sync"
	"time"
)

// Slot is a single-slot mailbox holding at most one pending transcript.
//
// Publish overwrites any unconsumed value and counts the overwrite. Take reads
// and clears the slot under the same lock, so a value is delivered at most
// once and a publish racing a take lands either in this frame or the next.
type Slot struct {
	mu      sync.Mutex
	text    string
	pending bool

	published     uint64
	overwritten   uint64
	taken         uint64
	lastPublished time.Time
}

// SlotStats is a point-in-time view of the slot counters.
type SlotStats struct {
	Published     uint64
	Overwritten   uint64
	Taken         uint64
	Pending       bool
	LastPublished time.Time
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish stores text, replacing any pending value. Empty text is ignored.
func (s *Slot) Publish(text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		s.overwritten++
	}
	s.text = text
	s.pending = true
	s.published++
	s.lastPublished = time.Now()
}

// Take returns the pending transcript and empties the slot.
func (s *Slot) Take() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return "", false
	}
	text := s.text
	s.text = ""
	s.pending = false
	s.taken++
	return text, true
}

// Stats returns the slot counters.
func (s *Slot) Stats() SlotStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SlotStats{
		Published:     s.published,
		Overwritten:   s.overwritten,
		Taken:         s.taken,
		Pending:       s.pending,
		LastPublished: s.lastPublished,
	}
}
