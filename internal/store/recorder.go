package store

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// recorderQueue bounds the events waiting to be written.
const recorderQueue = 256

// Recorder writes events for one session from a background goroutine so the
// frame loop never waits on the database. When the queue is full new events
// are dropped and counted.
type Recorder struct {
	events    *EventRepository
	sessionID string
	logger    *log.Logger

	queue   chan Event
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// NewRecorder starts a recorder for sessionID.
func (s *Store) NewRecorder(sessionID string, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	r := &Recorder{
		events:    s.Events(),
		sessionID: sessionID,
		logger:    logger,
		queue:     make(chan Event, recorderQueue),
		done:      make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an event without blocking.
func (r *Recorder) Record(kind EventKind, detail string) {
	select {
	case r.queue <- Event{SessionID: r.sessionID, Kind: kind, Detail: detail}:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close flushes queued events and stops the writer. Record must not be
// called after Close.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.queue)
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		if err := r.events.Append(&e); err != nil {
			r.logger.Warn("failed to journal event", "kind", e.Kind, "err", err)
		}
	}
}
