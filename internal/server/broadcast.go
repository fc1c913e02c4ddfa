package server

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// State is the per-frame session summary pushed to websocket clients.
type State struct {
	Frame            uint64 `json:"frame"`
	Gesture          string `json:"gesture"`
	Tool             string `json:"tool"`
	Colour           string `json:"colour"`
	Drawing          bool   `json:"drawing"`
	HandPresent      bool   `json:"handPresent"`
	LastVoiceCommand string `json:"lastVoiceCommand"`
	Recognizing      bool   `json:"recognizing"`
	Timestamp        int64  `json:"timestamp"`
}

// clientQueue is the number of state messages buffered per websocket client.
const clientQueue = 8

// Broadcaster fans composited frames and session state out to HTTP clients.
// It is a frame sink for the session loop: Show never blocks on a client.
type Broadcaster struct {
	mu     sync.Mutex
	jpeg   []byte
	seq    uint64
	notify chan struct{}
	closed bool

	viewers atomic.Int32

	clientsMu sync.RWMutex
	clients   map[chan []byte]struct{}
	lastState []byte
}

// NewBroadcaster creates an idle Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		notify:  make(chan struct{}),
		clients: make(map[chan []byte]struct{}),
	}
}

// Show encodes frame as JPEG for stream viewers. Encoding is skipped while
// nobody is watching. It always returns true; remote viewers cannot end
// the session.
func (b *Broadcaster) Show(frame gocv.Mat) bool {
	if b.viewers.Load() == 0 || frame.Empty() {
		return true
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return true
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return true
	}
	b.jpeg = data
	b.seq++
	close(b.notify)
	b.notify = make(chan struct{})
	return true
}

// Next blocks until a frame newer than after is available and returns it
// with its sequence number. It returns ctx.Err() when ctx ends and
// ErrClosed after Close.
func (b *Broadcaster) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return nil, 0, ErrClosed
		}
		if b.seq > after && b.jpeg != nil {
			data, seq := b.jpeg, b.seq
			b.mu.Unlock()
			return data, seq, nil
		}
		ch := b.notify
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-ch:
		}
	}
}

// watch registers a stream viewer and returns its release func.
func (b *Broadcaster) watch() func() {
	b.viewers.Add(1)
	return func() { b.viewers.Add(-1) }
}

// Viewers returns the number of connected stream viewers.
func (b *Broadcaster) Viewers() int {
	return int(b.viewers.Load())
}

// PublishState sends s to every websocket client, dropping it for clients
// whose queue is full.
func (b *Broadcaster) PublishState(s State) {
	if s.Timestamp == 0 {
		s.Timestamp = time.Now().UnixMilli()
	}
	msg, err := json.Marshal(s)
	if err != nil {
		return
	}

	b.clientsMu.Lock()
	b.lastState = msg
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
	b.clientsMu.Unlock()
}

// subscribe registers a state client. The latest state, if any, is queued
// immediately.
func (b *Broadcaster) subscribe() (chan []byte, func()) {
	ch := make(chan []byte, clientQueue)

	b.clientsMu.Lock()
	b.clients[ch] = struct{}{}
	if b.lastState != nil {
		ch <- b.lastState
	}
	b.clientsMu.Unlock()

	return ch, func() {
		b.clientsMu.Lock()
		delete(b.clients, ch)
		b.clientsMu.Unlock()
	}
}

// Clients returns the number of websocket state clients.
func (b *Broadcaster) Clients() int {
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()
	return len(b.clients)
}

// Close wakes all stream viewers and stops accepting frames.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.notify)
	}
	return nil
}
