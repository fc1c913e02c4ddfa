package voice

import (
	"context"
	"sync"
)

// MockTranscriber replays queued phrases for testing. Listen blocks until a
// phrase or error is queued or ctx is done.
type MockTranscriber struct {
	mu      sync.Mutex
	queue   []mockResult
	ready   chan struct{}
	listens int
}

type mockResult struct {
	text string
	err  error
}

// NewMockTranscriber creates an empty MockTranscriber.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{ready: make(chan struct{}, 1)}
}

// Say queues phrases to be returned by successive Listen/Recognize pairs.
func (m *MockTranscriber) Say(phrases ...string) {
	m.mu.Lock()
	for _, p := range phrases {
		m.queue = append(m.queue, mockResult{text: p})
	}
	m.mu.Unlock()
	m.signal()
}

// Fail queues an error to be returned by the next Listen.
func (m *MockTranscriber) Fail(err error) {
	m.mu.Lock()
	m.queue = append(m.queue, mockResult{err: err})
	m.mu.Unlock()
	m.signal()
}

// Listens returns how many Listen calls returned a result.
func (m *MockTranscriber) Listens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listens
}

func (m *MockTranscriber) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Listen implements Transcriber.
func (m *MockTranscriber) Listen(ctx context.Context) (Utterance, error) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			r := m.queue[0]
			m.queue = m.queue[1:]
			m.listens++
			more := len(m.queue) > 0
			m.mu.Unlock()
			if more {
				m.signal()
			}
			if r.err != nil {
				return Utterance{}, r.err
			}
			return Utterance{Audio: []byte(r.text)}, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return Utterance{}, ctx.Err()
		case <-m.ready:
		}
	}
}

// Recognize implements Transcriber by echoing the queued phrase.
func (m *MockTranscriber) Recognize(ctx context.Context, u Utterance) (string, error) {
	if len(u.Audio) == 0 {
		return "", ErrUnintelligible
	}
	return string(u.Audio), nil
}
