package voice

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultRetryDelay is the pause after a non-transient transcriber error.
const DefaultRetryDelay = time.Second

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	Logger     *log.Logger
	RetryDelay time.Duration
}

// Listener runs the listen/recognize cycle in its own goroutine and publishes
// lower-cased transcripts into a Slot. It never blocks the frame loop.
type Listener struct {
	transcriber Transcriber
	slot        *Slot
	logger      *log.Logger
	retryDelay  time.Duration

	listening atomic.Bool
}

// NewListener creates a Listener feeding slot.
func NewListener(t Transcriber, slot *Slot, config ListenerConfig) *Listener {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	return &Listener{
		transcriber: t,
		slot:        slot,
		logger:      config.Logger,
		retryDelay:  config.RetryDelay,
	}
}

// Listening reports whether a captured phrase is being transcribed.
func (l *Listener) Listening() bool {
	return l.listening.Load()
}

// Run loops until ctx is done. Recognition errors are logged and skipped.
func (l *Listener) Run(ctx context.Context) {
	l.logger.Debug("voice listener started")
	defer l.logger.Debug("voice listener stopped")

	for ctx.Err() == nil {
		u, err := l.transcriber.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.miss("listen", err)
			if !IsTransient(err) && !l.sleep(ctx) {
				return
			}
			continue
		}

		l.listening.Store(true)
		text, err := l.transcriber.Recognize(ctx, u)
		l.listening.Store(false)

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.miss("recognize", err)
			if !IsTransient(err) && !l.sleep(ctx) {
				return
			}
			continue
		}

		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			continue
		}
		l.logger.Info("voice command heard", "text", text)
		l.slot.Publish(text)
	}
}

func (l *Listener) miss(phase string, err error) {
	if IsTransient(err) {
		l.logger.Debug("voice "+phase, "result", err)
		return
	}
	l.logger.Warn("voice "+phase+" failed", "err", err)
}

func (l *Listener) sleep(ctx context.Context) bool {
	t := time.NewTimer(l.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
