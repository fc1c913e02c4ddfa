package voice

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestSlot_PublishTake(t *testing.T) {
	s := NewSlot()

	if _, ok := s.Take(); ok {
		t.Fatal("new slot should be empty")
	}

	s.Publish("red")
	got, ok := s.Take()
	if !ok || got != "red" {
		t.Errorf("Take() = %q, %v; want red, true", got, ok)
	}
	if _, ok := s.Take(); ok {
		t.Error("Take should clear the slot")
	}
}

func TestSlot_OverwriteKeepsNewest(t *testing.T) {
	s := NewSlot()

	s.Publish("red")
	s.Publish("blue")
	s.Publish("clear")

	got, _ := s.Take()
	if got != "clear" {
		t.Errorf("Take() = %q, want newest value", got)
	}

	stats := s.Stats()
	if stats.Published != 3 || stats.Overwritten != 2 || stats.Taken != 1 || stats.Pending {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.LastPublished.IsZero() {
		t.Error("LastPublished not recorded")
	}
}

func TestSlot_IgnoresEmpty(t *testing.T) {
	s := NewSlot()
	s.Publish("")
	if _, ok := s.Take(); ok {
		t.Error("empty text should not be published")
	}
}

func TestSlot_ConcurrentDeliversAtMostOnce(t *testing.T) {
	s := NewSlot()
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Publish("word")
		}
	}()

	taken := 0
	for i := 0; i < n; i++ {
		if _, ok := s.Take(); ok {
			taken++
		}
	}
	wg.Wait()
	if _, ok := s.Take(); ok {
		taken++
	}

	stats := s.Stats()
	if uint64(taken) != stats.Taken {
		t.Errorf("taken %d, stats %d", taken, stats.Taken)
	}
	if stats.Taken+stats.Overwritten != n {
		t.Errorf("taken %d + overwritten %d != %d", stats.Taken, stats.Overwritten, n)
	}
}

func waitForText(t *testing.T, s *Slot) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if text, ok := s.Take(); ok {
			return text
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for transcript")
	return ""
}

func TestListener_PublishesLowerCase(t *testing.T) {
	mock := NewMockTranscriber()
	slot := NewSlot()
	l := NewListener(mock, slot, ListenerConfig{Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	mock.Say("  Blue Please ")
	if got := waitForText(t, slot); got != "blue please" {
		t.Errorf("published %q", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop on cancel")
	}
}

func TestListener_SkipsErrors(t *testing.T) {
	mock := NewMockTranscriber()
	slot := NewSlot()
	l := NewListener(mock, slot, ListenerConfig{Logger: quietLogger(), RetryDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	mock.Fail(ErrNoSpeech)
	mock.Fail(errors.New("microphone unplugged"))
	mock.Say("")
	mock.Say("green")

	if got := waitForText(t, slot); got != "green" {
		t.Errorf("published %q, want green", got)
	}
	if mock.Listens() != 4 {
		t.Errorf("Listens() = %d, want 4", mock.Listens())
	}
}

type blockingTranscriber struct {
	release chan struct{}
	entered chan struct{}
	once    sync.Once
	heard   bool
}

// Listen hears one phrase, then waits for cancellation.
func (b *blockingTranscriber) Listen(ctx context.Context) (Utterance, error) {
	if b.heard {
		<-ctx.Done()
		return Utterance{}, ctx.Err()
	}
	b.heard = true
	return Utterance{Audio: []byte("x")}, nil
}

func (b *blockingTranscriber) Recognize(ctx context.Context, u Utterance) (string, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return "exit", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestListener_ListeningFlag(t *testing.T) {
	b := &blockingTranscriber{release: make(chan struct{}), entered: make(chan struct{})}
	slot := NewSlot()
	l := NewListener(b, slot, ListenerConfig{Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if l.Listening() {
		t.Error("should not be listening before Run")
	}
	go l.Run(ctx)

	<-b.entered
	if !l.Listening() {
		t.Error("Listening() should be true during recognition")
	}
	close(b.release)

	if got := waitForText(t, slot); got != "exit" {
		t.Errorf("published %q", got)
	}
}

func writeHelper(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
	path := filepath.Join(t.TempDir(), "voice-helper.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestCommandTranscriber_RoundTrip(t *testing.T) {
	path := writeHelper(t, `case "$1" in
listen) printf 'pcm-bytes' ;;
recognize) audio=$(cat); printf '{"success":true,"text":"%s %s"}\n' "$audio" "$3" ;;
esac
`)
	c := NewCommandTranscriber(CommandConfig{Path: path})
	ctx := context.Background()

	u, err := c.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	if string(u.Audio) != "pcm-bytes" {
		t.Errorf("audio = %q", u.Audio)
	}

	text, err := c.Recognize(ctx, u)
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if text != "pcm-bytes en-US" {
		t.Errorf("text = %q", text)
	}
}

func TestCommandTranscriber_Errors(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		wantErr   error
		wantSubst string
	}{
		{
			name:    "silence",
			script:  "exit 0\n",
			wantErr: ErrNoSpeech,
		},
		{
			name:    "unintelligible",
			script:  `[ "$1" = listen ] && printf 'a' || echo '{"success":false,"error":"unintelligible"}'` + "\n",
			wantErr: ErrUnintelligible,
		},
		{
			name:      "service error",
			script:    `[ "$1" = listen ] && printf 'a' || echo '{"success":false,"error":"quota exceeded"}'` + "\n",
			wantSubst: "quota exceeded",
		},
		{
			name:      "bad json",
			script:    `[ "$1" = listen ] && printf 'a' || echo 'not json'` + "\n",
			wantSubst: "failed to parse helper response",
		},
		{
			name:      "helper failure",
			script:    "echo 'no microphone' >&2\nexit 1\n",
			wantSubst: "no microphone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCommandTranscriber(CommandConfig{Path: writeHelper(t, tt.script)})
			ctx := context.Background()

			u, err := c.Listen(ctx)
			if err == nil {
				_, err = c.Recognize(ctx, u)
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantSubst != "" && !strings.Contains(err.Error(), tt.wantSubst) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantSubst)
			}
			if tt.wantSubst != "" && IsTransient(err) {
				t.Errorf("err %v should not be transient", err)
			}
		})
	}
}

func TestCommandTranscriber_ListenTimeout(t *testing.T) {
	path := writeHelper(t, "exec sleep 10\n")
	c := NewCommandTranscriber(CommandConfig{
		Path:          path,
		ListenTimeout: 100 * time.Millisecond,
		PhraseLimit:   100 * time.Millisecond,
	})

	start := time.Now()
	_, err := c.Listen(context.Background())
	if !errors.Is(err, ErrNoSpeech) {
		t.Errorf("err = %v, want ErrNoSpeech", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("hung helper was not killed")
	}
}

func TestCommandTranscriber_EmptyUtterance(t *testing.T) {
	c := NewCommandTranscriber(CommandConfig{Path: "/nonexistent"})
	if _, err := c.Recognize(context.Background(), Utterance{}); !errors.Is(err, ErrNoSpeech) {
		t.Errorf("err = %v, want ErrNoSpeech", err)
	}
}
