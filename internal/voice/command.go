package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Default helper timeouts.
const (
	DefaultListenTimeout    = 5 * time.Second
	DefaultPhraseLimit      = 5 * time.Second
	DefaultRecognizeTimeout = 10 * time.Second
)

// CommandConfig configures a CommandTranscriber.
type CommandConfig struct {
	// Path is the helper executable.
	Path string
	// Language is passed to the recognize phase, e.g. "en-US".
	Language string
	// ListenTimeout bounds the wait for a phrase to start.
	ListenTimeout time.Duration
	// PhraseLimit bounds the length of one phrase.
	PhraseLimit time.Duration
	// RecognizeTimeout bounds one recognize call.
	RecognizeTimeout time.Duration
}

// recognizeResponse is the JSON line printed by "helper recognize".
type recognizeResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// CommandTranscriber drives an external helper, one process per phase:
//
//	helper listen --timeout S --phrase-limit S     raw audio on stdout
//	helper recognize --language L                  audio on stdin, JSON on stdout
//
// An empty listen output means no phrase was heard. The helper owns
// microphone access and ambient-noise calibration.
type CommandTranscriber struct {
	config CommandConfig
}

// NewCommandTranscriber creates a CommandTranscriber, filling zero timeouts
// with defaults.
func NewCommandTranscriber(config CommandConfig) *CommandTranscriber {
	if config.ListenTimeout <= 0 {
		config.ListenTimeout = DefaultListenTimeout
	}
	if config.PhraseLimit <= 0 {
		config.PhraseLimit = DefaultPhraseLimit
	}
	if config.RecognizeTimeout <= 0 {
		config.RecognizeTimeout = DefaultRecognizeTimeout
	}
	if config.Language == "" {
		config.Language = "en-US"
	}
	return &CommandTranscriber{config: config}
}

// Listen runs the listen phase. A helper that times out or prints nothing
// yields ErrNoSpeech.
func (c *CommandTranscriber) Listen(ctx context.Context) (Utterance, error) {
	// the helper's own timeouts apply first, this one catches a hung helper
	budget := c.config.ListenTimeout + c.config.PhraseLimit + time.Second
	stdout, err := c.run(ctx, budget, nil,
		"listen",
		"--timeout", seconds(c.config.ListenTimeout),
		"--phrase-limit", seconds(c.config.PhraseLimit),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return Utterance{}, ErrNoSpeech
		}
		return Utterance{}, err
	}
	if len(stdout) == 0 {
		return Utterance{}, ErrNoSpeech
	}
	return Utterance{Audio: stdout}, nil
}

// Recognize runs the recognize phase with the utterance on stdin.
func (c *CommandTranscriber) Recognize(ctx context.Context, u Utterance) (string, error) {
	if len(u.Audio) == 0 {
		return "", ErrNoSpeech
	}

	stdout, err := c.run(ctx, c.config.RecognizeTimeout, u.Audio,
		"recognize", "--language", c.config.Language)
	if err != nil {
		return "", err
	}

	var resp recognizeResponse
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &resp); err != nil {
		return "", fmt.Errorf("failed to parse helper response: %w, stdout: %s", err, stdout)
	}
	if !resp.Success {
		if resp.Error == "" || resp.Error == "unintelligible" {
			return "", ErrUnintelligible
		}
		return "", fmt.Errorf("recognition failed: %s", resp.Error)
	}
	if resp.Text == "" {
		return "", ErrUnintelligible
	}
	return resp.Text, nil
}

func (c *CommandTranscriber) run(ctx context.Context, timeout time.Duration, stdin []byte, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.config.Path, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("voice helper %s timeout after %s: %w", args[0], timeout, context.DeadlineExceeded)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("voice helper %s failed: %w, stderr: %s", args[0], err, s)
		}
		return nil, fmt.Errorf("voice helper %s failed: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
