// Package config loads AirCanvas settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/aircanvas/internal/canvas"
)

// Config is the full session configuration. Zero values are never used
// directly: Load starts from Default and overlays the file.
type Config struct {
	Camera   Camera   `toml:"camera"`
	Detector Detector `toml:"detector"`
	Gesture  Gesture  `toml:"gesture"`
	Canvas   Canvas   `toml:"canvas"`
	Voice    Voice    `toml:"voice"`
	Server   Server   `toml:"server"`
	Store    Store    `toml:"store"`
	UI       UI       `toml:"ui"`
}

// Camera selects and sizes the video source.
type Camera struct {
	Device int  `toml:"device"`
	Width  int  `toml:"width"`
	Height int  `toml:"height"`
	FPS    int  `toml:"fps"`
	Flip   bool `toml:"flip"`
}

// Detector tunes the hand landmark service.
type Detector struct {
	// Python and Script override landmark service discovery.
	Python        string  `toml:"python"`
	Script        string  `toml:"script"`
	MinConfidence float64 `toml:"min_confidence"`
	MinTracking   float64 `toml:"min_tracking"`
	// MotionThreshold enables reuse of the last landmarks while the scene is
	// still; 0 disables.
	MotionThreshold float64 `toml:"motion_threshold"`
}

// Gesture tunes the classifier and the clear hold.
type Gesture struct {
	PinchThreshold float64 `toml:"pinch_threshold"`
	// PinchRatio, when positive, scales the pinch threshold by hand size.
	PinchRatio       float64       `toml:"pinch_ratio"`
	SelectMaxAngle   float64       `toml:"select_max_angle"`
	Smoothing        float64       `toml:"smoothing"`
	ClearHoldEnabled bool          `toml:"clear_hold_enabled"`
	ClearHold        time.Duration `toml:"clear_hold"`
	RequireRelease   bool          `toml:"require_release"`
}

// Canvas sets stroke thicknesses and the starting colour.
type Canvas struct {
	PenThickness    int    `toml:"pen_thickness"`
	EraserThickness int    `toml:"eraser_thickness"`
	Colour          string `toml:"colour"`
}

// Voice configures the speech helper and its per-phase timeouts.
type Voice struct {
	Enabled          bool          `toml:"enabled"`
	Helper           string        `toml:"helper"`
	Language         string        `toml:"language"`
	ListenTimeout    time.Duration `toml:"listen_timeout"`
	PhraseLimit      time.Duration `toml:"phrase_limit"`
	RecognizeTimeout time.Duration `toml:"recognize_timeout"`
}

// Server controls the HTTP stream and state API.
type Server struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
	MDNS    bool   `toml:"mdns"`
}

// Store locates the session journal.
type Store struct {
	// Path is the sqlite journal; empty disables journaling.
	Path string `toml:"path"`
}

// UI chooses where frames are shown.
type UI struct {
	Headless bool `toml:"headless"`
	Tray     bool `toml:"tray"`
}

// Dir returns the per-user data directory, ~/.aircanvas.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aircanvas"
	}
	return filepath.Join(home, ".aircanvas")
}

// DefaultPath is where main looks for a config file when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Camera: Camera{
			Width:  1280,
			Height: 720,
			FPS:    30,
			Flip:   true,
		},
		Detector: Detector{
			MinConfidence: 0.7,
			MinTracking:   0.5,
		},
		Gesture: Gesture{
			PinchThreshold: 75,
			SelectMaxAngle: 30,
			Smoothing:      0.5,
			ClearHold:      3 * time.Second,
		},
		Canvas: Canvas{
			PenThickness:    canvas.DefaultPenThickness,
			EraserThickness: canvas.DefaultEraserThickness,
			Colour:          canvas.Red,
		},
		Voice: Voice{
			Enabled:          true,
			Helper:           "aircanvas-voice",
			Language:         "en-US",
			ListenTimeout:    5 * time.Second,
			PhraseLimit:      5 * time.Second,
			RecognizeTimeout: 10 * time.Second,
		},
		Server: Server{
			Addr: "127.0.0.1:8765",
		},
		Store: Store{
			Path: filepath.Join(Dir(), "aircanvas.db"),
		},
	}
}

// Load reads path over the defaults and validates the result. Unknown keys
// are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field rules.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Camera.Device >= 0, "camera.device must not be negative")
	check(c.Camera.Width > 0 && c.Camera.Height > 0, "camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	check(c.Camera.FPS > 0 && c.Camera.FPS <= 120, "camera.fps must be in 1..120, got %d", c.Camera.FPS)

	check(c.Detector.MinConfidence >= 0 && c.Detector.MinConfidence <= 1, "detector.min_confidence must be in 0..1")
	check(c.Detector.MinTracking >= 0 && c.Detector.MinTracking <= 1, "detector.min_tracking must be in 0..1")
	check(c.Detector.MotionThreshold >= 0 && c.Detector.MotionThreshold <= 100, "detector.motion_threshold must be a percentage")

	check(c.Gesture.PinchThreshold > 0, "gesture.pinch_threshold must be positive")
	check(c.Gesture.PinchRatio >= 0 && c.Gesture.PinchRatio < 1, "gesture.pinch_ratio must be in 0..1")
	check(c.Gesture.SelectMaxAngle > 0 && c.Gesture.SelectMaxAngle <= 90, "gesture.select_max_angle must be in (0, 90]")
	check(c.Gesture.Smoothing > 0 && c.Gesture.Smoothing <= 1, "gesture.smoothing must be in (0, 1]")
	check(!c.Gesture.ClearHoldEnabled || c.Gesture.ClearHold > 0, "gesture.clear_hold must be positive when enabled")

	check(c.Canvas.PenThickness > 0, "canvas.pen_thickness must be positive")
	check(c.Canvas.EraserThickness > 0, "canvas.eraser_thickness must be positive")
	_, known := canvas.DefaultPalette().Lookup(c.Canvas.Colour)
	check(known, "canvas.colour %q is not in the palette", c.Canvas.Colour)

	check(!c.Voice.Enabled || c.Voice.Helper != "", "voice.helper is required when voice is enabled")
	check(c.Voice.ListenTimeout >= 0 && c.Voice.PhraseLimit >= 0 && c.Voice.RecognizeTimeout >= 0, "voice timeouts must not be negative")

	check(!c.Server.Enabled || c.Server.Addr != "", "server.addr is required when the server is enabled")
	check(!c.Server.MDNS || c.Server.Enabled, "server.mdns requires server.enabled")

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
