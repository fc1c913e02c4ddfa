// Package app wires capture, recognition, dispatch and rendering into a
// single drawing session.
package app

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/canvas"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/dispatch"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/server"
	"github.com/ayusman/aircanvas/internal/store"
	"github.com/ayusman/aircanvas/internal/ui"
	"github.com/ayusman/aircanvas/internal/voice"
)

// ExitReason says why a session ended.
type ExitReason string

const (
	ExitVoice       ExitReason = "voice exit"
	ExitSink        ExitReason = "display closed"
	ExitEndOfStream ExitReason = "end of stream"
	ExitCameraError ExitReason = "camera error"
	ExitCancelled   ExitReason = "cancelled"
)

// FrameSink receives every composited frame. Returning false ends the
// session.
type FrameSink interface {
	Show(frame gocv.Mat) bool
}

// StatePublisher receives a summary of every frame.
type StatePublisher interface {
	PublishState(s server.State)
}

// Config holds the session components. Camera and Detector are required.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Recognizer defaults to the default classifier without the clear hold.
	Recognizer *gesture.Recognizer
	// Smoothing is the fingertip filter weight.
	Smoothing float64
	// MotionThreshold, when positive, reuses the previous detection while
	// the scene is still.
	MotionThreshold float64
	// Canvas size is taken from the camera.
	Canvas     canvas.Config
	Vocabulary dispatch.Vocabulary

	Slot     *voice.Slot
	Listener *voice.Listener

	Sinks  []FrameSink
	States []StatePublisher
	// Store, when set, journals the session.
	Store  *store.Store
	Logger *log.Logger
}

// App is one drawing session.
type App struct {
	config Config
	logger *log.Logger

	camera     capture.Camera
	detector   detector.Detector
	recognizer *gesture.Recognizer
	tracker    *detector.FingertipTracker
	motion     *capture.MotionDetector

	canvas     *canvas.Canvas
	selection  *ui.SelectionUI
	dispatcher *dispatch.Dispatcher
	slot       *voice.Slot

	enabled atomic.Bool

	// Frame loop state.
	frames        uint64
	lastHands     []detector.HandLandmarks
	haveLast      bool
	detectFailing bool
	lastGesture   gesture.Symbol
	lastVoice     string

	session *store.Session
	journal *store.Recorder
}

// New opens the camera and builds a canvas matching its frame size.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("detector is required")
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Recognizer == nil {
		config.Recognizer = gesture.NewRecognizer(gesture.NewClassifier(gesture.DefaultConfig()), nil)
	}
	if config.Slot == nil {
		config.Slot = voice.NewSlot()
	}

	if err := config.Camera.Open(); err != nil {
		return nil, fmt.Errorf("failed to open camera: %w", err)
	}
	size := config.Camera.Size()
	if size.X <= 0 || size.Y <= 0 {
		config.Camera.Close()
		return nil, fmt.Errorf("camera reported invalid frame size %dx%d", size.X, size.Y)
	}

	cc := config.Canvas
	cc.Width, cc.Height = size.X, size.Y
	if len(cc.Palette) == 0 {
		cc.Palette = canvas.DefaultPalette()
	}
	cv := canvas.New(cc)

	selection := ui.NewSelectionUI(size.X, cc.Palette)
	selection.SetSelection(cv.Colour().Name)

	a := &App{
		config:     config,
		logger:     config.Logger,
		camera:     config.Camera,
		detector:   config.Detector,
		recognizer: config.Recognizer,
		tracker:    detector.NewFingertipTracker(config.Smoothing),
		canvas:     cv,
		selection:  selection,
		slot:       config.Slot,
		dispatcher: dispatch.New(cv, selection, config.Slot, dispatch.Config{
			Vocabulary: config.Vocabulary,
			Logger:     config.Logger,
		}),
	}
	if config.MotionThreshold > 0 {
		a.motion = capture.NewMotionDetector(config.MotionThreshold)
	}
	a.enabled.Store(true)

	a.logger.Info("session ready", "width", size.X, "height", size.Y, "fps", config.Camera.FPS())
	return a, nil
}

// SetEnabled pauses or resumes gesture input. Voice commands and rendering
// continue while paused.
func (a *App) SetEnabled(enabled bool) {
	if a.enabled.Swap(enabled) != enabled {
		a.logger.Info("gesture input toggled", "enabled", enabled)
	}
}

// IsEnabled returns whether gesture input is active.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// Canvas returns the session canvas.
func (a *App) Canvas() *canvas.Canvas {
	return a.canvas
}

// Selection returns the colour selection UI.
func (a *App) Selection() *ui.SelectionUI {
	return a.selection
}

// Slot returns the voice command slot.
func (a *App) Slot() *voice.Slot {
	return a.slot
}

// Session returns the journaled session, or nil when no store is configured
// or Run has not started.
func (a *App) Session() *store.Session {
	return a.session
}

// Frames returns the number of frames processed.
func (a *App) Frames() uint64 {
	return a.frames
}

// Close releases the camera, detector and rasters.
func (a *App) Close() error {
	var errs []error
	if err := a.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing camera: %w", err))
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing detector: %w", err))
	}
	if a.motion != nil {
		a.motion.Close()
	}
	if err := a.canvas.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing canvas: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) beginJournal() error {
	if a.config.Store == nil || a.session != nil {
		return nil
	}
	size := a.canvas.Size()
	sess := &store.Session{Width: size.X, Height: size.Y}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.session = sess
	a.journal = a.config.Store.NewRecorder(sess.ID, a.logger)
	a.logger.Debug("journaling session", "id", sess.ID, "path", a.config.Store.Path())
	return nil
}

func (a *App) endJournal(reason ExitReason) {
	if a.journal == nil {
		return
	}
	a.journal.Record(store.EventExit, string(reason))
	a.journal.Close()
	if n := a.journal.Dropped(); n > 0 {
		a.logger.Warn("journal dropped events", "count", n)
	}
	a.journal = nil

	if err := a.config.Store.Sessions().End(a.session.ID, string(reason)); err != nil {
		a.logger.Warn("failed to end session", "id", a.session.ID, "err", err)
	}
}

func (a *App) record(kind store.EventKind, detail string) {
	if a.journal != nil {
		a.journal.Record(kind, detail)
	}
}
