package app

import (
	"context"
	"errors"
	"image"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/canvas"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/server"
	"github.com/ayusman/aircanvas/internal/store"
)

const (
	testWidth  = 640
	testHeight = 480
)

type recordingSink struct {
	shows int
	keep  bool
	last  gocv.Mat
}

func (s *recordingSink) Show(frame gocv.Mat) bool {
	if s.shows > 0 {
		s.last.Close()
	}
	s.shows++
	s.last = frame.Clone()
	return s.keep
}

type recordingStates struct {
	states []server.State
}

func (r *recordingStates) PublishState(s server.State) {
	r.states = append(r.states, s)
}

func (r *recordingStates) last() server.State {
	if len(r.states) == 0 {
		return server.State{}
	}
	return r.states[len(r.states)-1]
}

func blackFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), testHeight, testWidth, gocv.MatTypeCV8UC3)
		frames[i] = &m
		t.Cleanup(func() { m.Close() })
	}
	return frames
}

type fixture struct {
	app    *App
	det    *detector.MockDetector
	cam    *capture.MockCamera
	sink   *recordingSink
	states *recordingStates
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		det:    detector.NewMockDetector(),
		cam:    capture.NewMockCamera(blackFrames(t, 1), true).WithFPS(200),
		sink:   &recordingSink{keep: true},
		states: &recordingStates{},
	}
	cfg := Config{
		Camera:    f.cam,
		Detector:  f.det,
		Smoothing: 1,
		Sinks:     []FrameSink{f.sink},
		States:    []StatePublisher{f.states},
		Logger:    log.New(io.Discard),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.app = a
	t.Cleanup(func() {
		a.Close()
		if f.sink.shows > 0 {
			f.sink.last.Close()
		}
	})
	return f
}

// at places the index fingertip of hand on pixel (x, y).
func at(hand detector.HandLandmarks, x, y int) []detector.HandLandmarks {
	return []detector.HandLandmarks{
		hand.MoveIndexTipTo(float64(x)/testWidth, float64(y)/testHeight),
	}
}

func canvasPixel(t *testing.T, c *canvas.Canvas, p image.Point) [3]uint8 {
	t.Helper()
	snap := c.Snapshot()
	defer snap.Close()
	return matPixel(snap, p)
}

func matPixel(m gocv.Mat, p image.Point) [3]uint8 {
	v := m.GetVecbAt(p.Y, p.X)
	return [3]uint8{v[0], v[1], v[2]}
}

var bgrBlue = [3]uint8{230, 180, 40}

func mustStep(t *testing.T, a *App) {
	t.Helper()
	if reason, done := a.step(); done {
		t.Fatalf("step() ended session: %s", reason)
	}
}

func TestNew_RequiresComponents(t *testing.T) {
	cam := capture.NewMockCamera(blackFrames(t, 1), true)
	det := detector.NewMockDetector()

	if _, err := New(Config{Detector: det}); err == nil {
		t.Error("New() without camera should fail")
	}
	if _, err := New(Config{Camera: cam}); err == nil {
		t.Error("New() without detector should fail")
	}
}

func TestNew_RejectsEmptyCamera(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	_, err := New(Config{Camera: cam, Detector: detector.NewMockDetector(), Logger: log.New(io.Discard)})
	if err == nil {
		t.Fatal("New() with zero frame size should fail")
	}
	if cam.IsOpen() {
		t.Error("camera should be closed after a failed New()")
	}
}

func TestNew_CanvasMatchesCamera(t *testing.T) {
	f := newFixture(t, nil)

	if got := f.app.Canvas().Size(); got != image.Pt(testWidth, testHeight) {
		t.Errorf("canvas size = %v", got)
	}
	if got := f.app.Selection().Selected(); got != canvas.Red {
		t.Errorf("initial selection = %s, want RED", got)
	}
	if !f.cam.IsOpen() {
		t.Error("camera should be open")
	}
	if !f.app.IsEnabled() {
		t.Error("gesture input should start enabled")
	}
}

func TestApp_SelectBlueThenDraw(t *testing.T) {
	f := newFixture(t, nil)
	a := f.app

	f.det.Enqueue(at(detector.PointingLandmarks(), 560, 220))
	mustStep(t, a)

	if a.Canvas().Colour().Name != canvas.Blue || a.Selection().Selected() != canvas.Blue {
		t.Fatalf("colour %s, selection %s; want BLUE", a.Canvas().Colour().Name, a.Selection().Selected())
	}

	f.det.Enqueue(
		at(detector.PinchLandmarks(), 100, 120),
		at(detector.PinchLandmarks(), 120, 120),
	)
	mustStep(t, a)
	mustStep(t, a)

	if !a.Canvas().Drawing() {
		t.Fatal("canvas should be drawing after two pinch frames")
	}
	for _, p := range []image.Point{{100, 120}, {110, 120}, {120, 120}} {
		if got := canvasPixel(t, a.Canvas(), p); got != bgrBlue {
			t.Errorf("canvas pixel %v = %v, want blue", p, got)
		}
	}
	if got := matPixel(f.sink.last, image.Pt(110, 120)); got != bgrBlue {
		t.Errorf("composited pixel = %v, want blue", got)
	}

	st := f.states.last()
	if st.Gesture != "draw" || st.Tool != "PEN" || st.Colour != canvas.Blue || !st.Drawing || !st.HandPresent {
		t.Errorf("state = %+v", st)
	}

	// Hand leaves the frame.
	mustStep(t, a)
	if a.Canvas().Drawing() {
		t.Error("stroke should stop when the hand is lost")
	}
	if f.states.last().HandPresent {
		t.Error("state should report no hand")
	}
	if f.sink.shows != 4 || a.Frames() != 4 {
		t.Errorf("shows = %d, frames = %d; want 4", f.sink.shows, a.Frames())
	}
}

func TestApp_VoiceCommands(t *testing.T) {
	f := newFixture(t, nil)
	a := f.app

	a.Slot().Publish("green")
	mustStep(t, a)
	if a.Canvas().Colour().Name != canvas.Green {
		t.Errorf("colour = %s, want GREEN", a.Canvas().Colour().Name)
	}
	if got := f.states.last().LastVoiceCommand; got != "green" {
		t.Errorf("LastVoiceCommand = %q", got)
	}

	a.Slot().Publish("mumble")
	mustStep(t, a)
	if got := f.states.last().LastVoiceCommand; got != "green" {
		t.Errorf("unmatched text changed LastVoiceCommand to %q", got)
	}

	a.Slot().Publish("exit")
	reason, done := a.step()
	if !done || reason != ExitVoice {
		t.Errorf("step() = %q, %v; want voice exit", reason, done)
	}
	if f.sink.shows != 2 {
		t.Errorf("exit frame should not be rendered, shows = %d", f.sink.shows)
	}
}

func TestApp_SinkEndsSession(t *testing.T) {
	f := newFixture(t, nil)
	f.sink.keep = false

	reason, done := f.app.step()
	if !done || reason != ExitSink {
		t.Errorf("step() = %q, %v; want display closed", reason, done)
	}
}

func TestApp_DetectorErrorReadsAsNoHand(t *testing.T) {
	f := newFixture(t, nil)
	f.det.SetHands(at(detector.PinchLandmarks(), 200, 200))
	mustStep(t, f.app)
	if !f.app.Canvas().Drawing() {
		t.Fatal("expected a stroke to start")
	}

	f.det.SetError(errors.New("estimator crashed"))
	mustStep(t, f.app)
	mustStep(t, f.app)

	if f.app.Canvas().Drawing() {
		t.Error("detector failure should stop the stroke")
	}
	if f.states.last().HandPresent {
		t.Error("detector failure should report no hand")
	}

	f.det.SetError(nil)
	mustStep(t, f.app)
	if !f.app.Canvas().Drawing() {
		t.Error("drawing should resume once detection recovers")
	}
}

func TestApp_PausedIgnoresGestures(t *testing.T) {
	f := newFixture(t, nil)
	f.det.SetHands(at(detector.PinchLandmarks(), 200, 200))

	f.app.SetEnabled(false)
	mustStep(t, f.app)
	mustStep(t, f.app)
	if f.app.Canvas().Drawing() {
		t.Error("paused session should not draw")
	}

	f.app.Slot().Publish("yellow")
	mustStep(t, f.app)
	if f.app.Canvas().Colour().Name != canvas.Yellow {
		t.Error("voice commands should apply while paused")
	}

	f.app.SetEnabled(true)
	mustStep(t, f.app)
	if !f.app.Canvas().Drawing() {
		t.Error("drawing should resume after enabling")
	}
}

func TestApp_MotionGateReusesDetection(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.MotionThreshold = capture.DefaultMotionThreshold })

	// One detection result, then nothing queued: a still scene must reuse it.
	f.det.Enqueue(at(detector.PinchLandmarks(), 200, 200))
	mustStep(t, f.app)
	mustStep(t, f.app)
	mustStep(t, f.app)

	if !f.app.Canvas().Drawing() {
		t.Error("still scene should keep the last hand")
	}
}

func TestApp_EraserPreview(t *testing.T) {
	f := newFixture(t, nil)
	f.det.SetHands(at(detector.OpenPalmLandmarks(), 300, 300))

	mustStep(t, f.app)

	if f.app.Canvas().Tool() != canvas.Eraser {
		t.Fatalf("tool = %v, want ERASER", f.app.Canvas().Tool())
	}
	// The preview circle has radius thickness/2 around the fingertip.
	r := f.app.Canvas().EraserThickness() / 2
	edge := matPixel(f.sink.last, image.Pt(300+r, 300))
	if edge == [3]uint8{} {
		t.Error("eraser preview circle not drawn")
	}
	if got := matPixel(f.sink.last, image.Pt(300, 300)); got != [3]uint8{} {
		t.Errorf("preview should be an outline, centre = %v", got)
	}
}

func TestApp_RunEndOfStream(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	f := newFixture(t, func(c *Config) {
		c.Camera = capture.NewMockCamera(blackFrames(t, 3), false).WithFPS(200)
		c.Store = st
	})

	reason, err := f.app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reason != ExitEndOfStream {
		t.Errorf("reason = %q", reason)
	}
	if f.app.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", f.app.Frames())
	}

	sess, err := st.Sessions().GetByID(f.app.Session().ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sess.EndReason != string(ExitEndOfStream) || sess.EndedAt.IsZero() {
		t.Errorf("session = %+v", sess)
	}
	if sess.Width != testWidth || sess.Height != testHeight {
		t.Errorf("session size = %dx%d", sess.Width, sess.Height)
	}
}

func TestApp_RunCancelled(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reason, err := f.app.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if reason != ExitCancelled {
		t.Errorf("reason = %q, want cancelled", reason)
	}
	if f.sink.shows == 0 {
		t.Error("expected frames to be rendered before cancellation")
	}
}

func TestApp_Journal(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	f := newFixture(t, func(c *Config) { c.Store = st })
	a := f.app
	if err := a.beginJournal(); err != nil {
		t.Fatalf("beginJournal() error = %v", err)
	}

	f.det.Enqueue(
		at(detector.PointingLandmarks(), 560, 220),
		at(detector.PinchLandmarks(), 100, 120),
		at(detector.PinchLandmarks(), 140, 120),
	)
	mustStep(t, a)
	mustStep(t, a)
	mustStep(t, a)
	mustStep(t, a) // hand lost

	a.Slot().Publish("clear")
	mustStep(t, a)

	a.endJournal(ExitVoice)

	events, err := st.Events().ListBySession(a.Session().ID)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}

	want := []struct {
		kind   store.EventKind
		detail string
	}{
		{store.EventColour, canvas.Blue},
		{store.EventStroke, "PEN"},
		{store.EventVoice, "clear"},
		{store.EventClear, "voice"},
		{store.EventExit, string(ExitVoice)},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %+v, want %d", len(events), events, len(want))
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Detail != w.detail {
			t.Errorf("event %d = %s %q, want %s %q", i, events[i].Kind, events[i].Detail, w.kind, w.detail)
		}
	}
}
