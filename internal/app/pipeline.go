package app

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/canvas"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/compositor"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/dispatch"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/server"
	"github.com/ayusman/aircanvas/internal/store"
	"github.com/ayusman/aircanvas/internal/ui"
)

// Run drives the session at the camera frame rate until a frame ends it or
// ctx is cancelled. The voice listener, when configured, runs alongside and
// is stopped before Run returns.
//
// Per frame:
//  1. Read and (optionally) mirror the camera frame
//  2. Detect the primary hand, reusing the last result while the scene is still
//  3. Classify the gesture and smooth the index fingertip
//  4. Dispatch gesture then voice into the canvas and selection
//  5. Composite canvas over video, draw the overlay, hand to every sink
func (a *App) Run(ctx context.Context) (ExitReason, error) {
	if err := a.beginJournal(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if l := a.config.Listener; l != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Run(ctx)
		}()
	}

	reason := a.loop(ctx)

	cancel()
	wg.Wait()

	a.canvas.Stop()
	a.endJournal(reason)
	a.logger.Info("session ended", "reason", reason, "frames", a.frames)
	return reason, nil
}

func (a *App) loop(ctx context.Context) ExitReason {
	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ExitCancelled
		case <-ticker.C:
			if reason, done := a.step(); done {
				return reason
			}
		}
	}
}

// step processes one frame. It reports true when the session must end.
func (a *App) step() (ExitReason, bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		if errors.Is(err, capture.ErrEndOfStream) {
			return ExitEndOfStream, true
		}
		a.logger.Error("failed to read frame", "err", err)
		return ExitCameraError, true
	}
	defer frame.Close()
	a.frames++

	set := detector.LandmarkSet{}
	if a.IsEnabled() {
		set = a.detect(frame)
	}

	sym := a.recognizer.Recognize(set)
	tip, hasTip := a.tracker.Track(set, detector.IndexTip)
	if sym != a.lastGesture {
		a.logger.Debug("gesture changed", "from", a.lastGesture, "to", sym)
		a.lastGesture = sym
	}

	wasDrawing := a.canvas.Drawing()
	tool := a.canvas.Tool()
	colour := a.canvas.Colour().Name

	res := a.dispatcher.Dispatch(dispatch.Input{
		Gesture:      sym,
		Fingertip:    tip,
		HasFingertip: hasTip,
	})

	a.journalFrame(wasDrawing, tool, colour, sym, hasTip, res)
	if res.VoiceCommand != "" {
		a.lastVoice = res.VoiceCommand
	}
	if res.Exit {
		a.logger.Info("exit requested by voice", "text", res.Heard)
		return ExitVoice, true
	}

	if !a.render(*frame, sym, tip, hasTip, !set.Empty()) {
		return ExitSink, true
	}
	return "", false
}

// detect returns the primary hand in frame pixels. Detector errors are
// logged and read as no hand.
func (a *App) detect(frame *gocv.Mat) detector.LandmarkSet {
	w, h := frame.Cols(), frame.Rows()

	moving := true
	if a.motion != nil {
		moving, _ = a.motion.Detect(frame)
	}
	if !moving && a.haveLast {
		return detector.PrimaryHand(a.lastHands, w, h)
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		if !a.detectFailing {
			a.logger.Warn("hand detection failed", "err", err)
		} else {
			a.logger.Debug("hand detection failed", "err", err)
		}
		a.detectFailing = true
		a.haveLast = false
		return detector.LandmarkSet{}
	}
	if a.detectFailing {
		a.logger.Info("hand detection recovered")
		a.detectFailing = false
	}

	a.lastHands, a.haveLast = hands, true
	return detector.PrimaryHand(hands, w, h)
}

func (a *App) journalFrame(wasDrawing bool, tool canvas.Tool, colour string, sym gesture.Symbol, hasTip bool, res dispatch.Result) {
	if res.Heard != "" {
		a.record(store.EventVoice, res.Heard)
	}
	if wasDrawing && !a.canvas.Drawing() {
		a.record(store.EventStroke, tool.String())
	}
	if name := a.canvas.Colour().Name; name != colour {
		a.logger.Info("colour selected", "colour", name)
		a.record(store.EventColour, name)
	}
	if sym == gesture.Clear && hasTip {
		a.logger.Info("canvas cleared", "by", "gesture")
		a.record(store.EventClear, "gesture")
	}
	if res.VoiceAction == dispatch.ActionClear {
		a.logger.Info("canvas cleared", "by", "voice")
		a.record(store.EventClear, "voice")
	}
}

// render composites and shows one frame. It returns false when a sink asks
// to end the session.
func (a *App) render(frame gocv.Mat, sym gesture.Symbol, tip image.Point, hasTip, handPresent bool) bool {
	snapshot := a.canvas.Snapshot()
	out := compositor.Composite(frame, snapshot)
	snapshot.Close()
	defer out.Close()

	if hasTip && sym == gesture.Erase {
		ui.DrawEraserPreview(&out, tip, a.canvas.EraserThickness())
	}

	recognizing := a.config.Listener != nil && a.config.Listener.Listening()
	tool := a.canvas.Tool().String()
	a.selection.Draw(&out, ui.Overlay{
		Gesture:          sym.String(),
		Tool:             tool,
		LastVoiceCommand: a.lastVoice,
		HandPresent:      handPresent,
		Recognizing:      recognizing,
	})

	if len(a.config.States) > 0 {
		state := server.State{
			Frame:            a.frames,
			Gesture:          sym.String(),
			Tool:             tool,
			Colour:           a.canvas.Colour().Name,
			Drawing:          a.canvas.Drawing(),
			HandPresent:      handPresent,
			LastVoiceCommand: a.lastVoice,
			Recognizing:      recognizing,
		}
		for _, p := range a.config.States {
			p.PublishState(state)
		}
	}

	keep := true
	for _, sink := range a.config.Sinks {
		if !sink.Show(out) {
			keep = false
		}
	}
	return keep
}
