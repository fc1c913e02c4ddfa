package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/mdns"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/canvas"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/config"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/display"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/server"
	"github.com/ayusman/aircanvas/internal/store"
	"github.com/ayusman/aircanvas/internal/tray"
	"github.com/ayusman/aircanvas/internal/voice"
)

const windowTitle = "AirCanvas"

// sessionRunner is the part of app.App that runSession drives.
type sessionRunner interface {
	Run(ctx context.Context) (app.ExitReason, error)
}

// runSession builds every component from cfg and runs one session.
func runSession(parent context.Context, cfg config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        1,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: cfg.Detector.MinTracking,
		Python:          cfg.Detector.Python,
		Script:          cfg.Detector.Script,
	})
	if err != nil {
		return fmt.Errorf("hand detector unavailable: %w", err)
	}

	var hold *gesture.ClearHold
	if cfg.Gesture.ClearHoldEnabled {
		hold = gesture.NewClearHold(cfg.Gesture.ClearHold, cfg.Gesture.RequireRelease)
	}
	recognizer := gesture.NewRecognizer(gesture.NewClassifier(gesture.Config{
		PinchThreshold: cfg.Gesture.PinchThreshold,
		PinchRatio:     cfg.Gesture.PinchRatio,
		SelectMaxAngle: cfg.Gesture.SelectMaxAngle,
	}), hold)

	slot := voice.NewSlot()
	var listener *voice.Listener
	if cfg.Voice.Enabled {
		transcriber := voice.NewCommandTranscriber(voice.CommandConfig{
			Path:             cfg.Voice.Helper,
			Language:         cfg.Voice.Language,
			ListenTimeout:    cfg.Voice.ListenTimeout,
			PhraseLimit:      cfg.Voice.PhraseLimit,
			RecognizeTimeout: cfg.Voice.RecognizeTimeout,
		})
		listener = voice.NewListener(transcriber, slot, voice.ListenerConfig{
			Logger: logger.WithPrefix("voice"),
		})
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			det.Close()
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer st.Close()
	}

	var (
		sinks  []app.FrameSink
		states []app.StatePublisher
	)

	// The tray owns the main thread, so it and the window are exclusive.
	var window *display.Window
	if !cfg.UI.Headless && !cfg.UI.Tray {
		window = display.NewWindow(windowTitle)
		defer window.Close()
		sinks = append(sinks, window)
	}

	var broadcaster *server.Broadcaster
	if cfg.Server.Enabled {
		broadcaster = server.NewBroadcaster()
		sinks = append(sinks, broadcaster)
		states = append(states, broadcaster)
	}

	var tr *tray.Tray
	if cfg.UI.Tray {
		tr = tray.New()
		states = append(states, tr)
	}

	if window == nil && broadcaster == nil {
		logger.Warn("no window and no server; frames are not shown anywhere")
	}

	a, err := app.New(app.Config{
		Camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.Camera.Device,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
			FPS:      cfg.Camera.FPS,
			Flip:     cfg.Camera.Flip,
		}),
		Detector:        det,
		Recognizer:      recognizer,
		Smoothing:       cfg.Gesture.Smoothing,
		MotionThreshold: cfg.Detector.MotionThreshold,
		Canvas: canvas.Config{
			PenThickness:    cfg.Canvas.PenThickness,
			EraserThickness: cfg.Canvas.EraserThickness,
			Colour:          cfg.Canvas.Colour,
		},
		Slot:     slot,
		Listener: listener,
		Sinks:    sinks,
		States:   states,
		Store:    st,
		Logger:   logger,
	})
	if err != nil {
		det.Close()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release session", "err", err)
		}
	}()

	var viewerURL string
	if broadcaster != nil {
		srv := server.New(server.Config{
			Broadcaster: broadcaster,
			Voice:       slot,
			Swatches:    a.Selection(),
			StaticDir:   findWebDir(),
			Logger:      logger.WithPrefix("http"),
		})
		bound := make(chan net.Addr, 1)
		go func() {
			err := srv.ListenAndServe(ctx, cfg.Server.Addr, func(addr net.Addr) { bound <- addr })
			if err != nil {
				logger.Error("http server stopped", "err", err)
				cancel()
			}
		}()

		select {
		case addr := <-bound:
			viewerURL = "http://" + addr.String() + "/api/stream"
			logger.Info("serving session", "addr", addr.String(), "stream", viewerURL)
			if cfg.Server.MDNS {
				if m := advertise(addr, logger); m != nil {
					defer m.Shutdown()
				}
			}
		case <-ctx.Done():
		}
	}

	if tr == nil {
		return runUntilDone(parent, ctx, a, logger)
	}

	tr.OnToggle(a.SetEnabled)
	tr.OnQuit(cancel)
	if viewerURL != "" {
		tr.OnViewer(func() { openBrowser(viewerURL, logger) })
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runUntilDone(parent, ctx, a, logger)
		tr.Quit()
	}()
	tr.Run()
	cancel()
	return <-errCh
}

// runUntilDone runs r under ctx. A session cancelled because parent was
// cancelled (a signal) reports parent's error; cancelling only ctx, as the
// tray's quit item does, is a clean exit.
func runUntilDone(parent, ctx context.Context, r sessionRunner, logger *log.Logger) error {
	reason, err := r.Run(ctx)
	if err != nil {
		return err
	}
	logger.Debug("session finished", "reason", reason)
	if reason == app.ExitCancelled && parent.Err() != nil {
		return parent.Err()
	}
	return nil
}

func advertise(addr net.Addr, logger *log.Logger) *mdns.Server {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil
	}
	m, err := server.Advertise(tcp.Port)
	if err != nil {
		logger.Warn("mDNS advertisement failed", "err", err)
		return nil
	}
	logger.Info("advertising over mDNS", "service", server.ServiceType, "port", tcp.Port)
	return m
}

func openBrowser(url string, logger *log.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("failed to open browser", "url", url, "err", err)
		return
	}
	go cmd.Wait()
}

// findWebDir searches for a static viewer directory in common locations.
// It checks "web", "../web" and ~/.aircanvas/web, returning "" if none exist.
func findWebDir() string {
	candidates := []string{"web", "../web", filepath.Join(config.Dir(), "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
