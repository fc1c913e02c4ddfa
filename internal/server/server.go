// Package server exposes a running AirCanvas session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/aircanvas/internal/ui"
)

// ErrClosed is returned to stream readers once the broadcaster shuts down.
var ErrClosed = errors.New("broadcaster closed")

// maxVoiceBody bounds POST /api/voice payloads.
const maxVoiceBody = 4 << 10

// VoicePublisher accepts injected voice commands.
type VoicePublisher interface {
	Publish(text string)
}

// SwatchSource reports the colour selection layout.
type SwatchSource interface {
	Swatches() []ui.Swatch
	Selected() string
}

// Config holds the server configuration.
type Config struct {
	Broadcaster *Broadcaster
	Voice       VoicePublisher
	Swatches    SwatchSource
	StaticDir   string
	Logger      *log.Logger
}

// Server is the HTTP front of a session.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
	logger *log.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)

	if s.config.Broadcaster != nil {
		r.Method(http.MethodGet, "/api/stream", NewStreamHandler(s.config.Broadcaster))
		r.Method(http.MethodGet, "/api/state", NewStateHandler(s.config.Broadcaster, s.logger))
	}
	if s.config.Voice != nil {
		r.Post("/api/voice", s.handleVoice)
	}
	if s.config.Swatches != nil {
		r.Get("/api/swatches", s.handleSwatches)
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if b := s.config.Broadcaster; b != nil {
		response["viewers"] = b.Viewers()
		response["clients"] = b.Clients()
	}
	writeJSON(w, http.StatusOK, response)
}

type voiceRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVoiceBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text := strings.ToLower(strings.TrimSpace(req.Text))
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	s.config.Voice.Publish(text)
	s.logger.Debug("voice command injected", "text", text, "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"text": text})
}

type swatchResponse struct {
	Name     string   `json:"name"`
	RGB      [3]uint8 `json:"rgb"`
	Min      [2]int   `json:"min"`
	Max      [2]int   `json:"max"`
	Selected bool     `json:"selected"`
}

func (s *Server) handleSwatches(w http.ResponseWriter, r *http.Request) {
	selected := s.config.Swatches.Selected()
	swatches := s.config.Swatches.Swatches()

	resp := make([]swatchResponse, 0, len(swatches))
	for _, sw := range swatches {
		c := sw.Colour.RGBA
		resp = append(resp, swatchResponse{
			Name:     sw.Colour.Name,
			RGB:      [3]uint8{c.R, c.G, c.B},
			Min:      [2]int{sw.Rect.Min.X, sw.Rect.Min.Y},
			Max:      [2]int{sw.Rect.Max.X, sw.Rect.Max.Y},
			Selected: sw.Colour.Name == selected,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. The bound address is passed to onListen when non-nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string, onListen func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if onListen != nil {
		onListen(ln.Addr())
	}

	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if b := s.config.Broadcaster; b != nil {
			b.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
