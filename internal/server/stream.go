package server

import (
	"fmt"
	"net/http"
)

// StreamHandler serves composited frames as MJPEG.
type StreamHandler struct {
	frames *Broadcaster
}

// NewStreamHandler creates a StreamHandler reading from b.
func NewStreamHandler(b *Broadcaster) *StreamHandler {
	return &StreamHandler{frames: b}
}

// ServeHTTP streams frames until the client disconnects or the broadcaster
// closes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	release := h.frames.watch()
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var seq uint64
	for {
		data, next, err := h.frames.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
