// Package display shows composited frames in a desktop window.
package display

import "gocv.io/x/gocv"

// QuitKey ends the session when pressed in the window.
const QuitKey = 'q'

// Window is a frame sink backed by a HighGUI window. gocv windows must be
// driven from the goroutine that created them.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard once. It returns false when the
// quit key was pressed or the window was closed.
func (w *Window) Show(frame gocv.Mat) bool {
	if !frame.Empty() {
		w.window.IMShow(frame)
	}
	key := w.window.WaitKey(1)
	if key >= 0 && key&0xFF == QuitKey {
		return false
	}
	return w.window.IsOpen()
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
