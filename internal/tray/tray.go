// Package tray provides a system tray menu for a running AirCanvas session.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/aircanvas/internal/server"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	enabled  bool
	gesture  string
	colour   string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuGesture *systray.MenuItem
	menuColour  *systray.MenuItem
}

// New creates a new Tray instance with gesture input enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback run when gesture input is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnViewer sets the callback run when the stream viewer item is clicked.
// The item is only shown when a callback is set before Run.
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback run when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit is called and must run on the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("AirCanvas")
	systray.SetTooltip("AirCanvas gesture drawing")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume gesture input")
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem(gestureTitle(t.gesture), "Current gesture")
	t.menuGesture.Disable()
	t.menuColour = systray.AddMenuItem(colourTitle(t.colour), "Current colour")
	t.menuColour.Disable()
	systray.AddSeparator()

	var viewerCh chan struct{}
	if t.onViewer != nil {
		viewerCh = systray.AddMenuItem("Open Viewer...", "Open the stream in a browser").ClickedCh
		systray.AddSeparator()
	}
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "End the session")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-viewerCh:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// PublishState mirrors the session gesture and colour into the menu. Menu
// titles are only rewritten when they change.
func (t *Tray) PublishState(s server.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	gesture := s.Gesture
	if !s.HandPresent {
		gesture = ""
	}
	if gesture != t.gesture {
		t.gesture = gesture
		if t.menuGesture != nil {
			t.menuGesture.SetTitle(gestureTitle(gesture))
		}
	}
	if s.Colour != t.colour {
		t.colour = s.Colour
		if t.menuColour != nil {
			t.menuColour.SetTitle(colourTitle(s.Colour))
		}
	}
}

// IsEnabled returns whether gesture input is enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Gesture returns the gesture shown in the menu.
func (t *Tray) Gesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gesture
}

// Colour returns the colour shown in the menu.
func (t *Tray) Colour() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.colour
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Gestures On"
	}
	return "○ Gestures Paused"
}

func gestureTitle(name string) string {
	if name == "" {
		return "Gesture: none"
	}
	return "Gesture: " + name
}

func colourTitle(name string) string {
	if name == "" {
		return "Colour: none"
	}
	return "Colour: " + name
}
