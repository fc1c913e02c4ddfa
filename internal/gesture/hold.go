package gesture

import (
	"time"

	"github.com/ayusman/aircanvas/internal/detector"
)

// DefaultClearHold is how long the clear pose must be held.
const DefaultClearHold = 3 * time.Second

// HoldState is the state of a ClearHold timer.
type HoldState int

const (
	// NotHolding means the clear pose is not currently held.
	NotHolding HoldState = iota
	// Holding means the clear pose has been held since Since().
	Holding
)

// ClearHold tracks how long the fist-with-thumb-out pose has been held
// across frames. It is the only gesture state that spans frames.
type ClearHold struct {
	hold           time.Duration
	requireRelease bool

	state HoldState
	start time.Time
	fired bool
}

// NewClearHold creates a hold timer. A non-positive hold uses DefaultClearHold.
// With requireRelease set, the timer emits once per hold and re-arms only
// after the pose is released.
func NewClearHold(hold time.Duration, requireRelease bool) *ClearHold {
	if hold <= 0 {
		hold = DefaultClearHold
	}
	return &ClearHold{
		hold:           hold,
		requireRelease: requireRelease,
	}
}

// Update feeds one frame and reports whether Clear should be emitted.
func (h *ClearHold) Update(set detector.LandmarkSet, now time.Time) bool {
	if !set.Complete() || !IsClearPose(set) {
		h.Reset()
		return false
	}

	if h.state == NotHolding {
		h.state = Holding
		h.start = now
		h.fired = false
	}

	if now.Sub(h.start) < h.hold {
		return false
	}
	if h.requireRelease && h.fired {
		return false
	}
	h.fired = true
	return true
}

// Reset returns the timer to NotHolding.
func (h *ClearHold) Reset() {
	h.state = NotHolding
	h.start = time.Time{}
	h.fired = false
}

// State returns the current state.
func (h *ClearHold) State() HoldState {
	return h.state
}

// Since returns when the current hold started; zero when not holding.
func (h *ClearHold) Since() time.Time {
	return h.start
}

// IsClearPose reports a closed fist with only the thumb extended.
func IsClearPose(set detector.LandmarkSet) bool {
	f := Fingers(set)
	return f[Thumb] && !f[Index] && !f[Middle] && !f[Ring] && !f[Pinky]
}
