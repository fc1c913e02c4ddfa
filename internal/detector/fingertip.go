package detector

import "image"

// DefaultSmoothing is the weight of the newest sample in the fingertip filter.
const DefaultSmoothing = 0.5

// FingertipTracker extracts a landmark position and applies simple
// exponential smoothing across frames, keyed by landmark id.
// It is used by the frame loop only and is not safe for concurrent use.
type FingertipTracker struct {
	alpha float64
	prev  map[int]image.Point
}

// NewFingertipTracker creates a tracker with the given smoothing weight.
// Values outside (0, 1] fall back to DefaultSmoothing.
func NewFingertipTracker(alpha float64) *FingertipTracker {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothing
	}
	return &FingertipTracker{
		alpha: alpha,
		prev:  make(map[int]image.Point),
	}
}

// Track returns the smoothed position of landmark id in set.
// Returns false when the set is empty or the landmark is missing; the
// previous position is kept so smoothing resumes when the hand returns.
func (t *FingertipTracker) Track(set LandmarkSet, id int) (image.Point, bool) {
	p, ok := set[id]
	if !ok {
		return image.Point{}, false
	}

	if last, seen := t.prev[id]; seen {
		p = image.Point{
			X: int(t.alpha*float64(p.X) + (1-t.alpha)*float64(last.X)),
			Y: int(t.alpha*float64(p.Y) + (1-t.alpha)*float64(last.Y)),
		}
	}

	t.prev[id] = p
	return p, true
}

// Reset forgets all previous positions.
func (t *FingertipTracker) Reset() {
	t.prev = make(map[int]image.Point)
}
