package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-frame results. Each Detect call consumes one entry;
// once the queue is drained Detect falls back to the hands set by SetHands.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Translate returns a copy of the hand shifted by dx, dy in normalized units.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// MoveIndexTipTo returns a copy of the hand translated so that the index
// fingertip lands on (x, y) in normalized units.
func (h HandLandmarks) MoveIndexTipTo(x, y float64) HandLandmarks {
	tip := h.Points[IndexTip]
	return h.Translate(x-tip.X, y-tip.Y)
}

// curledFingers fills middle, ring and pinky with a folded pose:
// the tip sits below the PIP joint.
func curledFingers(l *HandLandmarks) {
	l.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.60}
	l.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.56}
	l.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.62}
	l.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.64}

	l.Points[RingMCP] = Point3D{X: 0.55, Y: 0.62}
	l.Points[RingPIP] = Point3D{X: 0.55, Y: 0.58}
	l.Points[RingDIP] = Point3D{X: 0.55, Y: 0.64}
	l.Points[RingTip] = Point3D{X: 0.55, Y: 0.66}

	l.Points[PinkyMCP] = Point3D{X: 0.60, Y: 0.64}
	l.Points[PinkyPIP] = Point3D{X: 0.60, Y: 0.61}
	l.Points[PinkyDIP] = Point3D{X: 0.60, Y: 0.66}
	l.Points[PinkyTip] = Point3D{X: 0.60, Y: 0.68}
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm.
// All five fingers are extended; classifies as erase.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb out to the left of the palm centre
	landmarks.Points[ThumbCMC] = Point3D{X: 0.44, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.38, Y: 0.70}
	landmarks.Points[ThumbIP] = Point3D{X: 0.33, Y: 0.65}
	landmarks.Points[ThumbTip] = Point3D{X: 0.28, Y: 0.60}

	landmarks.Points[IndexMCP] = Point3D{X: 0.45, Y: 0.60}
	landmarks.Points[IndexPIP] = Point3D{X: 0.44, Y: 0.48}
	landmarks.Points[IndexDIP] = Point3D{X: 0.44, Y: 0.40}
	landmarks.Points[IndexTip] = Point3D{X: 0.44, Y: 0.33}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.58}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.45}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.36}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	landmarks.Points[RingMCP] = Point3D{X: 0.55, Y: 0.60}
	landmarks.Points[RingPIP] = Point3D{X: 0.56, Y: 0.48}
	landmarks.Points[RingDIP] = Point3D{X: 0.56, Y: 0.40}
	landmarks.Points[RingTip] = Point3D{X: 0.56, Y: 0.34}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.60, Y: 0.62}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.61, Y: 0.53}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.62, Y: 0.47}
	landmarks.Points[PinkyTip] = Point3D{X: 0.62, Y: 0.42}

	return landmarks
}

// PointingLandmarks returns a preset with the index finger straight up and
// the other fingers folded; classifies as select.
func PointingLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb folded across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.47, Y: 0.72}
	landmarks.Points[ThumbIP] = Point3D{X: 0.50, Y: 0.69}
	landmarks.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.66}

	landmarks.Points[IndexMCP] = Point3D{X: 0.45, Y: 0.60}
	landmarks.Points[IndexPIP] = Point3D{X: 0.45, Y: 0.48}
	landmarks.Points[IndexDIP] = Point3D{X: 0.45, Y: 0.40}
	landmarks.Points[IndexTip] = Point3D{X: 0.45, Y: 0.32}

	curledFingers(&landmarks)

	return landmarks
}

// PinchLandmarks returns a preset with the thumb tip touching the index tip;
// classifies as draw.
func PinchLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.75}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.43, Y: 0.66}
	landmarks.Points[ThumbIP] = Point3D{X: 0.44, Y: 0.52}
	landmarks.Points[ThumbTip] = Point3D{X: 0.46, Y: 0.42}

	landmarks.Points[IndexMCP] = Point3D{X: 0.45, Y: 0.60}
	landmarks.Points[IndexPIP] = Point3D{X: 0.44, Y: 0.50}
	landmarks.Points[IndexDIP] = Point3D{X: 0.44, Y: 0.44}
	landmarks.Points[IndexTip] = Point3D{X: 0.45, Y: 0.40}

	curledFingers(&landmarks)

	return landmarks
}

// FistThumbOutLandmarks returns a preset with every finger folded except the
// thumb, which points away from the palm. This is the hold-to-clear pose.
func FistThumbOutLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.44, Y: 0.75}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.39, Y: 0.68}
	landmarks.Points[ThumbIP] = Point3D{X: 0.34, Y: 0.61}
	landmarks.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.55}

	landmarks.Points[IndexMCP] = Point3D{X: 0.45, Y: 0.60}
	landmarks.Points[IndexPIP] = Point3D{X: 0.45, Y: 0.56}
	landmarks.Points[IndexDIP] = Point3D{X: 0.45, Y: 0.62}
	landmarks.Points[IndexTip] = Point3D{X: 0.45, Y: 0.64}

	curledFingers(&landmarks)

	return landmarks
}
