// Package gesture maps hand landmark sets to discrete drawing gestures.
package gesture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/aircanvas/internal/detector"
)

// Symbol is the gesture recognized for a single frame.
type Symbol int

const (
	// None means no actionable gesture.
	None Symbol = iota
	// Draw is a thumb/index pinch.
	Draw
	// Erase is an open palm.
	Erase
	// Select is the index finger pointing straight up.
	Select
	// Clear is emitted only by the hold timer.
	Clear
)

// String returns the lower-case gesture name.
func (s Symbol) String() string {
	switch s {
	case Draw:
		return "draw"
	case Erase:
		return "erase"
	case Select:
		return "select"
	case Clear:
		return "clear"
	default:
		return "none"
	}
}

// Default classification thresholds. Pixel values are tied to the camera
// resolution unless Config.PinchRatio is set.
const (
	DefaultPinchThreshold = 75.0
	DefaultSelectMaxAngle = 30.0
)

// Finger positions in the extended-finger vector.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// fingerJoints lists tip, mid and base joints for the four long fingers.
var fingerJoints = [4][3]int{
	{detector.IndexTip, detector.IndexPIP, detector.IndexMCP},
	{detector.MiddleTip, detector.MiddlePIP, detector.MiddleMCP},
	{detector.RingTip, detector.RingPIP, detector.RingMCP},
	{detector.PinkyTip, detector.PinkyPIP, detector.PinkyMCP},
}

var palmJoints = []int{
	detector.Wrist,
	detector.IndexMCP,
	detector.MiddleMCP,
	detector.RingMCP,
	detector.PinkyMCP,
}

// Config holds classifier thresholds.
type Config struct {
	// PinchThreshold is the thumb-to-index distance in pixels below which
	// the hand is pinching.
	PinchThreshold float64

	// PinchRatio, when positive, replaces PinchThreshold with a fraction of
	// the hand bounding-box diagonal so the pinch test does not depend on
	// how far the hand is from the camera.
	PinchRatio float64

	// SelectMaxAngle is the largest deviation from vertical, in degrees,
	// allowed for the index finger in the select pose.
	SelectMaxAngle float64
}

// DefaultConfig returns the thresholds used by the original gesture set.
func DefaultConfig() Config {
	return Config{
		PinchThreshold: DefaultPinchThreshold,
		SelectMaxAngle: DefaultSelectMaxAngle,
	}
}

// Classifier is a stateless per-frame gesture classifier.
type Classifier struct {
	config Config
}

// NewClassifier creates a Classifier. Non-positive thresholds fall back to defaults.
func NewClassifier(config Config) *Classifier {
	if config.PinchThreshold <= 0 {
		config.PinchThreshold = DefaultPinchThreshold
	}
	if config.SelectMaxAngle <= 0 {
		config.SelectMaxAngle = DefaultSelectMaxAngle
	}
	return &Classifier{config: config}
}

// Classify returns the gesture for one landmark set.
//
// Precedence: pinch, then open palm, then pointing. Empty or incomplete
// sets classify as None.
func (c *Classifier) Classify(set detector.LandmarkSet) Symbol {
	if !set.Complete() {
		return None
	}

	fingers := Fingers(set)

	if pinchDistance(set) < c.pinchThreshold(set) {
		return Draw
	}

	if fingers[Thumb] && fingers[Index] && fingers[Middle] && fingers[Ring] && fingers[Pinky] {
		return Erase
	}

	if c.isSelect(set, fingers) {
		return Select
	}

	return None
}

func (c *Classifier) pinchThreshold(set detector.LandmarkSet) float64 {
	if c.config.PinchRatio <= 0 {
		return c.config.PinchThreshold
	}
	b := set.Bounds()
	diag := math.Hypot(float64(b.Dx()), float64(b.Dy()))
	return c.config.PinchRatio * diag
}

func (c *Classifier) isSelect(set detector.LandmarkSet, fingers [5]bool) bool {
	if !fingers[Index] || fingers[Middle] || fingers[Ring] || fingers[Pinky] {
		return false
	}

	tip := set[detector.IndexTip]
	pip := set[detector.IndexPIP]

	// Image y grows downward, so -dy points up.
	dx := float64(tip.X - pip.X)
	dy := float64(tip.Y - pip.Y)
	angle := math.Abs(math.Atan2(dx, -dy) * 180 / math.Pi)
	if angle > c.config.SelectMaxAngle {
		return false
	}

	for _, other := range []int{detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
		if tip.Y >= set[other].Y {
			return false
		}
	}
	return true
}

// Fingers returns the extended-finger vector: thumb, index, middle, ring, pinky.
//
// The thumb counts as extended when its tip is left of the palm centre
// (a mirrored right hand). A long finger is extended when tip, PIP and MCP
// are strictly stacked upward. The set must be complete.
func Fingers(set detector.LandmarkSet) [5]bool {
	var out [5]bool

	xs := make([]float64, len(palmJoints))
	for i, id := range palmJoints {
		xs[i] = float64(set[id].X)
	}
	palmX := stat.Mean(xs, nil)
	out[Thumb] = float64(set[detector.ThumbTip].X) < palmX

	for i, j := range fingerJoints {
		tip, mid, base := set[j[0]].Y, set[j[1]].Y, set[j[2]].Y
		out[i+1] = tip < mid && mid < base
	}

	return out
}

// pinchDistance is the Euclidean distance between thumb tip and index tip.
func pinchDistance(set detector.LandmarkSet) float64 {
	thumb := set[detector.ThumbTip]
	index := set[detector.IndexTip]
	return floats.Distance(
		[]float64{float64(thumb.X), float64(thumb.Y)},
		[]float64{float64(index.X), float64(index.Y)},
		2,
	)
}
