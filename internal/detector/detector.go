package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	// Only the first hand drives the canvas.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Python is the interpreter for the landmark service. Empty means a
	// virtualenv next to the binary or in ~/.aircanvas, then python3.
	Python string

	// Script is the landmark service path. Empty searches the usual places.
	Script string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}

// PrimaryHand returns the landmark set of the first detected hand in pixel
// space, or an empty set when no hand was detected.
func PrimaryHand(hands []HandLandmarks, width, height int) LandmarkSet {
	if len(hands) == 0 {
		return LandmarkSet{}
	}
	return hands[0].ToLandmarkSet(width, height)
}
