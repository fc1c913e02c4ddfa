// Package detector provides hand detection interfaces and landmark types for the drawing pipeline.
package detector

import (
	"image"
	"sort"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a normalized point as reported by the estimator.
// X and Y are fractions of the frame width and height.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Landmark is one keypoint in frame pixel space.
type Landmark struct {
	ID int
	X  int
	Y  int
}

// LandmarkSet maps landmark id to its pixel position.
// A set is either empty (no hand) or holds all 21 ids.
type LandmarkSet map[int]image.Point

// ToLandmarkSet converts normalized landmarks to pixel coordinates for a
// frame of the given size. Coordinates are truncated toward zero.
func (h *HandLandmarks) ToLandmarkSet(width, height int) LandmarkSet {
	if h == nil {
		return LandmarkSet{}
	}

	set := make(LandmarkSet, NumLandmarks)
	for i, p := range h.Points {
		set[i] = image.Point{
			X: int(p.X * float64(width)),
			Y: int(p.Y * float64(height)),
		}
	}
	return set
}

// NewLandmarkSet builds a set from an ordered landmark list.
// Entries with ids outside the hand topology are dropped.
func NewLandmarkSet(list []Landmark) LandmarkSet {
	set := make(LandmarkSet, len(list))
	for _, l := range list {
		if l.ID < 0 || l.ID >= NumLandmarks {
			continue
		}
		set[l.ID] = image.Point{X: l.X, Y: l.Y}
	}
	return set
}

// Empty reports whether the set carries no hand.
func (s LandmarkSet) Empty() bool {
	return len(s) == 0
}

// Complete reports whether every landmark of the topology is present.
func (s LandmarkSet) Complete() bool {
	if len(s) != NumLandmarks {
		return false
	}
	for i := 0; i < NumLandmarks; i++ {
		if _, ok := s[i]; !ok {
			return false
		}
	}
	return true
}

// List returns the set as a landmark list ordered by id.
func (s LandmarkSet) List() []Landmark {
	list := make([]Landmark, 0, len(s))
	for id, p := range s {
		list = append(list, Landmark{ID: id, X: p.X, Y: p.Y})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// Bounds returns the bounding rectangle of all landmarks.
// Returns the zero rectangle for an empty set.
func (s LandmarkSet) Bounds() image.Rectangle {
	first := true
	var r image.Rectangle
	for _, p := range s {
		if first {
			r = image.Rectangle{Min: p, Max: p}
			first = false
			continue
		}
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}
