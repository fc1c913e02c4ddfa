package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants.
const (
	// motionWidth is the width frames are shrunk to before differencing.
	motionWidth = 160
	blurKernel  = 5
	// DiffThreshold is the per-pixel grey level change that counts as motion.
	DiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that counts
	// as a moving scene.
	DefaultMotionThreshold = 0.5
)

// MotionDetector reports whether a frame differs from the previous one.
// The frame loop uses it to skip pose estimation while the scene is still.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector creates a MotionDetector. threshold is a percentage of
// pixels; non-positive values take DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous call's frame and returns whether
// the changed share exceeds the threshold, plus that share in percent. The
// first frame after construction or Reset always reports motion so callers
// never reuse stale results.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	small := shrinkGray(*frame)
	if !m.primed {
		m.prev.Close()
		m.prev = small
		m.primed = true
		return true, 100
	}
	defer func() {
		m.prev.Close()
		m.prev = small
	}()

	if small.Rows() != m.prev.Rows() || small.Cols() != m.prev.Cols() {
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(small, m.prev, &diff)

	changed := gocv.NewMat()
	defer changed.Close()
	gocv.Threshold(diff, &changed, DiffThreshold, 255, gocv.ThresholdBinary)

	share := float64(gocv.CountNonZero(changed)) / float64(changed.Rows()*changed.Cols()) * 100
	return share > m.threshold, share
}

// shrinkGray returns a blurred greyscale copy at motionWidth.
func shrinkGray(frame gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	if gray.Cols() > motionWidth {
		h := gray.Rows() * motionWidth / gray.Cols()
		gocv.Resize(gray, &small, image.Pt(motionWidth, h), 0, 0, gocv.InterpolationArea)
	} else {
		gray.CopyTo(&small)
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(small, &out, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)
	return out
}

// Reset drops the reference frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
}

// Close releases the reference frame.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}
