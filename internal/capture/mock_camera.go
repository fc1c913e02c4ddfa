package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back prepared frames for testing.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	flip    bool
	fps     int
	reads   int
	mu      sync.Mutex
	running bool
}

// NewMockCamera replays frames in order, from the start again when loop is
// set, otherwise ending with ErrEndOfStream.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// WithFlip mirrors frames on read, like a configured device.
func (c *MockCamera) WithFlip(flip bool) *MockCamera {
	c.flip = flip
	return c
}

// WithFPS sets the reported frame rate.
func (c *MockCamera) WithFPS(fps int) *MockCamera {
	if fps > 0 {
		c.fps = fps
	}
	return c
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if c.index >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrEndOfStream
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	c.reads++

	if c.flip {
		Mirror(&frame)
	}
	return &frame, nil
}

// Size returns the size of the first frame.
func (c *MockCamera) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return image.Point{}
	}
	return image.Pt(c.frames[0].Cols(), c.frames[0].Rows())
}

func (c *MockCamera) FPS() int { return c.fps }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns the number of frames delivered.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// SetFrames replaces the frame sequence and rewinds.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}
