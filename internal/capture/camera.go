// Package capture provides the video source: a gocv camera and a mock that
// replays prepared frames.
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings.
const (
	DefaultFPS    = 30
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var (
	// ErrCameraNotOpen is returned when reading from a closed camera.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned when the source has no more frames.
	ErrEndOfStream = errors.New("end of video stream")
)

// Camera is a video source. ReadFrame returns a Mat the caller must Close.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	// Size reports the frame size actually delivered, valid after Open.
	Size() image.Point
	FPS() int
	IsOpen() bool
}

// Config configures a gocv camera.
type Config struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
	// Flip mirrors frames horizontally so the preview behaves like a mirror.
	Flip bool
}

// DefaultConfig returns the settings for device 0.
func DefaultConfig() Config {
	return Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    DefaultFPS,
		Flip:   true,
	}
}

type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	size    image.Point
}

// NewCamera creates a Camera for a capture device. Zero fields in config
// take defaults.
func NewCamera(config Config) Camera {
	def := DefaultConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	return &cameraImpl{
		config: config,
		size:   image.Pt(config.Width, config.Height),
	}
}

// Open opens the device and requests the configured resolution and rate.
// The device may ignore the request; Size reports what it chose.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to open camera %d: %w", c.config.DeviceID, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	if w, h := int(capture.Get(gocv.VideoCaptureFrameWidth)), int(capture.Get(gocv.VideoCaptureFrameHeight)); w > 0 && h > 0 {
		c.size = image.Pt(w, h)
	}

	c.capture = capture
	c.running = true
	return nil
}

// Close releases the device.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// ReadFrame reads one frame, mirrored when configured. A failed or empty
// read is reported as ErrEndOfStream.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}

	if c.config.Flip {
		Mirror(&mat)
	}
	return &mat, nil
}

func (c *cameraImpl) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *cameraImpl) FPS() int {
	return c.config.FPS
}

func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Mirror flips m horizontally in place.
func Mirror(m *gocv.Mat) {
	if m == nil || m.Empty() {
		return
	}
	flipped := gocv.NewMat()
	gocv.Flip(*m, &flipped, 1)
	m.Close()
	*m = flipped
}
