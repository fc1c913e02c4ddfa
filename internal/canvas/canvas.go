// Package canvas holds the persistent drawing buffer and the pen/eraser
// stroke state machine.
package canvas

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// Tool is the active drawing tool.
type Tool int

const (
	// Pen paints with the selected colour.
	Pen Tool = iota
	// Eraser paints the background colour with a wide brush.
	Eraser
)

// String returns the tool name as shown in the overlay.
func (t Tool) String() string {
	if t == Eraser {
		return "ERASER"
	}
	return "PEN"
}

// Default brush widths in pixels.
const (
	DefaultPenThickness    = 15
	DefaultEraserThickness = 125
)

var background = color.RGBA{}

// Config holds canvas construction options.
type Config struct {
	Width           int
	Height          int
	PenThickness    int
	EraserThickness int
	Palette         Palette
	// Colour is the initially selected palette entry; defaults to the first.
	Colour string
}

// Canvas is a fixed-size BGR raster plus the stroke state machine.
//
// States are idle and drawing. Start enters drawing and sets the anchor;
// Extend paints a segment from the anchor and advances it; Stop returns to
// idle. Extend and Stop are no-ops while idle.
type Canvas struct {
	mu sync.Mutex

	buf    gocv.Mat
	width  int
	height int

	palette         Palette
	colour          Colour
	tool            Tool
	strokeTool      Tool
	penThickness    int
	eraserThickness int

	drawing bool
	anchor  image.Point
}

// New creates a canvas filled with the background colour.
func New(config Config) *Canvas {
	if config.PenThickness <= 0 {
		config.PenThickness = DefaultPenThickness
	}
	if config.EraserThickness <= 0 {
		config.EraserThickness = DefaultEraserThickness
	}
	if len(config.Palette) == 0 {
		config.Palette = DefaultPalette()
	}

	colour, ok := config.Palette.Lookup(config.Colour)
	if !ok {
		colour = config.Palette[0]
	}

	return &Canvas{
		buf:             blank(config.Width, config.Height),
		width:           config.Width,
		height:          config.Height,
		palette:         config.Palette,
		colour:          colour,
		tool:            Pen,
		penThickness:    config.PenThickness,
		eraserThickness: config.EraserThickness,
	}
}

func blank(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
}

// Start begins a stroke at p. The current tool is frozen for the stroke.
// Calling Start while drawing restarts the stroke at p.
func (c *Canvas) Start(p image.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drawing = true
	c.anchor = p
	c.strokeTool = c.tool
}

// Extend paints a straight segment from the anchor to p and moves the
// anchor to p. Ignored while idle.
func (c *Canvas) Extend(p image.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.drawing {
		return
	}

	col, thickness := c.colour.RGBA, c.penThickness
	if c.strokeTool == Eraser {
		col, thickness = background, c.eraserThickness
	}

	gocv.Line(&c.buf, c.anchor, p, col, thickness)
	c.anchor = p
}

// Stop ends the current stroke, if any.
func (c *Canvas) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drawing = false
	c.anchor = image.Point{}
}

// SetTool selects the tool for the next stroke.
func (c *Canvas) SetTool(t Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tool = t
}

// SetColour selects a palette colour by name. Unknown names are rejected
// and leave the selection unchanged.
func (c *Canvas) SetColour(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	colour, ok := c.palette.Lookup(name)
	if !ok {
		return false
	}
	c.colour = colour
	return true
}

// Clear resets every pixel to the background. Stroke state is untouched.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.buf
	c.buf = blank(c.width, c.height)
	old.Close()
}

// Snapshot returns a copy of the buffer. The caller must Close it.
func (c *Canvas) Snapshot() gocv.Mat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Clone()
}

// Drawing reports whether a stroke is in progress.
func (c *Canvas) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawing
}

// Anchor returns the last stroke point; false while idle.
func (c *Canvas) Anchor() (image.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anchor, c.drawing
}

// Tool returns the selected tool.
func (c *Canvas) Tool() Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tool
}

// Colour returns the selected colour.
func (c *Canvas) Colour() Colour {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.colour
}

// EraserThickness returns the eraser width, used for the preview circle.
func (c *Canvas) EraserThickness() int {
	return c.eraserThickness
}

// Size returns the buffer dimensions.
func (c *Canvas) Size() image.Point {
	return image.Pt(c.width, c.height)
}

// Close releases the buffer.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Close()
}
