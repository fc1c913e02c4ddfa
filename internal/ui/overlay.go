package ui

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	white       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	previewBlue = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// Overlay is the per-frame informational text drawn over the video.
type Overlay struct {
	Gesture          string
	Tool             string
	LastVoiceCommand string
	// HandPresent gates the gesture and tool lines.
	HandPresent bool
	Recognizing bool
}

// Draw renders the swatches, the selection outline, the current colour
// indicator and the overlay text onto frame.
func (u *SelectionUI) Draw(frame *gocv.Mat, o Overlay) {
	if frame == nil || frame.Empty() {
		return
	}
	selected := u.Selected()

	for _, s := range u.swatches {
		gocv.Rectangle(frame, s.Rect, s.Colour.RGBA, -1)
	}

	if s, ok := u.swatch(selected); ok {
		gocv.Rectangle(frame, s.Rect.Inset(-3), white, 2)
	}

	indicator := image.Rect(10, 10, 50, 50)
	if c, ok := u.palette.Lookup(selected); ok {
		gocv.Rectangle(frame, indicator, c.RGBA, -1)
	}
	gocv.Rectangle(frame, indicator, white, 2)

	last := o.LastVoiceCommand
	if last == "" {
		last = "none"
	}
	putText(frame, "Last audio command: "+last, image.Pt(60, 40), 1.0)

	rows := frame.Rows()
	if o.Recognizing {
		putText(frame, "Recognizing...", image.Pt(frame.Cols()/2-15, rows/2), 1.0)
	}
	if o.HandPresent {
		putText(frame, "Gesture: "+o.Gesture, image.Pt(10, rows-60), 0.6)
		putText(frame, "Tool: "+o.Tool, image.Pt(10, rows-30), 0.6)
	}
}

// DrawEraserPreview outlines the eraser footprint around the fingertip.
func DrawEraserPreview(frame *gocv.Mat, center image.Point, thickness int) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Circle(frame, center, thickness/2, previewBlue, 2)
}

func putText(frame *gocv.Mat, text string, org image.Point, scale float64) {
	gocv.PutText(frame, text, org, gocv.FontHersheySimplex, scale, white, 2)
}
