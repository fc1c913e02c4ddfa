package ui

import (
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/canvas"
)

func TestNewSelectionUI_Layout(t *testing.T) {
	u := NewSelectionUI(640, canvas.DefaultPalette())

	want := []struct {
		name string
		rect image.Rectangle
	}{
		{canvas.Red, image.Rect(500, 20, 620, 140)},
		{canvas.Blue, image.Rect(500, 160, 620, 280)},
		{canvas.Green, image.Rect(500, 300, 620, 420)},
		{canvas.Yellow, image.Rect(500, 440, 620, 560)},
		{canvas.White, image.Rect(500, 580, 620, 700)},
	}

	swatches := u.Swatches()
	if len(swatches) != len(want) {
		t.Fatalf("got %d swatches, want %d", len(swatches), len(want))
	}
	for i, w := range want {
		if swatches[i].Colour.Name != w.name || swatches[i].Rect != w.rect {
			t.Errorf("swatch %d = %s %v, want %s %v", i, swatches[i].Colour.Name, swatches[i].Rect, w.name, w.rect)
		}
	}

	for i := range swatches {
		for j := i + 1; j < len(swatches); j++ {
			if swatches[i].Rect.Overlaps(swatches[j].Rect) {
				t.Errorf("swatches %d and %d overlap", i, j)
			}
		}
	}

	if u.Selected() != canvas.Red {
		t.Errorf("Selected() = %s, want RED", u.Selected())
	}
}

func TestSelectionUI_HitTest(t *testing.T) {
	u := NewSelectionUI(640, canvas.DefaultPalette())

	tests := []struct {
		name   string
		point  image.Point
		want   string
		wantOK bool
	}{
		{name: "inside red", point: image.Pt(560, 80), want: canvas.Red, wantOK: true},
		{name: "inside blue", point: image.Pt(560, 220), want: canvas.Blue, wantOK: true},
		{name: "top left corner inclusive", point: image.Pt(500, 160), want: canvas.Blue, wantOK: true},
		{name: "bottom right corner inclusive", point: image.Pt(620, 280), want: canvas.Blue, wantOK: true},
		{name: "gap between swatches", point: image.Pt(560, 150), wantOK: false},
		{name: "left of column", point: image.Pt(499, 80), wantOK: false},
		{name: "canvas centre", point: image.Pt(320, 240), wantOK: false},
		{name: "negative", point: image.Pt(-5, -5), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := u.HitTest(tt.point)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("HitTest(%v) = %q, %v; want %q, %v", tt.point, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if u.Selected() != canvas.Red {
		t.Errorf("HitTest changed selection to %s", u.Selected())
	}
}

func TestSelectionUI_SetSelection(t *testing.T) {
	u := NewSelectionUI(640, canvas.DefaultPalette())

	if !u.SetSelection(canvas.Yellow) {
		t.Fatal("SetSelection(YELLOW) failed")
	}
	if u.Selected() != canvas.Yellow {
		t.Errorf("Selected() = %s", u.Selected())
	}
	if u.SetSelection("MAGENTA") {
		t.Error("unknown colour accepted")
	}
	if u.Selected() != canvas.Yellow {
		t.Errorf("rejected selection changed state to %s", u.Selected())
	}
}

func TestSwatch_Center(t *testing.T) {
	s := Swatch{Rect: image.Rect(500, 160, 620, 280)}
	if got := s.Center(); got != image.Pt(560, 220) {
		t.Errorf("Center() = %v", got)
	}
	if !s.Contains(s.Center()) {
		t.Error("swatch should contain its centre")
	}
}

func TestSelectionUI_Draw(t *testing.T) {
	u := NewSelectionUI(640, canvas.DefaultPalette())
	u.SetSelection(canvas.Blue)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	u.Draw(&frame, Overlay{Gesture: "draw", Tool: "PEN", HandPresent: true})

	pixel := func(p image.Point) [3]uint8 {
		v := frame.GetVecbAt(p.Y, p.X)
		return [3]uint8{v[0], v[1], v[2]}
	}

	// BGR order
	if got := pixel(image.Pt(560, 220)); got != [3]uint8{230, 180, 40} {
		t.Errorf("blue swatch pixel = %v", got)
	}
	if got := pixel(image.Pt(560, 80)); got != [3]uint8{0, 0, 255} {
		t.Errorf("red swatch pixel = %v", got)
	}
	if got := pixel(image.Pt(497, 220)); got != [3]uint8{255, 255, 255} {
		t.Errorf("selection outline pixel = %v", got)
	}
	if got := pixel(image.Pt(30, 30)); got != [3]uint8{230, 180, 40} {
		t.Errorf("colour indicator pixel = %v", got)
	}
}

func TestDraw_EmptyFrame(t *testing.T) {
	u := NewSelectionUI(640, nil)
	empty := gocv.NewMat()
	defer empty.Close()

	u.Draw(&empty, Overlay{})
	DrawEraserPreview(&empty, image.Pt(10, 10), 125)
	u.Draw(nil, Overlay{})
}
