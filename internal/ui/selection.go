// Package ui implements the hover colour-swatch selector and the on-screen
// overlay drawn over each composited frame.
package ui

import (
	"image"
	"sync"

	"github.com/ayusman/aircanvas/internal/canvas"
)

// Swatch layout in pixels.
const (
	BoxSize = 120
	Margin  = 20
)

// Swatch is one selectable colour rectangle. Bounds are inclusive on all
// four edges, so Rect.Max is a valid hit.
type Swatch struct {
	Colour canvas.Colour
	Rect   image.Rectangle
}

// Contains reports whether p lies inside the swatch, edges included.
func (s Swatch) Contains(p image.Point) bool {
	return p.X >= s.Rect.Min.X && p.X <= s.Rect.Max.X &&
		p.Y >= s.Rect.Min.Y && p.Y <= s.Rect.Max.Y
}

// Center returns the middle of the swatch.
func (s Swatch) Center() image.Point {
	return image.Pt((s.Rect.Min.X+s.Rect.Max.X)/2, (s.Rect.Min.Y+s.Rect.Max.Y)/2)
}

// SelectionUI holds the swatch registry and the selected colour name.
// The registry is fixed at construction.
type SelectionUI struct {
	mu       sync.RWMutex
	palette  canvas.Palette
	swatches []Swatch
	selected string
}

// NewSelectionUI lays the palette out as a column of swatches along the right
// edge of a frame of the given width. The first palette entry starts selected.
func NewSelectionUI(width int, palette canvas.Palette) *SelectionUI {
	if len(palette) == 0 {
		palette = canvas.DefaultPalette()
	}

	x := width - BoxSize - Margin
	y := Margin
	swatches := make([]Swatch, 0, len(palette))
	for _, c := range palette {
		swatches = append(swatches, Swatch{
			Colour: c,
			Rect:   image.Rect(x, y, x+BoxSize, y+BoxSize),
		})
		y += BoxSize + Margin
	}

	return &SelectionUI{
		palette:  palette,
		swatches: swatches,
		selected: palette[0].Name,
	}
}

// HitTest returns the name of the first swatch containing p, in palette
// order. It does not change the selection.
func (u *SelectionUI) HitTest(p image.Point) (string, bool) {
	for _, s := range u.swatches {
		if s.Contains(p) {
			return s.Colour.Name, true
		}
	}
	return "", false
}

// SetSelection selects the named colour. Names outside the palette are
// rejected.
func (u *SelectionUI) SetSelection(name string) bool {
	if _, ok := u.palette.Lookup(name); !ok {
		return false
	}

	u.mu.Lock()
	u.selected = name
	u.mu.Unlock()
	return true
}

// Selected returns the selected colour name.
func (u *SelectionUI) Selected() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.selected
}

// Swatches returns a copy of the swatch registry in palette order.
func (u *SelectionUI) Swatches() []Swatch {
	out := make([]Swatch, len(u.swatches))
	copy(out, u.swatches)
	return out
}

func (u *SelectionUI) swatch(name string) (Swatch, bool) {
	for _, s := range u.swatches {
		if s.Colour.Name == name {
			return s, true
		}
	}
	return Swatch{}, false
}
