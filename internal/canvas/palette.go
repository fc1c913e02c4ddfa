package canvas

import "image/color"

// Palette colour names.
const (
	Red    = "RED"
	Blue   = "BLUE"
	Green  = "GREEN"
	Yellow = "YELLOW"
	White  = "WHITE"
)

// Colour is a named palette entry.
type Colour struct {
	Name string
	RGBA color.RGBA
}

// Palette is the fixed, ordered colour set for a session.
type Palette []Colour

// DefaultPalette returns the five drawing colours in swatch order.
func DefaultPalette() Palette {
	return Palette{
		{Name: Red, RGBA: color.RGBA{R: 255, G: 0, B: 0, A: 255}},
		{Name: Blue, RGBA: color.RGBA{R: 40, G: 180, B: 230, A: 255}},
		{Name: Green, RGBA: color.RGBA{R: 50, G: 180, B: 20, A: 255}},
		{Name: Yellow, RGBA: color.RGBA{R: 255, G: 255, B: 0, A: 255}},
		{Name: White, RGBA: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}
}

// Lookup returns the colour with the given name.
func (p Palette) Lookup(name string) (Colour, bool) {
	for _, c := range p {
		if c.Name == name {
			return c, true
		}
	}
	return Colour{}, false
}

// Names returns the colour names in palette order.
func (p Palette) Names() []string {
	names := make([]string, len(p))
	for i, c := range p {
		names[i] = c.Name
	}
	return names
}
