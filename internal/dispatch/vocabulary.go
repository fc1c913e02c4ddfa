package dispatch

import (
	"strings"

	"github.com/ayusman/aircanvas/internal/canvas"
)

// Action is the effect of a voice command.
type Action int

const (
	ActionNone Action = iota
	ActionClear
	ActionExit
	ActionColour
)

func (a Action) String() string {
	switch a {
	case ActionClear:
		return "clear"
	case ActionExit:
		return "exit"
	case ActionColour:
		return "colour"
	default:
		return "none"
	}
}

// Command is one vocabulary entry. Word is matched as a lower-case substring.
type Command struct {
	Word   string
	Action Action
	// Colour is the palette name for ActionColour.
	Colour string
}

// Vocabulary is an ordered command list; earlier entries win.
type Vocabulary []Command

// DefaultVocabulary returns clear, exit, then blue, red, green, yellow, white.
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{
		{Word: "clear", Action: ActionClear},
		{Word: "exit", Action: ActionExit},
	}
	for _, name := range []string{canvas.Blue, canvas.Red, canvas.Green, canvas.Yellow, canvas.White} {
		v = append(v, Command{Word: strings.ToLower(name), Action: ActionColour, Colour: name})
	}
	return v
}

// Match returns the first command whose word occurs in text, ignoring case.
func (v Vocabulary) Match(text string) (Command, bool) {
	text = strings.ToLower(text)
	for _, c := range v {
		if strings.Contains(text, c.Word) {
			return c, true
		}
	}
	return Command{}, false
}
