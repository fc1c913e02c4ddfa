// Package dispatch merges the per-frame gesture with the latest voice
// command into canvas and selection mutations.
package dispatch

import (
	"image"

	"github.com/charmbracelet/log"

	"github.com/ayusman/aircanvas/internal/canvas"
	"github.com/ayusman/aircanvas/internal/gesture"
)

// Canvas is the stroke surface driven by the dispatcher.
type Canvas interface {
	Start(p image.Point)
	Extend(p image.Point)
	Stop()
	Drawing() bool
	SetTool(t canvas.Tool)
	SetColour(name string) bool
	Clear()
}

// Selector is the swatch UI driven by the dispatcher.
type Selector interface {
	HitTest(p image.Point) (string, bool)
	SetSelection(name string) bool
}

// CommandSource yields at most one pending voice transcript per call.
type CommandSource interface {
	Take() (string, bool)
}

// Input is one frame's gesture reading.
type Input struct {
	Gesture      gesture.Symbol
	Fingertip    image.Point
	HasFingertip bool
}

// Result reports what the dispatcher did this frame.
type Result struct {
	// Exit is set when the exit word was heard.
	Exit bool
	// Heard is the transcript taken from the slot, if any.
	Heard string
	// VoiceCommand is the transcript that triggered a clear or colour action.
	VoiceCommand string
	VoiceAction  Action
	// Selected is the colour picked by hovering a swatch this frame.
	Selected string
}

// Config configures a Dispatcher.
type Config struct {
	Vocabulary Vocabulary
	Logger     *log.Logger
}

// Dispatcher applies one frame of input. It is not safe for concurrent use;
// the frame loop owns it.
type Dispatcher struct {
	canvas   Canvas
	selector Selector
	commands CommandSource
	vocab    Vocabulary
	logger   *log.Logger
}

// New creates a Dispatcher.
func New(c Canvas, s Selector, commands CommandSource, config Config) *Dispatcher {
	if len(config.Vocabulary) == 0 {
		config.Vocabulary = DefaultVocabulary()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Dispatcher{
		canvas:   c,
		selector: s,
		commands: commands,
		vocab:    config.Vocabulary,
		logger:   config.Logger,
	}
}

// Dispatch runs one frame: take the voice slot, apply the gesture, then apply
// at most one voice action.
func (d *Dispatcher) Dispatch(in Input) Result {
	var res Result

	heard, _ := d.commands.Take()
	res.Heard = heard

	if in.HasFingertip {
		res.Selected = d.applyGesture(in)
	} else {
		d.canvas.Stop()
	}

	if heard != "" {
		d.applyVoice(heard, &res)
	}
	return res
}

func (d *Dispatcher) applyGesture(in Input) string {
	p := in.Fingertip

	switch in.Gesture {
	case gesture.Select:
		d.canvas.SetTool(canvas.Pen)
		var picked string
		if name, ok := d.selector.HitTest(p); ok {
			d.canvas.SetColour(name)
			d.selector.SetSelection(name)
			picked = name
		}
		d.canvas.Stop()
		return picked

	case gesture.Draw:
		d.canvas.SetTool(canvas.Pen)
		d.stroke(p)

	case gesture.Erase:
		d.canvas.SetTool(canvas.Eraser)
		d.stroke(p)

	case gesture.Clear:
		d.canvas.Stop()
		d.canvas.Clear()

	default:
		d.canvas.Stop()
	}
	return ""
}

func (d *Dispatcher) stroke(p image.Point) {
	if d.canvas.Drawing() {
		d.canvas.Extend(p)
		return
	}
	d.canvas.Start(p)
}

func (d *Dispatcher) applyVoice(text string, res *Result) {
	cmd, ok := d.vocab.Match(text)
	if !ok {
		d.logger.Debug("voice command ignored", "text", text)
		return
	}
	res.VoiceAction = cmd.Action

	switch cmd.Action {
	case ActionClear:
		d.canvas.Clear()
		res.VoiceCommand = text
	case ActionExit:
		res.Exit = true
	case ActionColour:
		d.canvas.SetColour(cmd.Colour)
		d.selector.SetSelection(cmd.Colour)
		res.VoiceCommand = text
	}
	d.logger.Debug("voice command applied", "text", text, "action", cmd.Action)
}
