package gesture

import (
	"time"

	"github.com/ayusman/aircanvas/internal/detector"
)

// Recognizer combines the stateless classifier with the optional clear hold
// timer. A nil hold disables the clear gesture.
type Recognizer struct {
	classifier *Classifier
	hold       *ClearHold
	now        func() time.Time
}

// NewRecognizer creates a Recognizer. hold may be nil.
func NewRecognizer(classifier *Classifier, hold *ClearHold) *Recognizer {
	return &Recognizer{
		classifier: classifier,
		hold:       hold,
		now:        time.Now,
	}
}

// Recognize classifies one frame. Clear is returned only when the
// classifier sees no other gesture and the hold timer fires.
func (r *Recognizer) Recognize(set detector.LandmarkSet) Symbol {
	sym := r.classifier.Classify(set)
	if r.hold == nil {
		return sym
	}

	fired := r.hold.Update(set, r.now())
	if sym == None && fired {
		return Clear
	}
	return sym
}
