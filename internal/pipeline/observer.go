package pipeline

import "github.com/amolnak/GuidanceMind/constants"

// Event reports a row moving to a new stage.
type Event struct {
	Index  int
	Serial string
	Link   string
	Stage  constants.RowStage
	Err    error
	// Raw is the unparsable model output on PARSE_FAILED.
	Raw string
}

type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
