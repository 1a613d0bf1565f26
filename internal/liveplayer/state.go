package liveplayer

import (
	"math"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/store"
)

// Availability is the phase of the livestream service-area check.
type Availability string

const (
	AvailabilityIdle             Availability = "idle"
	AvailabilityEvaluating       Availability = "evaluating"
	AvailabilitySuccess          Availability = "success"
	AvailabilityRejected         Availability = "rejected"
	AvailabilityLocationDenied   Availability = "locationDenied"
	AvailabilityLocationTimedOut Availability = "locationTimedOut"
	AvailabilityLocationNeeded   Availability = "locationNeeded"
)

type State struct {
	Playback     player.Playback
	Progress     float64
	Duration     float64
	Context      *bridge.LiveContext
	Availability Availability
}

func InitialState() State {
	return State{
		Playback:     player.PlaybackReady,
		Duration:     math.Inf(1),
		Availability: AvailabilityIdle,
	}
}

func Reduce(s State, a store.Action) State {
	switch a := a.(type) {
	case Mounted:
		s.Context = a.Context
	case Play:
		s.Playback = player.PlaybackPlaying
	case Pause:
		s.Playback = player.PlaybackPaused
	case Error:
		s.Playback = player.PlaybackError
	case Complete:
		s.Playback = player.PlaybackComplete
	case Progress:
		s.Progress = a.Time.Position
	case SetAvailability:
		s.Availability = a.Availability
	}
	return s
}
