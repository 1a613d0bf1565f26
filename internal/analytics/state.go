// Package analytics owns watch-time accounting and the exactly-once
// media lifecycle events: one MediaStart when playback first begins,
// one MediaStop when it ends, whether naturally or by the viewer
// leaving mid-stream.
package analytics

import "github.com/embedplay/embedplay/internal/store"

// Media lifecycle event names.
const (
	MediaStart = "mediastart"
	MediaStop  = "mediastop"
)

// Action kinds for the analytics slice.
const (
	KindSetDurationWatched     = "analytics.set-duration-watched"
	KindSetFurthestPosition    = "analytics.set-furthest-position"
	KindSetStreamStartPosition = "analytics.set-stream-start-position"
)

// SetDurationWatched replaces the watched-seconds counter outright;
// the accumulation itself lives in the duration-watched epic.
type SetDurationWatched struct {
	Seconds int
}

func (SetDurationWatched) Kind() string { return KindSetDurationWatched }

type SetFurthestPosition struct {
	Position float64
}

func (SetFurthestPosition) Kind() string { return KindSetFurthestPosition }

type SetStreamStartPosition struct {
	Position float64
}

func (SetStreamStartPosition) Kind() string { return KindSetStreamStartPosition }

type State struct {
	DurationWatched     int
	FurthestPosition    float64
	StreamStartPosition float64
}

func InitialState() State {
	return State{}
}

// Reduce applies an analytics action. FurthestPosition is a high-water
// mark: it only ever moves strictly forward, so scrubbing back never
// lowers it.
func Reduce(s State, a store.Action) State {
	switch a := a.(type) {
	case SetDurationWatched:
		s.DurationWatched = a.Seconds
	case SetFurthestPosition:
		if a.Position > s.FurthestPosition {
			s.FurthestPosition = a.Position
		}
	case SetStreamStartPosition:
		s.StreamStartPosition = a.Position
	}
	return s
}
