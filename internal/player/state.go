package player

import (
	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/store"
)

// Playback is the coarse lifecycle phase of the mounted video.
type Playback string

const (
	PlaybackReady    Playback = "READY"
	PlaybackPlaying  Playback = "PLAYING"
	PlaybackPaused   Playback = "PAUSED"
	PlaybackError    Playback = "ERROR"
	PlaybackComplete Playback = "COMPLETE"
)

type State struct {
	Playback Playback
	Progress float64
	Duration float64
	Video    *bridge.Video
	Context  *bridge.Context
}

func InitialState() State {
	return State{Playback: PlaybackReady}
}

// Reduce applies a player action. Ad play and pause move playback the
// same way content play and pause do; ad completion on its own changes
// nothing.
func Reduce(s State, a store.Action) State {
	switch a := a.(type) {
	case Mounted:
		s.Video = a.Video
		s.Context = a.Context
	case Play, AdPlay:
		s.Playback = PlaybackPlaying
	case Pause, AdPause:
		s.Playback = PlaybackPaused
	case Complete:
		s.Playback = PlaybackComplete
	case Error:
		s.Playback = PlaybackError
	case Progress:
		s.Progress = a.Time.Position
		s.Duration = a.Time.Duration
	}
	return s
}
