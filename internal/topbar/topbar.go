// Package topbar tracks which top-bar screen is showing. At most one
// screen is open at a time.
package topbar

import (
	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/store"
)

// Screen identifies a top-bar panel.
type Screen string

const (
	ScreenClosed Screen = "CLOSED"
	ScreenInfo   Screen = "INFO"
	ScreenEmbed  Screen = "EMBED"
	ScreenShare  Screen = "SHARE"
	ScreenShop   Screen = "SHOP"
)

// Action kinds.
const (
	KindOpenScreen  = "topbar.open-screen"
	KindCloseScreen = "topbar.close-screen"
)

// OpenScreen switches the top bar to the named screen.
type OpenScreen struct {
	Screen Screen
}

func (OpenScreen) Kind() string { return KindOpenScreen }

// CloseScreen dismisses whatever screen is showing.
type CloseScreen struct{}

func (CloseScreen) Kind() string { return KindCloseScreen }

// State is the top-bar slice.
type State struct {
	Screen Screen
}

func InitialState() State {
	return State{Screen: ScreenClosed}
}

func Reduce(s State, a store.Action) State {
	switch a := a.(type) {
	case OpenScreen:
		if a.Screen != "" {
			s.Screen = a.Screen
		}
	case CloseScreen:
		s.Screen = ScreenClosed
	}
	return s
}

// NewPauseEpic pauses playback whenever a screen opens, so the video
// does not run underneath the panel.
func NewPauseEpic(p bridge.Player) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(OpenScreen); !ok {
			return nil
		}
		if !p.Paused() {
			p.Pause()
		}
		return nil
	}
}
