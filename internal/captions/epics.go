package captions

import (
	"encoding/json"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/store"
)

// SelectionOff marks the persisted "no captions" choice. There is no
// real "Off" track; it is detected by every track being disabled.
const SelectionOff = "Off"

// NewPauseOnOpenEpic pauses playback while the settings dialog is up.
func NewPauseOnOpenEpic(p bridge.Player) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(OpenSettings); !ok {
			return nil
		}
		if !p.Paused() {
			p.Pause()
		}
		return nil
	}
}

// NewPersistStyleEpic writes the committed style blob on save. The
// preview style is saved too so a reopened dialog starts from the
// committed values.
func NewPersistStyleEpic(state func() State, prefs persist.Store) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(SaveSettings); !ok {
			return nil
		}
		blob, err := json.Marshal(state())
		if err != nil {
			return nil
		}
		prefs.Set(persist.KeyCaptionStyle, string(blob))
		return nil
	}
}

// NewSaveSelectionEpic persists the viewer's caption language whenever
// the showing track set changes: the native name of the first showing
// track, or "Off" when everything is disabled. WebKit flips track
// modes on its own during fullscreen, so Safari sessions never write.
func NewSaveSelectionEpic(p bridge.Player, prefs persist.Store, isSafari bool) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(SelectionChanged); !ok || isSafari {
			return nil
		}
		tracks := bridge.FilterTextTracks(p.TextTracks())
		if len(tracks) == 0 {
			return nil
		}
		for _, t := range tracks {
			if t.Mode == bridge.TrackShowing {
				prefs.Set(persist.KeyCaptionSelection, NativeName(t.Language))
				return nil
			}
		}
		prefs.Set(persist.KeyCaptionSelection, SelectionOff)
		return nil
	}
}

// NewRestoreSelectionEpic reapplies the persisted language as tracks
// arrive from the manifest. When the added track matches the saved
// selection, every other track is disabled and the match set showing;
// a saved "Off" or a language no longer offered leaves everything
// disabled.
func NewRestoreSelectionEpic(p bridge.Player, prefs persist.Store) store.Epic {
	return func(a store.Action) []store.Action {
		added, ok := a.(TrackAdded)
		if !ok {
			return nil
		}
		saved, ok := prefs.Get(persist.KeyCaptionSelection)
		if !ok {
			return nil
		}

		tracks := bridge.FilterTextTracks(p.TextTracks())
		if saved == NativeName(added.Language) && saved != "Unknown" {
			for _, t := range tracks {
				mode := bridge.TrackDisabled
				if NativeName(t.Language) == saved {
					mode = bridge.TrackShowing
				}
				p.SetTextTrackMode(t.ID, mode)
			}
			return nil
		}

		offered := false
		for _, t := range tracks {
			if NativeName(t.Language) == saved {
				offered = true
				break
			}
		}
		if saved == SelectionOff || !offered {
			for _, t := range tracks {
				p.SetTextTrackMode(t.ID, bridge.TrackDisabled)
			}
		}
		return nil
	}
}
