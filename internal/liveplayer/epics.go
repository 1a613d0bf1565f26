package liveplayer

import (
	"math"
	"strconv"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/store"
)

// NewProgressEpic collapses the raw live timeupdate stream into one
// Progress action per whole second of stream position.
func NewProgressEpic() store.Epic {
	var seconds store.Distinct[int]
	return func(a store.Action) []store.Action {
		t, ok := a.(Time)
		if !ok {
			return nil
		}
		floored := int(math.Floor(t.Time.CurrentTime))
		if !seconds.Changed(floored) {
			return nil
		}
		info := t.Time
		info.CurrentTime = float64(floored)
		return []store.Action{Progress{Time: info}}
	}
}

// NewRestorePreferencesEpic reapplies saved mute and volume on mount.
func NewRestorePreferencesEpic(p bridge.Player, prefs persist.Store) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(Mounted); !ok {
			return nil
		}
		if v, ok := prefs.Get(persist.KeyMuted); ok && v == "true" {
			p.SetMuted(true)
		}
		if v, ok := prefs.Get(persist.KeyVolume); ok {
			if vol, err := strconv.ParseFloat(v, 64); err == nil && vol > 0 && vol <= 1 {
				p.SetVolume(vol)
			}
		}
		return nil
	}
}

// NewPersistPreferencesEpic writes mute and volume changes through.
func NewPersistPreferencesEpic(prefs persist.Store) store.Epic {
	return func(a store.Action) []store.Action {
		switch a := a.(type) {
		case Mute:
			prefs.Set(persist.KeyMuted, strconv.FormatBool(a.Muted))
		case Volume:
			prefs.Set(persist.KeyVolume, strconv.FormatFloat(a.Volume, 'f', -1, 64))
		}
		return nil
	}
}

// NewErrorPauseEpic stops the stream from playing behind an error
// overlay.
func NewErrorPauseEpic(p bridge.Player) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(Error); !ok {
			return nil
		}
		if !p.Paused() {
			p.Pause()
		}
		return nil
	}
}
