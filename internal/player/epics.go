package player

import (
	"math"
	"strconv"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/store"
)

// NewAutoplayEpic starts playback on mount when the embed asked for it
// and the video is actually playable.
func NewAutoplayEpic(p bridge.Player) store.Epic {
	return func(a store.Action) []store.Action {
		m, ok := a.(Mounted)
		if !ok {
			return nil
		}
		if m.Context != nil && m.Context.Options.Autoplay && m.Video != nil && m.Video.IsPlayable {
			p.Play()
		}
		return nil
	}
}

// NewRestorePreferencesEpic reapplies the viewer's saved mute flag and
// volume on mount. The `muted` embed option, applied by the shell,
// wins over the saved flag; a saved false never unmutes.
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

// NewPersistPreferencesEpic writes mute and volume changes through to
// the viewer's preference store.
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

// NewProgressEpic collapses the raw timeupdate stream into one
// Progress action per whole second of playback position.
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

// NewStartSeekEpic jumps to the `start` embed offset once metadata is
// loaded, if playback has not already passed it.
func NewStartSeekEpic(p bridge.Player, ctx *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		lm, ok := a.(LoadedMetadata)
		if !ok || ctx == nil {
			return nil
		}
		if start := ctx.Options.Start; start > 0 && lm.Time.Position < start {
			p.SetCurrentTime(start)
		}
		return nil
	}
}

// NewEndClampEpic ends playback at the `end` embed offset by seeking to
// the real duration, which lets the normal completion path run.
func NewEndClampEpic(p bridge.Player, video *bridge.Video, ctx *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		pr, ok := a.(Progress)
		if !ok || ctx == nil || video == nil {
			return nil
		}
		if end := ctx.Options.End; end > 0 && video.Duration > 0 && pr.Time.Position > end {
			p.SetCurrentTime(video.Duration)
		}
		return nil
	}
}

// ChapterStart returns the start offset in seconds for the 1-indexed
// `chapter` embed option, or false when out of range.
func ChapterStart(video *bridge.Video, chapter int) (float64, bool) {
	if video == nil || chapter < 1 || chapter > len(video.Chapters) {
		return 0, false
	}
	// chapter offsets arrive in milliseconds
	return video.Chapters[chapter-1].Start / 1000, true
}

// NewChapterSeekEpic jumps forward to the requested chapter start.
func NewChapterSeekEpic(p bridge.Player, video *bridge.Video, ctx *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		pr, ok := a.(Progress)
		if !ok || ctx == nil || ctx.Options.Chapter == 0 {
			return nil
		}
		start, ok := ChapterStart(video, ctx.Options.Chapter)
		if ok && start > pr.Time.Position {
			p.SetCurrentTime(start)
		}
		return nil
	}
}

// NewErrorPauseEpic makes sure nothing keeps playing behind an error
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

// NewEndscreenEpic resets partner and bento embeds to their poster
// state on completion instead of showing the recommendation endscreen.
func NewEndscreenEpic(p bridge.Player, ctx *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(Complete); !ok || ctx == nil {
			return nil
		}
		if ctx.PlayerType == bridge.PartnerPlayer || ctx.PlayerType == bridge.BentoPlayer {
			if p.IsFullscreen() {
				p.ExitFullscreen()
			}
		}
		return nil
	}
}

// NewLegacyEventsEpic posts the colon-protocol lifecycle messages
// legacy hosts listen for. The outbox already drops everything when no
// referrer origin is known.
func NewLegacyEventsEpic(out *bridge.Outbox) store.Epic {
	return func(a store.Action) []store.Action {
		switch a.(type) {
		case Play:
			out.SendRaw("video::playing")
		case Pause:
			out.SendRaw("video::paused")
		case Complete:
			out.SendRaw("video::finished")
		case Seeking:
			out.SendRaw("video::seeking")
		case Seeked:
			out.SendRaw("video::seeked")
		case AdPlay:
			out.SendRaw("ad::started")
		case AdComplete:
			out.SendRaw("ad::complete")
		}
		return nil
	}
}

// NewMessageEpic applies inbound cross-frame payloads: the modern
// command vocabulary first, then the legacy colon protocol. Continuous
// play toggles are not player commands; they pass through untouched
// for that slice's epic.
func NewMessageEpic(p bridge.Player, reply bridge.LegacyReply) store.Epic {
	return func(a store.Action) []store.Action {
		m, ok := a.(MessageReceived)
		if !ok {
			return nil
		}
		if msg, ok := bridge.ParseMessageData(m.Data); ok {
			bridge.HandleCommand(p, msg.Command)
			return nil
		}
		bridge.HandleLegacyMessage(p, m.Data, reply)
		return nil
	}
}
