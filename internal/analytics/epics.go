package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/liveplayer"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/store"
)

// Tracker delivers media lifecycle events to the measurement backend.
type Tracker interface {
	TrackEvent(event string, params map[string]any)
}

// NopTracker discards events; used when no measurement backend is
// configured.
type NopTracker struct{}

func (NopTracker) TrackEvent(string, map[string]any) {}

// OnExit registers a callback to run when the viewer leaves the page.
// The session layer fires registered callbacks at most once.
type OnExit func(fn func())

// Snapshot is the cross-slice state the analytics epics read. The
// engine binds a snapshot function over the composed store.
type Snapshot struct {
	Playback            player.Playback
	Progress            float64
	Duration            float64
	DurationWatched     int
	LiveProgress        float64
	StreamStartPosition float64
}

// NewDurationWatchedEpic accumulates watched seconds from the progress
// tick stream, counting only while content is actually playing. The
// counter starts at -1 so the tick that accompanies the paused-to-
// playing transition lands the count at zero; the sub-second throttle
// absorbs tick/scrub bursts.
func NewDurationWatchedEpic(clock clockwork.Clock, snap func() Snapshot) store.Epic {
	throttle := store.NewThrottle(clock, 500*time.Millisecond)
	count := -1
	return func(a store.Action) []store.Action {
		switch a.(type) {
		case player.Progress, liveplayer.Progress, player.Play, player.AdPlay, liveplayer.Play:
		default:
			return nil
		}
		if snap().Playback != player.PlaybackPlaying {
			return nil
		}
		if !throttle.Allow() {
			return nil
		}
		count++
		return []store.Action{SetDurationWatched{Seconds: count}}
	}
}

// NewFurthestPositionEpic forwards every progress tick to the
// high-water-mark reducer.
func NewFurthestPositionEpic() store.Epic {
	return func(a store.Action) []store.Action {
		switch a := a.(type) {
		case player.Progress:
			return []store.Action{SetFurthestPosition{Position: a.Time.Position}}
		case liveplayer.Progress:
			return []store.Action{SetFurthestPosition{Position: a.Time.Position}}
		}
		return nil
	}
}

// NewPartnerReportEpic posts the playback position to partner host
// pages every ten seconds. Positions at or below one second are the
// first-frame settling period and never reported.
func NewPartnerReportEpic(clock clockwork.Clock, out *bridge.Outbox, video *bridge.Video, embed *bridge.Context) store.Epic {
	throttle := store.NewThrottle(clock, 10*time.Second)
	return func(a store.Action) []store.Action {
		pr, ok := a.(player.Progress)
		if !ok {
			return nil
		}
		if !throttle.Allow() {
			return nil
		}
		position := int(pr.Time.Position)
		if position <= 1 || embed == nil || embed.PlayerType != bridge.PartnerPlayer {
			return nil
		}
		out.Send("partnerPlayer:furthestPosition", map[string]any{
			"position": position,
			"duration": video.Duration,
			"slug":     video.Slug,
		})
		return nil
	}
}

// NewStreamStartEpic records where in the endless stream viewing
// began, the anchor for live watch-time math.
func NewStreamStartEpic() store.Epic {
	return func(a store.Action) []store.Action {
		ff, ok := a.(liveplayer.FirstFrame)
		if !ok {
			return nil
		}
		return []store.Action{SetStreamStartPosition{Position: ff.StreamPosition}}
	}
}

// NewMediaStartEpic fires MediaStart exactly once, on the first play.
func NewMediaStartEpic(tracker Tracker, instrument func(string), embed *bridge.Context) store.Epic {
	var once store.Once
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.Play); !ok {
			return nil
		}
		if !once.Do() {
			return nil
		}
		instrument(fmt.Sprintf("player:public VOD %s %s", embed.PlayerType, MediaStart))
		tracker.TrackEvent(MediaStart, nil)
		return nil
	}
}

// NewMediaStopExitEpic covers the abandoned-session half of MediaStop:
// one page-exit callback, registered at first frame, that fires only
// when the video did not complete. The padding keeps a race with the
// continuous-play handoff from double-counting the last moments of a
// video as an abandonment.
func NewMediaStopExitEpic(onExit OnExit, snap func() Snapshot, tracker Tracker, instrument func(string), embed *bridge.Context, padding float64) store.Epic {
	var once store.Once
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.FirstFrame); !ok {
			return nil
		}
		if !once.Do() {
			return nil
		}
		onExit(func() {
			s := snap()
			if s.Playback == player.PlaybackComplete || s.Duration-s.Progress <= padding {
				return
			}
			instrument(fmt.Sprintf("player:public VOD %s %s mid-playback", embed.PlayerType, MediaStop))
			tracker.TrackEvent(MediaStop, map[string]any{"value": s.DurationWatched})
		})
		return nil
	}
}

// NewMediaStopCompleteEpic covers the natural-end half of MediaStop.
func NewMediaStopCompleteEpic(snap func() Snapshot, tracker Tracker, instrument func(string), embed *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.Complete); !ok {
			return nil
		}
		instrument(fmt.Sprintf("player:public VOD %s %s last frame", embed.PlayerType, MediaStop))
		tracker.TrackEvent(MediaStop, map[string]any{"value": snap().DurationWatched})
		return nil
	}
}

// NewLiveMediaStartEpic fires the live MediaStart on first frame.
func NewLiveMediaStartEpic(tracker Tracker, instrument func(string), live *bridge.LiveContext) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(liveplayer.FirstFrame); !ok {
			return nil
		}
		instrument(fmt.Sprintf("player:public Livestream %s %s", live.PlayerType, MediaStart))
		tracker.TrackEvent(MediaStart, nil)
		return nil
	}
}

// NewLiveMediaStopExitEpic reports live watch time on page exit:
// furthest stream position minus where viewing started, floored at
// zero because a stream restart can move the position backwards.
func NewLiveMediaStopExitEpic(onExit OnExit, snap func() Snapshot, tracker Tracker, instrument func(string), live *bridge.LiveContext) store.Epic {
	var once store.Once
	return func(a store.Action) []store.Action {
		if _, ok := a.(liveplayer.FirstFrame); !ok {
			return nil
		}
		if !once.Do() {
			return nil
		}
		onExit(func() {
			s := snap()
			watched := int(s.LiveProgress) - int(s.StreamStartPosition)
			if watched < 0 {
				watched = 0
			}
			instrument(fmt.Sprintf("player:public Livestream %s %s", live.PlayerType, MediaStop))
			tracker.TrackEvent(MediaStop, map[string]any{"value": watched})
		})
		return nil
	}
}

// NewBeaconEpic initializes the QoE beacon once media metadata is
// known. Codec and DRM resolution may need a manifest fetch, so it
// runs off the dispatch goroutine; a missing beacon SDK skips
// initialization without complaint.
func NewBeaconEpic(beacon Beacon, resolver *MetadataResolver, p bridge.Player, video *bridge.Video, embed *bridge.Context, reportedCodecs func() string) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.LoadedMetadata); !ok {
			return nil
		}
		if !beacon.Available() {
			return nil
		}
		go func() {
			beacon.Init(resolver.Resolve(context.Background(), p, video, embed, reportedCodecs()))
		}()
		return nil
	}
}

// NewLiveBeaconEpic is the live-session counterpart of NewBeaconEpic.
func NewLiveBeaconEpic(beacon Beacon, resolver *MetadataResolver, p bridge.Player, live *bridge.LiveContext, reportedCodecs func() string) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(liveplayer.LoadedMetadata); !ok {
			return nil
		}
		if !beacon.Available() {
			return nil
		}
		go func() {
			beacon.Init(resolver.ResolveLive(context.Background(), p, live, reportedCodecs()))
		}()
		return nil
	}
}

// HistoryReporter is the slice of ProfileClient the history epics use.
type HistoryReporter interface {
	AddToHistory(ctx context.Context, video *bridge.Video, embed *bridge.Context, timecode float64)
}

// NewResumeHistoryEpic seeks to the profile service's recorded
// position at first frame, when the viewer left off mid-video.
func NewResumeHistoryEpic(p bridge.Player, video *bridge.Video, embed *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.FirstFrame); !ok {
			return nil
		}
		if video == nil || embed == nil {
			return nil
		}
		history, ok := embed.ViewingHistory[video.ID]
		if ok && ShouldResumeHistory(video, history) {
			p.SetCurrentTime(history.SecondsWatched)
		}
		return nil
	}
}

// NewHistoryReportEpic records progress on completion and pause.
// Pauses are debounced for five seconds — scrubbing fires pause storms
// and the profile service only needs the last position. Livestreamed
// sources and barely-started sessions (under 30 seconds in) are never
// recorded.
func NewHistoryReportEpic(clock clockwork.Clock, p bridge.Player, history HistoryReporter, video *bridge.Video, embed *bridge.Context, progress func() float64) store.Epic {
	debounce := store.NewDebounce(clock, 5*time.Second)
	report := func() {
		if bridge.IsLivestream(p) || progress() <= 30 {
			return
		}
		history.AddToHistory(context.Background(), video, embed, progress())
	}
	return func(a store.Action) []store.Action {
		switch a.(type) {
		case player.Complete:
			report()
		case player.Pause:
			debounce.Call(report)
		}
		return nil
	}
}

// NewHistoryExitEpic flushes one final history report on page exit.
func NewHistoryExitEpic(onExit OnExit, p bridge.Player, history HistoryReporter, video *bridge.Video, embed *bridge.Context, progress func() float64) store.Epic {
	var once store.Once
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.Mounted); !ok {
			return nil
		}
		if !once.Do() {
			return nil
		}
		onExit(func() {
			if bridge.IsLivestream(p) || progress() <= 30 {
				return
			}
			history.AddToHistory(context.Background(), video, embed, progress())
		})
		return nil
	}
}
