package engine

import (
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/embedplay/embedplay/internal/analytics"
	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/liveplayer"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/store"
)

type fakePlayer struct {
	playing    bool
	muted      bool
	volume     float64
	current    float64
	duration   float64
	fullscreen bool
	tracks     []bridge.TextTrack
	panicOn    string
}

func (f *fakePlayer) CurrentTime() float64 { return f.current }
func (f *fakePlayer) SetCurrentTime(t float64) { f.current = t }
func (f *fakePlayer) Duration() float64 { return f.duration }
func (f *fakePlayer) Source() string { return "" }

func (f *fakePlayer) Play() {
	if f.panicOn == "play" {
		panic("shell connection lost")
	}
	f.playing = true
}

func (f *fakePlayer) Pause() { f.playing = false }
func (f *fakePlayer) Paused() bool { return !f.playing }
func (f *fakePlayer) Muted() bool { return f.muted }
func (f *fakePlayer) SetMuted(m bool) { f.muted = m }
func (f *fakePlayer) Volume() float64 { return f.volume }
func (f *fakePlayer) SetVolume(v float64) { f.volume = v }
func (f *fakePlayer) IsFullscreen() bool { return f.fullscreen }
func (f *fakePlayer) RequestFullscreen() { f.fullscreen = true }
func (f *fakePlayer) ExitFullscreen() { f.fullscreen = false }
func (f *fakePlayer) TextTracks() []bridge.TextTrack { return f.tracks }
func (f *fakePlayer) SetTextTrackMode(id string, mode bridge.TrackMode) {
	for i := range f.tracks {
		if f.tracks[i].ID == id {
			f.tracks[i].Mode = mode
		}
	}
}
func (f *fakePlayer) ShiftControls(bool) {}

type recordingTracker struct {
	events []string
}

func (r *recordingTracker) TrackEvent(event string, params map[string]any) {
	r.events = append(r.events, event)
}

type recordingReporter struct {
	invalid []store.Action
	panics  []string
}

func (r *recordingReporter) ReportInvalidAction(a store.Action) { r.invalid = append(r.invalid, a) }
func (r *recordingReporter) ReportEpicPanic(kind string, _ any) { r.panics = append(r.panics, kind) }

func vodConfig(t *testing.T) (Config, *fakePlayer, *recordingTracker) {
	t.Helper()
	p := &fakePlayer{duration: 600, volume: 1}
	tracker := &recordingTracker{}
	cfg := Config{
		Player:  p,
		Video:   &bridge.Video{ID: "vid-1", Slug: "ep-1", Duration: 600, VideoType: bridge.FullLength, IsPlayable: true},
		Embed:   &bridge.Context{PlayerType: bridge.PortalPlayer},
		Tracker: tracker,
		Clock:   clockwork.NewFakeClock(),
	}
	return cfg, p, tracker
}

func tick(position float64) player.Time {
	return player.Time{Time: bridge.TimeInfo{CurrentTime: position, Position: position, Duration: 600}}
}

func TestMediaStartOncePerSession(t *testing.T) {
	cfg, _, tracker := vodConfig(t)
	s := New(cfg)

	s.Dispatch(player.Mounted{Video: cfg.Video, Context: cfg.Embed})
	s.Dispatch(player.Play{})
	s.Dispatch(player.Pause{})
	s.Dispatch(player.Play{})

	var starts int
	for _, e := range tracker.events {
		if e == analytics.MediaStart {
			starts++
		}
	}
	if starts != 1 {
		t.Fatalf("tracked %d mediastarts, want 1", starts)
	}
}

func TestMediaStopOnAbandonedExit(t *testing.T) {
	cfg, _, tracker := vodConfig(t)
	s := New(cfg)

	s.Dispatch(player.Play{})
	s.Dispatch(player.FirstFrame{})
	s.Dispatch(tick(120))

	s.FireExit()
	s.FireExit()

	var stops int
	for _, e := range tracker.events {
		if e == analytics.MediaStop {
			stops++
		}
	}
	if stops != 1 {
		t.Fatalf("tracked %d mediastops across two exits, want 1", stops)
	}
}

func TestMediaStopNotDoubledAfterNaturalEnd(t *testing.T) {
	cfg, _, tracker := vodConfig(t)
	s := New(cfg)

	s.Dispatch(player.Play{})
	s.Dispatch(player.FirstFrame{})
	s.Dispatch(tick(120))
	s.Dispatch(player.Complete{})
	s.Close()

	var stops int
	for _, e := range tracker.events {
		if e == analytics.MediaStop {
			stops++
		}
	}
	if stops != 1 {
		t.Fatalf("tracked %d mediastops, want exactly the natural-end one", stops)
	}
}

func TestProgressTicksFeedFurthestPosition(t *testing.T) {
	cfg, _, _ := vodConfig(t)
	s := New(cfg)

	s.Dispatch(player.Play{})
	s.Dispatch(tick(10.4))
	s.Dispatch(tick(45.2))
	s.Dispatch(tick(20.0))

	if got := s.State().Analytics.FurthestPosition; got != 45.2 {
		t.Fatalf("furthest position %v, want 45.2", got)
	}
	if got := s.State().Player.Progress; got != 20.0 {
		t.Fatalf("progress %v, want 20.0", got)
	}
}

type badAction struct{}

func (badAction) Kind() string { return "" }

func TestInvalidActionReportedAndSkipped(t *testing.T) {
	cfg, _, _ := vodConfig(t)
	reporter := &recordingReporter{}
	cfg.Reporter = reporter
	s := New(cfg)

	s.Dispatch(badAction{})
	s.Dispatch(player.Play{})

	if len(reporter.invalid) != 1 {
		t.Fatalf("reported %d invalid actions, want 1", len(reporter.invalid))
	}
	if s.State().Player.Playback != player.PlaybackPlaying {
		t.Fatal("pipeline stalled after an invalid action")
	}
}

func TestEpicPanicIsReportedNotFatal(t *testing.T) {
	cfg, p, _ := vodConfig(t)
	p.panicOn = "play"
	cfg.Embed.Options.Autoplay = true
	reporter := &recordingReporter{}
	cfg.Reporter = reporter
	s := New(cfg)

	s.Dispatch(player.Mounted{Video: cfg.Video, Context: cfg.Embed})
	if len(reporter.panics) != 1 || reporter.panics[0] != player.KindMounted {
		t.Fatalf("panics %v, want one for %s", reporter.panics, player.KindMounted)
	}

	p.panicOn = ""
	s.Dispatch(player.Play{})
	if s.State().Player.Playback != player.PlaybackPlaying {
		t.Fatal("pipeline dead after a recovered panic")
	}
}

func TestSubscribersSeeEveryAppliedAction(t *testing.T) {
	cfg, _, _ := vodConfig(t)
	s := New(cfg)

	var seen []player.Playback
	s.Subscribe(func(g GlobalState) { seen = append(seen, g.Player.Playback) })

	s.Dispatch(player.Play{})
	s.Dispatch(player.Pause{})

	if len(seen) < 2 {
		t.Fatalf("saw %d notifications, want at least 2", len(seen))
	}
	if seen[0] != player.PlaybackPlaying || seen[len(seen)-1] != player.PlaybackPaused {
		t.Fatalf("notification order wrong: %v", seen)
	}
}

func TestClosedStoreDropsActions(t *testing.T) {
	cfg, _, _ := vodConfig(t)
	s := New(cfg)
	s.Dispatch(player.Play{})
	s.Close()
	s.Dispatch(player.Pause{})
	if s.State().Player.Playback != player.PlaybackPlaying {
		t.Fatal("closed store still applied an action")
	}
}

func TestLifecycleEventsReachLegacyHost(t *testing.T) {
	cfg, _, _ := vodConfig(t)
	var posts []string
	cfg.Outbox = bridge.NewOutbox("https://example.org/video/page/", func(origin, payload string) {
		posts = append(posts, payload)
	})
	s := New(cfg)
	t.Cleanup(s.Close)

	s.Dispatch(player.Mounted{Video: cfg.Video, Context: cfg.Embed})
	s.Dispatch(player.Play{})
	s.Dispatch(player.Pause{})
	s.Dispatch(player.AdPlay{})
	s.Dispatch(player.AdComplete{})
	s.Dispatch(player.Complete{})

	want := []string{"video::playing", "video::paused", "ad::started", "ad::complete", "video::finished"}
	var lifecycle []string
	for _, p := range posts {
		if strings.HasPrefix(p, "video::") || strings.HasPrefix(p, "ad::") {
			lifecycle = append(lifecycle, p)
		}
	}
	if len(lifecycle) != len(want) {
		t.Fatalf("lifecycle posts %v, want %v", lifecycle, want)
	}
	for i, w := range want {
		if lifecycle[i] != w {
			t.Fatalf("post %d = %q, want %q (all: %v)", i, lifecycle[i], w, lifecycle)
		}
	}
}

func TestLiveWiringRecordsStreamStart(t *testing.T) {
	p := &fakePlayer{duration: inf()}
	s := New(Config{
		Player: p,
		Live:   &bridge.LiveContext{PlayerType: bridge.LivePortalPlayer, StationCallsign: "WETA"},
		Clock:  clockwork.NewFakeClock(),
	})

	s.Dispatch(liveplayer.FirstFrame{StreamPosition: 5000})
	if got := s.State().Analytics.StreamStartPosition; got != 5000 {
		t.Fatalf("stream start position %v, want 5000", got)
	}
}

func inf() float64 {
	var zero float64
	return 1 / zero
}
