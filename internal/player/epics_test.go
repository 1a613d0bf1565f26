package player

import (
	"testing"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/persist"
)

type fakePlayer struct {
	bridge.Player

	currentTime float64
	paused      bool
	muted       bool
	volume      float64
	fullscreen  bool
	playCalls   int
}

func (f *fakePlayer) CurrentTime() float64 { return f.currentTime }
func (f *fakePlayer) SetCurrentTime(t float64) { f.currentTime = t }
func (f *fakePlayer) Play() { f.paused = false; f.playCalls++ }
func (f *fakePlayer) Pause() { f.paused = true }
func (f *fakePlayer) Paused() bool { return f.paused }
func (f *fakePlayer) SetMuted(m bool) { f.muted = m }
func (f *fakePlayer) SetVolume(v float64) { f.volume = v }
func (f *fakePlayer) IsFullscreen() bool { return f.fullscreen }
func (f *fakePlayer) ExitFullscreen() { f.fullscreen = false }

func TestAutoplayOnlyForPlayableVideosWithOptIn(t *testing.T) {
	cases := []struct {
		name     string
		autoplay bool
		playable bool
		want     int
	}{
		{"opted in and playable", true, true, 1},
		{"opted in, not playable", true, false, 0},
		{"not opted in", false, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePlayer{paused: true}
			epic := NewAutoplayEpic(p)
			epic(Mounted{
				Video:   &bridge.Video{IsPlayable: tc.playable},
				Context: &bridge.Context{Options: bridge.Options{Autoplay: tc.autoplay}},
			})
			if p.playCalls != tc.want {
				t.Fatalf("play calls: got %d, want %d", p.playCalls, tc.want)
			}
		})
	}
}

func TestRestorePreferencesAppliesSavedMuteAndVolume(t *testing.T) {
	prefs := persist.NewMemory()
	prefs.Set(persist.KeyMuted, "true")
	prefs.Set(persist.KeyVolume, "0.3")

	p := &fakePlayer{volume: 1}
	NewRestorePreferencesEpic(p, prefs)(Mounted{})
	if !p.muted {
		t.Fatal("saved mute flag not applied")
	}
	if p.volume != 0.3 {
		t.Fatalf("volume: got %v, want 0.3", p.volume)
	}
}

func TestRestorePreferencesNeverUnmutes(t *testing.T) {
	prefs := persist.NewMemory()
	prefs.Set(persist.KeyMuted, "false")

	p := &fakePlayer{muted: true}
	NewRestorePreferencesEpic(p, prefs)(Mounted{})
	if !p.muted {
		t.Fatal("saved false flag unmuted the player")
	}
}

func TestPersistPreferencesWritesThrough(t *testing.T) {
	prefs := persist.NewMemory()
	epic := NewPersistPreferencesEpic(prefs)
	epic(Mute{Muted: true})
	epic(Volume{Volume: 0.75})

	if v, _ := prefs.Get(persist.KeyMuted); v != "true" {
		t.Fatalf("muted: got %q", v)
	}
	if v, _ := prefs.Get(persist.KeyVolume); v != "0.75" {
		t.Fatalf("volume: got %q", v)
	}
}

func TestProgressEpicEmitsOncePerWholeSecond(t *testing.T) {
	epic := NewProgressEpic()
	var emitted int
	for _, ct := range []float64{10.1, 10.4, 10.9, 11.0, 11.3, 12.7} {
		if out := epic(Time{Time: bridge.TimeInfo{CurrentTime: ct, Position: ct}}); len(out) > 0 {
			emitted++
			pr := out[0].(Progress)
			if pr.Time.CurrentTime != float64(int(ct)) {
				t.Fatalf("emitted currentTime %v for raw %v", pr.Time.CurrentTime, ct)
			}
		}
	}
	if emitted != 3 {
		t.Fatalf("emitted %d progress actions, want 3", emitted)
	}
}

func TestStartSeekOnlyWhenBehindStart(t *testing.T) {
	ctx := &bridge.Context{Options: bridge.Options{Start: 30}}
	p := &fakePlayer{}
	epic := NewStartSeekEpic(p, ctx)

	epic(LoadedMetadata{Time: bridge.TimeInfo{Position: 5}})
	if p.currentTime != 30 {
		t.Fatalf("got %v, want seek to 30", p.currentTime)
	}

	p.currentTime = 45
	epic(LoadedMetadata{Time: bridge.TimeInfo{Position: 45}})
	if p.currentTime != 45 {
		t.Fatal("seeked backwards past the start offset")
	}
}

func TestEndClampSeeksToDuration(t *testing.T) {
	ctx := &bridge.Context{Options: bridge.Options{End: 60}}
	video := &bridge.Video{Duration: 120}
	p := &fakePlayer{}
	NewEndClampEpic(p, video, ctx)(Progress{Time: bridge.TimeInfo{Position: 61}})
	if p.currentTime != 120 {
		t.Fatalf("got %v, want 120", p.currentTime)
	}
}

func TestChapterSeekJumpsToChapterStart(t *testing.T) {
	video := &bridge.Video{Chapters: []bridge.Chapter{{Start: 0}, {Start: 90000}}}
	ctx := &bridge.Context{Options: bridge.Options{Chapter: 2}}
	p := &fakePlayer{}
	NewChapterSeekEpic(p, video, ctx)(Progress{Time: bridge.TimeInfo{Position: 3}})
	if p.currentTime != 90 {
		t.Fatalf("got %v, want 90", p.currentTime)
	}
}

func TestErrorPausesActivePlayback(t *testing.T) {
	p := &fakePlayer{paused: false}
	NewErrorPauseEpic(p)(Error{Code: 2})
	if !p.paused {
		t.Fatal("player kept playing behind the error overlay")
	}
}

func TestEndscreenExitsFullscreenForPartnerEmbeds(t *testing.T) {
	ctx := &bridge.Context{PlayerType: bridge.PartnerPlayer}
	p := &fakePlayer{fullscreen: true}
	NewEndscreenEpic(p, ctx)(Complete{})
	if p.fullscreen {
		t.Fatal("partner embed stayed fullscreen after completion")
	}
}

func TestLegacyEventsMapLifecycleToColonProtocol(t *testing.T) {
	var posts []string
	out := bridge.NewOutbox("https://example.org/page/", func(origin, payload string) {
		posts = append(posts, payload)
	})
	epic := NewLegacyEventsEpic(out)

	for _, a := range []struct {
		action interface{ Kind() string }
		want   string
	}{
		{Play{}, "video::playing"},
		{Pause{}, "video::paused"},
		{Seeking{}, "video::seeking"},
		{Seeked{}, "video::seeked"},
		{AdPlay{}, "ad::started"},
		{AdComplete{}, "ad::complete"},
		{Complete{}, "video::finished"},
	} {
		epic(a.action)
		if len(posts) == 0 || posts[len(posts)-1] != a.want {
			t.Fatalf("%s: posts %v, want trailing %q", a.action.Kind(), posts, a.want)
		}
	}

	epic(Time{})
	epic(FirstFrame{})
	if len(posts) != 7 {
		t.Fatalf("got %d posts, want 7; non-lifecycle actions must stay silent", len(posts))
	}
}

func TestLegacyEventsDroppedWithoutReferrer(t *testing.T) {
	var posts []string
	out := bridge.NewOutbox("", func(origin, payload string) {
		posts = append(posts, payload)
	})
	NewLegacyEventsEpic(out)(Play{})
	if len(posts) != 0 {
		t.Fatalf("posted %v with no referrer origin", posts)
	}
}
