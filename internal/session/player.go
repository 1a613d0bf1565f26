package session

import (
	"math"
	"sync"

	"github.com/embedplay/embedplay/internal/bridge"
)

// shellPlayer is the engine's handle on the media element living in
// the browser shell. Reads come from a mirror the event stream keeps
// current; writes go out as commands. Commands are applied to the
// mirror optimistically so an epic that writes and immediately reads
// sees its own effect.
type shellPlayer struct {
	send func(Outgoing)

	mu         sync.RWMutex
	live       bool
	time       bridge.TimeInfo
	paused     bool
	muted      bool
	volume     float64
	fullscreen bool
	source     string
	tracks     []bridge.TextTrack
}

func newShellPlayer(send func(Outgoing), live bool) *shellPlayer {
	return &shellPlayer{send: send, live: live, paused: true, volume: 1}
}

func (p *shellPlayer) CurrentTime() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.time.CurrentTime
}

func (p *shellPlayer) SetCurrentTime(t float64) {
	p.mu.Lock()
	p.time.CurrentTime = t
	p.time.Position = t
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdSeek, Value: t})
}

func (p *shellPlayer) Duration() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.live {
		return math.Inf(1)
	}
	return p.time.Duration
}

func (p *shellPlayer) Source() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}

func (p *shellPlayer) Play() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdPlay})
}

func (p *shellPlayer) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdPause})
}

func (p *shellPlayer) Paused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

func (p *shellPlayer) Muted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.muted
}

func (p *shellPlayer) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdSetMuted, Flag: muted})
}

func (p *shellPlayer) Volume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

func (p *shellPlayer) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdSetVolume, Value: v})
}

func (p *shellPlayer) IsFullscreen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fullscreen
}

func (p *shellPlayer) RequestFullscreen() {
	p.mu.Lock()
	p.fullscreen = true
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdRequestFullscreen})
}

func (p *shellPlayer) ExitFullscreen() {
	p.mu.Lock()
	p.fullscreen = false
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdExitFullscreen})
}

func (p *shellPlayer) TextTracks() []bridge.TextTrack {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]bridge.TextTrack, len(p.tracks))
	copy(out, p.tracks)
	return out
}

func (p *shellPlayer) SetTextTrackMode(id string, mode bridge.TrackMode) {
	p.mu.Lock()
	for i := range p.tracks {
		if p.tracks[i].ID == id {
			p.tracks[i].Mode = mode
		}
	}
	p.mu.Unlock()
	p.send(Outgoing{Type: TypeCommand, Command: CmdSetTextTrack, TrackID: id, Mode: string(mode)})
}

func (p *shellPlayer) ShiftControls(up bool) {
	p.send(Outgoing{Type: TypeCommand, Command: CmdShiftControls, Flag: up})
}

// observe folds a shell event into the mirror.
func (p *shellPlayer) observe(env Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch env.Name {
	case "play", "adplay":
		p.paused = false
	case "pause", "adpause", "complete", "error":
		p.paused = true
	case "timeupdate", "loadedmetadata":
		if env.Time != nil {
			p.time = *env.Time
		}
	case "mute":
		if env.Muted != nil {
			p.muted = *env.Muted
		}
	case "volumechange":
		if env.Volume != nil {
			p.volume = *env.Volume
		}
	case "trackchange":
		p.tracks = env.Tracks
	case "fullscreenchange":
		if env.Fullscreen != nil {
			p.fullscreen = *env.Fullscreen
		}
	case "sourcechange":
		p.source = env.Source
	}
}
