// Package player is the on-demand playback slice: lifecycle state for
// a single mounted video plus the reactions that keep the player
// honoring its embed options.
package player

import "github.com/embedplay/embedplay/internal/bridge"

// Action kinds for the on-demand player slice.
const (
	KindMounted         = "player.mounted"
	KindLoadedMetadata  = "player.loaded-metadata"
	KindPlay            = "player.play"
	KindFirstFrame      = "player.first-frame"
	KindPause           = "player.pause"
	KindSeeking         = "player.seeking"
	KindSeeked          = "player.seeked"
	KindTime            = "player.time"
	KindMute            = "player.mute"
	KindVolume          = "player.volume"
	KindProgress        = "player.progress"
	KindError           = "player.error"
	KindComplete        = "player.complete"
	KindAdPlay          = "player.ad-play"
	KindAdPause         = "player.ad-pause"
	KindAdComplete      = "player.ad-complete"
	KindTrackChange     = "player.track-change"
	KindMessageReceived = "player.message-received"
)

// Mounted fires once when the shell has attached the media element and
// the descriptor and embed context are known.
type Mounted struct {
	Video   *bridge.Video
	Context *bridge.Context
}

func (Mounted) Kind() string { return KindMounted }

// LoadedMetadata fires when the media duration becomes known.
type LoadedMetadata struct {
	Time bridge.TimeInfo
}

func (LoadedMetadata) Kind() string { return KindLoadedMetadata }

type Play struct{}

func (Play) Kind() string { return KindPlay }

// FirstFrame fires once, when the first content frame renders.
type FirstFrame struct{}

func (FirstFrame) Kind() string { return KindFirstFrame }

type Pause struct{}

func (Pause) Kind() string { return KindPause }

// Seeking and Seeked bracket a scrub; the reducers ignore them, but
// legacy hosts are told about both ends.
type Seeking struct{}

func (Seeking) Kind() string { return KindSeeking }

type Seeked struct{}

func (Seeked) Kind() string { return KindSeeked }

// Time is the raw, high-frequency timeupdate stream. The progress epic
// collapses it to whole-second Progress actions; everything downstream
// listens to those instead.
type Time struct {
	Time bridge.TimeInfo
}

func (Time) Kind() string { return KindTime }

type Mute struct {
	Muted bool
}

func (Mute) Kind() string { return KindMute }

type Volume struct {
	Volume float64
}

func (Volume) Kind() string { return KindVolume }

// Progress is the de-duplicated once-per-second position stream.
type Progress struct {
	Time bridge.TimeInfo
}

func (Progress) Kind() string { return KindProgress }

type Error struct {
	Code    int
	Message string
}

func (Error) Kind() string { return KindError }

type Complete struct{}

func (Complete) Kind() string { return KindComplete }

type AdPlay struct{}

func (AdPlay) Kind() string { return KindAdPlay }

type AdPause struct{}

func (AdPause) Kind() string { return KindAdPause }

type AdComplete struct{}

func (AdComplete) Kind() string { return KindAdComplete }

// TrackChange fires when the showing text track set changes.
type TrackChange struct {
	Tracks []bridge.TextTrack
}

func (TrackChange) Kind() string { return KindTrackChange }

// MessageReceived carries a raw cross-frame payload from the host page.
type MessageReceived struct {
	Data string
}

func (MessageReceived) Kind() string { return KindMessageReceived }
