// Package liveplayer is the livestream slice: playback state for an
// unbounded stream plus the service-area availability machine that
// gates it.
package liveplayer

import "github.com/embedplay/embedplay/internal/bridge"

// Action kinds for the live player slice.
const (
	KindMounted         = "live.mounted"
	KindLoadedMetadata  = "live.loaded-metadata"
	KindPlay            = "live.play"
	KindPause           = "live.pause"
	KindTime            = "live.time"
	KindMute            = "live.mute"
	KindVolume          = "live.volume"
	KindFirstFrame      = "live.first-frame"
	KindProgress        = "live.progress"
	KindError           = "live.error"
	KindComplete        = "live.complete"
	KindSetAvailability = "live.set-availability"
	KindRequestLocation = "live.request-location"
)

// Mounted fires once when the shell has attached the live stream.
type Mounted struct {
	Context *bridge.LiveContext
}

func (Mounted) Kind() string { return KindMounted }

type LoadedMetadata struct{}

func (LoadedMetadata) Kind() string { return KindLoadedMetadata }

type Play struct{}

func (Play) Kind() string { return KindPlay }

type Pause struct{}

func (Pause) Kind() string { return KindPause }

// Time is the raw timeupdate stream; the progress epic collapses it to
// whole-second Progress actions.
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

// FirstFrame carries the stream position at which viewing began. A
// live stream has no finite duration, so watch time is computed later
// as furthest position minus this start position.
type FirstFrame struct {
	StreamPosition float64
}

func (FirstFrame) Kind() string { return KindFirstFrame }

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

// SetAvailability moves the availability machine to a new phase.
type SetAvailability struct {
	Availability Availability
}

func (SetAvailability) Kind() string { return KindSetAvailability }

// RequestLocation fires when the viewer presses the location-request
// button, consenting to a device location check.
type RequestLocation struct{}

func (RequestLocation) Kind() string { return KindRequestLocation }
