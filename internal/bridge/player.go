// Package bridge defines the boundary between the coordination engine
// and the embedding world: the narrow adapter over the rendering
// widget, the immutable video/context descriptors handed over by the
// producer page, and the two cross-frame message protocols.
package bridge

// TrackMode is the display mode of a text track.
type TrackMode string

const (
	TrackShowing  TrackMode = "showing"
	TrackDisabled TrackMode = "disabled"
)

// TextTrack describes one caption or subtitle track exposed by the
// rendering widget.
type TextTrack struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"` // "captions" or "subtitles"
	Language string    `json:"language"`
	Label    string    `json:"label"`
	Mode     TrackMode `json:"mode"`
}

// TimeInfo is a playback clock sample from the media element.
type TimeInfo struct {
	CurrentTime float64 `json:"currentTime"`
	Position    float64 `json:"position"`
	Duration    float64 `json:"duration"`
}

// Player is the adapter over the rendering widget. The engine never
// reaches into widget internals; it only calls the operations listed
// here. The view layer constructs the concrete player and owns its
// lifecycle — everything behind the store treats it as a read-and-call
// handle, never replacing it.
type Player interface {
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64

	// Source is the URL of the manifest or file currently loaded.
	Source() string

	Play()
	Pause()
	Paused() bool

	Muted() bool
	SetMuted(muted bool)
	Volume() float64
	SetVolume(volume float64)

	IsFullscreen() bool
	RequestFullscreen()
	ExitFullscreen()

	TextTracks() []TextTrack
	SetTextTrackMode(trackID string, mode TrackMode)

	// ShiftControls moves the control bar above embedding-page chrome
	// (sponsorship rows and the like) or back to its default spot.
	ShiftControls(up bool)
}
