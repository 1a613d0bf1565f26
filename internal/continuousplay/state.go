// Package continuousplay drives the next-video recommendation flow: a
// recommendation is fetched shortly before the video ends, a countdown
// runs over the final seconds, and when it expires the host page is
// told to navigate to the next video.
package continuousplay

import (
	"math"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/playerapi"
	"github.com/embedplay/embedplay/internal/store"
)

// Status of the countdown machine. Cancelled is sticky for the session
// once the viewer opts out, unless the host explicitly re-enables.
type Status string

const (
	StatusStandby   Status = "STANDBY"
	StatusCountdown Status = "COUNTDOWN"
	StatusCancelled Status = "CANCELLED"
)

// PayloadStatus tracks the recommendation fetch.
type PayloadStatus string

const (
	PayloadInitialized PayloadStatus = "INITIALIZED"
	PayloadFetched     PayloadStatus = "FETCHED"
	PayloadFailed      PayloadStatus = "FAILED"
)

const (
	// HandoffPadding is how close to the end of a video the handoff to
	// the next one is considered underway, in seconds. The exit-path
	// MediaStop uses it to avoid counting the handoff as abandonment.
	HandoffPadding = 1.2

	// CommandGuard is the countdown remainder, in seconds, under which
	// the navigate command fires. Tolerates progress-tick jitter around
	// zero.
	CommandGuard = 0.15

	// CommandNavigate asks the host page to load the recommended video.
	CommandNavigate = "navigate-to-continuous-play-video"
)

// FetchThreshold returns how many seconds before the end the
// recommendation fetch starts.
func FetchThreshold(video *bridge.Video) float64 {
	if video != nil && video.VideoType == bridge.FullLength {
		return 40
	}
	return 20
}

// CountdownThreshold returns how many seconds before the end the
// countdown overlay appears. Full-length assets get a longer runway.
func CountdownThreshold(video *bridge.Video) float64 {
	if video != nil && video.VideoType == bridge.FullLength {
		return 30
	}
	return 10
}

// Enabled reports whether continuous play runs for this embed. Only
// the portal and station surfaces get it, and host pages can switch it
// off, e.g. for preview modals on video playback pages.
func Enabled(embed *bridge.Context) bool {
	if embed == nil {
		return false
	}
	onEligibleSurface := embed.PlayerType == bridge.PortalPlayer ||
		embed.PlayerType == bridge.StationPlayer
	return onEligibleSurface && !embed.Options.DisableContinuousPlay
}

// CountdownFinished reports whether the countdown has run out and the
// navigate command should go.
func CountdownFinished(s State, guard float64) bool {
	return s.Status == StatusCountdown && s.HasCountdown && float64(s.CountdownSeconds) < guard
}

// Action kinds.
const (
	KindRequested       = "continuousplay.payload-requested"
	KindFetched         = "continuousplay.payload-fetched"
	KindFailed          = "continuousplay.payload-failed"
	KindCancelCountdown = "continuousplay.cancel-countdown"
	KindEnableCountdown = "continuousplay.enable-countdown"
	KindExcludePassport = "continuousplay.exclude-passport"
	KindIncludePassport = "continuousplay.include-passport"
	KindSendCommand     = "continuousplay.send-command"
)

// Requested asks for the next-video recommendation.
type Requested struct{}

func (Requested) Kind() string { return KindRequested }

// Fetched carries a successfully fetched recommendation.
type Fetched struct {
	Payload playerapi.Recommendation
}

func (Fetched) Kind() string { return KindFetched }

// Failed records that the recommendation fetch did not succeed. The
// countdown overlay simply never gets data to show.
type Failed struct{}

func (Failed) Kind() string { return KindFailed }

// CancelCountdown is the viewer opting out for this video.
type CancelCountdown struct{}

func (CancelCountdown) Kind() string { return KindCancelCountdown }

// EnableCountdown is the host page re-enabling the flow after a
// cancel. It does not force a countdown, only lifts the cancel.
type EnableCountdown struct{}

func (EnableCountdown) Kind() string { return KindEnableCountdown }

// ExcludePassport restricts recommendations to freely watchable
// content.
type ExcludePassport struct{}

func (ExcludePassport) Kind() string { return KindExcludePassport }

// IncludePassport lifts the restriction again.
type IncludePassport struct{}

func (IncludePassport) Kind() string { return KindIncludePassport }

// SendCommand carries a navigate command toward the host page.
// Passive distinguishes countdown expiry from the viewer clicking the
// thumbnail.
type SendCommand struct {
	Passive bool
	Command string
	Payload *playerapi.Recommendation
}

func (SendCommand) Kind() string { return KindSendCommand }

// State is the continuous-play slice.
type State struct {
	Status             Status
	PayloadStatus      PayloadStatus
	Payload            *playerapi.Recommendation
	CountdownSeconds   int
	HasCountdown       bool
	CountdownThreshold float64
	IncludePassport    bool
	PlayingAd          bool
}

func InitialState() State {
	return State{
		Status:          StatusStandby,
		PayloadStatus:   PayloadInitialized,
		IncludePassport: true,
	}
}

// NewReducer builds the slice reducer. The video is bound up front
// because the countdown threshold depends on its content type.
func NewReducer(video *bridge.Video) func(State, store.Action) State {
	return func(s State, a store.Action) State {
		switch a := a.(type) {
		case Fetched:
			payload := a.Payload
			s.PayloadStatus = PayloadFetched
			s.Payload = &payload
		case Failed:
			s.PayloadStatus = PayloadFailed
		case CancelCountdown:
			s.Status = StatusCancelled
		case EnableCountdown:
			if s.Status != StatusCountdown {
				s.Status = StatusStandby
			}
		case ExcludePassport:
			s.IncludePassport = false
		case IncludePassport:
			s.IncludePassport = true
		case player.AdPlay:
			s.PlayingAd = true
		case player.AdComplete:
			s.PlayingAd = false
		case player.Time:
			// Until the recommendation is in there is nothing to count
			// down toward; wait for a later tick.
			if s.PayloadStatus != PayloadFetched {
				return s
			}
			if s.CountdownThreshold == 0 {
				s.CountdownThreshold = CountdownThreshold(video)
			}
			remaining := a.Time.Duration - a.Time.Position
			switch {
			case s.PlayingAd:
				s.Status = StatusStandby
			case s.Status == StatusCancelled:
				// Sticky until a host command lifts it.
			case remaining < s.CountdownThreshold:
				s.Status = StatusCountdown
			default:
				s.Status = StatusStandby
			}
			if s.Status == StatusCountdown {
				s.CountdownSeconds = int(math.Round(remaining))
				s.HasCountdown = true
			}
		}
		return s
	}
}
