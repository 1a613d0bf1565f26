package continuousplay

import (
	"context"
	"encoding/json"

	"github.com/embedplay/embedplay/internal/analytics"
	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/playerapi"
	"github.com/embedplay/embedplay/internal/store"
)

// Fetcher is the slice of playerapi.Client the fetch epic uses.
type Fetcher interface {
	ContinuousPlay(ctx context.Context, slug, stationID, userID string, includePassport bool) (playerapi.Recommendation, error)
}

// NewFetchTriggerEpic watches the progress stream and requests the
// recommendation once remaining time falls under the fetch threshold.
// The threshold crossing is consumed exactly once even when the embed
// is ineligible, so a seek back out of the window never re-triggers.
func NewFetchTriggerEpic(p bridge.Player, video *bridge.Video, embed *bridge.Context) store.Epic {
	var once store.Once
	threshold := FetchThreshold(video)
	return func(a store.Action) []store.Action {
		pr, ok := a.(player.Progress)
		if !ok || bridge.IsLivestream(p) {
			return nil
		}
		if pr.Time.Duration-pr.Time.Position >= threshold {
			return nil
		}
		if !once.Do() || !Enabled(embed) {
			return nil
		}
		return []store.Action{Requested{}}
	}
}

// NewFetchEpic performs the recommendation lookup off the dispatch
// goroutine, honoring the passport toggle at fetch time. Failures
// land as a Failed action; the pipeline keeps running.
func NewFetchEpic(api Fetcher, video *bridge.Video, embed *bridge.Context, includePassport func() bool, dispatch func(store.Action)) store.Epic {
	return func(a store.Action) []store.Action {
		if _, ok := a.(Requested); !ok {
			return nil
		}
		go func() {
			rec, err := api.ContinuousPlay(context.Background(), video.Slug, embed.StationID, embed.UserID, includePassport())
			if err != nil {
				dispatch(Failed{})
				return
			}
			dispatch(Fetched{Payload: rec})
		}()
		return nil
	}
}

// NewCommandTriggerEpic emits the navigate command once the countdown
// runs out, at most once per session, marked passive because nobody
// clicked anything.
func NewCommandTriggerEpic(embed *bridge.Context, state func() State, guard float64) store.Epic {
	var once store.Once
	return func(a store.Action) []store.Action {
		if _, ok := a.(player.Time); !ok {
			return nil
		}
		s := state()
		if !Enabled(embed) || !CountdownFinished(s, guard) {
			return nil
		}
		if !once.Do() {
			return nil
		}
		return []store.Action{SendCommand{Passive: true, Command: CommandNavigate, Payload: s.Payload}}
	}
}

type commandMessage struct {
	Type    string         `json:"type"`
	Command string         `json:"command"`
	Payload commandPayload `json:"payload"`
}

type commandPayload struct {
	Slug string `json:"slug"`
}

// NewSendCommandEpic posts navigate commands to the host page and
// records whether the advance was automatic or viewer-initiated.
func NewSendCommandEpic(out *bridge.Outbox, tracker analytics.Tracker, embed *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		cmd, ok := a.(SendCommand)
		if !ok || !Enabled(embed) || cmd.Payload == nil {
			return nil
		}
		action := "next video - active"
		if cmd.Passive {
			action = "next video - passive"
		}
		tracker.TrackEvent("continuous play command", map[string]any{
			"object_action": action,
		})
		message, err := json.Marshal(commandMessage{
			Type:    "command",
			Command: cmd.Command,
			Payload: commandPayload{Slug: cmd.Payload.Slug},
		})
		if err != nil {
			return nil
		}
		out.SendRaw(string(message))
		return nil
	}
}

// NewHostCommandEpic maps inbound host-page commands onto slice
// actions. Anything else in the message stream is someone else's
// business.
func NewHostCommandEpic(embed *bridge.Context) store.Epic {
	return func(a store.Action) []store.Action {
		msg, ok := a.(player.MessageReceived)
		if !ok || !Enabled(embed) {
			return nil
		}
		in, ok := bridge.ParseMessageData(msg.Data)
		if !ok {
			return nil
		}
		switch in.Command {
		case "disableContinuousPlay":
			return []store.Action{CancelCountdown{}}
		case "enableContinuousPlay":
			return []store.Action{EnableCountdown{}}
		case "excludePassportContinuousPlay":
			return []store.Action{ExcludePassport{}}
		case "includePassportContinuousPlay":
			return []store.Action{IncludePassport{}}
		}
		return nil
	}
}

// NewExitFullscreenEpic drops out of fullscreen when the countdown
// overlay appears, so the viewer actually sees it.
func NewExitFullscreenEpic(p bridge.Player, embed *bridge.Context, state func() State) store.Epic {
	var distinct store.Distinct[Status]
	return func(store.Action) []store.Action {
		if !Enabled(embed) {
			return nil
		}
		status := state().Status
		if !distinct.Changed(status) || status != StatusCountdown {
			return nil
		}
		if p.IsFullscreen() {
			p.ExitFullscreen()
		}
		return nil
	}
}
