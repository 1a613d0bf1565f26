package bridge

import (
	"encoding/json"
	"strings"
)

// InboundMessage is the modern host-page protocol: a JSON object
// carrying a single command string. Commands the engine does not handle
// itself (continuous play toggles) are surfaced through epics; the rest
// act directly on the player.
type InboundMessage struct {
	Command string `json:"command"`
}

// ParseMessageData parses an inbound postMessage payload. Payloads that
// are not valid JSON objects are dropped silently — the host page can
// and does broadcast traffic for other listeners.
func ParseMessageData(data string) (InboundMessage, bool) {
	var msg InboundMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return InboundMessage{}, false
	}
	return msg, msg.Command != ""
}

type commandFunc func(Player)

var commandHandlers = map[string]commandFunc{
	"toggle": func(p Player) {
		if p.Paused() {
			p.Play()
		} else {
			p.Pause()
		}
	},
	"play":  func(p Player) { p.Play() },
	"pause": func(p Player) { p.Pause() },
	"skipForward": func(p Player) {
		p.SetCurrentTime(p.CurrentTime() + 10)
	},
	"skipBackward": func(p Player) {
		p.SetCurrentTime(p.CurrentTime() - 10)
	},
	"mute": func(p Player) { p.SetMuted(!p.Muted()) },
	"toggleFullscreen": func(p Player) {
		if p.IsFullscreen() {
			p.ExitFullscreen()
		} else {
			p.RequestFullscreen()
		}
	},
	"closedCaptions": func(p Player) {
		tracks := FilterTextTracks(p.TextTracks())
		if len(tracks) == 0 {
			return
		}
		first := tracks[0]
		next := TrackShowing
		if first.Mode == TrackShowing {
			next = TrackDisabled
		}
		p.SetTextTrackMode(first.ID, next)
	},
	"volumeUp": func(p Player) {
		p.SetVolume(min(p.Volume()+0.1, 1))
	},
	"volumeDown": func(p Player) {
		p.SetVolume(max(p.Volume()-0.1, 0))
	},
	"controlsUp":      func(p Player) { p.ShiftControls(true) },
	"controlsDefault": func(p Player) { p.ShiftControls(false) },
}

// HandleCommand applies a host-page command to the player. Unknown
// commands are ignored.
func HandleCommand(p Player, command string) {
	if p == nil {
		return
	}
	if handler, ok := commandHandlers[command]; ok {
		handler(p)
	}
}

// FilterTextTracks keeps only caption and subtitle tracks; widgets also
// expose metadata, chapter, and thumbnail tracks on the same list.
func FilterTextTracks(tracks []TextTrack) []TextTrack {
	var out []TextTrack
	for _, t := range tracks {
		if t.Kind == "captions" || t.Kind == "subtitles" {
			out = append(out, t)
		}
	}
	return out
}

// LegacyReply posts an answer back to the window that sent a legacy
// query, on that window's own origin.
type LegacyReply func(message string)

// legacy protocol verbs that never get a reply.
var legacyNoResponse = map[string]bool{
	"play": true, "pause": true, "seek": true, "stop": true,
}

// legacy verbs that must never be forwarded to the player; they are
// bootstrap messages this side emits, echoed back by naive hosts.
var legacyDenied = map[string]bool{
	"initialized": true, "video": true, "videoInfo": true,
}

// legacyGetters answer synchronous queries against the player handle.
var legacyGetters = map[string]func(Player) any{
	"paused":      func(p Player) any { return p.Paused() },
	"muted":       func(p Player) any { return p.Muted() },
	"volume":      func(p Player) any { return p.Volume() },
	"currentTime": func(p Player) any { return p.CurrentTime() },
	"duration":    func(p Player) any { return p.Duration() },
}

// legacySetters apply `action::value` writes.
var legacySetters = map[string]func(Player, string){
	"seek": func(p Player, v string) {
		if secs, ok := parseSeconds(v); ok {
			p.SetCurrentTime(secs)
		}
	},
	"volume": func(p Player, v string) {
		if vol, ok := parseSeconds(v); ok && vol >= 0 && vol <= 1 {
			p.SetVolume(vol)
		}
	},
}

func parseSeconds(v string) (float64, bool) {
	var secs float64
	if err := json.Unmarshal([]byte(v), &secs); err != nil {
		return 0, false
	}
	return secs, true
}

// HandleLegacyMessage implements the colon-delimited protocol older
// embedding partners still speak: `action` alone is a query answered
// with `action::result`, `action::value` is a write. Anything
// unrecognized is dropped without a reply.
func HandleLegacyMessage(p Player, data string, reply LegacyReply) {
	if p == nil || data == "" {
		return
	}

	action, value, _ := strings.Cut(data, "::")
	if action == "" || legacyDenied[action] {
		return
	}

	if value == "" {
		switch action {
		case "play":
			p.Play()
		case "pause":
			p.Pause()
		case "stop":
			p.Pause()
		}
		if legacyNoResponse[action] {
			return
		}
		getter, ok := legacyGetters[action]
		if !ok || reply == nil {
			return
		}
		answer, err := json.Marshal(getter(p))
		if err != nil {
			return
		}
		reply(action + "::" + string(answer))
		return
	}

	if setter, ok := legacySetters[action]; ok {
		setter(p, value)
	}
}
