package session

import (
	"encoding/json"

	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/captions"
	"github.com/embedplay/embedplay/internal/engine"
)

// Envelope is every message the shell sends over the session socket.
// The first message must be an init; everything after is an event.
type Envelope struct {
	Type string `json:"type"`

	// Init fields. Video and Context describe an on-demand embed,
	// LiveContext a live one. Query is the embed URL query string the
	// options are parsed from.
	Video       json.RawMessage `json:"video,omitempty"`
	Context     json.RawMessage `json:"context,omitempty"`
	LiveContext json.RawMessage `json:"liveContext,omitempty"`
	Query       string          `json:"query,omitempty"`
	Referrer    string          `json:"referrer,omitempty"`
	UserAgent   string          `json:"userAgent,omitempty"`
	KeySystem   string          `json:"keySystem,omitempty"`
	Codecs      string          `json:"codecs,omitempty"`

	// Event fields, present depending on Name.
	Name           string               `json:"name,omitempty"`
	Time           *bridge.TimeInfo     `json:"time,omitempty"`
	Muted          *bool                `json:"muted,omitempty"`
	Volume         *float64             `json:"volume,omitempty"`
	Code           int                  `json:"code,omitempty"`
	Message        string               `json:"message,omitempty"`
	Tracks         []bridge.TextTrack   `json:"tracks,omitempty"`
	Data           string               `json:"data,omitempty"`
	StreamPosition float64              `json:"streamPosition,omitempty"`
	Screen         string               `json:"screen,omitempty"`
	Style          *captions.StylePatch `json:"style,omitempty"`
	Language       string               `json:"language,omitempty"`
	Source         string               `json:"source,omitempty"`
	Fullscreen     *bool                `json:"fullscreen,omitempty"`

	// Geolocation replies.
	Permission string  `json:"permission,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	ErrorCode  int     `json:"errorCode,omitempty"`
}

// Message type tags.
const (
	TypeInit  = "init"
	TypeEvent = "event"

	TypeCommand = "command"
	TypePost    = "post"
	TypeReply   = "reply"
	TypeState   = "state"

	TypePermission = "permission"
	TypeLocation   = "location"
)

// Outgoing is every message the engine sends back to the shell:
// player commands, host-page postMessages (with the exact target
// origin), legacy getter replies, and state snapshots.
type Outgoing struct {
	Type    string  `json:"type"`
	Command string  `json:"command,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Flag    bool    `json:"flag,omitempty"`
	TrackID string  `json:"trackId,omitempty"`
	Mode    string  `json:"mode,omitempty"`
	Origin  string  `json:"origin,omitempty"`
	Payload string  `json:"payload,omitempty"`
	Data    string  `json:"data,omitempty"`

	State *engine.GlobalState `json:"state,omitempty"`
}

// Shell-bound command names.
const (
	CmdPlay              = "play"
	CmdPause             = "pause"
	CmdSeek              = "seek"
	CmdSetMuted          = "setMuted"
	CmdSetVolume         = "setVolume"
	CmdRequestFullscreen = "requestFullscreen"
	CmdExitFullscreen    = "exitFullscreen"
	CmdSetTextTrack      = "setTextTrack"
	CmdShiftControls     = "shiftControls"
	CmdQueryPermission   = "queryPermission"
	CmdRequestLocation   = "requestLocation"
)
