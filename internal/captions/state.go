package captions

import (
	"encoding/json"

	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/store"
)

// Action kinds for the captions slice.
const (
	KindOpenSettings     = "captions.open-settings"
	KindCloseSettings    = "captions.close-settings"
	KindChangeSettings   = "captions.change-settings"
	KindSaveSettings     = "captions.save-settings"
	KindTrackAdded       = "captions.track-added"
	KindSelectionChanged = "captions.selection-changed"
)

type OpenSettings struct{}

func (OpenSettings) Kind() string { return KindOpenSettings }

type CloseSettings struct{}

func (CloseSettings) Kind() string { return KindCloseSettings }

// ChangeSettings edits the preview style only; nothing reaches the
// player style until SaveSettings.
type ChangeSettings struct {
	Patch StylePatch
}

func (ChangeSettings) Kind() string { return KindChangeSettings }

type SaveSettings struct{}

func (SaveSettings) Kind() string { return KindSaveSettings }

// TrackAdded fires as each caption track is parsed from the manifest.
type TrackAdded struct {
	Language string
}

func (TrackAdded) Kind() string { return KindTrackAdded }

// SelectionChanged fires when the showing text track set changes.
type SelectionChanged struct{}

func (SelectionChanged) Kind() string { return KindSelectionChanged }

type State struct {
	SettingsOpen bool  `json:"isSettingsOpen"`
	PlayerStyle  Style `json:"playerStyle"`
	PreviewStyle Style `json:"previewStyle"`
}

func InitialState() State {
	return State{PlayerStyle: DefaultStyle(), PreviewStyle: DefaultStyle()}
}

// LoadState overlays the persisted style blob, if any, on the initial
// state. A corrupt blob is discarded.
func LoadState(prefs persist.Store) State {
	s := InitialState()
	blob, ok := prefs.Get(persist.KeyCaptionStyle)
	if !ok {
		return s
	}
	var saved State
	if err := json.Unmarshal([]byte(blob), &saved); err != nil {
		return s
	}
	saved.SettingsOpen = false
	return saved
}

// Reduce applies a captions action. Save commits the preview style to
// the player style; close discards the preview by copying the player
// style back. Both leave the dialog closed.
func Reduce(s State, a store.Action) State {
	switch a := a.(type) {
	case OpenSettings:
		s.SettingsOpen = true
	case CloseSettings:
		s.PreviewStyle = s.PlayerStyle
		s.SettingsOpen = false
	case ChangeSettings:
		s.PreviewStyle = a.Patch.Apply(s.PreviewStyle)
	case SaveSettings:
		s.PlayerStyle = s.PreviewStyle
		s.SettingsOpen = false
	}
	return s
}
