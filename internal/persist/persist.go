// Package persist stores small per-viewer preferences — caption
// styling, caption selection, mute state, volume — keyed the same way
// regardless of backend so sessions pick up where the viewer left off.
package persist

// Keys under which viewer preferences are stored.
const (
	KeyCaptionStyle     = "captions-v2"
	KeyCaptionSelection = "player.captions.selected"
	KeyMuted            = "player.muted"
	KeyVolume           = "player.volume"
)

// Store is a tiny string KV scoped to a single viewer. Reads of absent
// keys return ok=false rather than an error; backends treat missing
// data as a fresh viewer.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}
