package captions

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NativeName resolves a track's language code to the language's own
// name for itself ("Español", "Français"). Unresolvable codes come
// back as "Unknown" so they never collide with a real selection.
func NativeName(code string) string {
	// DRM livestreams label tracks with the three-letter code.
	if code == "eng" {
		code = "en"
	}
	if code == "" {
		return "Unknown"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "Unknown"
	}
	name := display.Self.Name(tag)
	if name == "" {
		return "Unknown"
	}
	return cases.Title(tag).String(name)
}
