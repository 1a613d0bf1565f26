package analytics

import (
	"strings"

	"github.com/mssola/useragent"
)

// IsSafari reports whether the session's browser is Safari proper.
// Chrome and Edge on iOS embed WebKit but identify themselves, so only
// the real thing takes the native-HLS and FairPlay paths.
func IsSafari(uaString string) bool {
	ua := useragent.New(uaString)
	name, _ := ua.Browser()
	return name == "Safari"
}

// DRMSystem names the DRM system in play for beacon metadata. Safari
// always means FairPlay; elsewhere the shell reports the EME key
// system it negotiated.
func DRMSystem(uaString, keySystem string) string {
	if IsSafari(uaString) {
		return "fairplay"
	}
	switch {
	case keySystem == "":
		return ""
	case strings.Contains(keySystem, "widevine"):
		return "widevine"
	case strings.Contains(keySystem, "playready"):
		return "playready"
	default:
		return keySystem
	}
}
