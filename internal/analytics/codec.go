package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// VideoCodec is the parsed form of an RFC 6381 video codec string.
type VideoCodec struct {
	Codec   string
	Profile string
	Level   string
}

// AudioCodec is the parsed form of an audio codec string. Everything
// served today is AAC; the profile distinguishes LC from oddities.
type AudioCodec struct {
	Codec   string
	Profile string
}

var (
	avcRe  = regexp.MustCompile(`(?i)^avc1\.([0-9a-f]{6})$`)
	hevcRe = regexp.MustCompile(`(?i)^hvc1\.(\d+)\.(\d+)\.L(\d+)\.B\d+$`)
)

var avcProfiles = map[int64]string{
	66:  "Baseline",
	77:  "Main",
	88:  "Extended",
	100: "High",
	110: "High 10",
	122: "High 4:2:2",
	144: "High 4:4:4",
}

var hevcProfiles = map[int]string{
	1: "Main",
	2: "Main 10",
}

// ParseVideoCodec parses AVC ("avc1.64001e") and HEVC
// ("hvc1.1.6.L120.B0") codec strings. A bare "avc1" is what static MP4
// encodings report.
func ParseVideoCodec(s string) (VideoCodec, bool) {
	if s == "" {
		return VideoCodec{}, false
	}

	if m := avcRe.FindStringSubmatch(s); m != nil {
		hex := m[1]
		profileIDC, _ := strconv.ParseInt(hex[0:2], 16, 64)
		levelIDC, _ := strconv.ParseInt(hex[4:6], 16, 64)
		profile, ok := avcProfiles[profileIDC]
		if !ok {
			profile = "Unknown"
		}
		return VideoCodec{
			Codec:   "AVC",
			Profile: profile,
			Level:   fmt.Sprintf("%.1f", float64(levelIDC)/10),
		}, true
	}

	if s == "avc1" {
		return VideoCodec{Codec: "AVC", Profile: "Baseline", Level: "3.0"}, true
	}

	if m := hevcRe.FindStringSubmatch(s); m != nil {
		profileID, _ := strconv.Atoi(m[1])
		levelInt, _ := strconv.Atoi(m[3])
		profile, ok := hevcProfiles[profileID]
		if !ok {
			profile = "Unknown"
		}
		return VideoCodec{
			Codec:   "HEVC",
			Profile: profile,
			Level:   fmt.Sprintf("%.1f", float64(levelInt)/10),
		}, true
	}

	return VideoCodec{}, false
}

// ParseAudioCodec parses an audio codec string.
func ParseAudioCodec(s string) (AudioCodec, bool) {
	if s == "" {
		return AudioCodec{}, false
	}
	if strings.Contains(s, "mp4a") {
		return AudioCodec{Codec: "AAC", Profile: "LC"}, true
	}
	return AudioCodec{Codec: "AAC", Profile: "Unknown"}, true
}

// SplitCodecPair splits a MIME codecs parameter ("avc1.640029,mp4a.40.2")
// into its video and audio halves.
func SplitCodecPair(codecs string) (video, audio string) {
	for _, c := range strings.Split(codecs, ",") {
		c = strings.TrimSpace(c)
		switch {
		case strings.Contains(c, "av"), strings.Contains(c, "vp"),
			strings.Contains(c, "hev"), strings.Contains(c, "hvc"):
			if video == "" {
				video = c
			}
		case strings.Contains(c, "mp4"), strings.Contains(c, "ac"):
			if audio == "" {
				audio = c
			}
		}
	}
	return video, audio
}

var manifestCodecsRe = regexp.MustCompile(`CODECS="([^"]+)"`)

// ManifestCodecs pulls the first CODECS attribute out of an HLS master
// playlist. Browsers on native HLS expose nothing through the player,
// so the manifest text is the only source.
func ManifestCodecs(manifest string) (video, audio string) {
	for _, line := range strings.Split(manifest, "\n") {
		if !strings.HasPrefix(line, "#EXT-X-STREAM-INF") {
			continue
		}
		if m := manifestCodecsRe.FindStringSubmatch(line); m != nil {
			return SplitCodecPair(m[1])
		}
	}
	return "", ""
}
