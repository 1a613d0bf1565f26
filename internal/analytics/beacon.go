package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/embedplay/embedplay/internal/bridge"
)

// BeaconMetadata is the quality-of-experience metadata handed to the
// beacon SDK at initialization.
type BeaconMetadata struct {
	PlayerName      string
	PlayerVersion   string
	AppName         string
	VideoID         string
	VideoTitle      string
	VideoSeries     string
	VideoDuration   float64
	StreamType      string // "on-demand" or "live"
	Affiliate       string
	VideoCodec      string
	EncodingVariant string
	AudioCodec      string
	DRMType         string
}

// Beacon is the QoE measurement SDK as loaded (or not) in the shell.
// Ad blockers routinely strip it, so Available is a capability check,
// not an error path.
type Beacon interface {
	Available() bool
	Init(m BeaconMetadata)
}

// MetadataResolver assembles beacon metadata, fetching the manifest
// when the browser exposes no codec information through the player.
type MetadataResolver struct {
	UserAgent string
	KeySystem func() string // negotiated EME key system, if any
	HTTP      *http.Client
}

func NewMetadataResolver(userAgent string, keySystem func() string) *MetadataResolver {
	return &MetadataResolver{
		UserAgent: userAgent,
		KeySystem: keySystem,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

// CodecStrings determines the raw codec strings for the current
// source. On Safari the only option is reading the master playlist;
// elsewhere the shell reports the codecs it selected.
func (r *MetadataResolver) CodecStrings(ctx context.Context, p bridge.Player, reported string) (video, audio string) {
	if reported != "" {
		return SplitCodecPair(reported)
	}
	if !IsSafari(r.UserAgent) {
		return "", ""
	}
	src := p.Source()
	if src == "" || !strings.Contains(src, ".m3u8") {
		return "", ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", ""
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		slog.Warn("analytics: manifest fetch for codec metadata failed", "error", err)
		return "", ""
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", ""
	}
	return ManifestCodecs(string(body))
}

// Resolve builds the full metadata for a VOD session.
func (r *MetadataResolver) Resolve(ctx context.Context, p bridge.Player, video *bridge.Video, embed *bridge.Context, reportedCodecs string) BeaconMetadata {
	m := BeaconMetadata{
		PlayerVersion: embed.PlayerVersion,
		AppName:       embed.BeaconAppName,
		VideoID:       video.Slug,
		VideoDuration: video.Duration,
		StreamType:    "on-demand",
		Affiliate:     strings.ToUpper(embed.Callsign),
		DRMType:       "none",
	}

	title := video.Title
	if video.Program != nil {
		title = fmt.Sprintf("%s | %s | %s | %s", video.Program.Title, video.Title, video.ID, video.VideoType)
		m.VideoSeries = video.Program.Slug
	}
	m.VideoTitle = title

	if video.HasDRM {
		m.DRMType = DRMSystem(r.UserAgent, r.KeySystem())
	}

	vc, ac := r.CodecStrings(ctx, p, reportedCodecs)
	if parsed, ok := ParseVideoCodec(vc); ok {
		m.VideoCodec = parsed.Codec
		m.EncodingVariant = parsed.Profile + ", " + parsed.Level
	}
	if parsed, ok := ParseAudioCodec(ac); ok {
		m.AudioCodec = parsed.Codec
	}
	return m
}

// ResolveLive builds the metadata for a live session.
func (r *MetadataResolver) ResolveLive(ctx context.Context, p bridge.Player, live *bridge.LiveContext, reportedCodecs string) BeaconMetadata {
	m := BeaconMetadata{
		PlayerVersion: live.PlayerVersion,
		AppName:       live.BeaconAppName,
		VideoID:       live.FeedCID,
		VideoTitle:    live.FeedName,
		StreamType:    "live",
		Affiliate:     strings.ToUpper(live.StationCallsign),
		DRMType:       "none",
	}
	if live.HasDRMFeed {
		m.DRMType = DRMSystem(r.UserAgent, r.KeySystem())
	}
	vc, ac := r.CodecStrings(ctx, p, reportedCodecs)
	if parsed, ok := ParseVideoCodec(vc); ok {
		m.VideoCodec = parsed.Codec
		m.EncodingVariant = parsed.Profile + ", " + parsed.Level
	}
	if parsed, ok := ParseAudioCodec(ac); ok {
		m.AudioCodec = parsed.Codec
	}
	return m
}
