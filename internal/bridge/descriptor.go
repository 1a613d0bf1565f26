package bridge

import (
	"encoding/json"
	"fmt"
	"math"
)

// PlayerType identifies the embedding surface the player runs on.
type PlayerType string

const (
	PortalPlayer  PlayerType = "portal_player"
	StationPlayer PlayerType = "station_player"
	PartnerPlayer PlayerType = "partner_player"
	ViralPlayer   PlayerType = "viral_player"
	BentoPlayer   PlayerType = "bento_player"
)

// VideoType classifies the asset; thresholds for continuous play depend
// on it.
type VideoType string

const (
	FullLength VideoType = "full_length"
	Clip       VideoType = "clip"
	Preview    VideoType = "preview"
)

// Chapter is a named offset within a video, in seconds.
type Chapter struct {
	Start float64
	Title string
}

// Program carries the parent show of a video.
type Program struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// DRMSource describes one protected manifest and its license endpoints.
type DRMSource struct {
	URL              string
	Profile          string
	FairplayLicense  string
	FairplayCert     string
	WidevineLicense  string
	PlayreadyLicense string
}

// Video is the immutable descriptor of the asset being played, fetched
// once at mount and never mutated afterwards.
type Video struct {
	ID               string
	Slug             string
	Title            string
	Duration         float64
	VideoType        VideoType
	Program          *Program
	Chapters         []Chapter
	ImageURL         string
	IsPlayable       bool
	HasDRM           bool
	HLSDRMSource     *DRMSource
	DashDRMSource    *DRMSource
	ClosedCaptionURL string
	AirDate          string
}

// ViewingHistory is the profile service's record for one video.
type ViewingHistory struct {
	LegacyMediaID  string
	Duration       float64
	SecondsWatched float64
}

// Context is the immutable per-session configuration for the VOD
// player.
type Context struct {
	Options        Options
	PlayerType     PlayerType
	PlayerVersion  string
	Callsign       string
	UserID         string
	StationID      string
	ViewingHistory map[string]ViewingHistory
	BeaconAppName  string
}

// LiveContext is the live player's counterpart of Context.
type LiveContext struct {
	Options             LiveOptions
	PlayerType          PlayerType
	PlayerVersion       string
	FeedCID             string
	FeedName            string
	StationID           string
	StationCallsign     string
	StationCommonName   string
	HasDRMFeed          bool
	DisableGeolocation  bool
	BeaconAppName       string
}

// LivePlayerTypes eligible for inbound host commands.
const (
	LivePortalPlayer  PlayerType = "livestream_portal_player"
	LivePartnerPlayer PlayerType = "livestream_partner_player"
	LiveStationPlayer PlayerType = "livestream_station_player"
)

// wire shapes posted by the producer page. Field names follow the host
// page's snake_case convention.

type videoWire struct {
	ID               string        `json:"id"`
	Slug             string        `json:"slug"`
	Title            string        `json:"title"`
	Duration         float64       `json:"duration"`
	VideoType        VideoType     `json:"video_type"`
	Program          *Program      `json:"program"`
	Chapters         []chapterWire `json:"chapters"`
	ImageURL         string        `json:"image_url"`
	IsPlayable       bool          `json:"is_playable"`
	HasDRM           bool          `json:"has_drm"`
	HLSDRMVideo      *drmWire      `json:"hls_drm_video"`
	DashDRMVideo     *drmWire      `json:"dash_drm_video"`
	ClosedCaptionURL string        `json:"closed_caption_url"`
	AirDate          string        `json:"air_date"`
}

type chapterWire struct {
	StartTime float64 `json:"start_time"`
	Title     string  `json:"title"`
}

type drmWire struct {
	URL                 string `json:"url"`
	Profile             string `json:"profile"`
	FairplayLicense     string `json:"fairplay_license"`
	FairplayCertificate string `json:"fairplay_certificate"`
	WidevineLicense     string `json:"widevine_license"`
	PlayreadyLicense    string `json:"playready_license"`
}

type contextWire struct {
	PlayerType     PlayerType                    `json:"player_type"`
	PlayerVersion  string                        `json:"player_version"`
	Callsign       string                        `json:"callsign"`
	UserID         string                        `json:"user_id"`
	StationID      string                        `json:"station_id"`
	ViewingHistory map[string]viewingHistoryWire `json:"viewing_history"`
	BeaconAppName  string                        `json:"beacon_app_name"`
}

type viewingHistoryWire struct {
	LegacyMediaID  string  `json:"legacy_tp_media_id"`
	Duration       float64 `json:"duration"`
	SecondsWatched float64 `json:"seconds_watched"`
}

type liveContextWire struct {
	PlayerType         PlayerType `json:"player_type"`
	PlayerVersion      string     `json:"player_version"`
	FeedCID            string     `json:"feed_cid"`
	FeedName           string     `json:"feed_name"`
	StationID          string     `json:"station_id"`
	StationCallsign    string     `json:"station_callsign"`
	StationCommonName  string     `json:"station_common_name"`
	HasDRMFeed         bool       `json:"has_drm_feed"`
	DisableGeolocation bool       `json:"disable_geolocation_livestreams"`
	BeaconAppName      string     `json:"beacon_app_name"`
}

// ParseVideo decodes the producer page's video descriptor.
func ParseVideo(raw []byte) (Video, error) {
	var w videoWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Video{}, fmt.Errorf("parse video descriptor: %w", err)
	}
	v := Video{
		ID:               w.ID,
		Slug:             w.Slug,
		Title:            w.Title,
		Duration:         w.Duration,
		VideoType:        w.VideoType,
		Program:          w.Program,
		ImageURL:         w.ImageURL,
		IsPlayable:       w.IsPlayable,
		HasDRM:           w.HasDRM,
		ClosedCaptionURL: w.ClosedCaptionURL,
		AirDate:          w.AirDate,
	}
	for _, c := range w.Chapters {
		v.Chapters = append(v.Chapters, Chapter{Start: c.StartTime, Title: c.Title})
	}
	if w.HLSDRMVideo != nil {
		v.HLSDRMSource = &DRMSource{
			URL:             w.HLSDRMVideo.URL,
			Profile:         w.HLSDRMVideo.Profile,
			FairplayLicense: w.HLSDRMVideo.FairplayLicense,
			FairplayCert:    w.HLSDRMVideo.FairplayCertificate,
		}
	}
	if w.DashDRMVideo != nil {
		v.DashDRMSource = &DRMSource{
			URL:              w.DashDRMVideo.URL,
			Profile:          w.DashDRMVideo.Profile,
			WidevineLicense:  w.DashDRMVideo.WidevineLicense,
			PlayreadyLicense: w.DashDRMVideo.PlayreadyLicense,
		}
	}
	return v, nil
}

// ParseContext decodes the producer page's context descriptor, merging
// in options parsed from the embed query string.
func ParseContext(raw []byte, query string) (Context, error) {
	var w contextWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Context{}, fmt.Errorf("parse context descriptor: %w", err)
	}
	c := Context{
		Options:       ParseOptions(query),
		PlayerType:    w.PlayerType,
		PlayerVersion: w.PlayerVersion,
		Callsign:      w.Callsign,
		UserID:        w.UserID,
		StationID:     w.StationID,
		BeaconAppName: w.BeaconAppName,
	}
	if len(w.ViewingHistory) > 0 {
		c.ViewingHistory = make(map[string]ViewingHistory, len(w.ViewingHistory))
		for id, h := range w.ViewingHistory {
			c.ViewingHistory[id] = ViewingHistory{
				LegacyMediaID:  h.LegacyMediaID,
				Duration:       h.Duration,
				SecondsWatched: h.SecondsWatched,
			}
		}
	}
	return c, nil
}

// ParseLiveContext decodes the live player's context descriptor.
func ParseLiveContext(raw []byte, query string) (LiveContext, error) {
	var w liveContextWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return LiveContext{}, fmt.Errorf("parse live context descriptor: %w", err)
	}
	return LiveContext{
		Options:            ParseLiveOptions(query),
		PlayerType:         w.PlayerType,
		PlayerVersion:      w.PlayerVersion,
		FeedCID:            w.FeedCID,
		FeedName:           w.FeedName,
		StationID:          w.StationID,
		StationCallsign:    w.StationCallsign,
		StationCommonName:  w.StationCommonName,
		HasDRMFeed:         w.HasDRMFeed,
		DisableGeolocation: w.DisableGeolocation,
		BeaconAppName:      w.BeaconAppName,
	}, nil
}

// IsLivestream reports whether a player handle is currently attached to
// an untrimmed stream: live sources surface a non-finite duration.
func IsLivestream(p Player) bool {
	if p == nil {
		return false
	}
	d := p.Duration()
	return math.IsInf(d, 1) || math.IsNaN(d)
}
