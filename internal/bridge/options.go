package bridge

import (
	"math"
	"net/url"
	"strconv"
)

// Options are the embed query-string switches for the VOD player.
type Options struct {
	TopBar                bool
	Autoplay              bool
	Muted                 bool
	Endscreen             bool
	PreviewLayout         bool
	DisableContinuousPlay bool
	ParentURL             string
	Start                 float64
	End                   float64
	Chapter               int
	Width                 int
	Height                int
}

// LiveOptions are the embed query-string switches for the live player.
type LiveOptions struct {
	Autoplay           bool
	Muted              bool
	FeedCID            string
	ChannelSwitch      bool
	ScheduleLink       bool
	DisableGeolocation bool
}

func boolParam(values url.Values, key string, fallback bool) bool {
	v := values.Get(key)
	if v == "" {
		return fallback
	}
	return v == "true"
}

func floatParam(values url.Values, key string) float64 {
	v, err := strconv.ParseFloat(values.Get(key), 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// ParseOptions parses the embed query string. Anything malformed falls
// back to the option's default; the player must come up with whatever
// the page gave it.
func ParseOptions(query string) Options {
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}

	opts := Options{
		TopBar:                boolParam(values, "topbar", false),
		Autoplay:              boolParam(values, "autoplay", false),
		Muted:                 boolParam(values, "muted", false),
		Endscreen:             boolParam(values, "endscreen", true),
		PreviewLayout:         boolParam(values, "previewLayout", false),
		DisableContinuousPlay: boolParam(values, "unsafeDisableContinuousPlay", false),
		ParentURL:             values.Get("parentURL"),
	}

	// A chapter request overrides explicit start/end clipping.
	if chapter, err := strconv.Atoi(values.Get("chapter")); err == nil && chapter > 0 {
		opts.Chapter = chapter
	} else {
		opts.Start = floatParam(values, "start")
		end := floatParam(values, "end")
		if end > 0 && (opts.Start == 0 || end > opts.Start) {
			opts.End = end
		}
	}

	// Width derives from the requested height at 16:9.
	if h, err := strconv.Atoi(values.Get("h")); err == nil && h > 0 {
		opts.Height = h
		opts.Width = int(math.Ceil(16.0 / 9.0 * float64(h)))
	}

	return opts
}

// ParseLiveOptions parses the live player's embed query string.
func ParseLiveOptions(query string) LiveOptions {
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	return LiveOptions{
		Autoplay:           boolParam(values, "autoplay", false),
		Muted:              boolParam(values, "muted", false),
		FeedCID:            values.Get("feed_cid"),
		ChannelSwitch:      boolParam(values, "channel_switch", false),
		ScheduleLink:       boolParam(values, "schedule_link", true),
		DisableGeolocation: boolParam(values, "unsafeDisableGeolocationLivestreams", false),
	}
}
