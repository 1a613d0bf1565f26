package bridge

import (
	"encoding/json"
	"net/url"
)

// PostFunc delivers an outbound message to the host page on a specific
// target origin.
type PostFunc func(origin string, payload string)

// Outbox emits player lifecycle events to the embedding page. Messages
// are only ever addressed to the origin derived from the document
// referrer; with no known referrer nothing is sent, rather than
// broadcasting to any listener.
type Outbox struct {
	origin string
	post   PostFunc
}

// NewOutbox derives the target origin from the referrer URL. An empty
// or unparseable referrer yields an outbox that drops everything.
func NewOutbox(referrer string, post PostFunc) *Outbox {
	o := &Outbox{post: post}
	if referrer == "" || post == nil {
		return o
	}
	u, err := url.Parse(referrer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return o
	}
	o.origin = u.Scheme + "://" + u.Host
	return o
}

// Origin returns the resolved target origin, empty when unknown.
func (o *Outbox) Origin() string { return o.origin }

// Send posts a JSON event message. Extra fields are merged alongside
// the event name.
func (o *Outbox) Send(event string, fields map[string]any) {
	if o.origin == "" {
		return
	}
	body := map[string]any{"event": event}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return
	}
	o.post(o.origin, string(payload))
}

// SendRaw posts a preformatted legacy-protocol string.
func (o *Outbox) SendRaw(message string) {
	if o.origin == "" {
		return
	}
	o.post(o.origin, message)
}

// SendLegacyInitialized announces readiness to legacy hosts.
func (o *Outbox) SendLegacyInitialized() {
	o.SendRaw("initialized")
}

// LegacyVideoInfo is the payload legacy hosts receive once the video
// descriptor is known.
type LegacyVideoInfo struct {
	CID      string  `json:"cid"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// SendLegacyVideoInfo posts the `videoInfo::` bootstrap message.
func (o *Outbox) SendLegacyVideoInfo(info LegacyVideoInfo) {
	payload, err := json.Marshal(info)
	if err != nil {
		return
	}
	o.SendRaw("videoInfo::" + string(payload))
}
