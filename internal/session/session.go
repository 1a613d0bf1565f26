// Package session runs one playback session over a websocket: the
// shell in the browser streams media events in, the engine streams
// player commands and state back.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/embedplay/embedplay/internal/analytics"
	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/captions"
	"github.com/embedplay/embedplay/internal/continuousplay"
	"github.com/embedplay/embedplay/internal/engine"
	"github.com/embedplay/embedplay/internal/geoip"
	"github.com/embedplay/embedplay/internal/liveplayer"
	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/playerapi"
	"github.com/embedplay/embedplay/internal/store"
	"github.com/embedplay/embedplay/internal/topbar"
)

// geolocationTimeout bounds how long the engine waits for the shell to
// answer a permission or location request.
const geolocationTimeout = 15 * time.Second

// Deps are the shared collaborators every session gets. All of them
// are optional; a nil collaborator just leaves the matching reactions
// unwired.
type Deps struct {
	API      *playerapi.Client
	Profile  *analytics.ProfileClient
	Redis    *redis.Client
	Geo      *geoip.Resolver
	Regions  []string
	Tracker  analytics.Tracker
	Beacon   analytics.Beacon
	Reporter store.Reporter
	Clock    clockwork.Clock
}

type locationAnswer struct {
	lat, lon float64
	code     int
}

// Session owns one socket, one engine, one shell player mirror.
type Session struct {
	ID uuid.UUID

	conn *websocket.Conn
	deps Deps

	writeMu sync.Mutex

	engine *engine.Store
	player *shellPlayer
	live   bool

	permCh   chan string
	locCh    chan locationAnswer
	clientIP string

	codecsMu sync.RWMutex
	codecs   string
}

// New wraps an upgraded connection. clientIP is the viewer address for
// the local service-area screen.
func New(conn *websocket.Conn, clientIP string, deps Deps) *Session {
	return &Session{
		ID:       uuid.New(),
		conn:     conn,
		deps:     deps,
		clientIP: clientIP,
		permCh:   make(chan string, 1),
		locCh:    make(chan locationAnswer, 1),
	}
}

// Run reads the socket until it closes. The first message must be an
// init; the engine is torn down (firing any pending exit reporting) on
// the way out.
func (s *Session) Run(ctx context.Context) error {
	var init Envelope
	if err := s.conn.ReadJSON(&init); err != nil {
		return fmt.Errorf("session: read init: %w", err)
	}
	if init.Type != TypeInit {
		return fmt.Errorf("session: first message is %q, want %q", init.Type, TypeInit)
	}
	if err := s.start(init); err != nil {
		return err
	}
	defer s.engine.Close()

	for {
		var env Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("session %s: read: %w", s.ID, err)
		}
		s.handle(env)
	}
}

func (s *Session) start(init Envelope) error {
	s.live = len(init.LiveContext) > 0
	s.player = newShellPlayer(s.send, s.live)
	s.setCodecs(init.Codecs)

	outbox := bridge.NewOutbox(init.Referrer, func(origin, payload string) {
		s.send(Outgoing{Type: TypePost, Origin: origin, Payload: payload})
	})
	reply := bridge.LegacyReply(func(message string) {
		s.send(Outgoing{Type: TypeReply, Data: message})
	})

	cfg := engine.Config{
		Player:         s.player,
		Outbox:         outbox,
		Reply:          reply,
		API:            s.deps.API,
		Beacon:         s.deps.Beacon,
		Tracker:        s.deps.Tracker,
		Clock:          s.deps.Clock,
		Reporter:       s.deps.Reporter,
		Safari:         analytics.IsSafari(init.UserAgent),
		ReportedCodecs: s.reportedCodecs,
		ClientIP:       s.clientIP,
		Geo:            s.deps.Geo,
		Regions:        s.deps.Regions,
		Locator:        shellLocator{s},
		Perms:          shellLocator{s},
	}
	if s.deps.Profile != nil {
		cfg.Profile = s.deps.Profile
	}

	keySystem := init.KeySystem
	cfg.Resolver = analytics.NewMetadataResolver(init.UserAgent, func() string { return keySystem })

	var viewerID string
	if s.live {
		live, err := bridge.ParseLiveContext(init.LiveContext, init.Query)
		if err != nil {
			return fmt.Errorf("session: parse live context: %w", err)
		}
		cfg.Live = &live
		viewerID = live.StationID
	} else {
		video, err := bridge.ParseVideo(init.Video)
		if err != nil {
			return fmt.Errorf("session: parse video: %w", err)
		}
		embed, err := bridge.ParseContext(init.Context, init.Query)
		if err != nil {
			return fmt.Errorf("session: parse context: %w", err)
		}
		cfg.Video = &video
		cfg.Embed = &embed
		viewerID = embed.UserID
	}
	if viewerID == "" {
		viewerID = s.ID.String()
	}
	if s.deps.Redis != nil {
		cfg.Prefs = persist.ForViewer(s.deps.Redis, viewerID)
	}

	s.engine = engine.New(cfg)
	s.engine.Subscribe(func(g engine.GlobalState) {
		s.send(Outgoing{Type: TypeState, State: &g})
	})

	slog.Info("session: started", "id", s.ID, "live", s.live, "viewer", viewerID)

	if s.live {
		s.engine.Dispatch(liveplayer.Mounted{Context: cfg.Live})
	} else {
		s.engine.Dispatch(player.Mounted{Video: cfg.Video, Context: cfg.Embed})
		outbox.SendLegacyInitialized()
		outbox.SendLegacyVideoInfo(bridge.LegacyVideoInfo{
			CID:      cfg.Video.ID,
			Title:    cfg.Video.Title,
			Duration: cfg.Video.Duration,
		})
	}
	return nil
}

func (s *Session) handle(env Envelope) {
	switch env.Type {
	case TypeEvent:
		s.player.observe(env)
		if env.Name == "codecs" {
			s.setCodecs(env.Codecs)
			return
		}
		if env.Name == "pagehide" {
			s.engine.FireExit()
			return
		}
		if a := s.eventAction(env); a != nil {
			s.engine.Dispatch(a)
		}
	case TypePermission:
		select {
		case s.permCh <- env.Permission:
		default:
		}
	case TypeLocation:
		select {
		case s.locCh <- locationAnswer{lat: env.Latitude, lon: env.Longitude, code: env.ErrorCode}:
		default:
		}
	default:
		slog.Warn("session: unknown message type", "id", s.ID, "type", env.Type)
	}
}

func (s *Session) eventAction(env Envelope) store.Action {
	if s.live {
		return liveEventAction(env)
	}
	return vodEventAction(env, s.engine)
}

func vodEventAction(env Envelope, eng *engine.Store) store.Action {
	switch env.Name {
	case "loadedmetadata":
		return player.LoadedMetadata{Time: timeInfo(env)}
	case "play":
		return player.Play{}
	case "firstframe":
		return player.FirstFrame{}
	case "pause":
		return player.Pause{}
	case "seeking":
		return player.Seeking{}
	case "seeked":
		return player.Seeked{}
	case "timeupdate":
		return player.Time{Time: timeInfo(env)}
	case "mute":
		return player.Mute{Muted: env.Muted != nil && *env.Muted}
	case "volumechange":
		v := 0.0
		if env.Volume != nil {
			v = *env.Volume
		}
		return player.Volume{Volume: v}
	case "error":
		return player.Error{Code: env.Code, Message: env.Message}
	case "complete":
		return player.Complete{}
	case "adplay":
		return player.AdPlay{}
	case "adpause":
		return player.AdPause{}
	case "adcomplete":
		return player.AdComplete{}
	case "trackchange":
		return player.TrackChange{Tracks: env.Tracks}
	case "trackadded":
		return captions.TrackAdded{Language: env.Language}
	case "message":
		return player.MessageReceived{Data: env.Data}
	case "captions:open":
		return captions.OpenSettings{}
	case "captions:close":
		return captions.CloseSettings{}
	case "captions:change":
		if env.Style == nil {
			return nil
		}
		return captions.ChangeSettings{Patch: *env.Style}
	case "captions:save":
		return captions.SaveSettings{}
	case "captions:selection":
		return captions.SelectionChanged{}
	case "topbar:open":
		return topbar.OpenScreen{Screen: topbar.Screen(env.Screen)}
	case "topbar:close":
		return topbar.CloseScreen{}
	case "continuousplay:cancel":
		return continuousplay.CancelCountdown{}
	case "continuousplay:navigate":
		// The viewer clicked the next-video thumbnail.
		return continuousplay.SendCommand{
			Passive: false,
			Command: continuousplay.CommandNavigate,
			Payload: eng.State().ContinuousPlay.Payload,
		}
	}
	return nil
}

func liveEventAction(env Envelope) store.Action {
	switch env.Name {
	case "loadedmetadata":
		return liveplayer.LoadedMetadata{}
	case "play":
		return liveplayer.Play{}
	case "pause":
		return liveplayer.Pause{}
	case "firstframe":
		return liveplayer.FirstFrame{StreamPosition: env.StreamPosition}
	case "timeupdate":
		return liveplayer.Time{Time: timeInfo(env)}
	case "mute":
		return liveplayer.Mute{Muted: env.Muted != nil && *env.Muted}
	case "volumechange":
		v := 0.0
		if env.Volume != nil {
			v = *env.Volume
		}
		return liveplayer.Volume{Volume: v}
	case "error":
		return liveplayer.Error{Code: env.Code, Message: env.Message}
	case "complete":
		return liveplayer.Complete{}
	case "trackadded":
		return captions.TrackAdded{Language: env.Language}
	case "requestlocation":
		return liveplayer.RequestLocation{}
	case "captions:open":
		return captions.OpenSettings{}
	case "captions:close":
		return captions.CloseSettings{}
	case "captions:save":
		return captions.SaveSettings{}
	case "captions:selection":
		return captions.SelectionChanged{}
	}
	return nil
}

func timeInfo(env Envelope) bridge.TimeInfo {
	if env.Time == nil {
		return bridge.TimeInfo{}
	}
	return *env.Time
}

func (s *Session) send(out Outgoing) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(out); err != nil {
		slog.Warn("session: write failed", "id", s.ID, "type", out.Type, "error", err)
	}
}

func (s *Session) setCodecs(codecs string) {
	s.codecsMu.Lock()
	s.codecs = codecs
	s.codecsMu.Unlock()
}

func (s *Session) reportedCodecs() string {
	s.codecsMu.RLock()
	defer s.codecsMu.RUnlock()
	return s.codecs
}

// shellLocator answers geolocation questions by asking the shell and
// waiting for its reply message.
type shellLocator struct {
	s *Session
}

func (l shellLocator) GeolocationPermission(ctx context.Context) string {
	l.s.send(Outgoing{Type: TypeCommand, Command: CmdQueryPermission})
	select {
	case state := <-l.s.permCh:
		return state
	case <-time.After(geolocationTimeout):
		return ""
	case <-ctx.Done():
		return ""
	}
}

func (l shellLocator) Location(ctx context.Context) (float64, float64, error) {
	l.s.send(Outgoing{Type: TypeCommand, Command: CmdRequestLocation})
	select {
	case answer := <-l.s.locCh:
		if answer.code != 0 {
			return 0, 0, &liveplayer.LocationError{Code: answer.code}
		}
		return answer.lat, answer.lon, nil
	case <-time.After(geolocationTimeout):
		return 0, 0, &liveplayer.LocationError{Code: liveplayer.LocationTimeout}
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
