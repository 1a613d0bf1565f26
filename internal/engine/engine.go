// Package engine composes the state slices into one store and wires
// every reaction to its collaborators. A session owns exactly one
// engine.
package engine

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/embedplay/embedplay/internal/analytics"
	"github.com/embedplay/embedplay/internal/bridge"
	"github.com/embedplay/embedplay/internal/captions"
	"github.com/embedplay/embedplay/internal/continuousplay"
	"github.com/embedplay/embedplay/internal/geoip"
	"github.com/embedplay/embedplay/internal/liveplayer"
	"github.com/embedplay/embedplay/internal/persist"
	"github.com/embedplay/embedplay/internal/player"
	"github.com/embedplay/embedplay/internal/playerapi"
	"github.com/embedplay/embedplay/internal/store"
	"github.com/embedplay/embedplay/internal/topbar"
)

// GlobalState is the composed state tree.
type GlobalState struct {
	Player         player.State         `json:"player"`
	LivePlayer     liveplayer.State     `json:"liveplayer"`
	Captions       captions.State       `json:"captions"`
	Analytics      analytics.State      `json:"analytics"`
	TopBar         topbar.State         `json:"topBar"`
	ContinuousPlay continuousplay.State `json:"continuousPlay"`
}

// Config carries everything a session binds into its engine. Video and
// Embed describe an on-demand session; a non-nil Live switches the
// engine to the live wiring instead. Optional collaborators may be
// nil; the epics that need them are simply not wired.
type Config struct {
	Player bridge.Player
	Video  *bridge.Video
	Embed  *bridge.Context
	Live   *bridge.LiveContext

	Prefs  persist.Store
	Outbox *bridge.Outbox
	Reply  bridge.LegacyReply
	API    *playerapi.Client

	Profile  analytics.HistoryReporter
	Beacon   analytics.Beacon
	Resolver *analytics.MetadataResolver
	Tracker  analytics.Tracker
	Safari   bool

	// ReportedCodecs exposes the codec strings the shell observed on
	// the active representation, when it has any.
	ReportedCodecs func() string

	// Live availability collaborators.
	Locator  liveplayer.DeviceLocator
	Perms    liveplayer.PermissionProber
	ClientIP string
	Geo      *geoip.Resolver
	Regions  []string

	Clock    clockwork.Clock
	Reporter store.Reporter
}

// Store is the composed dispatch pipeline: reducers first, then every
// epic in wiring order, all on the dispatching goroutine. Actions
// emitted by epics are queued and processed in order before Dispatch
// returns.
type Store struct {
	dispatchMu sync.Mutex
	queue      []store.Action
	draining   bool
	closed     bool

	stateMu sync.RWMutex
	state   GlobalState
	subs    []func(GlobalState)

	reduce   func(GlobalState, store.Action) GlobalState
	epics    []store.Epic
	reporter store.Reporter

	exitMu  sync.Mutex
	exitFns []func()
	exited  bool
}

// New builds a store for one playback session.
func New(cfg Config) *Store {
	if cfg.Prefs == nil {
		cfg.Prefs = persist.NewMemory()
	}
	if cfg.Tracker == nil {
		cfg.Tracker = analytics.NopTracker{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Reporter == nil {
		cfg.Reporter = store.NopReporter{}
	}
	if cfg.ReportedCodecs == nil {
		cfg.ReportedCodecs = func() string { return "" }
	}

	s := &Store{
		reduce:   newRootReducer(cfg.Video),
		reporter: cfg.Reporter,
	}
	s.state = GlobalState{
		Player:         player.InitialState(),
		LivePlayer:     liveplayer.InitialState(),
		Captions:       captions.LoadState(cfg.Prefs),
		Analytics:      analytics.InitialState(),
		TopBar:         topbar.InitialState(),
		ContinuousPlay: continuousplay.InitialState(),
	}

	if cfg.Live != nil {
		s.epics = liveEpics(s, cfg)
	} else {
		s.epics = vodEpics(s, cfg)
	}
	return s
}

func newRootReducer(video *bridge.Video) func(GlobalState, store.Action) GlobalState {
	reduceContinuousPlay := continuousplay.NewReducer(video)
	return func(g GlobalState, a store.Action) GlobalState {
		g.Player = player.Reduce(g.Player, a)
		g.LivePlayer = liveplayer.Reduce(g.LivePlayer, a)
		g.Captions = captions.Reduce(g.Captions, a)
		g.Analytics = analytics.Reduce(g.Analytics, a)
		g.TopBar = topbar.Reduce(g.TopBar, a)
		g.ContinuousPlay = reduceContinuousPlay(g.ContinuousPlay, a)
		return g
	}
}

func vodEpics(s *Store, cfg Config) []store.Epic {
	p := cfg.Player
	snap := func() analytics.Snapshot {
		g := s.State()
		return analytics.Snapshot{
			Playback:        g.Player.Playback,
			Progress:        g.Player.Progress,
			Duration:        g.Player.Duration,
			DurationWatched: g.Analytics.DurationWatched,
		}
	}
	progress := func() float64 { return s.State().Player.Progress }
	captionsState := func() captions.State { return s.State().Captions }
	continuousState := func() continuousplay.State { return s.State().ContinuousPlay }
	includePassport := func() bool { return s.State().ContinuousPlay.IncludePassport }
	instrument := instrumenter(cfg.API)

	epics := []store.Epic{
		player.NewProgressEpic(),
		player.NewAutoplayEpic(p),
		player.NewRestorePreferencesEpic(p, cfg.Prefs),
		player.NewPersistPreferencesEpic(cfg.Prefs),
		player.NewStartSeekEpic(p, cfg.Embed),
		player.NewEndClampEpic(p, cfg.Video, cfg.Embed),
		player.NewChapterSeekEpic(p, cfg.Video, cfg.Embed),
		player.NewErrorPauseEpic(p),
		player.NewEndscreenEpic(p, cfg.Embed),
		player.NewMessageEpic(p, cfg.Reply),

		captions.NewPauseOnOpenEpic(p),
		captions.NewPersistStyleEpic(captionsState, cfg.Prefs),
		captions.NewSaveSelectionEpic(p, cfg.Prefs, cfg.Safari),
		captions.NewRestoreSelectionEpic(p, cfg.Prefs),

		topbar.NewPauseEpic(p),

		analytics.NewDurationWatchedEpic(cfg.Clock, snap),
		analytics.NewFurthestPositionEpic(),
		analytics.NewMediaStartEpic(cfg.Tracker, instrument, cfg.Embed),
		analytics.NewMediaStopExitEpic(s.OnExit, snap, cfg.Tracker, instrument, cfg.Embed, continuousplay.HandoffPadding),
		analytics.NewMediaStopCompleteEpic(snap, cfg.Tracker, instrument, cfg.Embed),
	}
	if cfg.Outbox != nil {
		epics = append(epics,
			player.NewLegacyEventsEpic(cfg.Outbox),
			analytics.NewPartnerReportEpic(cfg.Clock, cfg.Outbox, cfg.Video, cfg.Embed),
			continuousplay.NewSendCommandEpic(cfg.Outbox, cfg.Tracker, cfg.Embed),
		)
	}
	if cfg.Beacon != nil && cfg.Resolver != nil {
		epics = append(epics, analytics.NewBeaconEpic(cfg.Beacon, cfg.Resolver, p, cfg.Video, cfg.Embed, cfg.ReportedCodecs))
	}
	if cfg.Profile != nil {
		epics = append(epics,
			analytics.NewResumeHistoryEpic(p, cfg.Video, cfg.Embed),
			analytics.NewHistoryReportEpic(cfg.Clock, p, cfg.Profile, cfg.Video, cfg.Embed, progress),
			analytics.NewHistoryExitEpic(s.OnExit, p, cfg.Profile, cfg.Video, cfg.Embed, progress),
		)
	}
	epics = append(epics,
		continuousplay.NewFetchTriggerEpic(p, cfg.Video, cfg.Embed),
		continuousplay.NewCommandTriggerEpic(cfg.Embed, continuousState, continuousplay.CommandGuard),
		continuousplay.NewHostCommandEpic(cfg.Embed),
		continuousplay.NewExitFullscreenEpic(p, cfg.Embed, continuousState),
	)
	if cfg.API != nil {
		epics = append(epics, continuousplay.NewFetchEpic(cfg.API, cfg.Video, cfg.Embed, includePassport, s.Dispatch))
	}
	return epics
}

func liveEpics(s *Store, cfg Config) []store.Epic {
	p := cfg.Player
	snap := func() analytics.Snapshot {
		g := s.State()
		return analytics.Snapshot{
			Playback:            g.LivePlayer.Playback,
			Progress:            g.LivePlayer.Progress,
			Duration:            g.LivePlayer.Duration,
			DurationWatched:     g.Analytics.DurationWatched,
			LiveProgress:        g.LivePlayer.Progress,
			StreamStartPosition: g.Analytics.StreamStartPosition,
		}
	}
	captionsState := func() captions.State { return s.State().Captions }
	instrument := instrumenter(cfg.API)

	epics := []store.Epic{
		liveplayer.NewProgressEpic(),
		liveplayer.NewRestorePreferencesEpic(p, cfg.Prefs),
		liveplayer.NewPersistPreferencesEpic(cfg.Prefs),
		liveplayer.NewErrorPauseEpic(p),

		captions.NewPauseOnOpenEpic(p),
		captions.NewPersistStyleEpic(captionsState, cfg.Prefs),
		captions.NewSaveSelectionEpic(p, cfg.Prefs, cfg.Safari),
		captions.NewRestoreSelectionEpic(p, cfg.Prefs),

		topbar.NewPauseEpic(p),

		analytics.NewStreamStartEpic(),
		analytics.NewDurationWatchedEpic(cfg.Clock, snap),
		analytics.NewFurthestPositionEpic(),
		analytics.NewLiveMediaStartEpic(cfg.Tracker, instrument, cfg.Live),
		analytics.NewLiveMediaStopExitEpic(s.OnExit, snap, cfg.Tracker, instrument, cfg.Live),
	}
	if cfg.Beacon != nil && cfg.Resolver != nil {
		epics = append(epics, analytics.NewLiveBeaconEpic(cfg.Beacon, cfg.Resolver, p, cfg.Live, cfg.ReportedCodecs))
	}
	if cfg.API != nil {
		checker := &liveplayer.Checker{
			API:       cfg.API,
			Locator:   cfg.Locator,
			Perms:     cfg.Perms,
			Clock:     cfg.Clock,
			Dispatch:  s.Dispatch,
			StationID: cfg.Live.StationID,
			ClientIP:  cfg.ClientIP,
			Local:     cfg.Geo,
			Regions:   cfg.Regions,
		}
		epics = append(epics, liveplayer.NewAvailabilityEpic(checker))
	}
	return epics
}

func instrumenter(api *playerapi.Client) func(string) {
	if api == nil {
		return func(string) {}
	}
	return func(msg string) {
		go api.Instrument(context.Background(), msg)
	}
}

// Dispatch routes an action through reducers and then every epic, in
// order. Actions emitted by epics join the back of the queue, so a
// re-entrant call from a collaborator goroutine is always safe.
func (s *Store) Dispatch(a store.Action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, a)
	if s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if !store.Valid(next) {
			s.reporter.ReportInvalidAction(next)
			continue
		}

		s.stateMu.Lock()
		s.state = s.reduce(s.state, next)
		current := s.state
		subs := s.subs
		s.stateMu.Unlock()

		for _, epic := range s.epics {
			s.queue = append(s.queue, s.runEpic(epic, next)...)
		}
		for _, fn := range subs {
			fn(current)
		}
	}
}

func (s *Store) runEpic(epic store.Epic, a store.Action) (out []store.Action) {
	defer func() {
		if r := recover(); r != nil {
			s.reporter.ReportEpicPanic(a.Kind(), r)
		}
	}()
	return epic(a)
}

// State returns the current state tree.
func (s *Store) State() GlobalState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Subscribe registers a listener called after every applied action.
// Listeners run on the dispatch goroutine and must not call Dispatch
// directly.
func (s *Store) Subscribe(fn func(GlobalState)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.subs = append(s.subs, fn)
}

// OnExit registers a page-exit callback. Callbacks run at most once,
// when the session ends.
func (s *Store) OnExit(fn func()) {
	s.exitMu.Lock()
	defer s.exitMu.Unlock()
	if s.exited {
		return
	}
	s.exitFns = append(s.exitFns, fn)
}

// FireExit runs the registered exit callbacks. Later calls are no-ops.
func (s *Store) FireExit() {
	s.exitMu.Lock()
	fns := s.exitFns
	s.exitFns = nil
	fired := s.exited
	s.exited = true
	s.exitMu.Unlock()
	if fired {
		return
	}
	for _, fn := range fns {
		fn()
	}
}

// Close fires any pending exit callbacks and stops accepting actions.
func (s *Store) Close() {
	s.FireExit()
	s.dispatchMu.Lock()
	s.closed = true
	s.queue = nil
	s.dispatchMu.Unlock()
}
