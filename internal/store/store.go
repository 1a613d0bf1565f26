// Package store holds the primitives shared by every state slice: the
// action contract, the epic contract, and the rate operators the epics
// are built from.
package store

import "log/slog"

// Action is a discrete event flowing through the engine. Every slice
// defines its own concrete action types; Kind returns the tag used for
// routing, logging and validation.
type Action interface {
	Kind() string
}

// Epic reacts to a single action and returns any follow-up actions to
// dispatch. Epics run on the engine's dispatch goroutine, in dispatch
// order, after reducers have applied the action. An epic that only
// performs side effects returns nil.
//
// State access and external collaborators are bound at construction
// time, so an epic value carries everything it needs.
type Epic func(Action) []Action

// Reporter receives pipeline faults: structurally invalid actions and
// recovered epic panics. Implementations must not block.
type Reporter interface {
	ReportInvalidAction(a Action)
	ReportEpicPanic(kind string, recovered any)
}

// NopReporter discards all reports.
type NopReporter struct{}

func (NopReporter) ReportInvalidAction(Action) {}
func (NopReporter) ReportEpicPanic(string, any) {}

// LogReporter writes pipeline faults to slog. A faulty epic is a bug,
// but one session's bug must not take the process down, so faults are
// warnings rather than errors.
type LogReporter struct{}

func (LogReporter) ReportInvalidAction(a Action) {
	if a == nil {
		slog.Warn("store: dropped nil action")
		return
	}
	slog.Warn("store: dropped invalid action", "kind", a.Kind())
}

func (LogReporter) ReportEpicPanic(kind string, recovered any) {
	slog.Warn("store: epic panicked", "kind", kind, "panic", recovered)
}

// Valid reports whether an action is structurally sound: non-nil with a
// non-empty kind. Invalid actions are reported and skipped by the
// engine rather than crashing the dispatch chain.
func Valid(a Action) bool {
	return a != nil && a.Kind() != ""
}
