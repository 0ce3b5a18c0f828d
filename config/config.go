// Package config defines the execution settings shared by tasks and
// workflows, following the tailored-agentic-units Merge convention: a
// Settings value merges another's non-zero fields over its own (spec §9
// "Settings", modeled on orchestrate/config's HubConfig.Merge).
package config

import (
	"log/slog"

	"github.com/tailored-agentic-units/cmdx/observability"
)

// Settings controls the ambient stack a Task or Workflow executes under:
// where diagnostic events and logs go.
type Settings struct {
	// Logger receives a human-readable line at finalize (spec §4.11 step 6).
	Logger *slog.Logger

	// Observer receives structured lifecycle events for tracing/metrics
	// pipelines; defaults to wrapping Logger via observability.SlogObserver.
	Observer observability.Observer
}

// Default returns the baseline Settings: slog.Default() as the logger,
// wrapped in a SlogObserver.
func Default() Settings {
	logger := slog.Default()
	return Settings{
		Logger:   logger,
		Observer: observability.NewSlogObserver(logger),
	}
}

// Merge overlays source's explicitly-set fields onto s.
func (s *Settings) Merge(source *Settings) {
	if source == nil {
		return
	}
	if source.Logger != nil {
		s.Logger = source.Logger
	}
	if source.Observer != nil {
		s.Observer = source.Observer
	}
}

// Extend returns a copy of s with over merged on top, the pattern tasks and
// workflows use to inherit their parent's settings while allowing local
// overrides (spec §9 "Extend-based settings inheritance").
func (s Settings) Extend(over *Settings) Settings {
	out := s
	out.Merge(over)
	return out
}
