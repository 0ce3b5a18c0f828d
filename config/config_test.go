package config_test

import (
	"log/slog"
	"testing"

	"github.com/tailored-agentic-units/cmdx/config"
)

func TestSettings_Default(t *testing.T) {
	s := config.Default()
	if s.Logger == nil {
		t.Fatal("expected Default() to set a Logger")
	}
	if s.Observer == nil {
		t.Fatal("expected Default() to set an Observer")
	}
}

func TestSettings_Merge(t *testing.T) {
	base := config.Default()

	newLogger := slog.Default()
	override := config.Settings{Logger: newLogger}

	base.Merge(&override)
	if base.Logger != newLogger {
		t.Fatal("expected Merge to overlay the explicitly-set Logger field")
	}
	if base.Observer == nil {
		t.Fatal("expected Merge with a nil Observer source to keep the original observer")
	}
}

func TestSettings_Extend(t *testing.T) {
	parent := config.Default()

	childLogger := slog.Default()
	override := config.Settings{Logger: childLogger}

	child := parent.Extend(&override)
	if child.Logger != childLogger {
		t.Fatal("expected child to use the overridden Logger")
	}
	if child.Observer != parent.Observer {
		t.Fatal("expected child to inherit parent's Observer when not overridden")
	}
}
