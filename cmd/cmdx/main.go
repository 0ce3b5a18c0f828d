// Command cmdx runs a small two-task Workflow end to end, demonstrating the
// Task/Workflow/Chain contract from the command line. Grounded on the
// teacher's cmd/kernel/main.go: flag-driven config, a *slog.Logger wired
// through Settings, signal.NotifyContext for interrupt handling, and a
// plain-text summary of the run printed to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tailored-agentic-units/cmdx/attribute"
	"github.com/tailored-agentic-units/cmdx/chain"
	"github.com/tailored-agentic-units/cmdx/coerce"
	"github.com/tailored-agentic-units/cmdx/config"
	"github.com/tailored-agentic-units/cmdx/correlate"
	"github.com/tailored-agentic-units/cmdx/observability"
	"github.com/tailored-agentic-units/cmdx/serialize"
	"github.com/tailored-agentic-units/cmdx/task"
	"github.com/tailored-agentic-units/cmdx/validate"
	"github.com/tailored-agentic-units/cmdx/workflow"
)

func main() {
	var (
		name    = flag.String("name", "", "Name to greet (required)")
		verbose = flag.Bool("verbose", false, "Enable debug logging to stderr")
	)
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Usage: cmdx -name <text>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	settings := config.Settings{Logger: logger, Observer: observability.NewSlogObserver(logger)}

	pipeline := buildPipeline(settings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Pre-seed the ambient Chain ourselves so we can inspect it after the
	// run completes — the framework only hands the caller back a Result.
	c := chain.New(correlate.Generate())
	ctx = chain.With(ctx, c)

	r, err := pipeline.Call(ctx, map[string]any{"name": *name})
	if err != nil {
		log.Fatalf("pipeline failed to run: %v", err)
	}
	c.Freeze()

	fmt.Printf("outcome: %s\n", r.Outcome())
	fmt.Print(serialize.ChainInspector(c))
}

// buildPipeline wires a two-step Workflow: Greet resolves a greeting into
// the shared Context, Announce prints it.
func buildPipeline(settings config.Settings) *workflow.Definition {
	greet := task.NewDefinition("Greet")
	greet.Settings = settings
	greet.Required(&attribute.Attribute[*task.Task]{
		Name:       "name",
		Types:      []string{coerce.String},
		Validators: map[string]any{validate.Presence: true},
	})
	greet.Body = func(tk *task.Task) error {
		name, _ := tk.Attr("name")
		_ = tk.Context.Set("greeting", fmt.Sprintf("Hello, %s!", name))
		return nil
	}

	announce := task.NewDefinition("Announce")
	announce.Settings = settings
	announce.Optional(&attribute.Attribute[*task.Task]{Name: "greeting"})
	announce.Body = func(tk *task.Task) error {
		greeting, _ := tk.Attr("greeting")
		fmt.Println(greeting)
		return nil
	}

	pipeline := workflow.NewDefinition("Pipeline")
	pipeline.Task().Settings = settings
	pipeline.Process([]*task.Definition{greet, announce})
	return pipeline
}
