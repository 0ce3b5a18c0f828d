package task

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tailored-agentic-units/cmdx/chain"
	"github.com/tailored-agentic-units/cmdx/fault"
	"github.com/tailored-agentic-units/cmdx/observability"
	"github.com/tailored-agentic-units/cmdx/result"
	"github.com/tailored-agentic-units/cmdx/serialize"
)

func raiseFaultFor(r *result.Result) {
	switch r.Status() {
	case result.StatusSkipped:
		fault.Raise(fault.NewSkipped(r))
	case result.StatusFailed:
		fault.Raise(fault.NewFailed(r))
	default:
		panic(fmt.Sprintf("task: cannot raise a fault for status %q", r.Status()))
	}
}

// Call runs def's Body against input, following the Executor run loop
// (spec §4.11). It never raises a Fault to the caller: every outcome,
// controlled or not, ends up reflected in the returned Result. err is
// non-nil for a programmer error — an undefined Body, a rejected
// deprecated instantiation, or an unsupported input type — that must
// always propagate (spec §7), and also when a middleware returns an error
// of its own: that error is returned unchanged together with the Result,
// which is then not finalized and does not record the error.
func Call(ctx context.Context, def *Definition, input Input) (*result.Result, error) {
	return run(ctx, def, input, false)
}

// CallBang runs def's Body the same way Call does, but afterward
// re-raises a Fault wrapping the Result if its status is in def.TaskHalt
// (default {failed}). A caller one level up, itself executing inside
// Call/CallBang, recovers that panic in its own executor and attributes
// the failure across the task boundary (spec §4.11 step 4, "call! variant").
func CallBang(ctx context.Context, def *Definition, input Input) (*result.Result, error) {
	return run(ctx, def, input, true)
}

func run(ctx context.Context, def *Definition, input Input, bang bool) (*result.Result, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}

	t, err := New(def, input)
	if err != nil {
		return nil, err
	}
	reportDeprecation(def, t)

	nextCtx, c, isRoot := chain.Build(ctx, t.Result)
	t.Chain = c
	t.isRoot = isRoot
	t.mu.Lock()
	t.ctx = nextCtx
	t.mu.Unlock()

	if err := def.Middleware.Call(t, func() error {
		return executeOnce(nextCtx, t)
	}); err != nil {
		return t.Result, err
	}

	finalize(t)

	if bang && def.TaskHalt[string(t.Result.Status())] {
		raiseFaultFor(t.Result)
	}
	return t.Result, nil
}

func reportDeprecation(def *Definition, t *Task) {
	switch def.Deprecated {
	case DeprecatedLog:
		logger(def).Warn("deprecated task used", "class", def.ClassName, "id", t.ID)
	case DeprecatedWarn:
		fmt.Fprintf(os.Stderr, "DEPRECATION WARNING: %s is deprecated\n", def.ClassName)
	}
}

func logger(def *Definition) *slog.Logger {
	if def.Settings.Logger != nil {
		return def.Settings.Logger
	}
	return slog.Default()
}

// executeOnce runs pre_execution!, execution!, and classifies the outcome
// (spec §4.11 steps 2–4). It never returns an error: every failure mode,
// including a misbehaving before/after_validation callback, is reflected
// onto t.Result, matching Call's "never raises for controlled faults"
// contract. The middleware onion wraps this call.
func executeOnce(ctx context.Context, t *Task) error {
	if preErr := preExecution(t); preErr != nil {
		failEarly(t, map[string]any{"reason": fmt.Sprintf("[%s] %v", t.Definition.ClassName, preErr)})
		postExecution(t)
		finishAndLog(ctx, t)
		return nil
	}
	if !t.Errors.Empty() {
		// Both §7's nested "errors" shape and literal scenario B's (§8)
		// top-level "reason"/"messages" are populated — the spec is
		// inconsistent between the two, so this satisfies both rather than
		// picking one (see DESIGN.md Open Questions).
		failEarly(t, map[string]any{
			"reason":   t.Errors.FullMessage(),
			"messages": t.Errors.Messages(),
			"errors": map[string]any{
				"full_message": t.Errors.FullMessage(),
				"messages":     t.Errors.Messages(),
			},
		})
		postExecution(t)
		finishAndLog(ctx, t)
		return nil
	}

	runExecution(ctx, t)
	postExecution(t)
	finishAndLog(ctx, t)
	return nil
}

// failEarly fails the Result before the user body ever runs (pre_execution
// errors or accumulated attribute Errors) while still satisfying the state
// machine's invariant that a non-success status corresponds to the
// interrupted state (spec §3 "Result").
func failEarly(t *Task, metadata map[string]any) {
	_ = t.Result.Executing()
	_ = t.Result.Fail(metadata)
	_ = t.Result.Interrupt()
}

func preExecution(t *Task) error {
	if err := t.Definition.Callbacks.Invoke("before_validation", t); err != nil {
		return err
	}
	cache, errs := t.Definition.Attributes.DefineAndVerify(t, t.Context)
	t.mu.Lock()
	t.cache = cache
	t.mu.Unlock()
	t.Errors = errs
	return t.Definition.Callbacks.Invoke("after_validation", t)
}

func runExecution(ctx context.Context, t *Task) {
	_ = t.Definition.Callbacks.Invoke("before_execution", t)
	_ = t.Result.Executing()
	_ = t.Definition.Callbacks.Invoke("on_executing", t)

	outcome := invokeBody(t)
	classify(t, outcome)
}

type bodyOutcome struct {
	err   error
	fault fault.Fault
	panic any
}

// invokeBody runs the user body, recovering a Fault panic (either from
// t.Skip/t.Fail or a halt-matching nested CallBang) so classify can map it
// onto a Result transition instead of letting it unwind further.
func invokeBody(t *Task) (out bodyOutcome) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := fault.Recover(r); ok {
				out.fault = f
				return
			}
			out.panic = r
		}
	}()
	out.err = t.Definition.Body(t)
	return out
}

// classify maps the body's outcome onto a Result transition (spec §4.11
// step 4).
func classify(t *Task, out bodyOutcome) {
	switch {
	case out.fault != nil:
		if out.fault.Result() == t.Result {
			// Local skip!/fail! already transitioned status; just stop the clock.
			_ = t.Result.Interrupt()
		} else {
			_ = t.Result.Throw(out.fault.Result())
			_ = t.Result.Interrupt()
		}
	case out.panic != nil:
		_ = t.Result.Fail(map[string]any{
			"reason":             fmt.Sprintf("[%s] %v", t.Definition.ClassName, out.panic),
			"original_exception": out.panic,
		})
		_ = t.Result.Interrupt()
	case out.err != nil:
		_ = t.Result.Fail(map[string]any{
			"reason":             fmt.Sprintf("[%s] %v", t.Definition.ClassName, out.err),
			"original_exception": out.err,
		})
		t.Result.SetCause(out.err)
		_ = t.Result.Interrupt()
	default:
		_ = t.Result.Complete()
	}
}

// postExecution fires the state-matching, then on_executed, then the
// status-matching, then polarity, then after_execution callbacks, in that
// order (spec §4.11 step 5).
func postExecution(t *Task) {
	cb := t.Definition.Callbacks

	switch t.Result.State() {
	case result.StateComplete:
		_ = cb.Invoke("on_complete", t)
	case result.StateInterrupted:
		_ = cb.Invoke("on_interrupted", t)
	}
	_ = cb.Invoke("on_executed", t)

	switch t.Result.Status() {
	case result.StatusSuccess:
		_ = cb.Invoke("on_success", t)
	case result.StatusSkipped:
		_ = cb.Invoke("on_skipped", t)
	case result.StatusFailed:
		_ = cb.Invoke("on_failed", t)
	}

	if t.Result.Good() {
		_ = cb.Invoke("on_good", t)
	} else {
		_ = cb.Invoke("on_bad", t)
	}
	_ = cb.Invoke("after_execution", t)
}

// finishAndLog emits the one finalize! log line (spec §4.11 step 6) through
// the task's Observer, falling back to its Logger directly if no Observer
// was configured. The Observer event's payload is the Result's full
// serialization, per SPEC_FULL §9.1; the Logger fallback logs only the
// class, id, outcome, and runtime.
func finishAndLog(ctx context.Context, t *Task) {
	data := serialize.Result(t.Result)

	if obs := t.Definition.Settings.Observer; obs != nil {
		obs.OnEvent(ctx, observability.Event{
			Type:      "cmdx.task.finalize",
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    t.Definition.ClassName,
			Data:      data,
		})
		return
	}
	logger(t.Definition).InfoContext(ctx, "task finished", "event", "cmdx.task.finalize", "class", data["class"], "id", data["id"], "outcome", data["outcome"], "runtime", data["runtime"])
}

// finalize runs the Immutation step (spec §4.11 step 7): freeze the Task
// and its Result; if this execution was root, also freeze the Context and
// Chain. Freezing is suppressed when SKIP_CMDX_FREEZING is truthy or the
// environment is "test" (RAILS_ENV / RACK_ENV), matching §6's environment
// variable contract; the ambient Chain/correlation slot is cleared simply
// by virtue of living in a derived context.Context that this call discards.
func finalize(t *Task) {
	if skipFreezing() {
		return
	}
	t.freeze()
	if t.isRoot {
		t.Context.Freeze()
		t.Chain.Freeze()
	}
}

func skipFreezing() bool {
	if truthy(os.Getenv("SKIP_CMDX_FREEZING")) {
		return true
	}
	env := os.Getenv("RAILS_ENV")
	if env == "" {
		env = os.Getenv("RACK_ENV")
	}
	return env == "test"
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
