package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/cmdx/attrerr"
	"github.com/tailored-agentic-units/cmdx/chain"
	"github.com/tailored-agentic-units/cmdx/result"
	"github.com/tailored-agentic-units/cmdx/taskcontext"
)

// Task is one instance of a Definition's work: its own id, Context,
// Result, and the Chain it joined (spec §3 "Task").
type Task struct {
	mu sync.Mutex

	Definition *Definition
	ID         string
	Context    *taskcontext.Context
	Result     *result.Result
	Chain      *chain.Chain
	Errors     *attrerr.Errors

	ctx    context.Context
	cache  map[string]any
	isRoot bool
	frozen bool
}

// Ctx returns the context.Context carrying this Task's ambient Chain and
// correlation id — the value a body must pass along when it calls another
// Task/Workflow so the nested execution joins the same Chain (spec §4.1
// "Chain ... ambient per-execution-context singleton").
func (t *Task) Ctx() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}

// Input is anything New can build or reuse a Context from: a
// map[string]any (used to build a fresh Context) or an existing
// *taskcontext.Context (reused as-is and shared with the new Task).
type Input any

func contextFromInput(input Input) (*taskcontext.Context, error) {
	switch v := input.(type) {
	case nil:
		return taskcontext.New(), nil
	case *taskcontext.Context:
		return v, nil
	case map[string]any:
		return taskcontext.FromMap(v), nil
	default:
		return nil, fmt.Errorf("task: unsupported input type %T", input)
	}
}

// New builds a Task instance from def and input. It returns a
// *DeprecationError without constructing anything further if def is marked
// DeprecatedRaise.
func New(def *Definition, input Input) (*Task, error) {
	if def.Deprecated == DeprecatedRaise {
		return nil, &DeprecationError{ClassName: def.ClassName}
	}

	ctx, err := contextFromInput(input)
	if err != nil {
		return nil, err
	}

	t := &Task{
		Definition: def,
		ID:         uuid.NewString(),
		Context:    ctx,
		Errors:     attrerr.New(),
		cache:      make(map[string]any),
	}
	typeName := def.TypeName
	if typeName == "" {
		typeName = "Task"
	}
	t.Result = result.New(typeName, def.ClassName, t.ID, def.Tags)
	return t, nil
}

// Attr returns the cached, resolved value for a method name produced by
// the attribute pipeline (spec §4.4). ok is false if no attribute resolved
// to that name.
func (t *Task) Attr(methodName string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.cache[methodName]
	return v, ok
}

// Skip halts this task's execution with status "skipped". It always
// raises a Fault — the executor's recover classifies it as a local skip
// (spec §4.11 step 4).
func (t *Task) Skip(reason string, metadata map[string]any) {
	_ = t.Result.Skip(withReason(reason, metadata))
	raiseFaultFor(t.Result)
}

// Fail halts this task's execution with status "failed". It always raises
// a Fault — the executor's recover classifies it as a local failure (spec
// §4.11 step 4).
func (t *Task) Fail(reason string, metadata map[string]any) {
	_ = t.Result.Fail(withReason(reason, metadata))
	raiseFaultFor(t.Result)
}

func withReason(reason string, metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	if reason != "" {
		out["reason"] = reason
	}
	return out
}

// Frozen reports whether finalize has sealed this Task against further
// mutation.
func (t *Task) Frozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frozen
}

func (t *Task) freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
	t.Result.Freeze()
}
