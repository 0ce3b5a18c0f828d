// Package task implements the Task public contract and its Executor run
// loop (spec §4.10–§4.11): a user-authored unit of work that holds its own
// id, Context, Result, and Chain reference, and orchestrates its own
// lifecycle through the attribute, callback, and middleware registries
// declared on its Definition.
package task

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/cmdx/attribute"
	"github.com/tailored-agentic-units/cmdx/callback"
	"github.com/tailored-agentic-units/cmdx/coerce"
	"github.com/tailored-agentic-units/cmdx/config"
	"github.com/tailored-agentic-units/cmdx/middleware"
	"github.com/tailored-agentic-units/cmdx/result"
	"github.com/tailored-agentic-units/cmdx/validate"
)

// Deprecation marks how a deprecated Definition's use should be reported.
type Deprecation int

const (
	// NotDeprecated is the zero value: no deprecation handling.
	NotDeprecated Deprecation = iota
	// DeprecatedLog warns via the task's logger on each instantiation.
	DeprecatedLog
	// DeprecatedWarn issues a process-level warning on each instantiation.
	DeprecatedWarn
	// DeprecatedRaise rejects instantiation with a *DeprecationError.
	DeprecatedRaise
)

// HaltSet is the set of Result statuses that should halt propagation —
// used for both a Definition's TaskHalt (call! re-raise) and WorkflowHalt
// (group-stop) settings (spec §4.11, §4.12).
type HaltSet map[string]bool

// NewHaltSet builds a HaltSet from the given statuses.
func NewHaltSet(statuses ...string) HaltSet {
	s := make(HaltSet, len(statuses))
	for _, st := range statuses {
		s[st] = true
	}
	return s
}

// Body is the user-authored work a Task performs. Returning an error is
// equivalent to the task failing; panicking with a Fault (via t.Skip /
// t.Fail, or a nested CallBang's halt) is how a task signals a controlled
// interruption.
type Body func(t *Task) error

// Definition is the "class" side of a Task: its name, settings, registries,
// and body, shared by every Task instance built from it. Definitions are
// read-only once execution begins (spec §5 "Shared resources").
type Definition struct {
	ClassName string

	// TypeName is the Result's serialized "type" field (spec §4.14, §6):
	// "Task" for a plain Definition, "Workflow" for one built by
	// workflow.NewDefinition. NewDefinition defaults it to "Task"; leave it
	// alone unless you're building a new kind of Definition wrapper.
	TypeName string

	Settings     config.Settings
	TaskHalt     HaltSet
	WorkflowHalt HaltSet
	Tags         []string
	Deprecated   Deprecation

	Coercions  *coerce.Registry
	Validators *validate.Registry
	Attributes *attribute.Registry[*Task]
	Callbacks  *callback.Registry[*Task]
	Middleware *middleware.Registry[*Task]

	Body Body
}

// NewDefinition creates a Definition with default registries and the
// spec's default halt sets ({failed} for both TaskHalt and WorkflowHalt).
func NewDefinition(className string) *Definition {
	coercions := coerce.Default()
	validators := validate.Default()
	resolver := attribute.NewResolver[*Task](coercions, validators)

	return &Definition{
		ClassName:    className,
		TypeName:     "Task",
		Settings:     config.Default(),
		TaskHalt:     NewHaltSet("failed"),
		WorkflowHalt: NewHaltSet("failed"),
		Coercions:    coercions,
		Validators:   validators,
		Attributes:   attribute.NewRegistry[*Task](resolver),
		Callbacks:    callback.NewRegistry[*Task](),
		Middleware:   middleware.NewRegistry[*Task](),
	}
}

// Extend creates a child Definition (the equivalent of subclassing):
// attributes and callbacks are inherited — a child's own registrations run
// after the parent's at the same event (spec §4.8) — and the parent's
// middleware registry wraps the child's own middleware, parent outermost.
// Halt sets, tags, and settings are copied and may be overridden
// independently afterward.
func (d *Definition) Extend(className string) *Definition {
	parentMiddleware := d.Middleware
	out := &Definition{
		ClassName:    className,
		TypeName:     d.TypeName,
		Settings:     d.Settings,
		TaskHalt:     cloneHaltSet(d.TaskHalt),
		WorkflowHalt: cloneHaltSet(d.WorkflowHalt),
		Tags:         append([]string(nil), d.Tags...),
		Deprecated:   d.Deprecated,
		Coercions:    d.Coercions,
		Validators:   d.Validators,
		Attributes:   d.Attributes.Extend(),
		Callbacks:    d.Callbacks.Extend(),
		Middleware:   middleware.NewRegistry[*Task](),
	}
	out.Middleware.Use(func(t *Task, next middleware.Next) error {
		return parentMiddleware.Call(t, next)
	})
	return out
}

func cloneHaltSet(h HaltSet) HaltSet {
	out := make(HaltSet, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Required registers attr as a required attribute.
func (d *Definition) Required(attr *attribute.Attribute[*Task]) {
	attr.Required = true
	d.Attributes.Register(attr)
}

// Optional registers attr as an optional attribute.
func (d *Definition) Optional(attr *attribute.Attribute[*Task]) {
	d.Attributes.Register(attr)
}

// Call runs this Definition's Body against input, exactly like the
// package-level Call(ctx, d, input) — a convenience so callers (notably
// workflow.Definition's group execution) can treat a *Definition the way
// the spec's `TaskClass.call(context)` reads.
func (d *Definition) Call(ctx context.Context, input Input) (*result.Result, error) {
	return Call(ctx, d, input)
}

// Use appends a middleware to the Definition's onion.
func (d *Definition) Use(fn middleware.Func[*Task]) {
	d.Middleware.Use(fn)
}

// On registers a callback for event.
func (d *Definition) On(event string, fn callback.Func[*Task], opts ...callback.Option[*Task]) {
	d.Callbacks.Register(event, fn, opts...)
}

func (d *Definition) validate() error {
	if d.Body == nil {
		return &UndefinedCallError{ClassName: d.ClassName}
	}
	return nil
}

// UndefinedCallError reports that a Definition has no Body (spec §7,
// "UndefinedCallError").
type UndefinedCallError struct{ ClassName string }

func (e *UndefinedCallError) Error() string {
	return fmt.Sprintf("%s does not define a call method", e.ClassName)
}

// DeprecationError reports instantiation of a Definition marked
// DeprecatedRaise.
type DeprecationError struct{ ClassName string }

func (e *DeprecationError) Error() string {
	return fmt.Sprintf("%s is deprecated and may not be used", e.ClassName)
}
