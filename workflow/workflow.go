// Package workflow implements grouped sequential composition of Tasks
// (spec §4.12): a Workflow is a Task whose Body is generated from a
// declared sequence of execution groups instead of hand-written.
//
// Grounded on the teacher's orchestrate/workflows/chain.go fold-over-steps
// shape, adapted from "process one item, accumulate TContext" to "run one
// Task class, accumulate onto the shared Context/Chain, halt on a matching
// status" — the accumulation here is the Context every group member shares,
// not a value threaded stage to stage.
package workflow

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/cmdx/fault"
	"github.com/tailored-agentic-units/cmdx/result"
	"github.com/tailored-agentic-units/cmdx/task"
)

// Condition evaluates a group's if/unless guard against the Workflow's own
// Task instance (spec §4.12 step 1: "symbol → task method; callable →
// invoke in task").
type Condition func(t *task.Task) bool

// group is one process(...) call: an ordered member list plus its guards
// and halt override.
type group struct {
	members []*task.Definition
	ifCond  Condition
	unless  Condition
	halt    task.HaltSet // nil defers to each member's own WorkflowHalt
}

// GroupOption configures a single Process call.
type GroupOption func(*group)

// If only runs the group when cond(t) is true.
func If(cond Condition) GroupOption {
	return func(g *group) { g.ifCond = cond }
}

// Unless skips the group when cond(t) is true.
func Unless(cond Condition) GroupOption {
	return func(g *group) { g.unless = cond }
}

// Halt overrides, for this group only, which statuses stop the workflow —
// taking precedence over every member's own class-level WorkflowHalt
// (spec §4.12 step 3, "group's workflow_halt option if present").
func Halt(statuses ...string) GroupOption {
	return func(g *group) { g.halt = task.NewHaltSet(statuses...) }
}

// Definition is a Workflow's class side: its underlying Task Definition
// plus the execution groups Process has appended. Embedding
// *task.Definition would promote Body for direct external mutation, which
// the spec rejects ("redefining the body is rejected") — Definition keeps
// it unexported instead and exposes Task for everything a caller
// legitimately needs (settings, callbacks, nesting as a Process member).
type Definition struct {
	task   *task.Definition
	groups []*group
}

// NewDefinition creates a Workflow Definition named className, wiring its
// Body to run the declared groups in order (spec §4.12).
func NewDefinition(className string) *Definition {
	d := task.NewDefinition(className)
	d.TypeName = "Workflow"
	w := &Definition{task: d}
	d.Body = w.run
	return w
}

// Task exposes the underlying *task.Definition — used to configure
// settings/callbacks the same way a plain Task does, and to nest this
// Workflow as a member of another Workflow's Process group (a Workflow is
// a Task, spec §4.12).
func (w *Definition) Task() *task.Definition { return w.task }

// Call runs the workflow, identical to w.Task().Call(ctx, input).
func (w *Definition) Call(ctx context.Context, input task.Input) (*result.Result, error) {
	return w.task.Call(ctx, input)
}

// CallBang runs the workflow, re-raising a Fault afterward if its status
// matches w.Task().TaskHalt, identical to task.CallBang(ctx, w.Task(), input).
func (w *Definition) CallBang(ctx context.Context, input task.Input) (*result.Result, error) {
	return task.CallBang(ctx, w.task, input)
}

// Process appends an execution group: members run in order, sharing the
// calling Task's Context and Chain, each checked against a halt set after
// it returns (spec §4.12). A Go type error replaces the spec's runtime
// "must be a Task or Workflow" check: members must already be
// *task.Definition values (obtained directly, or via a nested Workflow's
// Task() accessor), so the compiler rejects anything else.
func (w *Definition) Process(members []*task.Definition, opts ...GroupOption) {
	g := &group{members: append([]*task.Definition(nil), members...)}
	for _, opt := range opts {
		opt(g)
	}
	w.groups = append(w.groups, g)
}

// run is the Workflow's Body: it iterates groups in declaration order, and
// within each group, members in declaration order (spec §5 "Ordering").
// An empty group list, or every group skipped by its guard, yields success
// since run simply returns nil.
func (w *Definition) run(t *task.Task) error {
	for _, g := range w.groups {
		if g.ifCond != nil && !g.ifCond(t) {
			continue
		}
		if g.unless != nil && g.unless(t) {
			continue
		}
		for _, member := range g.members {
			r, err := task.Call(t.Ctx(), member, t.Context)
			if err != nil {
				return fmt.Errorf("workflow: %s: %w", member.ClassName, err)
			}

			halt := g.halt
			if halt == nil {
				halt = member.WorkflowHalt
			}
			if halt[string(r.Status())] {
				raiseHalt(r)
			}
		}
	}
	return nil
}

// raiseHalt panics with a Fault wrapping r, the halting member's Result.
// The Workflow's own invokeBody recover classifies it as "thrown from a
// child" (fault.Result() != the Workflow Task's own Result), so the
// executor's existing classify logic does exactly what spec §4.12 step 3
// asks: throw!(result) onto the Workflow's Result, then stop.
func raiseHalt(r *result.Result) {
	if r.Status() == result.StatusSkipped {
		fault.Raise(fault.NewSkipped(r))
		return
	}
	fault.Raise(fault.NewFailed(r))
}
