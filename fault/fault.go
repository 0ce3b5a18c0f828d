// Package fault implements the control-flow signals used to halt a Task's
// execution and propagate that halt through arbitrarily deep parent calls.
//
// A Fault always wraps a *result.Result. It is raised as a Go panic — this
// is the one deliberate re-architecture the port makes to the source's
// exception-based control flow (see DESIGN.md "Fault-as-exception"). Faults
// are recovered exclusively at the task executor boundary; any other panic
// value observed there is a genuine runtime panic from user code, and the
// executor folds it into a failed Result the same way it folds in a
// returned error (spec §4.11 step 4, "any other exception").
package fault

import (
	"fmt"

	"github.com/tailored-agentic-units/cmdx/result"
)

// Fault is raised (via panic) to unwind a task body and signal a halt.
// Implementations are Skipped and Failed.
type Fault interface {
	error
	// Result is the Result this Fault carries.
	Result() *result.Result
	// Status is the status (skipped/failed) this Fault represents.
	Status() result.Status
}

// base carries the common Fault payload.
type base struct {
	status result.Status
	res    *result.Result
}

func (b *base) Result() *result.Result { return b.res }
func (b *base) Status() result.Status  { return b.status }

// Skipped signals that a task's Result transitioned to the skipped status.
type Skipped struct{ base }

func (s *Skipped) Error() string {
	return fmt.Sprintf("[%s] skipped: %v", s.res.ClassName(), s.res.Metadata()["reason"])
}

// NewSkipped wraps r in a Skipped fault.
func NewSkipped(r *result.Result) *Skipped {
	return &Skipped{base{status: result.StatusSkipped, res: r}}
}

// Failed signals that a task's Result transitioned to the failed status.
type Failed struct{ base }

func (f *Failed) Error() string {
	return fmt.Sprintf("[%s] failed: %v", f.res.ClassName(), f.res.Metadata()["reason"])
}

// NewFailed wraps r in a Failed fault.
func NewFailed(r *result.Result) *Failed {
	return &Failed{base{status: result.StatusFailed, res: r}}
}

// Raise panics with the given Fault. Exists mainly for readability at call
// sites (task.Skip/task.Fail) and for symmetry with Recover.
func Raise(f Fault) {
	panic(f)
}

// Recover inspects a recovered panic value. ok is true only when v is a
// Fault; callers must re-panic v unchanged when ok is false.
func Recover(v any) (f Fault, ok bool) {
	f, ok = v.(Fault)
	return f, ok
}

// Matcher is a predicate over a Fault, used by For and Matches to build
// ergonomic rescue-style selectors.
type Matcher func(Fault) bool

// For returns a Matcher that matches any Fault whose originating task's
// class name is one of classNames.
func For(classNames ...string) Matcher {
	set := make(map[string]struct{}, len(classNames))
	for _, n := range classNames {
		set[n] = struct{}{}
	}
	return func(f Fault) bool {
		if f == nil {
			return false
		}
		_, ok := set[f.Result().ClassName()]
		return ok
	}
}

// Matches wraps an arbitrary predicate as a Matcher. Per spec, calling
// Matches with a nil predicate is a usage error.
func Matches(predicate func(Fault) bool) Matcher {
	if predicate == nil {
		panic(fmt.Errorf("fault: Matches requires a non-nil predicate"))
	}
	return Matcher(predicate)
}
