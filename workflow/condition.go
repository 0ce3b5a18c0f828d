package workflow

import "github.com/tailored-agentic-units/cmdx/task"

// Condition composition helpers, grounded on the teacher's
// orchestrate/state.And/Or/Not predicate combinators — the same shape,
// rebased from a graph edge's TransitionPredicate(State) bool onto a
// group's Condition(*task.Task) bool.

// Not inverts cond.
func Not(cond Condition) Condition {
	return func(t *task.Task) bool { return !cond(t) }
}

// And combines conditions with logical AND (all must be true). An empty
// list is vacuously true.
func And(conds ...Condition) Condition {
	return func(t *task.Task) bool {
		for _, c := range conds {
			if !c(t) {
				return false
			}
		}
		return true
	}
}

// Or combines conditions with logical OR (at least one must be true). An
// empty list is vacuously false.
func Or(conds ...Condition) Condition {
	return func(t *task.Task) bool {
		for _, c := range conds {
			if c(t) {
				return true
			}
		}
		return false
	}
}

// AttrEquals returns a Condition that checks whether methodName resolved
// (via the attribute pipeline) to value.
func AttrEquals(methodName string, value any) Condition {
	return func(t *task.Task) bool {
		v, ok := t.Attr(methodName)
		return ok && v == value
	}
}

// AttrPresent returns a Condition that checks whether methodName resolved
// to any value at all.
func AttrPresent(methodName string) Condition {
	return func(t *task.Task) bool {
		_, ok := t.Attr(methodName)
		return ok
	}
}
