// Package attribute implements Attribute, AttributeValue's 4-stage
// resolution pipeline, and AttributeRegistry (spec §4.4, §4.7).
//
// It is generic over T (instantiated with *task.Task) to avoid an import
// cycle with the task package, the same strategy as callback and
// middleware (spec §9 Design Notes).
//
// The original spec describes sources and defaults as polymorphic: a
// symbol naming a task method, an arity-1 callable, a zero-arity block, or
// a literal container. Go has no method_missing or dynamic dispatch by
// name, so this port collapses that polymorphism to a single explicit
// closure shape (SourceFunc / DefaultFunc) — callers that would have named
// a method pass a closure that calls it instead. Every other behavior
// (containment checks, short-circuiting on recorded errors, coercion
// fallback, derive-from-container) is preserved exactly.
package attribute

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/cmdx/attrerr"
	"github.com/tailored-agentic-units/cmdx/coerce"
	"github.com/tailored-agentic-units/cmdx/taskcontext"
	"github.com/tailored-agentic-units/cmdx/validate"
)

// SourceFunc resolves the container an Attribute will be derived from.
type SourceFunc[T any] func(t T) (any, error)

// DefaultFunc resolves an Attribute's default value when its source lacks
// one. The second return reports whether a default applies at all.
type DefaultFunc[T any] func(t T) (any, bool)

// DeriveFunc extracts an Attribute's named value out of a resolved
// container. Most callers leave this nil and rely on the built-in
// behavior: map[string]any and *taskcontext.Context containers are read by
// key; anything else yields no value.
type DeriveFunc[T any] func(container any, name string) (any, bool)

// Attribute is a declared input on a Task: its name, the ordered coercion
// type ids to try, validator options, and optional nested children.
type Attribute[T any] struct {
	Name   string
	Types  []string
	Prefix string
	Suffix string
	As     string

	Required bool
	Source   SourceFunc[T]
	Default  DefaultFunc[T]
	Derive   DeriveFunc[T]

	// CoerceOptions is passed through to the CoercionRegistry alongside the
	// value being coerced (e.g. a date layout).
	CoerceOptions map[string]any

	// Validators maps a validate.Registry key to the option value that key
	// expects (spec §4.5).
	Validators map[string]any

	Parent   *Attribute[T]
	Children []*Attribute[T]
}

// MethodName is (prefix ?? "") + (as ?? name) + (suffix ?? "") — the key
// under which the resolved value is cached and exposed.
func (a *Attribute[T]) MethodName() string {
	name := a.As
	if name == "" {
		name = a.Name
	}
	return a.Prefix + name + a.Suffix
}

// requiredChainOK checks that container holds a's name when a is required,
// checking a's ancestors first — used to cascade the "required parameter"
// containment check upward through a nested attribute tree (spec §4.4
// step 1). failedOn is the first attribute whose check failed.
func (a *Attribute[T]) requiredChainOK(container any) (ok bool, failedOn *Attribute[T]) {
	if a.Parent != nil {
		if ok, failedOn := a.Parent.requiredChainOK(container); !ok {
			return false, failedOn
		}
	}
	if !a.Required {
		return true, nil
	}
	if !contains(container, a.Name) {
		return false, a
	}
	return true, nil
}

func contains(container any, name string) bool {
	switch c := container.(type) {
	case *taskcontext.Context:
		return c.Has(name)
	case map[string]any:
		_, ok := c[name]
		return ok
	default:
		return true
	}
}

func deriveDefault(container any, name string) (any, bool) {
	switch c := container.(type) {
	case *taskcontext.Context:
		return c.Get(name)
	case map[string]any:
		v, ok := c[name]
		return v, ok
	default:
		return nil, false
	}
}

// Resolver runs the 4-stage AttributeValue pipeline for a single Attribute
// against a Task, its Context, and the shared Coercion/Validator registries
// (spec §4.4–§4.5).
type Resolver[T any] struct {
	Coercions  *coerce.Registry
	Validators *validate.Registry
}

// NewResolver creates a Resolver backed by the given registries.
func NewResolver[T any](coercions *coerce.Registry, validators *validate.Registry) *Resolver[T] {
	return &Resolver[T]{Coercions: coercions, Validators: validators}
}

// Resolve runs the pipeline for a, storing the final value in cache under
// a.MethodName() and returning it. Errors are recorded on errs (a missing
// required parameter against the attribute whose check failed, everything
// else against a.MethodName()). A source, required-parameter or coercion
// error stops the pipeline and nil is returned; validator errors are
// recorded after the value is cached, and the value is still returned.
func (r *Resolver[T]) Resolve(t T, ctx *taskcontext.Context, a *Attribute[T], errs *attrerr.Errors, cache map[string]any) any {
	method := a.MethodName()

	// Stage 1: sourceValue.
	var container any
	if a.Source != nil {
		c, err := a.Source(t)
		if err != nil {
			errs.Add(method, fmt.Sprintf("delegates to undefined method: %v", err))
			return nil
		}
		container = c
		// Proc sources bypass the required-containment check (spec §4.4 step 1).
	} else {
		if a.Parent != nil {
			container = cache[a.Parent.MethodName()]
		} else {
			container = ctx
		}
		if ok, failedOn := a.requiredChainOK(container); !ok {
			errs.Add(failedOn.MethodName(), "is a required parameter")
			return nil
		}
	}

	// Stage 2: defaultValue.
	var def any
	if a.Default != nil {
		if v, ok := a.Default(t); ok {
			def = v
		}
	}

	// Stage 3: deriveValue.
	derive := a.Derive
	if derive == nil {
		derive = deriveDefault
	}
	derived, ok := derive(container, a.Name)
	if !ok || derived == nil {
		derived = def
	}

	// Stage 4: coerceValue.
	final := derived
	if len(a.Types) > 0 {
		coerced, err := r.Coercions.CoerceFirst(a.Types, derived, a.CoerceOptions)
		if err != nil {
			errs.Add(method, fmt.Sprintf("could not coerce into %s", humanTypeNames(a.Types)))
			cache[method] = nil
			return nil
		}
		final = coerced
	}

	cache[method] = final
	r.validate(a, final, errs)
	return final
}

// validate runs every validator key declared on a against the resolved
// value (spec §4.5).
func (r *Resolver[T]) validate(a *Attribute[T], value any, errs *attrerr.Errors) {
	method := a.MethodName()
	for key, optValue := range a.Validators {
		if err := r.Validators.Validate(key, value, optValue); err != nil {
			errs.Add(method, err.Error())
		}
	}
}

// humanTypeNames renders a declared type list for the coercion-failure
// message (spec §4.4 step 4): a single type uses the "a/an <type>" article
// form ("an integer"), multiple types use "one of: <type>, <type>, ...".
func humanTypeNames(types []string) string {
	if len(types) == 1 {
		return article(types[0]) + " " + types[0]
	}
	return "one of: " + strings.Join(types, ", ")
}

// article picks "an" before a vowel sound, "a" otherwise.
func article(word string) string {
	if word == "" {
		return "a"
	}
	switch word[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an"
	default:
		return "a"
	}
}
