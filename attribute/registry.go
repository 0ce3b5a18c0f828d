package attribute

import (
	"sync"

	"github.com/tailored-agentic-units/cmdx/attrerr"
	"github.com/tailored-agentic-units/cmdx/taskcontext"
)

// Registry is the ordered collection of top-level Attributes declared on a
// Task class (spec §4.7).
type Registry[T any] struct {
	mu   sync.Mutex
	top  []*Attribute[T]
	res  *Resolver[T]
}

// NewRegistry creates an empty Registry backed by resolver.
func NewRegistry[T any](resolver *Resolver[T]) *Registry[T] {
	return &Registry[T]{res: resolver}
}

// Extend returns a new Registry seeded with a copy of r's top-level
// attribute list, the mechanism by which a Task subclass inherits its
// parent's declared attributes.
func (r *Registry[T]) Extend() *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := NewRegistry[T](r.res)
	out.top = append([]*Attribute[T](nil), r.top...)
	return out
}

// Register appends one or more top-level Attributes.
func (r *Registry[T]) Register(attrs ...*Attribute[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.top = append(r.top, attrs...)
}

// Deregister removes any top-level or descendant Attribute whose method
// name matches one of names.
func (r *Registry[T]) Deregister(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remove := make(map[string]bool, len(names))
	for _, n := range names {
		remove[n] = true
	}

	kept := make([]*Attribute[T], 0, len(r.top))
	for _, a := range r.top {
		if remove[a.MethodName()] {
			continue
		}
		a.Children = filterDescendants(a.Children, remove)
		kept = append(kept, a)
	}
	r.top = kept
}

func filterDescendants[T any](children []*Attribute[T], remove map[string]bool) []*Attribute[T] {
	kept := make([]*Attribute[T], 0, len(children))
	for _, c := range children {
		if remove[c.MethodName()] {
			continue
		}
		c.Children = filterDescendants(c.Children, remove)
		kept = append(kept, c)
	}
	return kept
}

// Attributes returns the registered top-level Attributes, in registration
// order.
func (r *Registry[T]) Attributes() []*Attribute[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Attribute[T](nil), r.top...)
}

// DefineAndVerify resolves every top-level Attribute (and recursively its
// children) against t, returning the accumulated Errors. Parents resolve
// before their children, since a child's default container is its
// parent's already-resolved value (spec §4.4 step 1, §4.7).
func (r *Registry[T]) DefineAndVerify(t T, ctx *taskcontext.Context) (cache map[string]any, errs *attrerr.Errors) {
	cache = make(map[string]any)
	errs = attrerr.New()

	for _, a := range r.Attributes() {
		r.resolveTree(t, ctx, a, errs, cache)
	}
	return cache, errs
}

func (r *Registry[T]) resolveTree(t T, ctx *taskcontext.Context, a *Attribute[T], errs *attrerr.Errors, cache map[string]any) {
	r.res.Resolve(t, ctx, a, errs, cache)
	for _, child := range a.Children {
		r.resolveTree(t, ctx, child, errs, cache)
	}
}
