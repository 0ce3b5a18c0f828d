// Package chain implements the per-root-execution correlation log: the
// ordered sequence of Results produced by one root Task execution plus
// everything nested inside it.
//
// Like correlate, the "current" Chain rides in a context.Context value
// rather than a package-level global (spec Design Notes §9), giving strict
// isolation between concurrent root executions for free.
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/cmdx/correlate"
	"github.com/tailored-agentic-units/cmdx/result"
)

type contextKey struct{}

// Chain holds the id shared by every Result in one root execution tree and
// the ordered log of those Results.
type Chain struct {
	mu      sync.Mutex
	id      string
	results []*result.Result
}

// New creates an empty Chain with the given id.
func New(id string) *Chain {
	return &Chain{id: id}
}

func (c *Chain) ID() string { return c.id }

// Results returns a snapshot of the ordered Result log.
func (c *Chain) Results() []*result.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*result.Result(nil), c.results...)
}

// Len returns the number of Results currently logged.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Append adds r to the end of the log and stamps it with its index and
// this Chain's id.
func (c *Chain) Append(r *result.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r.SetIndex(len(c.results))
	r.SetChainID(c.id)
	c.results = append(c.results, r)
}

// --- ambient chain via context ----------------------------------------------

// With returns a derived context carrying c as the current Chain.
func With(ctx context.Context, c *Chain) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// From reads the current Chain, if one has been set on ctx.
func From(ctx context.Context) (*Chain, bool) {
	c, ok := ctx.Value(contextKey{}).(*Chain)
	return c, ok
}

// Build joins r onto the ambient Chain, creating one (and deriving a new
// context that carries it) if ctx has none yet. isRoot reports whether this
// call created the Chain — the caller uses that to decide whether it owns
// finalization (freezing, clearing the ambient slot).
//
// The Chain's id, absent an explicit override, falls back to the ambient
// correlation id (see the correlate package) and finally to a freshly
// generated UUID.
func Build(ctx context.Context, r *result.Result) (next context.Context, c *Chain, isRoot bool) {
	if existing, ok := From(ctx); ok {
		existing.Append(r)
		return ctx, existing, false
	}

	id := correlate.IDOrGenerate(ctx)
	c = New(id)
	c.Append(r)
	return With(ctx, c), c, true
}

// Freeze marks every Result currently in the Chain as immutable. Called by
// the executor when the root task of this Chain finishes.
func (c *Chain) Freeze() {
	for _, r := range c.Results() {
		r.Freeze()
	}
}

// String renders a short diagnostic identifier, useful in error messages.
func (c *Chain) String() string {
	return fmt.Sprintf("Chain(id=%s, results=%d)", c.id, c.Len())
}
