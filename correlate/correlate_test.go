package correlate_test

import (
	"context"
	"testing"

	"github.com/tailored-agentic-units/cmdx/correlate"
)

func TestCorrelate_WithFrom(t *testing.T) {
	ctx := correlate.With(context.Background(), "root")
	id, ok := correlate.From(ctx)
	if !ok || id != "root" {
		t.Fatalf("From() = (%q, %v), want (\"root\", true)", id, ok)
	}
}

func TestCorrelate_From_Unset(t *testing.T) {
	if _, ok := correlate.From(context.Background()); ok {
		t.Fatal("expected no ambient id on a fresh context")
	}
}

func TestCorrelate_Use_ScopedNesting(t *testing.T) {
	root := correlate.With(context.Background(), "root")

	var outer, inner, afterInner, afterOuter string

	correlate.Use(root, "outer", func(outerCtx context.Context) {
		outer, _ = correlate.From(outerCtx)

		correlate.Use(outerCtx, "inner", func(innerCtx context.Context) {
			inner, _ = correlate.From(innerCtx)
		})

		afterInner, _ = correlate.From(outerCtx)
	})

	afterOuter, _ = correlate.From(root)

	if outer != "outer" || inner != "inner" || afterInner != "outer" || afterOuter != "root" {
		t.Fatalf("got outer=%q inner=%q afterInner=%q afterOuter=%q", outer, inner, afterInner, afterOuter)
	}
}

func TestCorrelate_Use_RestoresAfterPanic(t *testing.T) {
	root := correlate.With(context.Background(), "root")

	func() {
		defer func() { recover() }()
		correlate.Use(root, "outer", func(ctx context.Context) {
			panic("boom")
		})
	}()

	id, _ := correlate.From(root)
	if id != "root" {
		t.Fatalf("id after panic = %q, want \"root\"", id)
	}
}

func TestCorrelate_IDOrGenerate(t *testing.T) {
	ctx := context.Background()
	id := correlate.IDOrGenerate(ctx)
	if id == "" {
		t.Fatal("expected a generated id")
	}

	ctx2 := correlate.With(ctx, "fixed")
	if got := correlate.IDOrGenerate(ctx2); got != "fixed" {
		t.Fatalf("IDOrGenerate() = %q, want \"fixed\"", got)
	}
}
