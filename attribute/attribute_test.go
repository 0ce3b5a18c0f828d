package attribute_test

import (
	"testing"

	"github.com/tailored-agentic-units/cmdx/attribute"
	"github.com/tailored-agentic-units/cmdx/coerce"
	"github.com/tailored-agentic-units/cmdx/taskcontext"
	"github.com/tailored-agentic-units/cmdx/validate"
)

type fakeTask struct{ name string }

func newRegistry() (*attribute.Resolver[*fakeTask], *attribute.Registry[*fakeTask]) {
	res := attribute.NewResolver[*fakeTask](coerce.Default(), validate.Default())
	return res, attribute.NewRegistry[*fakeTask](res)
}

func TestAttribute_ResolvesFromContext(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(&attribute.Attribute[*fakeTask]{Name: "name", Types: []string{coerce.String}})

	ctx := taskcontext.FromMap(map[string]any{"name": "river"})
	cache, errs := reg.DefineAndVerify(&fakeTask{}, ctx)

	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Messages())
	}
	if cache["name"] != "river" {
		t.Fatalf("cache[name] = %v, want river", cache["name"])
	}
}

func TestAttribute_UsesDefaultWhenAbsent(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(&attribute.Attribute[*fakeTask]{
		Name: "retries",
		Default: func(tk *fakeTask) (any, bool) {
			return 3, true
		},
		Types: []string{coerce.Integer},
	})

	ctx := taskcontext.New()
	cache, errs := reg.DefineAndVerify(&fakeTask{}, ctx)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Messages())
	}
	if cache["retries"] != 3 {
		t.Fatalf("cache[retries] = %v, want 3", cache["retries"])
	}
}

func TestAttribute_RequiredRecordsError(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(&attribute.Attribute[*fakeTask]{Name: "id", Required: true})

	ctx := taskcontext.New()
	_, errs := reg.DefineAndVerify(&fakeTask{}, ctx)
	if !errs.For("id") {
		t.Fatal("expected a required-parameter error for missing id")
	}
}

func TestAttribute_CoercionFailureRecordsError(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(&attribute.Attribute[*fakeTask]{Name: "count", Types: []string{coerce.Integer}})

	ctx := taskcontext.FromMap(map[string]any{"count": "not-a-number"})
	cache, errs := reg.DefineAndVerify(&fakeTask{}, ctx)
	if !errs.For("count") {
		t.Fatal("expected a coercion error for an unconvertible value")
	}
	if cache["count"] != nil {
		t.Fatalf("cache[count] = %v, want nil after coercion failure", cache["count"])
	}
	msgs := errs.Messages()["count"]
	if len(msgs) != 1 || msgs[0] != "could not coerce into an integer" {
		t.Fatalf("messages[count] = %v, want [\"could not coerce into an integer\"]", msgs)
	}
}

func TestAttribute_CoercionFailureWithMultipleTypesListsThemAll(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(&attribute.Attribute[*fakeTask]{Name: "title", Types: []string{coerce.Integer, coerce.Float}})

	ctx := taskcontext.FromMap(map[string]any{"title": "abc"})
	_, errs := reg.DefineAndVerify(&fakeTask{}, ctx)
	msgs := errs.Messages()["title"]
	if len(msgs) != 1 || msgs[0] != "could not coerce into one of: integer, float" {
		t.Fatalf("messages[title] = %v, want [\"could not coerce into one of: integer, float\"]", msgs)
	}
}

func TestAttribute_ValidatorRecordsError(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(&attribute.Attribute[*fakeTask]{
		Name:       "email",
		Types:      []string{coerce.String},
		Validators: map[string]any{validate.Presence: true},
	})

	ctx := taskcontext.FromMap(map[string]any{"email": "   "})
	_, errs := reg.DefineAndVerify(&fakeTask{}, ctx)
	if !errs.For("email") {
		t.Fatal("expected presence validator to record an error for a whitespace-only value")
	}
}

func TestAttribute_NestedChildrenResolveAgainstParentValue(t *testing.T) {
	_, reg := newRegistry()
	parent := &attribute.Attribute[*fakeTask]{Name: "address"}
	child := &attribute.Attribute[*fakeTask]{Name: "city", Parent: parent, Types: []string{coerce.String}}
	parent.Children = []*attribute.Attribute[*fakeTask]{child}
	reg.Register(parent)

	ctx := taskcontext.FromMap(map[string]any{
		"address": map[string]any{"city": "kyiv"},
	})
	cache, errs := reg.DefineAndVerify(&fakeTask{}, ctx)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Messages())
	}
	if cache["city"] != "kyiv" {
		t.Fatalf("cache[city] = %v, want kyiv", cache["city"])
	}
}

func TestAttribute_MethodNameWithPrefixSuffixAs(t *testing.T) {
	a := &attribute.Attribute[*fakeTask]{Name: "name", As: "label", Prefix: "p_", Suffix: "_s"}
	if got := a.MethodName(); got != "p_label_s" {
		t.Fatalf("MethodName() = %q, want p_label_s", got)
	}
}

func TestRegistry_Deregister(t *testing.T) {
	_, reg := newRegistry()
	reg.Register(
		&attribute.Attribute[*fakeTask]{Name: "keep"},
		&attribute.Attribute[*fakeTask]{Name: "drop"},
	)
	reg.Deregister("drop")

	attrs := reg.Attributes()
	if len(attrs) != 1 || attrs[0].Name != "keep" {
		t.Fatalf("Attributes() = %v, want only 'keep'", attrs)
	}
}
