package serialize_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/cmdx/chain"
	"github.com/tailored-agentic-units/cmdx/result"
	"github.com/tailored-agentic-units/cmdx/serialize"
	"github.com/tailored-agentic-units/cmdx/task"
)

func TestResult_SuccessShape(t *testing.T) {
	def := task.NewDefinition("Simple")
	def.Body = func(tk *task.Task) error { return nil }

	r, err := task.Call(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Call() = %v", err)
	}

	out := serialize.Result(r)
	for _, key := range []string{"index", "chain_id", "type", "class", "id", "tags", "state", "status", "outcome", "metadata", "runtime"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("missing key %q in %v", key, out)
		}
	}
	if out["class"] != "Simple" {
		t.Fatalf("class = %v, want Simple", out["class"])
	}
	if out["status"] != "success" {
		t.Fatalf("status = %v, want success", out["status"])
	}
	if _, has := out["caused_failure"]; has {
		t.Fatal("success Result must not carry caused_failure")
	}
}

func TestResult_FailureAttributionStripsNestedKeysOneLevel(t *testing.T) {
	child := task.NewDefinition("Child")
	child.Body = func(tk *task.Task) error {
		tk.Fail("boom", nil)
		return nil
	}

	parent := task.NewDefinition("Parent")
	parent.Body = func(tk *task.Task) error {
		_, err := task.CallBang(tk.Ctx(), child, tk.Context)
		return err
	}

	r, err := task.Call(context.Background(), parent, nil)
	if err != nil {
		t.Fatalf("Call() = %v", err)
	}
	if r.Status() != result.StatusFailed {
		t.Fatalf("status = %s, want failed", r.Status())
	}

	out := serialize.Result(r)
	cf, ok := out["caused_failure"].(map[string]any)
	if !ok {
		t.Fatalf("caused_failure missing or wrong type: %v", out["caused_failure"])
	}
	if cf["class"] != "Child" {
		t.Fatalf("caused_failure.class = %v, want Child", cf["class"])
	}
	if _, has := cf["caused_failure"]; has {
		t.Fatal("nested caused_failure must be stripped one level deep")
	}
	if _, has := cf["threw_failure"]; has {
		t.Fatal("nested threw_failure must be stripped one level deep")
	}
}

// joinedChain captures the Chain a Task joined, by closing over tk.Chain
// from inside its Body — task.Call itself only returns the Result.
func joinedChain(t *testing.T, def *task.Definition) (*result.Result, *chain.Chain) {
	t.Helper()
	var c *chain.Chain
	inner := def.Body
	def.Body = func(tk *task.Task) error {
		c = tk.Chain
		return inner(tk)
	}
	r, err := task.Call(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Call() = %v", err)
	}
	return r, c
}

func TestChain_DelegatesToFirstResult(t *testing.T) {
	def := task.NewDefinition("Root")
	def.Body = func(tk *task.Task) error { return nil }

	_, c := joinedChain(t, def)

	out := serialize.Chain(c)
	if out["state"] != "complete" {
		t.Fatalf("chain state = %v, want complete", out["state"])
	}
	if out["status"] != "success" {
		t.Fatalf("chain status = %v, want success", out["status"])
	}
	results, ok := out["results"].([]map[string]any)
	if !ok || len(results) != 1 {
		t.Fatalf("results = %v, want exactly one entry", out["results"])
	}
}

func TestChainInspector_HasRequiredFraming(t *testing.T) {
	def := task.NewDefinition("Framed")
	def.Body = func(tk *task.Task) error { return nil }

	_, c := joinedChain(t, def)

	block := serialize.ChainInspector(c)
	if !strings.HasPrefix(block, "\n") || !strings.HasSuffix(block, "\n") {
		t.Fatalf("ChainInspector must have leading/trailing newlines, got %q", block)
	}
	if !strings.Contains(block, "chain: "+c.ID()) {
		t.Fatalf("ChainInspector missing header, got %q", block)
	}
	if !strings.Contains(block, "=") {
		t.Fatalf("ChainInspector missing rule, got %q", block)
	}
	if !strings.Contains(block, "state: complete | status: success") {
		t.Fatalf("ChainInspector missing footer, got %q", block)
	}
}

func TestResultInspector_ContainsIdentityAndOutcome(t *testing.T) {
	def := task.NewDefinition("Inspected")
	def.Body = func(tk *task.Task) error { return nil }

	r, err := task.Call(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Call() = %v", err)
	}
	line := serialize.ResultInspector(r)
	if !strings.Contains(line, "Inspected") || !strings.Contains(line, "success") {
		t.Fatalf("ResultInspector line = %q, missing class/status", line)
	}
}
