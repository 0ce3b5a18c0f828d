// Package serialize implements the bit-exact Task/Result/Chain serialization
// shapes and the human-readable Chain/Result inspectors (spec §4.14, §6).
//
// Grounded on the teacher's observability.Event shape (a flat map of
// diagnostic fields) and kernel.Result (a plain exported-field struct
// describing one Run's outcome) — this package plays the same role for a
// Task/Chain as kernel.Result plays for a kernel Run, rendered as
// map[string]any rather than a typed struct so it matches spec's literal
// field-name contract exactly.
package serialize

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/cmdx/chain"
	"github.com/tailored-agentic-units/cmdx/result"
)

// Task renders the shared Task/Workflow identity fields (spec §4.12,
// "TaskSerializer(task) → { index, chain_id, type, class, id, tags }").
func Task(r *result.Result) map[string]any {
	return map[string]any{
		"index":    r.Index(),
		"chain_id": r.ChainID(),
		"type":     r.TypeName(),
		"class":    r.ClassName(),
		"id":       r.ID(),
		"tags":     append([]string(nil), r.Tags()...),
	}
}

// Result renders a Result's full serialized shape: TaskSerializer's fields
// plus state/status/outcome/metadata/runtime, plus one level of
// caused_failure/threw_failure nesting (spec §4.14).
func Result(r *result.Result) map[string]any {
	out := Task(r)
	out["state"] = string(r.State())
	out["status"] = string(r.Status())
	out["outcome"] = r.Outcome()
	out["metadata"] = r.Metadata()

	if rt := r.Runtime(); rt != nil {
		out["runtime"] = rt.Seconds()
	} else {
		out["runtime"] = nil
	}

	if cf := r.CausedFailureResult(); cf != nil && cf != r {
		out["caused_failure"] = stripNestedAttribution(Result(cf))
	}
	if tf := r.ThrewFailureResult(); tf != nil && tf != r {
		out["threw_failure"] = stripNestedAttribution(Result(tf))
	}
	return out
}

// stripNestedAttribution removes caused_failure/threw_failure from an
// already-serialized Result so nesting bottoms out at one level deep, per
// spec §4.14 ("with its own caused_failure/threw_failure keys stripped").
func stripNestedAttribution(m map[string]any) map[string]any {
	delete(m, "caused_failure")
	delete(m, "threw_failure")
	return m
}

// Chain renders a Chain's serialized shape: chain-level state/status/
// outcome/runtime delegate to the first Result (spec §4.14).
func Chain(c *chain.Chain) map[string]any {
	results := c.Results()
	serialized := make([]map[string]any, len(results))
	for i, r := range results {
		serialized[i] = Result(r)
	}
	out := map[string]any{
		"id":      c.ID(),
		"results": serialized,
	}
	if len(results) == 0 {
		out["state"] = ""
		out["status"] = ""
		out["outcome"] = ""
		out["runtime"] = nil
		return out
	}
	first := results[0]
	out["state"] = string(first.State())
	out["status"] = string(first.Status())
	out["outcome"] = first.Outcome()
	if rt := first.Runtime(); rt != nil {
		out["runtime"] = rt.Seconds()
	} else {
		out["runtime"] = nil
	}
	return out
}

// LogLine renders the LoggerSerializer shape (spec §6): if msg is a
// *result.Result, its serialized form (tagged with origin unless already
// present); otherwise TaskSerializer(task) plus message and origin.
func LogLine(task *result.Result, msg any) map[string]any {
	if r, ok := msg.(*result.Result); ok {
		out := Result(r)
		if _, has := out["origin"]; !has {
			out["origin"] = "CMDx"
		}
		return out
	}
	out := Task(task)
	out["message"] = msg
	out["origin"] = "CMDx"
	return out
}

// ResultInspector renders r as a single pretty-printed line:
// "class(id) type=... state=... status=... outcome=... runtime=...".
func ResultInspector(r *result.Result) string {
	runtime := "null"
	if rt := r.Runtime(); rt != nil {
		runtime = fmt.Sprintf("%.6f", rt.Seconds())
	}
	return fmt.Sprintf(
		"%s(%s) type=%s state=%s status=%s outcome=%s runtime=%s",
		r.ClassName(), r.ID(), r.TypeName(), r.State(), r.Status(), r.Outcome(), runtime,
	)
}

// ChainInspector renders c as a human-readable multi-line block: header
// "chain: <id>", an "="-rule as long as the longer of header and footer, one pretty-printed
// line per Result, another rule, then a footer summarizing the chain's own
// state/status/outcome/runtime (delegated to the first Result, spec §4.14).
// Leading and trailing newlines are part of the required shape.
func ChainInspector(c *chain.Chain) string {
	header := fmt.Sprintf("chain: %s", c.ID())
	results := c.Results()
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = ResultInspector(r)
	}

	state, status, outcome, runtime := "", "", "", "null"
	if len(results) > 0 {
		first := results[0]
		state, status, outcome = string(first.State()), string(first.Status()), first.Outcome()
		if rt := first.Runtime(); rt != nil {
			runtime = fmt.Sprintf("%.6f", rt.Seconds())
		}
	}
	footer := fmt.Sprintf("state: %s | status: %s | outcome: %s | runtime: %s", state, status, outcome, runtime)

	// Rule length is max(header, footer) only (spec §4.14) — result lines
	// don't widen it, even if a class name makes one longer than both.
	width := len(header)
	if len(footer) > width {
		width = len(footer)
	}
	rule := strings.Repeat("=", width)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(rule)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(rule)
	b.WriteString("\n")
	b.WriteString(footer)
	b.WriteString("\n")
	return b.String()
}
