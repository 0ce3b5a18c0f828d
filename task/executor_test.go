package task_test

import (
	"context"
	"testing"

	"github.com/tailored-agentic-units/cmdx/callback"
	"github.com/tailored-agentic-units/cmdx/middleware"
	"github.com/tailored-agentic-units/cmdx/task"
)

func TestExecutor_CallbacksFireInSpecOrder(t *testing.T) {
	var log []string
	record := func(name string) callback.Func[*task.Task] {
		return func(tk *task.Task) error {
			log = append(log, name)
			return nil
		}
	}

	def := task.NewDefinition("Ordered")
	def.On(callback.BeforeValidation, record("before_validation"))
	def.On(callback.AfterValidation, record("after_validation"))
	def.On(callback.BeforeExecution, record("before_execution"))
	def.On(callback.OnExecuting, record("on_executing"))
	def.On(callback.OnComplete, record("on_complete"))
	def.On(callback.OnExecuted, record("on_executed"))
	def.On(callback.OnSuccess, record("on_success"))
	def.On(callback.OnGood, record("on_good"))
	def.On(callback.AfterExecution, record("after_execution"))
	def.Body = func(tk *task.Task) error {
		log = append(log, "body")
		return nil
	}

	if _, err := task.Call(context.Background(), def, nil); err != nil {
		t.Fatalf("Call() = %v", err)
	}

	want := []string{
		"before_validation", "after_validation",
		"before_execution", "on_executing", "body",
		"on_complete", "on_executed", "on_success", "on_good", "after_execution",
	}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestExecutor_MiddlewareWrapsBody(t *testing.T) {
	var log []string
	def := task.NewDefinition("Wrapped")
	def.Use(func(tk *task.Task, next middleware.Next) error {
		log = append(log, "mw-before")
		err := next()
		log = append(log, "mw-after")
		return err
	})
	def.Body = func(tk *task.Task) error {
		log = append(log, "body")
		return nil
	}

	if _, err := task.Call(context.Background(), def, nil); err != nil {
		t.Fatalf("Call() = %v", err)
	}
	if len(log) != 3 || log[0] != "mw-before" || log[1] != "body" || log[2] != "mw-after" {
		t.Fatalf("log = %v", log)
	}
}

func TestExecutor_FreezesTaskAndResultAfterFinalize(t *testing.T) {
	def := task.NewDefinition("Done")
	def.Body = func(tk *task.Task) error { return nil }

	r, err := task.Call(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Call() = %v", err)
	}
	if !r.Frozen() {
		t.Fatal("expected the Result to be frozen after finalize")
	}
}
