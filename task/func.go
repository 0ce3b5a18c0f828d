package task

// Func builds a Definition whose entire body is a single function,
// skipping the ceremony of NewDefinition+assignment for simple one-off
// tasks. Grounded on the teacher's function-node shorthand
// (orchestrate/state.NewFunctionNode), which offers the same escape hatch
// for graph nodes that don't need a dedicated named type.
func Func(className string, body Body) *Definition {
	def := NewDefinition(className)
	def.Body = body
	return def
}
