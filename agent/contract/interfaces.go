package contract

import "context"

// ModelBackend is the consumed language-model capability. Given a transcript
// and the declared tool set it returns a discriminated ModelOutput. A
// transport or provider failure is returned as an error; the orchestrator
// owns converting it to a text answer.
type ModelBackend interface {
	Generate(ctx context.Context, model string, transcript []Turn, tools []ToolDescriptor) (ModelOutput, error)
}

// ToolInvoker resolves and executes registered tools. Execution failures are
// carried in ToolResult.Error, never as a raw error.
type ToolInvoker interface {
	Lookup(name string) (ToolDescriptor, bool)
	Invoke(ctx context.Context, name string, args map[string]any) ToolResult
}
