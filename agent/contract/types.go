package contract

import "context"

// Role labels one turn of a chat transcript.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// ToolCall is a model request to invoke one named tool.
type ToolCall struct {
	ID      string         `json:"id,omitempty"`
	Name    string         `json:"name"`
	Args    map[string]any `json:"args,omitempty"`
	RawArgs string         `json:"raw_args,omitempty"`
}

// ToolResult is the outcome of executing a ToolCall. A failed execution is
// reported through Error; raw panics and errors never cross the tool
// boundary.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Turn is one entry of a per-invocation transcript. Exactly one of Text,
// ToolCall, ToolResult carries the content, depending on Role.
type Turn struct {
	Role       Role        `json:"role"`
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

func ModelTextTurn(text string) Turn {
	return Turn{Role: RoleModel, Text: text}
}

// ModelToolCallTurn preserves the tool call exactly as the model emitted it
// so it can be replayed verbatim on the next model call.
func ModelToolCallTurn(call ToolCall) Turn {
	return Turn{Role: RoleModel, ToolCall: &call}
}

func ToolResultTurn(result ToolResult) Turn {
	return Turn{Role: RoleTool, ToolResult: &result}
}

// OutputKind discriminates ModelOutput.
type OutputKind int

const (
	// OutputNone means the backend produced no candidate at all.
	OutputNone OutputKind = iota
	// OutputText is a plain text answer; the conversation is finished.
	OutputText
	// OutputToolCall is a request to invoke one named tool.
	OutputToolCall
)

// ModelOutput is the tagged union returned by the model backend:
// text answer, tool invocation request, or no response.
type ModelOutput struct {
	Kind     OutputKind
	Text     string
	ToolCall ToolCall
}

// ToolHandler executes a tool with keyword-style arguments.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// ToolDescriptor is a registered, invocable capability exposed to the model
// backend. Immutable after registration.
type ToolDescriptor struct {
	Name        string
	Description string
	// Params is a JSON-schema style declaration of the tool arguments.
	Params map[string]any
	// RequiresConfirmation marks side-effecting tools that the orchestrator
	// may gate on an explicit user confirmation.
	RequiresConfirmation bool
	Handler              ToolHandler
}

// AgentDefinition is the process-wide agent configuration, constructed once
// at startup.
type AgentDefinition struct {
	Name        string
	Description string
	Instruction string
	Model       string
	Tools       []ToolDescriptor
}

// NavigationDirective asks the caller's UI to switch views. It rides
// alongside the final text and is not persisted.
type NavigationDirective struct {
	Route string `json:"route"`
}

// NavigationAction is the action value a navigation tool result carries.
const NavigationAction = "NAVIGATE"

// NavigationSignal is the structured value a tool returns to request a UI
// navigation; the orchestrator lifts it into a NavigationDirective.
type NavigationSignal struct {
	Action  string `json:"action"`
	Payload string `json:"payload"`
}
