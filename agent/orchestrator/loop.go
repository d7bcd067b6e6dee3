package orchestrator

import (
	"fmt"

	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
)

// phase is the orchestration loop state.
type phase int

const (
	phaseAwaitingModel phase = iota
	phaseExecutingTool
	phaseDone
	phaseFailed
)

// failureKind labels a terminal failure. Every kind resolves to a text
// answer at the orchestration boundary; none reaches the caller as an error.
type failureKind string

const failNoModelResponse failureKind = "no_model_response"

// Fixed terminal messages, reported to the caller as normal text results.
const (
	noResponseText = "Error: No response from model."
	maxTurnsText   = "Agent stopped (max turns reached)."
)

func toolNotFoundText(tool string) string {
	return fmt.Sprintf("Error: Tool %s not found.", tool)
}

func toolErrorText(tool, message string) string {
	return fmt.Sprintf("Tool Error (%s): %s", tool, message)
}

func confirmationText(tool string) string {
	return fmt.Sprintf("The %s action needs your explicit confirmation before it can run. Please confirm and ask again.", tool)
}

// step is the outcome of one state transition.
type step struct {
	phase   phase
	text    string      // set when phase is phaseDone or phaseFailed
	failure failureKind // set when phase is phaseFailed
	call    contractx.ToolCall
}

// advance is the pure transition out of phaseAwaitingModel for a given model
// output. Tool execution outcomes are applied by the loop itself.
func advance(out contractx.ModelOutput) step {
	switch out.Kind {
	case contractx.OutputText:
		return step{phase: phaseDone, text: out.Text}
	case contractx.OutputToolCall:
		return step{phase: phaseExecutingTool, call: out.ToolCall}
	default:
		return step{phase: phaseFailed, text: noResponseText, failure: failNoModelResponse}
	}
}

// seedPrompt builds the single opening user turn: agent name, description,
// system instruction, and the raw utterance, separated so the model can tell
// instruction from user content.
func seedPrompt(def contractx.AgentDefinition, userText string) string {
	return fmt.Sprintf(
		"System Instruction: %s\n\nRole: %s\nDescription: %s\n\nUser: %s",
		def.Instruction, def.Name, def.Description, userText,
	)
}
