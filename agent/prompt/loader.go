package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/instruction.txt
	instructionRaw string

	//go:embed template/description.txt
	descriptionRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Instruction string
	Description string
}

// LoadPromptSet returns trimmed prompt strings. Safe to call concurrently;
// the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Instruction: strings.TrimSpace(instructionRaw),
		Description: strings.TrimSpace(descriptionRaw),
	}
}
