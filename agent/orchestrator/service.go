// Package orchestrator runs the bounded reasoning loop between the model
// backend and the tool registry. One Chat call is one conversation turn from
// the caller's point of view: the loop alternates model generations and tool
// invocations until the model answers in plain text, a terminal error occurs,
// or the turn cap is reached. All terminal conditions resolve to text.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
)

const (
	defaultMaxTurns = 5
	defaultTimeout  = 2 * time.Minute
)

// Config tunes the orchestration loop. All fields are optional.
type Config struct {
	// MaxTurns caps the number of model generations per Chat call.
	MaxTurns int `split_words:"true" default:"5"`
	// Timeout bounds a whole Chat call, covering every model and tool
	// round-trip inside it.
	Timeout time.Duration `default:"2m"`
	// EnforceConfirmation makes tools flagged RequiresConfirmation fail
	// closed unless the request carries Confirmed.
	EnforceConfirmation bool `split_words:"true" default:"false"`
}

// Request is one user utterance handed to the agent.
type Request struct {
	Text      string
	UserID    string
	Confirmed bool
}

// Result is the agent's answer. Navigation is set when a tool asked the
// client UI to change route during the loop; ToolCalls counts executed tools.
type Result struct {
	Text       string
	Navigation *contractx.NavigationDirective
	ToolCalls  int
}

// Service drives one agent definition over a model backend and a tool
// registry.
type Service struct {
	def     contractx.AgentDefinition
	backend contractx.ModelBackend
	tools   contractx.ToolInvoker
	cfg     Config
}

// New wires a service. The backend and invoker are required; the definition's
// tool descriptors are the ones advertised to the model on every generation.
func New(def contractx.AgentDefinition, backend contractx.ModelBackend, tools contractx.ToolInvoker, cfg Config) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: model backend is required", contractx.ErrValidation)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool invoker is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(def.Model) == "" {
		return nil, fmt.Errorf("%w: agent definition has no model", contractx.ErrValidation)
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Service{def: def, backend: backend, tools: tools, cfg: cfg}, nil
}

// Chat runs the loop for one utterance. It never returns a non-nil error for
// model or tool failures; those become the Result text so the HTTP boundary
// can relay them verbatim. Only an empty utterance is rejected.
func (s *Service) Chat(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fmt.Errorf("%w: empty message", contractx.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	transcript := []contractx.Turn{contractx.UserTurn(seedPrompt(s.def, text))}

	res := Result{}
	for turn := 0; turn < s.cfg.MaxTurns; turn++ {
		out, err := s.backend.Generate(ctx, s.def.Model, transcript, s.def.Tools)
		if err != nil {
			log.Error().Err(err).Str("agent", s.def.Name).Str("user_id", req.UserID).Msg("model generation failed")
			res.Text = fmt.Sprintf("Error interacting with agent: %v", err)
			return res, nil
		}

		st := advance(out)
		switch st.phase {
		case phaseDone, phaseFailed:
			res.Text = st.text
			return res, nil
		}

		call := st.call
		desc, ok := s.tools.Lookup(call.Name)
		if !ok {
			res.Text = toolNotFoundText(call.Name)
			return res, nil
		}
		if s.cfg.EnforceConfirmation && desc.RequiresConfirmation && !req.Confirmed {
			res.Text = confirmationText(call.Name)
			return res, nil
		}

		log.Debug().
			Str("agent", s.def.Name).
			Str("tool", call.Name).
			Str("user_id", req.UserID).
			Msg("invoking tool")

		result := s.tools.Invoke(ctx, call.Name, call.Args)
		if result.Error != "" {
			res.Text = toolErrorText(call.Name, result.Error)
			return res, nil
		}
		res.ToolCalls++
		if sig, ok := result.Result.(contractx.NavigationSignal); ok {
			res.Navigation = &contractx.NavigationDirective{Route: sig.Payload}
		}

		transcript = append(transcript,
			contractx.ModelToolCallTurn(call),
			contractx.ToolResultTurn(result),
		)
	}

	res.Text = maxTurnsText
	return res, nil
}
