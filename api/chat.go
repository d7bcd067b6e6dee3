package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hanumantraders/warehouse-agent/agent/orchestrator"
)

// maxChatBody caps the request body; chat payloads are small.
const maxChatBody = 64 << 10

// Agent runs one agent invocation per call.
type Agent interface {
	Chat(ctx context.Context, req orchestrator.Request) (orchestrator.Result, error)
}

// chatRequest mirrors the client payload. Context carries free-form flags;
// the only one the server reads is "confirmed".
type chatRequest struct {
	Text    string         `json:"text"`
	UserID  string         `json:"user_id"`
	Context map[string]any `json:"context"`
}

type navigationPayload struct {
	Route string `json:"route"`
}

type chatPayload struct {
	Text       string             `json:"text"`
	Navigation *navigationPayload `json:"navigation,omitempty"`
}

type chatResponse struct {
	Response chatPayload `json:"response"`
}

type ChatHandler struct {
	agent Agent
}

func NewChatHandler(agent Agent) *ChatHandler {
	return &ChatHandler{agent: agent}
}

func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /agent/chat", h.handleChat)
}

// handleChat runs the agent for one utterance. Agent-level failures are
// already folded into the result text by the orchestrator, so the only
// non-200 responses are malformed bodies and empty messages.
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	result, err := h.agent.Chat(r.Context(), orchestrator.Request{
		Text:      req.Text,
		UserID:    req.UserID,
		Confirmed: boolFlag(req.Context, "confirmed"),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	log.Debug().
		Str("user_id", req.UserID).
		Int("tool_calls", result.ToolCalls).
		Msg("chat handled")

	payload := chatPayload{Text: result.Text}
	if result.Navigation != nil {
		payload.Navigation = &navigationPayload{Route: result.Navigation.Route}
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: payload})
}

func boolFlag(m map[string]any, key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}
