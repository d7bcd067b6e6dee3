// Package llm adapts an OpenAI-compatible chat-completions API to the
// model backend contract: transcript in, tagged output (text, tool call, or
// no response) out.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
)

type Client struct {
	api *openaisdk.Client
}

func NewClient(api *openaisdk.Client) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	return &Client{api: api}, nil
}

// Generate sends the transcript and declared tools to the model and returns
// the discriminated output. Prior tool-call turns are replayed with the same
// call id, name, and raw arguments the model emitted.
func (c *Client) Generate(
	ctx context.Context,
	model string,
	transcript []contractx.Turn,
	tools []contractx.ToolDescriptor,
) (contractx.ModelOutput, error) {
	messages, err := encodeTranscript(transcript)
	if err != nil {
		return contractx.ModelOutput{}, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(model),
		Messages: messages,
	}
	if declared := encodeTools(tools); len(declared) > 0 {
		params.Tools = declared
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.ModelOutput{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	return decodeResponse(resp)
}

func encodeTranscript(transcript []contractx.Turn) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(transcript))

	// Tool-result turns are paired with the call id of the model turn that
	// immediately precedes them.
	lastCallID := ""

	for i, turn := range transcript {
		switch turn.Role {
		case contractx.RoleUser:
			messages = append(messages, openaisdk.UserMessage(turn.Text))

		case contractx.RoleModel:
			if turn.ToolCall == nil {
				messages = append(messages, openaisdk.AssistantMessage(turn.Text))
				continue
			}
			callID := turn.ToolCall.ID
			if callID == "" {
				callID = fmt.Sprintf("call_%d", i)
			}
			lastCallID = callID

			rawArgs := turn.ToolCall.RawArgs
			if rawArgs == "" {
				encoded, err := json.Marshal(turn.ToolCall.Args)
				if err != nil {
					return nil, fmt.Errorf("%w: encode tool args: %v", contractx.ErrValidation, err)
				}
				rawArgs = string(encoded)
			}

			messages = append(messages, openaisdk.ChatCompletionMessageParamUnion{
				OfAssistant: &openaisdk.ChatCompletionAssistantMessageParam{
					ToolCalls: []openaisdk.ChatCompletionMessageToolCallParam{{
						ID: callID,
						Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
							Name:      turn.ToolCall.Name,
							Arguments: rawArgs,
						},
					}},
				},
			})

		case contractx.RoleTool:
			if turn.ToolResult == nil {
				return nil, fmt.Errorf("%w: tool turn without result", contractx.ErrValidation)
			}
			content, err := encodeToolResult(*turn.ToolResult)
			if err != nil {
				return nil, err
			}
			messages = append(messages, openaisdk.ToolMessage(content, lastCallID))

		default:
			return nil, fmt.Errorf("%w: unknown turn role %q", contractx.ErrValidation, turn.Role)
		}
	}

	return messages, nil
}

func encodeToolResult(result contractx.ToolResult) (string, error) {
	payload := map[string]any{}
	if result.Error != "" {
		payload["error"] = result.Error
	} else {
		payload["result"] = result.Result
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode tool result for %s: %v", contractx.ErrValidation, result.Tool, err)
	}
	return string(encoded), nil
}

func encodeTools(tools []contractx.ToolDescriptor) []openaisdk.ChatCompletionToolParam {
	declared := make([]openaisdk.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		fn := openaisdk.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openaisdk.String(t.Description),
		}
		if len(t.Params) > 0 {
			fn.Parameters = openaisdk.FunctionParameters(t.Params)
		}
		declared = append(declared, openaisdk.ChatCompletionToolParam{Function: fn})
	}
	return declared
}

func decodeResponse(resp *openaisdk.ChatCompletion) (contractx.ModelOutput, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return contractx.ModelOutput{Kind: contractx.OutputNone}, nil
	}

	message := resp.Choices[0].Message
	if len(message.ToolCalls) == 0 {
		return contractx.ModelOutput{
			Kind: contractx.OutputText,
			Text: message.Content,
		}, nil
	}

	// The loop executes exactly one tool per cycle; additional parallel
	// calls in the same response are not part of the protocol.
	call := message.ToolCalls[0]
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return contractx.ModelOutput{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrModelInvoke)
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return contractx.ModelOutput{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrModelInvoke, name, err)
		}
	}

	return contractx.ModelOutput{
		Kind: contractx.OutputToolCall,
		ToolCall: contractx.ToolCall{
			ID:      call.ID,
			Name:    name,
			Args:    args,
			RawArgs: call.Function.Arguments,
		},
	}, nil
}

var _ contractx.ModelBackend = (*Client)(nil)
