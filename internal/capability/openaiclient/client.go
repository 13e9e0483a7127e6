// Package openaiclient implements capability.LLMClient against the OpenAI
// chat completions API. Grounded on the teacher's
// ai/providers/openaiv2.Api wrapper: a thin struct holding a configured
// *openai.Client, with the request/response shaping kept in a small
// dedicated method rather than spread across the call site.
package openaiclient

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
)

// Client adapts an OpenAI chat completions client to capability.LLMClient.
type Client struct {
	api   openai.Client
	model string
}

var _ capability.LLMClient = (*Client)(nil)

// New builds a Client authenticated with apiKey, targeting model (e.g.
// "gpt-4o-mini").
func New(apiKey, model string) *Client {
	return &Client{
		api:   openai.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

// Complete sends one chat completion request and returns its text content.
// When params.ResponseFormat is ResponseFormatJSON, the request asks the
// API for a JSON object response so llmjson's decode step doesn't have to
// cope with prose wrapping the payload.
func (c *Client) Complete(ctx context.Context, params capability.CompleteParams) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model:       c.model,
		Temperature: openai.Float(params.Temperature),
		Messages:    c.messages(params),
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	if params.ResponseFormat == capability.ResponseFormatJSON {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openaiclient: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openaiclient: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) messages(params capability.CompleteParams) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if params.System != "" {
		msgs = append(msgs, openai.SystemMessage(params.System))
	}
	msgs = append(msgs, openai.UserMessage(params.Prompt))
	return msgs
}
