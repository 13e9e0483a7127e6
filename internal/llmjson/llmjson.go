// Package llmjson decodes structured LLM completions against a strict
// schema, retrying once with a simplified prompt and finally falling back
// to a caller-supplied rule-based value, per spec.md §6's "a single
// malformed response triggers one retry then fallback" contract. Grounded
// on the teacher's ai/model/chat.StructuredParser pattern (markdown
// code-block stripping) and on tidwall/gjson for a JSON validity check
// ahead of a strict decode.
package llmjson

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/capability"
)

// Decoder runs one LLM completion, decodes it into T, retries once with a
// simplified prompt on parse failure, and finally calls Fallback if both
// attempts fail.
type Decoder[T any] struct {
	LLM      capability.LLMClient
	Validate func(T) error // optional; return non-nil to reject a structurally-valid-but-wrong decode
}

// stripMarkdownCodeBlock removes a ```json ... ``` fence if present,
// mirroring the teacher's chat.StructuredParser helper.
func stripMarkdownCodeBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < 6 || !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}
	nl := strings.Index(trimmed, "\n")
	if nl == -1 {
		return strings.TrimSpace(trimmed[3 : len(trimmed)-3])
	}
	return strings.TrimSpace(trimmed[nl+1 : len(trimmed)-3])
}

// Decode runs params, decodes the response into T, and on failure retries
// once with simplifiedParams. If both fail, returns fallback() and a
// non-nil error wrapping the last parse failure so callers can log it.
func (d *Decoder[T]) Decode(ctx context.Context, params capability.CompleteParams, simplifiedParams capability.CompleteParams, fallback func() T) (T, error) {
	out, err := d.attempt(ctx, params)
	if err == nil {
		return out, nil
	}

	out, retryErr := d.attempt(ctx, simplifiedParams)
	if retryErr == nil {
		return out, nil
	}

	return fallback(), fmt.Errorf("llmjson: both decode attempts failed: first=%v retry=%v", err, retryErr)
}

func (d *Decoder[T]) attempt(ctx context.Context, params capability.CompleteParams) (T, error) {
	var zero T
	raw, err := d.LLM.Complete(ctx, params)
	if err != nil {
		return zero, fmt.Errorf("llm completion: %w", err)
	}

	cleaned := stripMarkdownCodeBlock(raw)
	if !gjson.Valid(cleaned) {
		return zero, fmt.Errorf("invalid json: %q", truncate(cleaned, 200))
	}

	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return zero, fmt.Errorf("unmarshal: %w", err)
	}

	if d.Validate != nil {
		if err := d.Validate(out); err != nil {
			return zero, fmt.Errorf("schema validation: %w", err)
		}
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
