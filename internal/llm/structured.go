package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Validatable is implemented by every schema-constrained response type
type Validatable interface {
	Validate() error
}

// SchemaError is the terminal failure of a structured call: every attempt
// produced a response that failed to parse or validate. Callers treat it as
// a permanent per-item failure and skip the item, never abort the batch.
type SchemaError struct {
	Attempts int
	Last     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *SchemaError) Unwrap() error { return e.Last }

// CallStructured issues a schema-constrained generation request. The raw
// response is parsed as JSON into out and validated; on parse or validation
// failure the request is re-issued with the error appended as feedback, up
// to maxAttempts total attempts. Transport errors are returned as-is since
// the provider layer already did its own bounded retrying.
func CallStructured(ctx context.Context, p Provider, req Request, maxAttempts int, out Validatable, logger *zap.Logger) error {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	prompt := req.Prompt
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptReq := req
		attemptReq.Prompt = prompt

		raw, err := p.Generate(ctx, attemptReq)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		if err := decodeInto(raw, out); err != nil {
			lastErr = err
			logger.Warn("structured response rejected",
				zap.Int("attempt", attempt),
				zap.Error(err))
			prompt = req.Prompt + fmt.Sprintf(
				"\n\nYour previous response was rejected: %v\nRespond again with a single valid JSON object that satisfies every constraint.", err)
			continue
		}
		return nil
	}

	return &SchemaError{Attempts: maxAttempts, Last: lastErr}
}

// decodeInto parses raw model output into out and validates it. Markdown
// code fences around the JSON are tolerated.
func decodeInto(raw string, out Validatable) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}
