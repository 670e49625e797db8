package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/athorburn/concordia/internal/model"
)

func TestCallStructured_ValidFirstAttempt(t *testing.T) {
	mock := NewMockProvider().Queue(`{
		"pair_id": "p1",
		"consistency_score": 80,
		"contradiction_type": "None",
		"reasoning": "the accounts agree"
	}`)

	var out model.JudgeResult
	err := CallStructured(context.Background(), mock, Request{Prompt: "compare"}, 3, &out, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ConsistencyScore != 80 || out.Contradiction != model.ContradictionNone {
		t.Errorf("unexpected result: %+v", out)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestCallStructured_RetriesWithFeedback(t *testing.T) {
	// First response is out of range, second is valid
	mock := NewMockProvider().Queue(
		`{"consistency_score": 140, "contradiction_type": "None", "reasoning": "r"}`,
		`{"consistency_score": 90, "contradiction_type": "None", "reasoning": "r"}`,
	)

	var out model.JudgeResult
	err := CallStructured(context.Background(), mock, Request{Prompt: "compare"}, 3, &out, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ConsistencyScore != 90 {
		t.Errorf("expected score from the retried response, got %d", out.ConsistencyScore)
	}

	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if !strings.Contains(calls[1].Prompt, "rejected") || !strings.Contains(calls[1].Prompt, "140") {
		t.Errorf("retry prompt missing validation feedback: %q", calls[1].Prompt)
	}
}

func TestCallStructured_ExhaustsRetries(t *testing.T) {
	mock := NewMockProvider().Queue(`{"consistency_score": -5, "contradiction_type": "Bogus", "reasoning": ""}`)

	var out model.JudgeResult
	err := CallStructured(context.Background(), mock, Request{Prompt: "compare"}, 3, &out, zap.NewNop())

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", schemaErr.Attempts)
	}
	if mock.CallCount() != 3 {
		t.Errorf("expected 3 generate calls, got %d", mock.CallCount())
	}
}

func TestCallStructured_ToleratesCodeFences(t *testing.T) {
	mock := NewMockProvider().Queue("```json\n{\"consistency_score\": 55, \"contradiction_type\": \"Omission\", \"reasoning\": \"r\"}\n```")

	var out model.JudgeResult
	if err := CallStructured(context.Background(), mock, Request{}, 1, &out, zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Contradiction != model.ContradictionOmission {
		t.Errorf("unexpected contradiction: %s", out.Contradiction)
	}
}

func TestCallStructured_TransportErrorNotRetried(t *testing.T) {
	mock := NewMockProvider().Respond(func(Request) (string, error) {
		return "", errors.New("backoff exhausted")
	})

	var out model.JudgeResult
	err := CallStructured(context.Background(), mock, Request{}, 3, &out, zap.NewNop())
	if err == nil {
		t.Fatal("expected error")
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		t.Error("transport failure must not be reported as a schema error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("transport failure retried %d times; the provider owns backoff", mock.CallCount())
	}
}
