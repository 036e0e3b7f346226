package domain

import (
	"context"
	"time"
)

// Task is an inference task type understood by providers.
type Task string

// Supported inference tasks.
const (
	TaskSummarization       Task = "summarization"
	TaskTextClassification  Task = "text-classification"
	TaskTokenClassification Task = "token-classification"
	TaskSentenceSimilarity  Task = "sentence-similarity"
)

// Provider performs one inference call against a remote model.
// Implementations make exactly one network request per call and never retry.
// Failures are returned as *ProviderError.
type Provider interface {
	Infer(ctx context.Context, req InferenceRequest) (InferenceResponse, error)
}

// HealthChecker verifies inference provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// InferenceRequest is a task-typed request for a single model.
//
// Inputs is the text for single-input tasks. For sentence similarity Inputs is
// the source sentence and Sentences holds the candidates.
type InferenceRequest struct {
	Task       Task
	Model      string
	Inputs     string
	Sentences  []string
	Parameters map[string]any
	Timeout    time.Duration
}

// InferenceResponse is the normalized body of a successful call.
// Only the field matching the request task is populated.
type InferenceResponse struct {
	Summaries    []string
	Labels       []Label
	Entities     []Entity
	Similarities []float64
}

// Label is one classification output.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entity is one token-classification span.
type Entity struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}
