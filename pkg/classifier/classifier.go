// Package classifier assigns a support category to a free-text issue
// description. LLM-backed classifiers do the real work; KeywordClassifier is
// the deterministic fallback and FallbackClassifier ties the two together.
package classifier

import (
	"context"
	"errors"
)

// Classification methods reported in Result.Method.
const (
	MethodLLM      = "llm"
	MethodFallback = "fallback"
)

// ErrUnavailable marks any failure of the primary (LLM) path: transport
// errors, non-2xx answers, timeouts and completions that do not satisfy the
// response schema. It never escapes FallbackClassifier.
var ErrUnavailable = errors.New("classification unavailable")

// Result is the outcome of one classification.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`

	Method           string `json:"-"`
	Provider         string `json:"-"`
	Model            string `json:"-"`
	PromptTokens     int    `json:"-"`
	CompletionTokens int    `json:"-"`
	// PrimaryErr is set when the fallback answered because the primary failed.
	PrimaryErr error `json:"-"`
}

// Classifier categorizes a message.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}
