package classifier

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds the primary classifier when none is configured.
const DefaultTimeout = 5 * time.Second

// FallbackClassifier tries a primary classifier under a timeout and answers
// with keyword matching whenever the primary fails. It never returns an error.
type FallbackClassifier struct {
	primary  Classifier
	fallback *KeywordClassifier
	timeout  time.Duration
}

// NewFallbackClassifier wraps primary. A nil primary means keyword-only.
func NewFallbackClassifier(primary Classifier, timeout time.Duration) *FallbackClassifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FallbackClassifier{
		primary:  primary,
		fallback: NewKeywordClassifier(),
		timeout:  timeout,
	}
}

// Classify implements Classifier.
func (f *FallbackClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if f.primary == nil {
		return f.fallback.match(text), nil
	}

	pctx, cancel := context.WithTimeout(ctx, f.timeout)
	res, err := f.primary.Classify(pctx, text)
	cancel()
	if err == nil {
		return res, nil
	}

	log.Warnf("Primary classification failed, falling back to keyword matching: %v", err)
	res = f.fallback.match(text)
	res.PrimaryErr = err
	return res, nil
}
