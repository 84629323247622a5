package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier_Rules(t *testing.T) {
	tests := []struct {
		text       string
		category   string
		confidence float64
		reasoning  string
	}{
		{"I can't log into my account", "authentication", 0.8, "Keyword match: login/password"},
		{"Forgot my PASSWORD", "authentication", 0.8, "Keyword match: login/password"},
		{"Login fails and I was charged twice", "authentication", 0.8, "Keyword match: login/password"},
		{"Unexpected charge on my card", "billing", 0.8, "Keyword match: billing/payment"},
		{"Where is my invoice?", "billing", 0.8, "Keyword match: billing/payment"},
		{"The export button is broken", "technical", 0.8, "Keyword match: technical issue"},
		{"Upload is not working since Monday", "technical", 0.8, "Keyword match: technical issue"},
		{"How do I change my profile picture", "account", 0.8, "Keyword match: account management"},
		{"Do you ship to Canada?", "general", 0.5, "Default category"},
	}

	k := NewKeywordClassifier()
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			res, err := k.Classify(context.Background(), tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.category, res.Category)
			assert.Equal(t, tc.confidence, res.Confidence)
			assert.Equal(t, tc.reasoning, res.Reasoning)
			assert.Equal(t, MethodFallback, res.Method)
		})
	}
}

func TestKeywordClassifier_Deterministic(t *testing.T) {
	k := NewKeywordClassifier()
	first, _ := k.Classify(context.Background(), "payment failed with an error")
	for i := 0; i < 20; i++ {
		again, _ := k.Classify(context.Background(), "payment failed with an error")
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "billing", first.Category, "billing outranks technical")
}
