package classifier

import (
	"context"
	"strings"

	"servicebot/internal/catalog"
)

type keywordRule struct {
	category  string
	keywords  []string
	reasoning string
}

// Rules are checked in order; the first match wins.
var keywordRules = []keywordRule{
	{catalog.Authentication, []string{"login", "log in", "password", "sign in", "sign-in", "authenticate"}, "Keyword match: login/password"},
	{catalog.Billing, []string{"billing", "payment", "charge", "invoice"}, "Keyword match: billing/payment"},
	{catalog.Technical, []string{"bug", "error", "broken", "not working"}, "Keyword match: technical issue"},
	{catalog.Account, []string{"account", "profile", "settings"}, "Keyword match: account management"},
}

const (
	keywordConfidence = 0.8
	defaultConfidence = 0.5
	defaultReasoning  = "Default category"
)

// KeywordClassifier is the deterministic fallback: substring rules over the
// lowercased text. It never fails.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the keyword fallback classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(_ context.Context, text string) (Result, error) {
	return k.match(text), nil
}

func (k *KeywordClassifier) match(text string) Result {
	lower := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return Result{
					Category:   rule.category,
					Confidence: keywordConfidence,
					Reasoning:  rule.reasoning,
					Method:     MethodFallback,
					Provider:   "keyword",
				}
			}
		}
	}
	return Result{
		Category:   catalog.General,
		Confidence: defaultConfidence,
		Reasoning:  defaultReasoning,
		Method:     MethodFallback,
		Provider:   "keyword",
	}
}
