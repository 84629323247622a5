// Package costtracker estimates the USD cost of LLM calls from the
// configured per-token pricing table.
package costtracker

import (
	"servicebot/internal/config"
)

// Estimator prices calls by provider and model. Unknown pairs cost zero,
// which is the right answer for local models.
type Estimator struct {
	pricing map[string]map[string]config.PricingInfo
}

// New returns an Estimator over pricing. A nil table is valid.
func New(pricing map[string]map[string]config.PricingInfo) *Estimator {
	return &Estimator{pricing: pricing}
}

// Estimate returns the cost of one call with the given token counts.
func (e *Estimator) Estimate(provider, model string, inputTokens, outputTokens int) float64 {
	price, ok := e.Price(provider, model)
	if !ok {
		return 0
	}
	return float64(inputTokens)*price.InputPerToken + float64(outputTokens)*price.OutputPerToken
}

// Price reports the configured pricing for provider/model.
func (e *Estimator) Price(provider, model string) (config.PricingInfo, bool) {
	if e == nil || e.pricing == nil {
		return config.PricingInfo{}, false
	}
	price, ok := e.pricing[provider][model]
	return price, ok
}
