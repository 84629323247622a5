package costtracker

import (
	"testing"

	"servicebot/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	e := New(map[string]map[string]config.PricingInfo{
		"openai": {"gpt-4o-mini": {InputPerToken: 0.000001, OutputPerToken: 0.000004}},
	})

	assert.InDelta(t, 0.0003, e.Estimate("openai", "gpt-4o-mini", 100, 50), 1e-12)
	assert.Zero(t, e.Estimate("openai", "gpt-4o", 100, 50))
	assert.Zero(t, e.Estimate("ollama", "llama3.2:3b", 100, 50))
}

func TestEstimate_NilTable(t *testing.T) {
	assert.Zero(t, New(nil).Estimate("openai", "gpt-4o-mini", 10, 10))

	var e *Estimator
	_, ok := e.Price("openai", "gpt-4o-mini")
	assert.False(t, ok)
}
