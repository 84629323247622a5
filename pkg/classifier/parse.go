package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"servicebot/internal/catalog"
)

type llmPayload struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ParseResponse decodes an LLM completion into a Result. The whole text is
// tried first; failing that, the first decodable brace-delimited object in it.
// The decoded payload must name a catalog category and carry a confidence in
// [0,1]. Every failure wraps ErrUnavailable.
func ParseResponse(content string, cat *catalog.Catalog) (Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Result{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	payload, err := decodePayload(content)
	if err != nil {
		return Result{}, fmt.Errorf("%w: no JSON object in completion: %s", ErrUnavailable, content)
	}

	if payload.Category == nil || strings.TrimSpace(*payload.Category) == "" {
		return Result{}, fmt.Errorf("%w: completion has no category", ErrUnavailable)
	}
	key := strings.ToLower(strings.TrimSpace(*payload.Category))
	if !cat.Has(key) {
		return Result{}, fmt.Errorf("%w: completion names unknown category %q", ErrUnavailable, *payload.Category)
	}
	if payload.Confidence == nil {
		return Result{}, fmt.Errorf("%w: completion has no confidence", ErrUnavailable)
	}
	if c := *payload.Confidence; c < 0 || c > 1 {
		return Result{}, fmt.Errorf("%w: confidence %v out of range", ErrUnavailable, c)
	}

	return Result{
		Category:   key,
		Confidence: *payload.Confidence,
		Reasoning:  strings.TrimSpace(payload.Reasoning),
		Method:     MethodLLM,
	}, nil
}

func decodePayload(content string) (llmPayload, error) {
	var p llmPayload
	err := json.Unmarshal([]byte(content), &p)
	if err == nil {
		return p, nil
	}

	// Models sometimes wrap the object in prose or code fences.
	raw := []byte(content)
	for i := bytes.IndexByte(raw, '{'); i >= 0; {
		var candidate llmPayload
		if derr := json.NewDecoder(bytes.NewReader(raw[i:])).Decode(&candidate); derr == nil {
			return candidate, nil
		}
		next := bytes.IndexByte(raw[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return llmPayload{}, err
}
