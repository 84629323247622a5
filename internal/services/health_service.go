package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const defaultProbeTimeout = 2 * time.Second

// Pinger is anything that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	OllamaConnected   bool      `json:"ollama_connected"`
	DatabaseConnected bool      `json:"database_connected"`
}

// HealthService probes the database and the local LLM server. Concurrent
// checks share one in-flight probe per dependency.
type HealthService struct {
	db      Pinger
	llm     Pinger
	timeout time.Duration
	group   singleflight.Group
}

// NewHealthService creates a HealthService. A nil pinger always reports false.
func NewHealthService(db, llm Pinger) *HealthService {
	return &HealthService{db: db, llm: llm, timeout: defaultProbeTimeout}
}

// Check runs both probes. The service itself is "OK" whenever it can answer.
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	type result struct {
		key string
		ok  bool
	}
	results := make(chan result, 2)
	for key, p := range map[string]Pinger{"database": h.db, "ollama": h.llm} {
		go func(key string, p Pinger) {
			results <- result{key: key, ok: h.probe(ctx, key, p)}
		}(key, p)
	}

	status := HealthStatus{Status: "OK", Timestamp: time.Now()}
	for i := 0; i < 2; i++ {
		r := <-results
		switch r.key {
		case "database":
			status.DatabaseConnected = r.ok
		case "ollama":
			status.OllamaConnected = r.ok
		}
	}
	return status
}

func (h *HealthService) probe(ctx context.Context, key string, p Pinger) bool {
	if p == nil {
		return false
	}
	ch := h.group.DoChan(key, func() (interface{}, error) {
		// Detached from any single caller so a cancelled request does not fail the shared probe.
		pctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		return nil, p.Ping(pctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			log.Debugf("Health probe %s failed: %v", key, res.Err)
			return false
		}
		return true
	case <-ctx.Done():
		return false
	}
}
