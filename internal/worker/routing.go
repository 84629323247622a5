// Package worker holds the asynq handlers run by the worker command.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicebot/internal/catalog"
	"servicebot/internal/models"
	"servicebot/internal/store"
	"servicebot/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// RoutingDeps holds dependencies for the routing handler.
type RoutingDeps struct {
	Conversations store.ConversationStore
	JobStore      store.JobStore
	Catalog       *catalog.Catalog
	Now           func() time.Time // defaults to time.Now
	// Attempt reports the current task's id and retry position. Defaults to
	// reading asynq's task metadata from the handler context.
	Attempt func(ctx context.Context) (Attempt, bool)
}

// Attempt identifies one delivery of a task.
type Attempt struct {
	TaskID   string
	Retried  int
	MaxRetry int
}

// Final reports whether a failure of this attempt exhausts the retries.
func (a Attempt) Final() bool {
	return a.Retried >= a.MaxRetry
}

func asynqAttempt(ctx context.Context) (Attempt, bool) {
	id, ok := asynq.GetTaskID(ctx)
	if !ok {
		return Attempt{}, false
	}
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return Attempt{TaskID: id, Retried: retried, MaxRetry: maxRetry}, true
}

// RegisterHandlers registers every task handler on mux.
func RegisterHandlers(mux *asynq.ServeMux, deps RoutingDeps) {
	log.Infof("Registering %s handler", tasks.TypeRouteConversation)
	mux.HandleFunc(tasks.TypeRouteConversation, HandleRouteConversation(deps))
}

// HandleRouteConversation assigns a completed conversation to its category's
// team. Permanent failures are returned wrapped in asynq.SkipRetry.
func HandleRouteConversation(deps RoutingDeps) func(context.Context, *asynq.Task) error {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	attemptOf := deps.Attempt
	if attemptOf == nil {
		attemptOf = asynqAttempt
	}

	return func(ctx context.Context, t *asynq.Task) error {
		attempt, _ := attemptOf(ctx)
		jobID, hasJobID := taskUUID(attempt.TaskID)
		setStatus := func(status string) {
			if !hasJobID || deps.JobStore == nil {
				return
			}
			if err := deps.JobStore.UpdateJobStatus(ctx, jobID, status); err != nil {
				log.Warnf("Failed to update job %s to %s: %v", jobID, status, err)
			}
		}

		setStatus(models.JobStatusRunning)
		err := routeConversation(ctx, deps, t.Payload(), now)
		switch {
		case err == nil:
			setStatus(models.JobStatusCompleted)
		case errors.Is(err, asynq.SkipRetry):
			log.Errorf("Routing task failed permanently: %v", err)
			setStatus(models.JobStatusFailed)
		case attempt.Final():
			log.Errorf("Routing task failed on its last attempt: %v", err)
			setStatus(models.JobStatusFailed)
		default:
			log.Warnf("Routing task failed (attempt %d of %d), will retry: %v", attempt.Retried+1, attempt.MaxRetry+1, err)
			setStatus(models.JobStatusRetrying)
		}
		return err
	}
}

func routeConversation(ctx context.Context, deps RoutingDeps, payload []byte, now func() time.Time) error {
	p, err := tasks.ParseRouteConversationPayload(payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	conv, err := deps.Conversations.GetConversation(ctx, p.ConversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("conversation %s: %v: %w", p.ConversationID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("load conversation %s: %w", p.ConversationID, err)
	}

	if conv.RoutedTo != nil {
		log.Infof("Conversation %s already routed to %s", conv.ID, *conv.RoutedTo)
		return nil
	}
	if conv.Status != models.ConversationStatusCompleted {
		return fmt.Errorf("conversation %s is %s, only completed conversations are routed: %w", conv.ID, conv.Status, asynq.SkipRetry)
	}

	cat, ok := deps.Catalog.Get(conv.CategoryKey())
	if !ok {
		return fmt.Errorf("conversation %s: %v: %w", conv.ID, &models.UnknownCategoryError{Category: conv.CategoryKey()}, asynq.SkipRetry)
	}

	if err := deps.Conversations.MarkRouted(ctx, conv.ID, cat.Team, now()); err != nil {
		return fmt.Errorf("mark conversation %s routed: %w", conv.ID, err)
	}
	log.WithFields(log.Fields{
		"conversation_id": conv.ID,
		"category":        cat.Key,
		"team":            cat.Team,
	}).Info("Conversation routed")
	return nil
}

func taskUUID(id string) (uuid.UUID, bool) {
	if id == "" {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}
