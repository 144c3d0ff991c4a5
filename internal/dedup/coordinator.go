// internal/dedup/coordinator.go
package dedup

import (
	"context"
	"errors"
	"sync"

	"provider-matching-workers/internal/models"
)

// ErrPassInProgress is returned when another pass or merge holds the
// coordinator.
var ErrPassInProgress = errors.New("deduplication already in progress")

// Coordinator serialises every store-mutating deduplication entry point in
// the process. Callers are rejected rather than queued.
type Coordinator struct {
	mu     sync.Mutex
	engine *Engine
}

func NewCoordinator(engine *Engine) *Coordinator {
	return &Coordinator{engine: engine}
}

// Engine exposes the wrapped engine for read-only checks.
func (c *Coordinator) Engine() *Engine {
	return c.engine
}

func (c *Coordinator) RunPass(ctx context.Context) (models.PassReport, error) {
	if !c.mu.TryLock() {
		return models.PassReport{}, ErrPassInProgress
	}
	defer c.mu.Unlock()
	return c.engine.FindAndMergeAllDuplicates(ctx)
}

func (c *Coordinator) Merge(ctx context.Context, primaryID string, duplicateIDs []string) (models.MergeResult, error) {
	if !c.mu.TryLock() {
		return models.MergeResult{}, ErrPassInProgress
	}
	defer c.mu.Unlock()
	return c.engine.MergeDuplicateProfiles(ctx, primaryID, duplicateIDs), nil
}
