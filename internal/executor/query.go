// Package executor runs the episode loop described in spec.md §4.6.1:
// it drives a region's compiled handlers between UCT-agent decisions,
// folding each episode's outcome into compile.ProgressState until the
// region's cardinality is exhausted.
package executor

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueryState carries the identity and logger threaded through every
// region of one query execution.
type QueryState struct {
	ID     uuid.UUID
	Logger *zap.Logger
}

// NewQueryState allocates a fresh query identifier and scopes logger
// with it, following the same "one correlation id per unit of work"
// idiom the teacher applies to migration runs.
func NewQueryState(logger *zap.Logger) *QueryState {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &QueryState{
		ID:     id,
		Logger: logger.With(zap.String("query_id", id.String())),
	}
}
