package metrics

import (
	"context"

	"go.uber.org/zap"

	"smart-pantry/internal/shared"
)

// Recorder fans a collaborator call out to the SQLite store and the
// Prometheus collectors. Either may be nil.
type Recorder struct {
	store      *Store
	collectors *Collectors
	log        *zap.Logger
}

func NewRecorder(store *Store, collectors *Collectors, log *zap.Logger) *Recorder {
	return &Recorder{store: store, collectors: collectors, log: log}
}

// Record never fails; storage errors are logged.
func (r *Recorder) Record(ctx context.Context, meta shared.AgentMeta, callErr error) {
	if r == nil || meta.AgentName == "" {
		return
	}
	if r.collectors != nil {
		r.collectors.Observe(meta, callErr)
	}
	if r.store != nil {
		if err := r.store.RecordMeta(ctx, meta); err != nil {
			r.log.Warn("failed to record execution metric", zap.String("agent", meta.AgentName), zap.Error(err))
		}
	}
}
