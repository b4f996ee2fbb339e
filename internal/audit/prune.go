package audit

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// PruneInterval is how often RunPruner deletes expired entries.
const PruneInterval = time.Hour

// Prune deletes entries older than retention. A non-positive retention
// keeps everything.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.DeleteBefore(ctx, time.Now().Add(-retention))
}

// RunPruner prunes once immediately and then every interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func RunPruner(ctx context.Context, s *Store, retention, interval time.Duration) {
	if retention <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prune := func() {
		n, err := s.Prune(ctx, retention)
		if err != nil {
			if ctx.Err() == nil {
				log.WithError(err).Warn("Pruning audit log failed")
			}
			return
		}
		if n > 0 {
			log.WithFields(log.Fields{
				"event":     "audit_pruned",
				"deleted":   n,
				"retention": retention.String(),
			}).Info("Pruned expired audit entries")
		}
	}

	prune()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
