package service

import (
	"certify_backend/internal/repository"
	"certify_backend/pkg/logger"
	"certify_backend/pkg/monitoring"
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReconcileService re-applies the side effects of recently passed results so
// that bookkeeping skipped by a failed cascade eventually catches up.
type ReconcileService struct {
	Results     *repository.TestResultRepository
	Submissions *SubmissionService
	Lookback    time.Duration
	Now         func() time.Time

	mu sync.Mutex
}

func NewReconcileService(results *repository.TestResultRepository, submissions *SubmissionService, lookback time.Duration) *ReconcileService {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &ReconcileService{
		Results:     results,
		Submissions: submissions,
		Lookback:    lookback,
		Now:         time.Now,
	}
}

// Run processes passed results updated within the lookback window and
// returns how many were applied cleanly. Overlapping runs are serialized.
func (s *ReconcileService) Run(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	since := s.Now().Add(-s.Lookback)
	results, err := s.Results.ListPassedSince(ctx, since)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range results {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		r := &results[i]
		if err := s.Submissions.ApplyPass(ctx, r); err != nil {
			monitoring.CascadeFailures.WithLabelValues(string(r.Kind)).Inc()
			logger.Log.Warn("reconcile result failed",
				zap.Uint("userID", r.UserID),
				zap.Uint("testID", r.TestID),
				zap.Error(err),
			)
			continue
		}
		applied++
	}
	monitoring.ReconciledResults.Add(float64(applied))
	return applied, nil
}

// Schedule registers Run on a cron spec such as "@every 10m" and starts the
// scheduler. The caller stops it on shutdown.
func (s *ReconcileService) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := s.Run(context.Background())
		if err != nil {
			logger.Log.Error("reconcile run failed", zap.Error(err))
			return
		}
		logger.Log.Debug("reconcile run finished", zap.Int("applied", n))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
