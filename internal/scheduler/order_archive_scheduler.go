package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ikkim/pumpcatalog-backend/internal/app/service"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// archiveOverlap re-reads the tail of the previous window. created_at is
// stamped before commit, so an order can become visible after a run whose
// window already covered its timestamp. Order writes finish within the
// request deadline, which must stay below this.
const archiveOverlap = 15 * time.Minute

// OrderArchiveScheduler periodically uploads orders created since the
// previous run.
type OrderArchiveScheduler struct {
	cron          *cron.Cron
	spec          string
	exportService service.ExportService
	timeout       time.Duration

	mu       sync.Mutex
	lastRun  time.Time
	archived map[uint]time.Time // ids uploaded inside the overlap
}

// NewOrderArchiveScheduler builds a scheduler. The first run archives
// orders from the previous 24 hours.
func NewOrderArchiveScheduler(spec string, exportService service.ExportService, timeout time.Duration) *OrderArchiveScheduler {
	return &OrderArchiveScheduler{
		cron:          cron.New(),
		spec:          spec,
		exportService: exportService,
		timeout:       timeout,
		lastRun:       time.Now().UTC().Add(-24 * time.Hour),
		archived:      make(map[uint]time.Time),
	}
}

func (s *OrderArchiveScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for order archive", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order archive scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce archives everything since the last successful run, re-reading
// the overlap and skipping ids it already uploaded.
func (s *OrderArchiveScheduler) RunOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now().UTC()
	since := s.lastRun.Add(-archiveOverlap)
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Info("Starting scheduled order archive", map[string]interface{}{
		"since": since,
	})

	result, err := s.exportService.ArchiveOrders(ctx, since, s.archived)
	if err != nil {
		logger.Error("Scheduled order archive failed", err)
		return
	}

	for id, createdAt := range result.Archived {
		s.archived[id] = createdAt
	}
	s.lastRun = started

	cutoff := started.Add(-archiveOverlap)
	for id, createdAt := range s.archived {
		if createdAt.Before(cutoff) {
			delete(s.archived, id)
		}
	}

	logger.Info("Scheduled order archive finished", map[string]interface{}{
		"orders": result.Orders,
		"key":    result.Key,
	})
}

// Stop waits for a running job to finish.
func (s *OrderArchiveScheduler) Stop() {
	logger.Info("Stopping order archive scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Order archive scheduler stopped")
}
