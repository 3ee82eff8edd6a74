package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelf/pkg/config"
	"github.com/shishobooks/shelf/pkg/stats"
	"github.com/uptrace/bun"
)

const TaskSnapshotStats = "snapshot_stats"

// Worker runs periodic catalog maintenance until Shutdown is called.
type Worker struct {
	log      logger.Logger
	interval time.Duration
	now      func() time.Time

	tasks map[string]func(ctx context.Context) error
	order []string

	statsService *stats.Service

	shutdown chan struct{}
	done     chan struct{}
}

func New(cfg *config.Config, db *bun.DB) *Worker {
	w := &Worker{
		log:      logger.New(),
		interval: cfg.StatsSnapshotInterval,
		now:      func() time.Time { return time.Now().UTC() },

		statsService: stats.NewService(db),

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	w.tasks = map[string]func(ctx context.Context) error{
		TaskSnapshotStats: w.snapshotStats,
	}
	w.order = []string{TaskSnapshotStats}

	return w
}

// Start runs every task once and then again on each interval tick.
func (w *Worker) Start() {
	go w.loop()
}

func (w *Worker) loop() {
	defer close(w.done)

	w.RunOnce()
	if w.interval <= 0 {
		<-w.shutdown
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce runs each task in order. A failing task is logged and does not stop
// the ones after it.
func (w *Worker) RunOnce() {
	for _, name := range w.order {
		id, err := uuid.NewRandom()
		if err != nil {
			w.log.Err(err).Error("new uuid error")
			continue
		}
		log := w.log.ID(id.String()).Root(logger.Data{"task": name})
		ctx := log.WithContext(context.Background())

		start := time.Now()
		if err := w.tasks[name](ctx); err != nil {
			log.Err(err).Error("task error")
			continue
		}
		log.Info("task finished", logger.Data{"duration": time.Since(start).String()})
	}
}

func (w *Worker) snapshotStats(ctx context.Context) error {
	_, err := w.statsService.SnapshotDaily(ctx, w.now())
	return err
}

func (w *Worker) Shutdown() {
	close(w.shutdown)
	<-w.done
}
