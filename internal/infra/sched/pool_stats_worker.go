package sched

import (
	"context"
	"time"

	"sim-activation-portal/internal/infra/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// PoolSnapshot is the subset of pool statistics exported as metrics.
type PoolSnapshot struct {
	Total, Idle, InUse, Max int32
	EmptyAcquires           int64
}

// PgxPoolStats reads a snapshot from a live pgx pool.
func PgxPoolStats(pool *pgxpool.Pool) func() PoolSnapshot {
	return func() PoolSnapshot {
		st := pool.Stat()
		return PoolSnapshot{
			Total:         st.TotalConns(),
			Idle:          st.IdleConns(),
			InUse:         st.AcquiredConns(),
			Max:           st.MaxConns(),
			EmptyAcquires: st.EmptyAcquireCount(),
		}
	}
}

// PoolStatsWorker periodically publishes database pool statistics.
type PoolStatsWorker struct {
	interval time.Duration
	stat     func() PoolSnapshot
	log      *zerolog.Logger
}

func NewPoolStatsWorker(interval time.Duration, stat func() PoolSnapshot, logger *zerolog.Logger) *PoolStatsWorker {
	l := logger.With().Str("component", "PoolStatsWorker").Logger()
	return &PoolStatsWorker{interval: interval, stat: stat, log: &l}
}

func (w *PoolStatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting pool stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.publish()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping pool stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.publish()
		}
	}
}

func (w *PoolStatsWorker) publish() {
	s := w.stat()
	metrics.SetDBPoolStats(s.Total, s.Idle, s.InUse, s.Max, s.EmptyAcquires)
	w.log.Debug().Int32("total", s.Total).Int32("in_use", s.InUse).Msg("pool stats")
}
