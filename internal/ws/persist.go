package ws

import (
	"context"
	"log/slog"
	"time"

	"tictactoe_server/internal/metrics"

	"github.com/cenkalti/backoff/v5"
)

const (
	persistQueueSize = 4096
	persistTimeout   = 10 * time.Second
)

type persistJob struct {
	op  string
	run func(ctx context.Context) error
}

// persister runs durable writes in submission order on one goroutine, so a
// session's creation always reaches storage before its result.
// Failures are retried, then logged and counted; nothing is rolled back.
type persister struct {
	jobs     chan persistJob
	done     chan struct{}
	maxTries uint
	interval time.Duration
	log      *slog.Logger
}

func newPersister(maxTries uint, interval time.Duration, log *slog.Logger) *persister {
	if maxTries == 0 {
		maxTries = 1
	}
	return &persister{
		jobs:     make(chan persistJob, persistQueueSize),
		done:     make(chan struct{}),
		maxTries: maxTries,
		interval: interval,
		log:      log,
	}
}

// enqueue never blocks the caller; a full queue drops the write.
func (p *persister) enqueue(op string, run func(ctx context.Context) error) {
	select {
	case p.jobs <- persistJob{op: op, run: run}:
	default:
		metrics.PersistenceFailuresTotal.WithLabelValues(op).Inc()
		p.log.Error("persistence queue full, write dropped", "op", op)
	}
}

func (p *persister) run() {
	defer close(p.done)
	for job := range p.jobs {
		p.exec(job)
	}
}

func (p *persister) exec(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, job.run(ctx)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.maxTries))
	if err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues(job.op).Inc()
		p.log.Error("durable write failed", "op", job.op, "error", err)
	}
}

// close stops accepting jobs and waits for queued ones to finish.
func (p *persister) close() {
	close(p.jobs)
	<-p.done
}
