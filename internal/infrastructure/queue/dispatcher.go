package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quillpress/blog-system/internal/core/ports"
	"github.com/quillpress/blog-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Remover deletes a stored image by its public reference.
type Remover interface {
	Remove(ctx context.Context, ref string) error
}

// Dispatcher removes orphaned images on a fixed set of workers, sharded by
// article id so that the removals for one article run in order.
type Dispatcher struct {
	workers []chan ports.CleanupJob
	remover Remover
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, remover Remover, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.CleanupJob, numWorkers),
		remover: remover,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Stop has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker responsible for its article. It never
// blocks: when the worker queue is full or the dispatcher is stopped the job
// is dropped and logged.
func (d *Dispatcher) Enqueue(job ports.CleanupJob) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(job, "dispatcher stopped")
		return
	}

	idx := d.shardIndex(job.ArticleID)
	select {
	case d.workers[idx] <- job:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(job, "queue full")
	}
}

// Stop refuses new jobs and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an article id deterministically to a worker index.
func (d *Dispatcher) shardIndex(articleID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(articleID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(job ports.CleanupJob, why string) {
	metrics.ImageCleanupTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("article_id", job.ArticleID).
		Str("image", job.Image).
		Msgf("image cleanup dropped: %s", why)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CleanupJob) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.CleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.remover.Remove(ctx, job.Image); err != nil {
				metrics.ImageCleanupTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("article_id", job.ArticleID).
					Str("image", job.Image).
					Int("worker_id", id).
					Msg("image cleanup failed")
				continue
			}
			metrics.ImageCleanupTotal.WithLabelValues("removed").Inc()
			d.log.Debug().Str("image", job.Image).Int("worker_id", id).Msg("image removed")
		}
	}
}
