package persist

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrQueueClosed = errors.New("persist queue closed")

const shardBufferSize = 64

// Job is a single remote write. It gets a fresh context bounded by the queue's job timeout.
type Job func(ctx context.Context) error

type task struct {
	identity string
	name     string
	fn       Job
	result   chan error
	link     trace.Link
}

// Queue runs remote writes in the background. Jobs of one identity always land on
// the same worker, so they are executed in submission order.
type Queue struct {
	shards     []chan task
	jobTimeout time.Duration
	metrics    *metrics.Manager

	mutex  sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type QueueParams struct {
	Workers    int
	JobTimeout time.Duration
	Metrics    *metrics.Manager
}

func NewQueue(params QueueParams) *Queue {
	if params.Workers <= 0 {
		params.Workers = 1
	}
	if params.JobTimeout <= 0 {
		params.JobTimeout = 10 * time.Second
	}

	q := &Queue{
		shards:     make([]chan task, params.Workers),
		jobTimeout: params.JobTimeout,
		metrics:    params.Metrics,
	}
	for i := range q.shards {
		q.shards[i] = make(chan task, shardBufferSize)
		q.wg.Add(1)
		go q.worker(q.shards[i])
	}
	return q
}

// Submit schedules fn for identity and returns right away.
// The returned channel receives exactly one value (nil on success) and is safe to ignore.
func (q *Queue) Submit(ctx context.Context, identity, name string, fn Job) <-chan error {
	result := make(chan error, 1)

	q.mutex.RLock()
	defer q.mutex.RUnlock()
	if q.closed {
		result <- ErrQueueClosed
		return result
	}

	if q.metrics != nil {
		q.metrics.GaugePersistInFlight.Inc()
	}
	q.shards[shardFor(identity, len(q.shards))] <- task{
		identity: identity,
		name:     name,
		fn:       fn,
		result:   result,
		link:     trace.LinkFromContext(ctx),
	}
	return result
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (q *Queue) Close() {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return
	}
	q.closed = true
	for _, shard := range q.shards {
		close(shard)
	}
	q.mutex.Unlock()

	q.wg.Wait()
	log.Debugln("persist queue drained")
}

func (q *Queue) worker(tasks <-chan task) {
	defer q.wg.Done()
	for t := range tasks {
		t.result <- q.run(t)
		if q.metrics != nil {
			q.metrics.GaugePersistInFlight.Dec()
		}
	}
}

func (q *Queue) run(t task) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
	defer cancel()

	ctx, span := tracing.GlobalTracer.Start(ctx, "persist.job", trace.WithLinks(t.link))
	span.SetAttributes(attribute.String("job", t.name))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("persist job %s panicked: %v", t.name, r)
		}
		if err != nil {
			log.Errorf("persist [%s] for [%s]: %s", t.name, t.identity, err)
			if q.metrics != nil {
				q.metrics.CounterPersistFailures.WithLabelValues(t.name).Inc()
			}
		} else {
			log.Tracef("persist [%s] for [%s] done", t.name, t.identity)
		}
	}()

	return t.fn(ctx)
}

func shardFor(identity string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return int(h.Sum32() % uint32(shards))
}
