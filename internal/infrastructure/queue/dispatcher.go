package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/todolist/todo-api/internal/api/metrics"
	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes todo activity to a fixed set of workers using consistent
// hashing on the todo id, so activity for one todo is persisted in order.
type Dispatcher struct {
	workers []chan domain.TodoActivity
	service ports.ActivityService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.ActivityRecorder = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.TodoActivity, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TodoActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after persisting whatever is already buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record hands an activity to the worker responsible for its todo. It never
// blocks: when that worker's buffer is full the activity is dropped.
func (d *Dispatcher) Record(a domain.TodoActivity) {
	idx := d.shardIndex(a.TodoID.Hex())
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityDroppedTotal.WithLabelValues(string(a.Kind)).Inc()
		d.log.Warn().
			Str("todo_id", a.TodoID.Hex()).
			Str("kind", string(a.Kind)).
			Int("worker_id", idx).
			Msg("activity queue full, dropping")
	}
}

// shardIndex maps a todo id deterministically to a worker index.
func (d *Dispatcher) shardIndex(todoID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(todoID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TodoActivity) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case a := <-ch:
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, a)
		}
	}
}

// drain persists buffered activity with a fresh, bounded context.
func (d *Dispatcher) drain(id int, ch <-chan domain.TodoActivity) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case a := <-ch:
			d.process(ctx, id, a)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, a domain.TodoActivity) {
	if err := d.service.Process(ctx, a); err != nil {
		metrics.ActivityProcessedTotal.WithLabelValues(string(a.Kind), "error").Inc()
		d.log.Error().Err(err).
			Str("todo_id", a.TodoID.Hex()).
			Int("worker_id", id).
			Msg("activity processing failed")
		return
	}
	metrics.ActivityProcessedTotal.WithLabelValues(string(a.Kind), "ok").Inc()
}
