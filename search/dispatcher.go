package search

import (
	"context"
	"sync"
	"time"

	"app-registry-cms/metrics"

	"github.com/sirupsen/logrus"
)

type operation struct {
	index  string
	id     string
	doc    interface{}
	delete bool
}

func (op operation) name() string {
	if op.delete {
		return "delete"
	}
	return "upsert"
}

// Dispatcher pushes index operations from a background worker. Pushes are
// fire-and-forget: failures are logged and counted, never retried, and
// operations are dropped when the queue is full.
type Dispatcher struct {
	index   Index
	timeout time.Duration
	log     logrus.FieldLogger
	metrics metrics.Recorder

	queue chan operation
	done  chan struct{}

	pendingMu sync.Mutex
	idle      *sync.Cond
	pending   int

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(index Index, queueSize int, timeout time.Duration, log logrus.FieldLogger, rec metrics.Recorder) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	d := &Dispatcher{
		index:   index,
		timeout: timeout,
		log:     log,
		metrics: rec,
		queue:   make(chan operation, queueSize),
		done:    make(chan struct{}),
	}
	d.idle = sync.NewCond(&d.pendingMu)
	go d.run()
	return d
}

func (d *Dispatcher) Upsert(index, id string, doc interface{}) {
	d.enqueue(operation{index: index, id: id, doc: doc})
}

func (d *Dispatcher) Delete(index, id string) {
	d.enqueue(operation{index: index, id: id, delete: true})
}

func (d *Dispatcher) enqueue(op operation) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.WithFields(logrus.Fields{"index": op.index, "id": op.id}).Warn("Index dispatcher closed, dropping operation")
		d.metrics.RecordIndexDropped(op.index)
		return
	}

	d.track(1)
	select {
	case d.queue <- op:
	default:
		d.track(-1)
		d.log.WithFields(logrus.Fields{"index": op.index, "id": op.id, "op": op.name()}).Warn("Index queue full, dropping operation")
		d.metrics.RecordIndexDropped(op.index)
	}
}

// Flush blocks until every queued operation has been attempted. Enqueues
// racing with Flush are allowed; Flush returns once the queue is idle.
func (d *Dispatcher) Flush() {
	d.pendingMu.Lock()
	for d.pending > 0 {
		d.idle.Wait()
	}
	d.pendingMu.Unlock()
}

func (d *Dispatcher) track(delta int) {
	d.pendingMu.Lock()
	d.pending += delta
	if d.pending == 0 {
		d.idle.Broadcast()
	}
	d.pendingMu.Unlock()
}

// Close stops accepting operations and drains the queue.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for op := range d.queue {
		d.apply(op)
		d.track(-1)
	}
}

func (d *Dispatcher) apply(op operation) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var err error
	if op.delete {
		err = d.index.Delete(ctx, op.index, op.id)
	} else {
		err = d.index.Upsert(ctx, op.index, op.id, op.doc)
	}
	d.metrics.RecordIndexSync(op.index, op.name(), err)
	if err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{
			"index": op.index,
			"id":    op.id,
			"op":    op.name(),
		}).Error("Index sync failed")
	}
}
