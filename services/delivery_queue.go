package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"app-registry-cms/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrDeliveryQueueFull   = errors.New("notification delivery queue is full")
	ErrDeliveryQueueClosed = errors.New("notification delivery queue is closed")
)

type queuedDelivery struct {
	notification models.Notification
	user         models.User
}

// QueuedDeliverer hands notifications to a wrapped Deliverer on a background
// worker so the request that triggered them does not wait on the mailer.
// Failed deliveries are logged and not retried.
type QueuedDeliverer struct {
	next    Deliverer
	timeout time.Duration
	log     logrus.FieldLogger

	queue chan queuedDelivery
	done  chan struct{}

	pendingMu sync.Mutex
	idle      *sync.Cond
	pending   int

	mu     sync.RWMutex
	closed bool
}

func NewQueuedDeliverer(next Deliverer, queueSize int, timeout time.Duration, log logrus.FieldLogger) *QueuedDeliverer {
	if queueSize < 1 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	q := &QueuedDeliverer{
		next:    next,
		timeout: timeout,
		log:     log,
		queue:   make(chan queuedDelivery, queueSize),
		done:    make(chan struct{}),
	}
	q.idle = sync.NewCond(&q.pendingMu)
	go q.run()
	return q
}

// Deliver queues a copy of the notification. It fails only when the queue is
// full or closed.
func (q *QueuedDeliverer) Deliver(_ context.Context, n *models.Notification, user *models.User) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrDeliveryQueueClosed
	}

	q.track(1)
	select {
	case q.queue <- queuedDelivery{notification: *n, user: *user}:
		return nil
	default:
		q.track(-1)
		return ErrDeliveryQueueFull
	}
}

// Flush blocks until every queued delivery has been attempted.
func (q *QueuedDeliverer) Flush() {
	q.pendingMu.Lock()
	for q.pending > 0 {
		q.idle.Wait()
	}
	q.pendingMu.Unlock()
}

// Close stops accepting deliveries and drains the queue.
func (q *QueuedDeliverer) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()
	<-q.done
}

func (q *QueuedDeliverer) track(delta int) {
	q.pendingMu.Lock()
	q.pending += delta
	if q.pending == 0 {
		q.idle.Broadcast()
	}
	q.pendingMu.Unlock()
}

func (q *QueuedDeliverer) run() {
	defer close(q.done)
	for d := range q.queue {
		q.deliver(d)
		q.track(-1)
	}
}

func (q *QueuedDeliverer) deliver(d queuedDelivery) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.next.Deliver(ctx, &d.notification, &d.user); err != nil {
		q.log.WithError(err).WithFields(logrus.Fields{
			"notification_id": d.notification.ID,
			"user_id":         d.user.ID,
		}).Warn("Failed to deliver notification")
	}
}
