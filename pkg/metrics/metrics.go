// Package metrics exposes prometheus collectors for Elephant's queues.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "elephant"

// Metrics holds the per-queue collector families. Register once per process
// and derive per-queue views with ForQueue.
type Metrics struct {
	enqueued        *prometheus.CounterVec
	dequeued        *prometheus.CounterVec
	drains          *prometheus.CounterVec
	requeues        *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	drainErrors     *prometheus.CounterVec
	waiters         *prometheus.GaugeVec
}

// New creates the collector families and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "enqueued_total",
			Help:      "Items pushed onto the remote list",
		}, []string{"queue"}),
		dequeued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "dequeued_total",
			Help:      "Items returned to callers (blocking and non-blocking)",
		}, []string{"queue"}),
		drains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "drain_attempts_total",
			Help:      "Notification-driven drain reactions that attempted a remote pop",
		}, []string{"queue"}),
		requeues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "requeues_total",
			Help:      "Items re-submitted after losing a race with waiter cancellation",
		}, []string{"queue"}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "publish_failures_total",
			Help:      "Best-effort wake publishes that failed and were swallowed",
		}, []string{"queue"}),
		drainErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "drain_errors_total",
			Help:      "Remote pop failures inside the drain reaction",
		}, []string{"queue"}),
		waiters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "queue",
			Name:      "waiters",
			Help:      "Consumers currently parked on a blocking dequeue",
		}, []string{"queue"}),
	}

	err := errors.Join(
		reg.Register(m.enqueued),
		reg.Register(m.dequeued),
		reg.Register(m.drains),
		reg.Register(m.requeues),
		reg.Register(m.publishFailures),
		reg.Register(m.drainErrors),
		reg.Register(m.waiters),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ForQueue returns the label-curried view for one queue name.
func (m *Metrics) ForQueue(name string) *Queue {
	if m == nil {
		return nil
	}
	return &Queue{
		enqueued:        m.enqueued.WithLabelValues(name),
		dequeued:        m.dequeued.WithLabelValues(name),
		drains:          m.drains.WithLabelValues(name),
		requeues:        m.requeues.WithLabelValues(name),
		publishFailures: m.publishFailures.WithLabelValues(name),
		drainErrors:     m.drainErrors.WithLabelValues(name),
		waiters:         m.waiters.WithLabelValues(name),
	}
}

// Queue is the per-queue collector view. All methods are safe on a nil
// receiver so the queue can run unmetered.
type Queue struct {
	enqueued        prometheus.Counter
	dequeued        prometheus.Counter
	drains          prometheus.Counter
	requeues        prometheus.Counter
	publishFailures prometheus.Counter
	drainErrors     prometheus.Counter
	waiters         prometheus.Gauge
}

func (q *Queue) IncEnqueued() {
	if q != nil {
		q.enqueued.Inc()
	}
}

func (q *Queue) IncDequeued() {
	if q != nil {
		q.dequeued.Inc()
	}
}

func (q *Queue) IncDrain() {
	if q != nil {
		q.drains.Inc()
	}
}

func (q *Queue) IncRequeue() {
	if q != nil {
		q.requeues.Inc()
	}
}

func (q *Queue) IncPublishFailure() {
	if q != nil {
		q.publishFailures.Inc()
	}
}

func (q *Queue) IncDrainError() {
	if q != nil {
		q.drainErrors.Inc()
	}
}

func (q *Queue) WaiterParked() {
	if q != nil {
		q.waiters.Inc()
	}
}

func (q *Queue) WaiterReleased() {
	if q != nil {
		q.waiters.Dec()
	}
}
