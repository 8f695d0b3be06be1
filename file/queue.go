package file

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type queueEntry struct {
	op         *Operation
	dispatched bool
	counted    bool
}

// Queue runs operations with bounded concurrency in FIFO order. It rejects
// an operation whose transfer id is already present and not cancelled.
// Cancelled operations that never started are purged without running.
type Queue struct {
	name          string
	maxConcurrent int

	mu        sync.Mutex
	entries   []*queueEntry
	running   int
	suspended bool
}

// NewQueue creates a queue running at most maxConcurrent operations at a
// time. Values below one are treated as one.
func NewQueue(name string, maxConcurrent int) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Queue{name: name, maxConcurrent: maxConcurrent}
}

// Name returns the queue's name.
func (q *Queue) Name() string {
	return q.name
}

// Add enqueues op unless a live operation with the same transfer id is
// already present. Adding to a suspended queue resumes it.
func (q *Queue) Add(op *Operation) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.op.TransferID() == op.TransferID() && !e.op.IsCancelled() {
			logrus.WithFields(logrus.Fields{
				"function":    "Queue.Add",
				"queue":       q.name,
				"transfer_id": op.TransferID(),
			}).Debug("Rejecting duplicate transfer")
			return false
		}
	}

	entry := &queueEntry{op: op}
	q.entries = append(q.entries, entry)
	op.task.Observe(func(tr Transition) {
		q.observe(entry, tr)
	})
	q.suspended = false
	q.dispatchLocked()

	logrus.WithFields(logrus.Fields{
		"function":    "Queue.Add",
		"queue":       q.name,
		"transfer_id": op.TransferID(),
		"queued":      len(q.entries),
	}).Debug("Transfer enqueued")
	return true
}

func (q *Queue) observe(entry *queueEntry, tr Transition) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if tr.Changed.Has(PredicateFinished) {
		q.removeLocked(entry)
	}
	if tr.Changed&(PredicateFinished|PredicateCancelled) != 0 {
		q.dispatchLocked()
	}
}

func (q *Queue) removeLocked(entry *queueEntry) {
	for i, e := range q.entries {
		if e != entry {
			continue
		}
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		if e.counted {
			q.running--
		}
		return
	}
}

// dispatchLocked starts waiting operations in order. Cancelled ones are
// started too so they finish immediately, without taking a slot.
func (q *Queue) dispatchLocked() {
	if q.suspended {
		return
	}
	for _, e := range q.entries {
		if e.dispatched {
			continue
		}
		cancelled := e.op.IsCancelled()
		if !cancelled && q.running >= q.maxConcurrent {
			continue
		}
		e.dispatched = true
		if !cancelled {
			e.counted = true
			q.running++
		}
		go e.op.run()
	}
}

// Suspend stops dispatching new operations. Running ones continue.
func (q *Queue) Suspend() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = true
}

// Resume restarts dispatching.
func (q *Queue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = false
	q.dispatchLocked()
}

// IsSuspended reports whether dispatching is stopped.
func (q *Queue) IsSuspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// CancelAll cancels every queued and running operation.
func (q *Queue) CancelAll() {
	for _, op := range q.Operations() {
		op.Cancel()
	}
}

// Find returns the operation for transferID, preferring a live one.
func (q *Queue) Find(transferID string) *Operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	var fallback *Operation
	for _, e := range q.entries {
		if e.op.TransferID() != transferID {
			continue
		}
		if !e.op.IsCancelled() {
			return e.op
		}
		if fallback == nil {
			fallback = e.op
		}
	}
	return fallback
}

// FindByHandle returns the operation using handle with peer.
func (q *Queue) FindByHandle(peer, handle uint32) *Operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.op.Peer() == peer && e.op.Handle() == handle {
			return e.op
		}
	}
	return nil
}

// Operations returns a snapshot of the queued operations in order.
func (q *Queue) Operations() []*Operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops := make([]*Operation, len(q.entries))
	for i, e := range q.entries {
		ops[i] = e.op
	}
	return ops
}

// Len returns the number of queued and running operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Running returns the number of operations holding a concurrency slot.
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}
