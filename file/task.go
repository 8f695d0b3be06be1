package file

import (
	"fmt"
	"slices"
	"sync"
)

// TaskState is the lifecycle position of a Task.
type TaskState uint8

const (
	// TaskReady indicates the task is waiting to be started.
	TaskReady TaskState = iota
	// TaskExecuting indicates the task's work entry point has been invoked.
	TaskExecuting
	// TaskFinished indicates the task is done. It never leaves this state.
	TaskFinished
)

// String returns the lowercase state name.
func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "ready"
	case TaskExecuting:
		return "executing"
	case TaskFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Predicate is a bit set of the externally observable task predicates.
type Predicate uint8

// Predicate bits, one per task predicate.
const (
	// PredicateReady is set before the task starts.
	PredicateReady Predicate = 1 << iota
	// PredicateExecuting is set while the work runs or awaits Finish.
	PredicateExecuting
	// PredicateFinished is set once the task is done.
	PredicateFinished
	// PredicateCancelled is set once Cancel succeeded, in any state.
	PredicateCancelled
)

// Has reports whether all bits of q are set in p.
func (p Predicate) Has(q Predicate) bool {
	return p&q == q
}

// Transition describes one atomic state change. Changed holds the predicates
// whose value flipped.
type Transition struct {
	From    TaskState
	To      TaskState
	Changed Predicate
}

// Task is a cancellable unit of asynchronous work with an explicit
// ready → executing → finished lifecycle and an independent cancel flag.
// All predicates are read under the same lock as transitions, so a reader
// never observes a half-applied change.
type Task struct {
	name string
	work func()

	mu        sync.Mutex
	state     TaskState
	cancelled bool
	observers []func(Transition)
	done      chan struct{}
}

// NewTask creates a task in the ready state. work is invoked by Start and
// must eventually lead to Finish.
func NewTask(name string, work func()) *Task {
	return &Task{
		name:  name,
		work:  work,
		state: TaskReady,
		done:  make(chan struct{}),
	}
}

// Observe registers fn to be called after every transition. Observers run
// on the goroutine that caused the transition, outside the task lock.
func (t *Task) Observe(fn func(Transition)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Start moves a ready task to executing and invokes its work. A task that
// was cancelled before it started goes straight to finished instead.
// Calling Start on a task that is not ready does nothing.
func (t *Task) Start() {
	t.mu.Lock()
	if t.state != TaskReady {
		t.mu.Unlock()
		return
	}
	cancelled := t.cancelled
	t.mu.Unlock()

	if cancelled {
		t.Finish()
		return
	}
	if _, ok := t.transition(TaskExecuting); !ok {
		return
	}
	if t.work != nil {
		t.work()
	}
}

// Finish moves the task to finished. It is valid from ready (cancelled
// before it started) and executing, and a no-op once finished.
func (t *Task) Finish() {
	t.transition(TaskFinished)
}

// Cancel sets the cancel flag. It returns false when the task was already
// cancelled or finished. Stopping in-flight work is up to the work itself.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.cancelled || t.state == TaskFinished {
		t.mu.Unlock()
		return false
	}
	t.cancelled = true
	tr := Transition{From: t.state, To: t.state, Changed: PredicateCancelled}
	observers := t.snapshotObserversLocked()
	t.mu.Unlock()

	notify(observers, tr)
	return true
}

// transition applies one state change atomically and returns the
// predicate delta. It refuses to leave the finished state.
func (t *Task) transition(to TaskState) (Transition, bool) {
	t.mu.Lock()
	from := t.state
	if from == to || from == TaskFinished {
		t.mu.Unlock()
		return Transition{}, false
	}
	before := t.predicatesLocked()
	t.state = to
	if to == TaskFinished {
		close(t.done)
	}
	tr := Transition{From: from, To: to, Changed: before ^ t.predicatesLocked()}
	observers := t.snapshotObserversLocked()
	t.mu.Unlock()

	notify(observers, tr)
	return tr, true
}

func (t *Task) predicatesLocked() Predicate {
	var p Predicate
	switch t.state {
	case TaskReady:
		p |= PredicateReady
	case TaskExecuting:
		p |= PredicateExecuting
	case TaskFinished:
		p |= PredicateFinished
	}
	if t.cancelled {
		p |= PredicateCancelled
	}
	return p
}

func (t *Task) snapshotObserversLocked() []func(Transition) {
	if len(t.observers) == 0 {
		return nil
	}
	return slices.Clone(t.observers)
}

func notify(observers []func(Transition), tr Transition) {
	for _, fn := range observers {
		fn(tr)
	}
}

// Predicates returns a consistent snapshot of all four predicates.
func (t *Task) Predicates() Predicate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.predicatesLocked()
}

// State returns the current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsReady reports whether the task has not started yet.
func (t *Task) IsReady() bool { return t.Predicates().Has(PredicateReady) }

// IsExecuting reports whether the task is running.
func (t *Task) IsExecuting() bool { return t.Predicates().Has(PredicateExecuting) }

// IsFinished reports whether the task is done.
func (t *Task) IsFinished() bool { return t.Predicates().Has(PredicateFinished) }

// IsCancelled reports whether the task was cancelled.
func (t *Task) IsCancelled() bool { return t.Predicates().Has(PredicateCancelled) }

// Done returns a channel that is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// String implements fmt.Stringer.
func (t *Task) String() string {
	p := t.Predicates()
	status := t.State().String()
	if p.Has(PredicateCancelled) {
		status = "cancelled"
	}
	return fmt.Sprintf("Task %s - %s", t.name, status)
}
