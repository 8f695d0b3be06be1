package file

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/sirupsen/logrus"
)

// ErrTransferStalled indicates that a transfer made no progress within the
// stall timeout.
var ErrTransferStalled = errors.New("transfer stalled: no progress within timeout period")

// ErrTransferCancelled indicates that the operation was cancelled.
var ErrTransferCancelled = errors.New("transfer cancelled")

// ErrSetup indicates that an operation could not begin its transfer.
var ErrSetup = errors.New("transfer setup failed")

// TransferDirection indicates whether a transfer is incoming or outgoing.
type TransferDirection uint8

const (
	// TransferDirectionIncoming represents a file being received.
	TransferDirectionIncoming TransferDirection = iota
	// TransferDirectionOutgoing represents a file being sent.
	TransferDirectionOutgoing
)

// String returns the direction name.
func (d TransferDirection) String() string {
	if d == TransferDirectionOutgoing {
		return "outgoing"
	}
	return "incoming"
}

// protocol is the direction-specific half of an operation.
type protocol interface {
	// beginTransfer is invoked once when the operation starts executing.
	// Returning false fails the operation.
	beginTransfer() bool
	// release frees the sink or source once the outcome is known.
	release(success bool)
}

// ProgressCallback receives the completed fraction of an operation.
type ProgressCallback func(op *Operation, fraction float64)

// CompletionCallback receives the outcome of an operation exactly once.
type CompletionCallback func(op *Operation, success bool)

// Operation drives one file transfer with a single peer. Chunk events are
// delivered through its mailbox and processed by one worker goroutine, so
// the direction-specific state is never touched concurrently. The
// watchdog runs separately and can only force a failed completion.
type Operation struct {
	task      *Task
	proto     protocol
	direction TransferDirection

	messageID  uint64
	transferID string
	kind       interfaces.FileKind
	peer       uint32
	handle     atomic.Uint32

	transport interfaces.ITransferTransport
	records   *recordStore
	timings   Timings
	clock     TimeProvider
	relays    RelayAccounts

	progress       *progressTracker
	lastProgressAt atomic.Int64

	mailbox   *mailbox
	completed atomic.Bool
	watchdog  watchdog

	callbackMu sync.RWMutex
	onProgress ProgressCallback
	onComplete CompletionCallback

	errMu sync.Mutex
	err   error
}

func newOperation(env Env, desc Descriptor, direction TransferDirection) *Operation {
	timings := env.Timings.withDefaults()
	clock := env.Clock
	if clock == nil {
		clock = DefaultTimeProvider{}
	}
	op := &Operation{
		direction:  direction,
		messageID:  desc.MessageID,
		transferID: TransferID(desc.MessageID),
		kind:       desc.Kind,
		peer:       desc.Peer,
		transport:  env.Transport,
		records:    newRecordStore(env.Records),
		timings:    timings,
		clock:      clock,
		relays:     env.Relays,
		progress:   newProgressTracker(desc.Size, timings),
		mailbox:    newMailbox(),
	}
	op.handle.Store(desc.Handle)
	op.task = NewTask(fmt.Sprintf("%s %s", direction, op.transferID), op.main)

	logrus.WithFields(logrus.Fields{
		"function":    "newOperation",
		"transfer_id": op.transferID,
		"peer":        desc.Peer,
		"handle":      desc.Handle,
		"kind":        desc.Kind,
		"size":        desc.Size,
		"direction":   direction,
	}).Debug("Creating transfer operation")
	return op
}

// main is the task entry point.
func (o *Operation) main() {
	if !o.proto.beginTransfer() {
		o.complete(false)
		return
	}
	now := o.clock.Now()
	o.progress.reset(now)
	o.lastProgressAt.Store(now.UnixNano())
	if !o.completed.Load() {
		o.watchdog.start(o.timings.WatchdogInterval, o.checkStall)
	}
}

// run starts the operation and processes its mailbox until it finishes.
func (o *Operation) run() {
	o.task.Start()
	if o.task.IsFinished() {
		// Cancelled before it began.
		if !o.completed.Load() {
			o.fail(ErrTransferCancelled)
		}
		return
	}
	for {
		select {
		case <-o.task.Done():
			return
		case <-o.mailbox.ready():
			for _, fn := range o.mailbox.drain() {
				if o.task.IsFinished() {
					return
				}
				fn()
			}
		}
	}
}

// Post schedules fn on the operation's worker.
func (o *Operation) Post(fn func()) {
	o.mailbox.post(fn)
}

// Start runs the transfer setup on the calling goroutine. Operations added
// to a Queue are started by the queue.
func (o *Operation) Start() {
	o.task.Start()
}

// Cancel tells the peer to stop and fails the operation. An operation that
// has not started yet is finished by its queue without ever beginning.
func (o *Operation) Cancel() {
	o.logger("Cancel").Info("Cancelling transfer")
	o.sendCancel()
	if !o.task.Cancel() {
		return
	}
	o.Post(func() {
		o.fail(ErrTransferCancelled)
	})
}

// fail records err and completes the operation unsuccessfully.
func (o *Operation) fail(err error) {
	o.errMu.Lock()
	if o.err == nil {
		o.err = err
	}
	o.errMu.Unlock()
	o.complete(false)
}

// setErr records the cause of a setup failure without completing.
func (o *Operation) setErr(err error) {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	if o.err == nil {
		o.err = err
	}
}

// Err returns the first recorded failure cause.
func (o *Operation) Err() error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	return o.err
}

// complete finalizes the operation. Only the first call has any effect.
func (o *Operation) complete(success bool) {
	if !o.completed.CompareAndSwap(false, true) {
		return
	}

	log := o.logger("complete").WithField("success", success)
	if err := o.Err(); err != nil {
		log = log.WithError(err)
	}
	if success {
		log.Info("Transfer completed")
	} else {
		log.Warn("Transfer failed")
		o.sendCancel()
	}

	o.task.Finish()
	o.watchdog.stop()
	o.proto.release(success)

	o.callbackMu.RLock()
	onComplete := o.onComplete
	o.callbackMu.RUnlock()
	if onComplete != nil {
		onComplete(o, success)
	}

	o.reconcileRecord(success)
}

// reconcileRecord brings the persisted record in line with the outcome.
// Ready records are never downgraded and expired records keep their
// status.
func (o *Operation) reconcileRecord(success bool) {
	if o.kind != interfaces.FileKindData {
		return
	}
	err := o.records.update(o.transferID, func(r *interfaces.TransferRecord) error {
		if success {
			if r.Status == interfaces.RecordReady {
				return errSkipUpdate
			}
			r.Status = interfaces.RecordReady
			return nil
		}
		if r.Status == interfaces.RecordReady || r.Status == interfaces.RecordExpired {
			return errSkipUpdate
		}
		r.Status = interfaces.RecordCanceled
		return nil
	})
	if err != nil && !errors.Is(err, interfaces.ErrRecordNotFound) {
		o.logger("reconcileRecord").WithError(err).Error("Failed to update transfer record")
	}
}

func (o *Operation) sendCancel() {
	handle := o.Handle()
	if handle == interfaces.NoHandle {
		return
	}
	if err := o.transport.FileControl(o.peer, handle, interfaces.FileControlCancel); err != nil {
		o.logger("sendCancel").WithError(err).Debug("Cancel control not delivered")
	}
}

// updateBytesDone records cumulative progress and emits a throttled
// progress notification.
func (o *Operation) updateBytesDone(bytesDone uint64) {
	now := o.clock.Now()
	fraction, due := o.progress.update(bytesDone, now)
	if !due {
		return
	}
	o.lastProgressAt.Store(now.UnixNano())

	o.callbackMu.RLock()
	onProgress := o.onProgress
	o.callbackMu.RUnlock()
	if onProgress != nil {
		onProgress(o, fraction)
	}
}

// checkStall fails the operation when it has been silent for longer than
// the stall timeout. It reports whether the watchdog should stop.
func (o *Operation) checkStall() bool {
	if o.completed.Load() {
		return true
	}
	last := time.Unix(0, o.lastProgressAt.Load())
	silent := o.clock.Since(last)
	if silent <= o.timings.StallTimeout {
		return false
	}
	o.logger("checkStall").WithFields(logrus.Fields{
		"silent":        silent,
		"stall_timeout": o.timings.StallTimeout,
	}).Warn("Transfer stalled")
	o.fail(ErrTransferStalled)
	return true
}

// OnProgress sets the throttled progress callback.
func (o *Operation) OnProgress(callback ProgressCallback) {
	o.callbackMu.Lock()
	defer o.callbackMu.Unlock()
	o.onProgress = callback
}

// OnComplete sets the completion callback.
func (o *Operation) OnComplete(callback CompletionCallback) {
	o.callbackMu.Lock()
	defer o.callbackMu.Unlock()
	o.onComplete = callback
}

// MessageID returns the chat message the transfer belongs to.
func (o *Operation) MessageID() uint64 { return o.messageID }

// TransferID returns the decimal form of the message id.
func (o *Operation) TransferID() string { return o.transferID }

// Kind returns what is being transferred.
func (o *Operation) Kind() interfaces.FileKind { return o.kind }

// Direction reports whether the file is received or sent.
func (o *Operation) Direction() TransferDirection { return o.direction }

// Peer returns the friend number on the other end.
func (o *Operation) Peer() uint32 { return o.peer }

// Handle returns the transport file number, or interfaces.NoHandle.
func (o *Operation) Handle() uint32 { return o.handle.Load() }

// SetHandle replaces the transport file number.
func (o *Operation) SetHandle(handle uint32) { o.handle.Store(handle) }

// Size returns the declared size in bytes.
func (o *Operation) Size() uint64 { return o.progress.total() }

// BytesDone returns the bytes transferred so far.
func (o *Operation) BytesDone() uint64 { return o.progress.done() }

// Progress returns the completed fraction in [0, 1].
func (o *Operation) Progress() float64 { return o.progress.fraction() }

// BytesPerSecond returns the speed measured over the recent samples.
func (o *Operation) BytesPerSecond() float64 { return o.progress.speed() }

// EstimatedRemaining returns the last ETA estimate.
func (o *Operation) EstimatedRemaining() time.Duration { return o.progress.eta() }

// IsReady reports whether the operation has not started.
func (o *Operation) IsReady() bool { return o.task.IsReady() }

// IsExecuting reports whether the operation is running.
func (o *Operation) IsExecuting() bool { return o.task.IsExecuting() }

// IsFinished reports whether the operation is done.
func (o *Operation) IsFinished() bool { return o.task.IsFinished() }

// IsCancelled reports whether the operation was cancelled.
func (o *Operation) IsCancelled() bool { return o.task.IsCancelled() }

// Done returns a channel that is closed when the operation finishes.
func (o *Operation) Done() <-chan struct{} { return o.task.Done() }

// Download returns the download half, if this is a download.
func (o *Operation) Download() (*DownloadOperation, bool) {
	d, ok := o.proto.(*DownloadOperation)
	return d, ok
}

// Upload returns the upload half, if this is an upload.
func (o *Operation) Upload() (*UploadOperation, bool) {
	u, ok := o.proto.(*UploadOperation)
	return u, ok
}

// String implements fmt.Stringer.
func (o *Operation) String() string {
	return o.task.String()
}

func (o *Operation) logger(function string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"function":    function,
		"transfer_id": o.transferID,
		"peer":        o.peer,
		"handle":      o.Handle(),
		"kind":        o.kind,
		"direction":   o.direction,
	})
}

// watchdog polls a stall check on its own goroutine.
type watchdog struct {
	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

func (w *watchdog) start(interval time.Duration, check func() bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.stopCh != nil {
		return
	}
	stop := make(chan struct{})
	w.stopCh = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if check() {
					return
				}
			}
		}
	}()
}

func (w *watchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	if w.stopCh != nil {
		close(w.stopCh)
	}
}
