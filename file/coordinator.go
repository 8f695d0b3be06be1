package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/sirupsen/logrus"
)

// ErrNotRunning indicates a request to a coordinator that is not started or
// already closed.
var ErrNotRunning = errors.New("coordinator is not running")

// ErrCoordinatorClosed indicates that the coordinator closed before a
// request was handled.
var ErrCoordinatorClosed = errors.New("coordinator closed")

// ErrInvalidRequest indicates a request that does not apply to the record.
var ErrInvalidRequest = errors.New("invalid transfer request")

// Options configures a Coordinator.
type Options struct {
	// AutoDownload enqueues incoming data offers without waiting for
	// AcceptFile.
	AutoDownload bool
	// AvatarConcurrency bounds parallel avatar and nodes transfers.
	AvatarConcurrency int
	Timings           Timings
	Relays            RelayAccounts

	// FilesDir receives finished downloads. TempDir holds partial ones and
	// must be on the same filesystem.
	FilesDir string
	TempDir  string

	Clock       TimeProvider
	NextMessage func() uint64

	Peers         interfaces.IPeerDirectory
	Avatars       interfaces.IAvatarStore
	Nodes         interfaces.INodesStore
	PostProcessor interfaces.IMediaPostProcessor
}

// TransferProgressCallback receives progress for a chat file message.
type TransferProgressCallback func(messageID uint64, fraction float64)

// Coordinator routes transport events to transfer operations and runs the
// local file requests of the chat client. Events are handled one at a
// time on a single routing goroutine.
type Coordinator struct {
	transport interfaces.ITransferTransport
	records   *recordStore
	opts      Options
	env       Env

	downloads *Queue
	uploads   *Queue
	avatars   *Queue

	events *mailbox
	online map[uint32]struct{}

	callbackMu       sync.RWMutex
	downloadProgress TransferProgressCallback
	uploadProgress   TransferProgressCallback

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	stopped     chan struct{}
	closed      bool
}

// NewCoordinator creates a coordinator and registers its transport
// handlers. Events arriving before Start are held until it runs.
func NewCoordinator(transport interfaces.ITransferTransport, records interfaces.IRecordRepository, opts Options) (*Coordinator, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if records == nil {
		return nil, errors.New("record repository is required")
	}
	if opts.AvatarConcurrency <= 0 {
		opts.AvatarConcurrency = DefaultAvatarConcurrency
	}
	if opts.Clock == nil {
		opts.Clock = DefaultTimeProvider{}
	}
	if opts.NextMessage == nil {
		opts.NextMessage = newMessageIDGenerator()
	}
	if opts.FilesDir == "" {
		opts.FilesDir = filepath.Join(os.TempDir(), "toxfer", "files")
	}
	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(filepath.Dir(opts.FilesDir), "tmp")
	}
	opts.Timings = opts.Timings.withDefaults()

	c := &Coordinator{
		transport: transport,
		records:   newRecordStore(records),
		opts:      opts,
		env: Env{
			Transport: transport,
			Records:   records,
			Timings:   opts.Timings,
			Clock:     opts.Clock,
			Relays:    opts.Relays,
		},
		downloads: NewQueue("downloads", 1),
		uploads:   NewQueue("uploads", 1),
		avatars:   NewQueue("avatars", opts.AvatarConcurrency),
		events:    newMailbox(),
		online:    make(map[uint32]struct{}),
	}
	c.registerHandlers()

	logrus.WithFields(logrus.Fields{
		"function":           "NewCoordinator",
		"auto_download":      opts.AutoDownload,
		"avatar_concurrency": opts.AvatarConcurrency,
		"files_dir":          opts.FilesDir,
	}).Info("Created transfer coordinator")
	return c, nil
}

// Start cancels transfers left pending by a previous run and begins
// routing events. Queues are suspended while the cleanup runs.
func (c *Coordinator) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.closed {
		return ErrNotRunning
	}
	if c.cancel != nil {
		return nil
	}

	queues := c.queues()
	for _, q := range queues {
		q.Suspend()
	}
	n, err := c.records.cancelPending()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Start",
			"error":    err.Error(),
		}).Error("Failed to cancel pending transfers")
	} else if n > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Start",
			"count":    n,
		}).Info("Cancelled transfers left from previous run")
	}
	for _, q := range queues {
		q.Resume()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.stopped = make(chan struct{})
	go c.loop(loopCtx, c.stopped)
	return nil
}

// Close cancels all operations and stops the routing goroutine.
func (c *Coordinator) Close() error {
	c.lifecycleMu.Lock()
	if c.closed {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.closed = true
	cancel, stopped := c.cancel, c.stopped
	c.lifecycleMu.Unlock()

	for _, q := range c.queues() {
		q.CancelAll()
	}
	if cancel != nil {
		cancel()
		<-stopped
	}
	logrus.WithField("function", "Close").Info("Transfer coordinator closed")
	return nil
}

func (c *Coordinator) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.events.ready():
		}
		for _, fn := range c.events.drain() {
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

// running returns the routing goroutine's stop channel, or nil when the
// coordinator is not running.
func (c *Coordinator) running() <-chan struct{} {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.cancel == nil || c.closed {
		return nil
	}
	return c.stopped
}

// do runs fn on the routing goroutine and waits for its result. Events
// still queued when the coordinator closes are dropped.
func (c *Coordinator) do(ctx context.Context, fn func() error) error {
	stopped := c.running()
	if stopped == nil {
		return ErrNotRunning
	}
	result := make(chan error, 1)
	c.events.post(func() {
		result <- fn()
	})
	select {
	case err := <-result:
		return err
	case <-stopped:
		select {
		case err := <-result:
			return err
		default:
			return ErrCoordinatorClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) queues() []*Queue {
	return []*Queue{c.downloads, c.uploads, c.avatars}
}

// Downloads returns the queue of data downloads.
func (c *Coordinator) Downloads() *Queue { return c.downloads }

// Uploads returns the queue of data uploads.
func (c *Coordinator) Uploads() *Queue { return c.uploads }

// Avatars returns the queue of avatar and nodes transfers.
func (c *Coordinator) Avatars() *Queue { return c.avatars }

// OnDownloadProgress sets the progress callback for chat downloads.
func (c *Coordinator) OnDownloadProgress(callback TransferProgressCallback) {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	c.downloadProgress = callback
}

// OnUploadProgress sets the progress callback for chat uploads.
func (c *Coordinator) OnUploadProgress(callback TransferProgressCallback) {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	c.uploadProgress = callback
}

func (c *Coordinator) emitProgress(op *Operation, fraction float64) {
	c.callbackMu.RLock()
	callback := c.downloadProgress
	if op.Direction() == TransferDirectionOutgoing {
		callback = c.uploadProgress
	}
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(op.MessageID(), fraction)
	}
}

// find locates the operation driving handle with peer across all queues.
func (c *Coordinator) find(peer, handle uint32) *Operation {
	for _, q := range c.queues() {
		if op := q.FindByHandle(peer, handle); op != nil {
			return op
		}
	}
	return nil
}

func (c *Coordinator) sendControl(peer, handle uint32, control interfaces.FileControl) {
	if err := c.transport.FileControl(peer, handle, control); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "sendControl",
			"peer":     peer,
			"handle":   handle,
			"control":  control,
			"error":    err.Error(),
		}).Debug("File control not delivered")
	}
}

// newPathSink stages a download under TempDir and names the result with a
// fresh id that keeps the offered extension.
func (c *Coordinator) newPathSink(offered string) *PathSink {
	name := ResultFileName(offered)
	return NewPathSink(filepath.Join(c.opts.TempDir, name), filepath.Join(c.opts.FilesDir, name))
}

// enqueueDownload creates and queues a download for rec. The record moves
// to loading only if the queue accepted the operation.
func (c *Coordinator) enqueueDownload(rec *interfaces.TransferRecord, peer, handle uint32) error {
	sink := c.newPathSink(rec.FileName)
	d := NewDownloadOperation(c.env, Descriptor{
		MessageID: rec.MessageID,
		Kind:      interfaces.FileKindData,
		Peer:      peer,
		Handle:    handle,
		Size:      rec.Size,
	}, sink)
	d.OnProgress(c.emitProgress)
	d.OnComplete(c.onDownloadComplete)

	if !c.downloads.Add(d.Operation) {
		return fmt.Errorf("%w: download %s already queued", ErrInvalidRequest, rec.TransferID)
	}
	return c.records.update(rec.TransferID, func(r *interfaces.TransferRecord) error {
		r.Status = interfaces.RecordLoading
		r.PausedBy = interfaces.PausedByNone
		r.FilePath = sink.ResultPath()
		return nil
	})
}

// onDownloadComplete runs the media post-processor on finished downloads.
func (c *Coordinator) onDownloadComplete(op *Operation, success bool) {
	if !success || c.opts.PostProcessor == nil {
		return
	}
	rec, err := c.records.read(op.TransferID())
	if err != nil {
		return
	}
	duration, err := c.opts.PostProcessor.Process(rec)
	if err != nil {
		op.logger("onDownloadComplete").WithError(err).Warn("Media post-processing failed")
		return
	}
	if duration == "" {
		return
	}
	err = c.records.update(op.TransferID(), func(r *interfaces.TransferRecord) error {
		r.Duration = duration
		return nil
	})
	if err != nil {
		op.logger("onDownloadComplete").WithError(err).Warn("Failed to store media duration")
	}
}
