package file

import (
	"errors"
	"fmt"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/limits"
	"github.com/opd-ai/toxfer/relay"
	"github.com/sirupsen/logrus"
)

// ErrChunkPositionMismatch indicates a chunk that does not start where the
// previous one ended.
var ErrChunkPositionMismatch = errors.New("chunk position does not match bytes received")

// ErrIncompleteStream indicates an end-of-stream before all bytes arrived.
var ErrIncompleteStream = errors.New("end of stream before declared size")

// DownloadOperation receives a file into a Sink. Relayed files are first
// requested from the relay account and resumed once it acknowledges.
type DownloadOperation struct {
	*Operation
	sink    Sink
	resumed bool
}

// NewDownloadOperation creates a download for desc writing into sink. For
// a relayed file desc.Handle is interfaces.NoHandle until the relay pushes
// the file.
func NewDownloadOperation(env Env, desc Descriptor, sink Sink) *DownloadOperation {
	d := &DownloadOperation{
		Operation: newOperation(env, desc, TransferDirectionIncoming),
		sink:      sink,
	}
	d.proto = d
	return d
}

// Sink returns the sink the download writes into.
func (d *DownloadOperation) Sink() Sink {
	return d.sink
}

func (d *DownloadOperation) beginTransfer() bool {
	if d.kind != interfaces.FileKindData {
		return d.runOrFail()
	}
	rec, err := d.records.read(d.transferID)
	if err != nil {
		d.setErr(fmt.Errorf("%w: %w", ErrSetup, err))
		return false
	}
	if rec.Offline && d.Handle() == interfaces.NoHandle {
		return d.requestFromRelay(rec)
	}
	return d.runOrFail()
}

func (d *DownloadOperation) runOrFail() bool {
	if err := d.Run(); err != nil {
		d.setErr(err)
		return false
	}
	return true
}

// Run prepares the sink and asks the sender to start pushing chunks. It
// does nothing once the transfer has been resumed.
func (d *DownloadOperation) Run() error {
	if d.resumed {
		return nil
	}
	if err := d.sink.Prepare(); err != nil {
		return fmt.Errorf("%w: prepare sink: %w", ErrSetup, err)
	}
	if err := d.transport.FileControl(d.peer, d.Handle(), interfaces.FileControlResume); err != nil {
		return fmt.Errorf("%w: resume: %w", ErrSetup, err)
	}
	d.resumed = true

	d.logger("Run").Debug("Download resumed")
	return nil
}

// requestFromRelay asks the relay account holding the file to push it.
func (d *DownloadOperation) requestFromRelay(rec *interfaces.TransferRecord) bool {
	relayPeer := d.peer
	command := interfaces.RelayCommandGroupFilePull
	req := relay.PullRequest{MessageID: rec.MessageID}

	if rec.IsGroup {
		req.GroupID, req.IsGroup = rec.GroupID, true
	} else {
		command = interfaces.RelayCommandOfflineFilePull
		req.PublicKey = rec.PeerPublicKey
		peer, err := d.transport.FriendByPublicKey(d.relays.OfflineBot)
		if err != nil {
			d.setErr(fmt.Errorf("%w: offline relay: %w", ErrSetup, err))
			return false
		}
		relayPeer = peer
	}

	if err := d.transport.SendRelayMessage(relayPeer, command, rec.MessageID, req.Marshal()); err != nil {
		d.setErr(fmt.Errorf("%w: pull request: %w", ErrSetup, err))
		return false
	}

	d.logger("requestFromRelay").WithFields(logrus.Fields{
		"relay_peer": relayPeer,
		"group":      rec.IsGroup,
	}).Info("Requested file from relay")
	return true
}

// HandleChunk consumes the next chunk. A nil data slice marks the end of
// the stream, which succeeds only when every declared byte has arrived.
func (d *DownloadOperation) HandleChunk(data []byte, position uint64) {
	if d.IsFinished() {
		return
	}

	received := d.BytesDone()
	if data == nil {
		if received != d.Size() {
			d.fail(fmt.Errorf("%w: %d of %d bytes", ErrIncompleteStream, received, d.Size()))
			return
		}
		if err := d.sink.Finalize(); err != nil {
			d.fail(fmt.Errorf("finalize: %w", err))
			return
		}
		d.complete(true)
		return
	}

	if position != received {
		d.fail(fmt.Errorf("%w: got %d, expected %d", ErrChunkPositionMismatch, position, received))
		return
	}
	if err := limits.ValidateChunk(len(data)); err != nil {
		d.fail(err)
		return
	}
	if err := d.sink.Write(data); err != nil {
		d.fail(fmt.Errorf("write chunk at %d: %w", position, err))
		return
	}
	d.updateBytesDone(received + uint64(len(data)))
}

// acceptRelayedFile switches the download to the transfer pushed by the
// relay and resumes it. It runs on the worker.
func (d *DownloadOperation) acceptRelayedFile(size uint64) {
	if size > 0 {
		d.progress.setSize(size)
	}
	if err := d.Run(); err != nil {
		d.fail(err)
	}
}

func (d *DownloadOperation) release(success bool) {
	if !success {
		d.sink.Cancel()
	}
}
