package file

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/limits"
	"github.com/opd-ai/toxfer/relay"
)

// ErrNotExecuting indicates a chunk request for an operation that is not
// running.
var ErrNotExecuting = errors.New("operation is not executing")

// UploadOperation sends a file from a Source, answering the peer's chunk
// requests.
type UploadOperation struct {
	*Operation
	source Source
	sleep  func(time.Duration)
}

// NewUploadOperation creates an upload for desc reading from source. Data
// uploads announce themselves on start; avatar and nodes uploads are
// announced by the caller and carry the resulting handle in desc.
func NewUploadOperation(env Env, desc Descriptor, source Source) *UploadOperation {
	u := &UploadOperation{
		Operation: newOperation(env, desc, TransferDirectionOutgoing),
		source:    source,
		sleep:     time.Sleep,
	}
	u.proto = u
	return u
}

func (u *UploadOperation) beginTransfer() bool {
	if err := u.source.Prepare(); err != nil {
		u.setErr(fmt.Errorf("%w: prepare source: %w", ErrSetup, err))
		return false
	}
	if u.kind != interfaces.FileKindData {
		return true
	}

	rec, err := u.records.read(u.transferID)
	if err != nil {
		u.setErr(fmt.Errorf("%w: %w", ErrSetup, err))
		return false
	}
	metadata, err := announcement(rec)
	if err != nil {
		u.setErr(fmt.Errorf("%w: %w", ErrSetup, err))
		return false
	}

	handle, err := u.transport.FileSend(u.peer, interfaces.FileKindData, u.Size(), nil, metadata)
	if err != nil {
		u.setErr(fmt.Errorf("%w: file send: %w", ErrSetup, err))
		return false
	}
	u.SetHandle(handle)

	err = u.records.update(u.transferID, func(r *interfaces.TransferRecord) error {
		r.Handle = int64(handle)
		return nil
	})
	if err != nil {
		u.logger("beginTransfer").WithError(err).Warn("Failed to store transfer handle")
	}
	u.logger("beginTransfer").Info("Upload announced")
	return true
}

// announcement builds the metadata sent with the file offer. Direct
// uploads carry the display name; relayed uploads carry a FileTransfer
// message telling the relay where the file goes.
func announcement(rec *interfaces.TransferRecord) ([]byte, error) {
	if !rec.Offline {
		if err := limits.ValidateFileName(rec.FileName); err != nil {
			return nil, fmt.Errorf("file name: %w", err)
		}
		return []byte(rec.FileName), nil
	}

	msg := relay.FileTransfer{MessageID: rec.MessageID, RealName: []byte(rec.FileName)}
	if rec.IsGroup {
		msg.GroupID, msg.IsGroup = rec.GroupID, true
	} else {
		if rec.PeerPublicKey == "" {
			return nil, errors.New("relayed upload without recipient key")
		}
		msg.ToPublicKey = []byte(rec.PeerPublicKey)
	}
	payload := msg.Marshal()
	if err := limits.ValidateRelayPayload(payload); err != nil {
		return nil, fmt.Errorf("announcement: %w", err)
	}
	return payload, nil
}

// HandleChunkRequest answers a request for length bytes at position. A
// zero length means the peer has everything.
func (u *UploadOperation) HandleChunkRequest(position uint64, length int) {
	if !u.IsExecuting() {
		u.fail(fmt.Errorf("%w: chunk request at %d", ErrNotExecuting, position))
		return
	}
	if length == 0 {
		u.complete(true)
		return
	}
	if err := limits.ValidateChunk(length); err != nil {
		u.fail(err)
		return
	}

	data, err := u.source.ReadAt(position, length)
	if err != nil {
		u.fail(err)
		return
	}
	if err := u.sendChunk(position, data); err != nil {
		u.fail(err)
		return
	}
	u.updateBytesDone(position + uint64(length))
}

// sendChunk retries while the transport reports a full send queue. The
// loop ends early once the operation is cancelled or finished.
func (u *UploadOperation) sendChunk(position uint64, data []byte) error {
	for {
		err := u.transport.FileSendChunk(u.peer, u.Handle(), position, data)
		if err == nil {
			return nil
		}
		if !errors.Is(err, interfaces.ErrSendQueueFull) {
			return fmt.Errorf("send chunk at %d: %w", position, err)
		}
		if u.IsCancelled() || u.IsFinished() {
			return ErrTransferCancelled
		}
		u.sleep(u.timings.BusyRetryInterval)
	}
}

func (u *UploadOperation) release(bool) {
	if c, ok := u.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			u.logger("release").WithError(err).Debug("Failed to close source")
		}
	}
}
