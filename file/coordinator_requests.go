package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/limits"
	"github.com/sirupsen/logrus"
)

// SendRequest describes a local file to send into a chat.
type SendRequest struct {
	// MessageID identifies the chat message. Zero allocates a new one.
	MessageID     uint64
	Peer          uint32
	ChatID        string
	PeerPublicKey string
	GroupID       uint64
	IsGroup       bool
	// Offline routes the file through a relay account.
	Offline  bool
	Path     string
	FileName string
}

// SendFile records an outgoing file message and queues its upload. It
// returns the message id.
func (c *Coordinator) SendFile(ctx context.Context, req SendRequest) (uint64, error) {
	path, err := ValidatePath(req.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return 0, fmt.Errorf("%w: %q is empty or a directory", ErrInvalidRequest, path)
	}
	name := req.FileName
	if name == "" {
		name = filepath.Base(path)
	}
	if err := limits.ValidateFileName(name); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var messageID uint64
	err = c.do(ctx, func() error {
		messageID = req.MessageID
		if messageID == 0 {
			messageID = c.opts.NextMessage()
		}
		rec := &interfaces.TransferRecord{
			TransferID:    TransferID(messageID),
			MessageID:     messageID,
			ChatID:        req.ChatID,
			PeerPublicKey: req.PeerPublicKey,
			GroupID:       req.GroupID,
			IsGroup:       req.IsGroup,
			Handle:        -1,
			Kind:          interfaces.FileKindData,
			Outgoing:      true,
			Status:        interfaces.RecordLoading,
			Size:          uint64(info.Size()),
			FileName:      name,
			FilePath:      path,
			PausedBy:      interfaces.PausedByNone,
			Offline:       req.Offline,
		}
		if err := c.records.create(rec); err != nil {
			return err
		}
		return c.enqueueUpload(rec, req.Peer, NewPathSource(path))
	})
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// EnqueueUpload queues an upload for an existing outgoing record.
func (c *Coordinator) EnqueueUpload(ctx context.Context, messageID uint64, peer uint32, source Source) error {
	return c.do(ctx, func() error {
		rec, err := c.records.read(TransferID(messageID))
		if err != nil {
			return err
		}
		if !rec.Outgoing {
			return fmt.Errorf("%w: %s is not outgoing", ErrInvalidRequest, rec.TransferID)
		}
		return c.enqueueUpload(rec, peer, source)
	})
}

func (c *Coordinator) enqueueUpload(rec *interfaces.TransferRecord, peer uint32, source Source) error {
	u := NewUploadOperation(c.env, Descriptor{
		MessageID: rec.MessageID,
		Kind:      interfaces.FileKindData,
		Peer:      peer,
		Handle:    interfaces.NoHandle,
		Size:      rec.Size,
	}, source)
	u.OnProgress(c.emitProgress)
	if !c.uploads.Add(u.Operation) {
		return fmt.Errorf("%w: upload %s already queued", ErrInvalidRequest, rec.TransferID)
	}
	return nil
}

// AcceptFile starts downloading an incoming file that awaits confirmation.
func (c *Coordinator) AcceptFile(ctx context.Context, messageID uint64) error {
	return c.do(ctx, func() error {
		rec, err := c.records.read(TransferID(messageID))
		if err != nil {
			return err
		}
		if rec.Outgoing || rec.Status != interfaces.RecordWaitingConfirmation {
			return fmt.Errorf("%w: %s is %s", ErrInvalidRequest, rec.TransferID, rec.Status)
		}
		if rec.Handle < 0 {
			return fmt.Errorf("%w: %s has no transfer handle", ErrInvalidRequest, rec.TransferID)
		}
		peer, err := c.transport.FriendByPublicKey(rec.PeerPublicKey)
		if err != nil {
			return fmt.Errorf("resolve sender: %w", err)
		}
		return c.enqueueDownload(rec, peer, uint32(rec.Handle))
	})
}

// ResumeFile continues an incoming file. A transfer still running is
// resumed with a control; otherwise a new download is queued that either
// resumes the direct transfer or pulls the file from its relay account.
func (c *Coordinator) ResumeFile(ctx context.Context, messageID uint64) error {
	return c.do(ctx, func() error {
		transferID := TransferID(messageID)
		rec, err := c.records.read(transferID)
		if err != nil {
			return err
		}
		if rec.Outgoing {
			if op := c.uploads.Find(transferID); op != nil && !op.IsCancelled() {
				return c.resumeRunning(op)
			}
			return fmt.Errorf("%w: upload %s is not active", ErrInvalidRequest, transferID)
		}
		if op := c.downloads.Find(transferID); op != nil && !op.IsCancelled() {
			return c.resumeRunning(op)
		}

		if rec.Offline {
			bot := c.opts.Relays.OfflineBot
			if rec.IsGroup {
				bot = c.opts.Relays.FileBot
			}
			peer, err := c.transport.FriendByPublicKey(bot)
			if err != nil {
				return fmt.Errorf("resolve relay: %w", err)
			}
			return c.enqueueDownload(rec, peer, interfaces.NoHandle)
		}

		if rec.Handle < 0 {
			return fmt.Errorf("%w: %s has no transfer handle", ErrInvalidRequest, transferID)
		}
		peer, err := c.transport.FriendByPublicKey(rec.PeerPublicKey)
		if err != nil {
			return fmt.Errorf("resolve sender: %w", err)
		}
		return c.enqueueDownload(rec, peer, uint32(rec.Handle))
	})
}

func (c *Coordinator) resumeRunning(op *Operation) error {
	if err := c.transport.FileControl(op.Peer(), op.Handle(), interfaces.FileControlResume); err != nil {
		return fmt.Errorf("resume control: %w", err)
	}
	return c.records.update(op.TransferID(), func(r *interfaces.TransferRecord) error {
		if r.PausedBy == interfaces.PausedByPeer {
			return errSkipUpdate
		}
		r.PausedBy = interfaces.PausedByNone
		r.Status = interfaces.RecordLoading
		return nil
	})
}

// PauseFile asks the peer to pause a running transfer.
func (c *Coordinator) PauseFile(ctx context.Context, messageID uint64) error {
	return c.do(ctx, func() error {
		transferID := TransferID(messageID)
		rec, err := c.records.read(transferID)
		if err != nil {
			return err
		}
		q := c.downloads
		if rec.Outgoing {
			q = c.uploads
		}
		op := q.Find(transferID)
		if op == nil || op.IsCancelled() {
			return fmt.Errorf("%w: %s is not active", ErrInvalidRequest, transferID)
		}
		if err := c.transport.FileControl(op.Peer(), op.Handle(), interfaces.FileControlPause); err != nil {
			return fmt.Errorf("pause control: %w", err)
		}
		return c.records.update(transferID, func(r *interfaces.TransferRecord) error {
			r.PausedBy = interfaces.PausedBySelf
			r.Status = interfaces.RecordPaused
			return nil
		})
	})
}

// CancelFile cancels the operation for a message, if any, and marks its
// record canceled.
func (c *Coordinator) CancelFile(ctx context.Context, messageID uint64) error {
	return c.do(ctx, func() error {
		transferID := TransferID(messageID)
		rec, err := c.records.read(transferID)
		if err != nil {
			return err
		}
		q := c.downloads
		if rec.Outgoing {
			q = c.uploads
		}
		if op := q.Find(transferID); op != nil {
			op.Cancel()
		}

		logrus.WithFields(logrus.Fields{
			"function":    "CancelFile",
			"transfer_id": transferID,
			"outgoing":    rec.Outgoing,
		}).Info("Cancelling file message")
		return c.records.update(transferID, func(r *interfaces.TransferRecord) error {
			r.Status = interfaces.RecordCanceled
			return nil
		})
	})
}

// AvatarChanged pushes the current avatar to every online friend.
func (c *Coordinator) AvatarChanged(ctx context.Context) error {
	return c.do(ctx, func() error {
		for _, peer := range c.onlinePeers() {
			c.sendAvatar(peer)
		}
		return nil
	})
}

// SendNodes offers the bootstrap nodes file to peer.
func (c *Coordinator) SendNodes(ctx context.Context, peer uint32) error {
	return c.do(ctx, func() error {
		if c.opts.Nodes == nil {
			return errors.New("no nodes store configured")
		}
		data, err := c.opts.Nodes.LoadNodes()
		if err != nil {
			return fmt.Errorf("load nodes: %w", err)
		}
		if err := limits.ValidateNodesFileSize(uint64(len(data))); err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("%w: nodes file is empty", ErrInvalidRequest)
		}
		return c.offerBlob(peer, interfaces.FileKindNodes, data)
	})
}
