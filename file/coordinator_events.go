package file

import (
	"bytes"
	"errors"
	"slices"
	"unicode/utf8"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/limits"
	"github.com/opd-ai/toxfer/relay"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// registerHandlers installs the transport callbacks. Each one copies its
// arguments and hands them to the routing goroutine.
func (c *Coordinator) registerHandlers() {
	c.transport.OnFileRecvControl(func(peer, handle uint32, control interfaces.FileControl) {
		c.events.post(func() { c.handleFileControl(peer, handle, control) })
	})
	c.transport.OnFileRecv(func(peer, handle uint32, kind interfaces.FileKind, size uint64, metadata []byte) {
		metadata = bytes.Clone(metadata)
		c.events.post(func() { c.handleFileOffer(peer, handle, kind, size, metadata) })
	})
	c.transport.OnFileRecvChunk(func(peer, handle uint32, position uint64, data []byte) {
		if data != nil {
			data = bytes.Clone(data)
		}
		c.events.post(func() { c.handleChunk(peer, handle, position, data) })
	})
	c.transport.OnFileChunkRequest(func(peer, handle uint32, position uint64, length int) {
		c.events.post(func() { c.handleChunkRequest(peer, handle, position, length) })
	})
	c.transport.OnFriendConnectionStatus(func(peer uint32, status interfaces.ConnectionStatus) {
		c.events.post(func() { c.handleConnectionStatus(peer, status) })
	})
}

func (c *Coordinator) handleFileControl(peer, handle uint32, control interfaces.FileControl) {
	op := c.find(peer, handle)
	if op == nil {
		logrus.WithFields(logrus.Fields{
			"function": "handleFileControl",
			"peer":     peer,
			"handle":   handle,
			"control":  control,
		}).Debug("Control for unknown transfer")
		return
	}
	op.logger("handleFileControl").WithField("control", control).Info("Peer sent file control")

	switch control {
	case interfaces.FileControlResume:
		c.updateRecord(op, func(r *interfaces.TransferRecord) error {
			if r.PausedBy == interfaces.PausedBySelf {
				r.Status = interfaces.RecordPaused
				return nil
			}
			r.PausedBy = interfaces.PausedByNone
			r.Status = interfaces.RecordLoading
			return nil
		})
	case interfaces.FileControlPause:
		c.updateRecord(op, func(r *interfaces.TransferRecord) error {
			r.PausedBy = interfaces.PausedByPeer
			r.Status = interfaces.RecordPaused
			return nil
		})
	case interfaces.FileControlCancel:
		op.Cancel()
		if op.Kind() != interfaces.FileKindData {
			return
		}
		rec, err := c.records.read(op.TransferID())
		if err != nil {
			return
		}
		if !rec.Outgoing {
			if err := c.records.delete(rec.TransferID); err != nil {
				op.logger("handleFileControl").WithError(err).Warn("Failed to delete cancelled download")
			}
			return
		}
		c.updateRecord(op, func(r *interfaces.TransferRecord) error {
			r.Status = interfaces.RecordCanceled
			r.Handle = -1
			return nil
		})
	}
}

func (c *Coordinator) updateRecord(op *Operation, mutate func(*interfaces.TransferRecord) error) {
	if op.Kind() != interfaces.FileKindData {
		return
	}
	err := c.records.update(op.TransferID(), mutate)
	if err != nil && !errors.Is(err, interfaces.ErrRecordNotFound) {
		op.logger("updateRecord").WithError(err).Warn("Failed to update transfer record")
	}
}

func (c *Coordinator) handleFileOffer(peer, handle uint32, kind interfaces.FileKind, size uint64, metadata []byte) {
	switch kind {
	case interfaces.FileKindAvatar:
		c.handleAvatarOffer(peer, handle, size)
	case interfaces.FileKindNodes:
		c.handleNodesOffer(peer, handle, size)
	case interfaces.FileKindData:
		publicKey, err := c.transport.PublicKey(peer)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "handleFileOffer",
				"peer":     peer,
				"error":    err.Error(),
			}).Warn("File offer from unknown friend")
			return
		}
		if c.opts.Relays.Contains(publicKey) {
			c.handleRelayedOffer(peer, handle, size, metadata)
			return
		}
		c.handleDataOffer(peer, handle, publicKey, size, metadata)
	default:
		c.sendControl(peer, handle, interfaces.FileControlCancel)
	}
}

// handleDataOffer records a direct file offer and, with auto-download,
// starts receiving it.
func (c *Coordinator) handleDataOffer(peer, handle uint32, publicKey string, size uint64, metadata []byte) {
	log := logrus.WithFields(logrus.Fields{
		"function": "handleDataOffer",
		"peer":     peer,
		"handle":   handle,
		"size":     size,
	})
	name := string(metadata)
	if size == 0 || !utf8.ValidString(name) || limits.ValidateFileName(name) != nil {
		log.Warn("Refusing malformed file offer")
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}

	chatID := publicKey
	if c.opts.Peers != nil {
		info, ok := c.opts.Peers.PeerInfo(publicKey)
		if !ok || info.Blocked {
			log.Info("Refusing file offer from unknown or blocked peer")
			c.sendControl(peer, handle, interfaces.FileControlCancel)
			return
		}
		if info.ChatID != "" {
			chatID = info.ChatID
		}
	}

	messageID := c.opts.NextMessage()
	rec := &interfaces.TransferRecord{
		TransferID:    TransferID(messageID),
		MessageID:     messageID,
		ChatID:        chatID,
		PeerPublicKey: publicKey,
		Handle:        int64(handle),
		Kind:          interfaces.FileKindData,
		Status:        interfaces.RecordWaitingConfirmation,
		Size:          size,
		FileName:      name,
		PausedBy:      interfaces.PausedByNone,
	}
	if err := c.records.create(rec); err != nil {
		log.WithError(err).Error("Failed to record file offer")
		return
	}
	log.WithField("transfer_id", rec.TransferID).Info("Received file offer")

	if !c.opts.AutoDownload {
		return
	}
	if err := c.enqueueDownload(rec, peer, handle); err != nil {
		log.WithError(err).Warn("Failed to start download")
	}
}

// handleRelayedOffer matches a file pushed by a relay account to the
// download that pulled it.
func (c *Coordinator) handleRelayedOffer(peer, handle uint32, size uint64, metadata []byte) {
	log := logrus.WithFields(logrus.Fields{
		"function": "handleRelayedOffer",
		"peer":     peer,
		"handle":   handle,
	})
	if size == 0 || len(metadata) == 0 {
		return
	}
	ack, err := relay.UnmarshalFileTransfer(metadata)
	if err != nil {
		log.WithError(err).Warn("Ignoring relay offer")
		return
	}

	transferID := TransferID(ack.MessageID)
	op := c.downloads.Find(transferID)
	if op == nil || op.IsCancelled() || op.Peer() != peer {
		log.WithField("transfer_id", transferID).Debug("Relay offer without matching download")
		return
	}
	d, ok := op.Download()
	if !ok {
		return
	}

	expired := ack.Expired()
	err = c.records.update(transferID, func(r *interfaces.TransferRecord) error {
		r.Handle = int64(handle)
		r.Size = size
		r.Expired = expired
		if expired {
			r.Status = interfaces.RecordExpired
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Relay offer for missing record")
		return
	}

	if expired {
		log.WithField("transfer_id", transferID).Info("Relay reports file expired")
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		op.Cancel()
		return
	}

	op.SetHandle(handle)
	op.Post(func() { d.acceptRelayedFile(size) })
}

func (c *Coordinator) handleChunk(peer, handle uint32, position uint64, data []byte) {
	op := c.find(peer, handle)
	if op == nil {
		return
	}
	d, ok := op.Download()
	if !ok {
		return
	}
	op.Post(func() { d.HandleChunk(data, position) })
}

func (c *Coordinator) handleChunkRequest(peer, handle uint32, position uint64, length int) {
	op := c.find(peer, handle)
	if op == nil {
		return
	}
	u, ok := op.Upload()
	if !ok {
		return
	}
	op.Post(func() { u.HandleChunkRequest(position, length) })
}

// handleConnectionStatus tracks online friends and sends the avatar to a
// friend that just came online.
func (c *Coordinator) handleConnectionStatus(peer uint32, status interfaces.ConnectionStatus) {
	if status == interfaces.ConnectionNone {
		delete(c.online, peer)
		return
	}
	if _, wasOnline := c.online[peer]; wasOnline {
		return
	}
	c.online[peer] = struct{}{}
	c.sendAvatar(peer)
}

func (c *Coordinator) onlinePeers() []uint32 {
	peers := lo.Keys(c.online)
	slices.Sort(peers)
	return peers
}
