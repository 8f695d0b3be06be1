package file

import (
	"bytes"
	"fmt"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/limits"
	"github.com/sirupsen/logrus"
)

// handleAvatarOffer receives a friend's avatar. A zero size clears it and
// an avatar identical to the stored one is refused.
func (c *Coordinator) handleAvatarOffer(peer, handle uint32, size uint64) {
	log := logrus.WithFields(logrus.Fields{
		"function": "handleAvatarOffer",
		"peer":     peer,
		"handle":   handle,
		"size":     size,
	})
	if c.opts.Avatars == nil {
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}
	publicKey, err := c.transport.PublicKey(peer)
	if err != nil {
		log.WithError(err).Warn("Avatar from unknown friend")
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}

	if size == 0 {
		if err := c.opts.Avatars.ClearFriendAvatar(publicKey); err != nil {
			log.WithError(err).Warn("Failed to clear avatar")
		}
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}
	if err := limits.ValidateAvatarSize(size); err != nil {
		log.WithError(err).Info("Refusing oversized avatar")
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}

	if current, err := c.opts.Avatars.FriendAvatar(publicKey); err == nil && len(current) > 0 {
		offered, err := c.transport.FileID(peer, handle)
		if err == nil && bytes.Equal(offered, FileIDFor(current)) {
			log.Debug("Avatar unchanged")
			c.sendControl(peer, handle, interfaces.FileControlCancel)
			return
		}
	}

	sink := NewMemorySink()
	d := NewDownloadOperation(c.env, c.blobDescriptor(peer, handle, interfaces.FileKindAvatar, size), sink)
	d.OnComplete(func(_ *Operation, success bool) {
		if !success {
			return
		}
		if err := c.opts.Avatars.SetFriendAvatar(publicKey, sink.Bytes()); err != nil {
			log.WithError(err).Warn("Failed to store avatar")
		}
	})
	c.avatars.Add(d.Operation)
}

// handleNodesOffer receives a bootstrap nodes file.
func (c *Coordinator) handleNodesOffer(peer, handle uint32, size uint64) {
	log := logrus.WithFields(logrus.Fields{
		"function": "handleNodesOffer",
		"peer":     peer,
		"handle":   handle,
		"size":     size,
	})
	if c.opts.Nodes == nil || size == 0 {
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}
	if err := limits.ValidateNodesFileSize(size); err != nil {
		log.WithError(err).Info("Refusing oversized nodes file")
		c.sendControl(peer, handle, interfaces.FileControlCancel)
		return
	}
	if local, err := c.opts.Nodes.LoadNodes(); err == nil && len(local) > 0 {
		offered, err := c.transport.FileID(peer, handle)
		if err == nil && bytes.Equal(offered, FileIDFor(local)) {
			log.Debug("Nodes file unchanged")
			c.sendControl(peer, handle, interfaces.FileControlCancel)
			return
		}
	}

	sink := NewMemorySink()
	d := NewDownloadOperation(c.env, c.blobDescriptor(peer, handle, interfaces.FileKindNodes, size), sink)
	d.OnComplete(func(_ *Operation, success bool) {
		if !success {
			return
		}
		if err := c.opts.Nodes.StoreNodes(sink.Bytes()); err != nil {
			log.WithError(err).Warn("Failed to store nodes file")
		}
	})
	c.avatars.Add(d.Operation)
}

// sendAvatar offers our avatar to peer. Without an avatar a zero-size
// offer tells the friend to clear theirs.
func (c *Coordinator) sendAvatar(peer uint32) {
	if c.opts.Avatars == nil {
		return
	}
	log := logrus.WithFields(logrus.Fields{
		"function": "sendAvatar",
		"peer":     peer,
	})
	avatar, err := c.opts.Avatars.SelfAvatar()
	if err != nil {
		log.WithError(err).Warn("Failed to load own avatar")
		return
	}
	if len(avatar) == 0 {
		if _, err := c.transport.FileSend(peer, interfaces.FileKindAvatar, 0, nil, nil); err != nil {
			log.WithError(err).Debug("Avatar reset not sent")
		}
		return
	}
	if err := c.offerBlob(peer, interfaces.FileKindAvatar, avatar); err != nil {
		log.WithError(err).Debug("Avatar not sent")
	}
}

// offerBlob announces an in-memory avatar or nodes file and queues the
// upload answering the peer's chunk requests.
func (c *Coordinator) offerBlob(peer uint32, kind interfaces.FileKind, data []byte) error {
	handle, err := c.transport.FileSend(peer, kind, uint64(len(data)), FileIDFor(data), nil)
	if err != nil {
		return fmt.Errorf("offer %s: %w", kind, err)
	}
	u := NewUploadOperation(c.env, c.blobDescriptor(peer, handle, kind, uint64(len(data))), NewMemorySource(data))
	c.avatars.Add(u.Operation)
	return nil
}

func (c *Coordinator) blobDescriptor(peer, handle uint32, kind interfaces.FileKind, size uint64) Descriptor {
	return Descriptor{
		MessageID: c.opts.NextMessage(),
		Kind:      kind,
		Peer:      peer,
		Handle:    handle,
		Size:      size,
	}
}
