package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/limits"
	"github.com/opd-ai/toxfer/mocks"
	"github.com/opd-ai/toxfer/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const firstOfferID = 5001

func sequence(start uint64) func() uint64 {
	var n atomic.Uint64
	n.Store(start)
	return func() uint64 { return n.Add(1) }
}

func testOptions(h *harness, dir string) Options {
	return Options{
		AutoDownload: true,
		Relays:       testRelays(),
		FilesDir:     filepath.Join(dir, "files"),
		TempDir:      filepath.Join(dir, "tmp"),
		Clock:        h.clock,
		Timings:      Timings{WatchdogInterval: testWatchdogInterval},
		NextMessage:  sequence(firstOfferID - 1),
	}
}

func newTestCoordinator(t *testing.T, configure func(*Options)) (*Coordinator, *harness) {
	t.Helper()
	h := newHarness(t)
	opts := testOptions(h, t.TempDir())
	if configure != nil {
		configure(&opts)
	}
	c, err := NewCoordinator(h.transport, h.repo, opts)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c, h
}

// flush waits until the routing goroutine has handled every event posted
// so far.
func flush(t *testing.T, c *Coordinator) {
	t.Helper()
	require.NoError(t, c.do(context.Background(), func() error { return nil }))
}

func eventually(t *testing.T, condition func() bool, msg string) {
	t.Helper()
	require.Eventually(t, condition, testWaitTimeout, testPollInterval, msg)
}

func deliver(h *harness, peer, handle uint32, payload []byte) {
	for pos := 0; pos < len(payload); pos += testChunkSize {
		end := min(pos+testChunkSize, len(payload))
		h.transport.recvChunk(peer, handle, uint64(pos), payload[pos:end])
	}
	h.transport.recvChunk(peer, handle, uint64(len(payload)), nil)
}

func TestCoordinator_AutoDownload(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	id := TransferID(firstOfferID)

	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("report.pdf"))
	flush(t, c)

	rec, ok := h.repo.get(id)
	require.True(t, ok, "offer must be recorded")
	assert.Equal(t, interfaces.RecordLoading, rec.Status)
	assert.Equal(t, testPeerKey, rec.PeerPublicKey)
	assert.Equal(t, "report.pdf", rec.FileName)
	assert.True(t, strings.HasSuffix(rec.FilePath, ".pdf"))
	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "download should resume the transfer")

	payload := testPayload(testFileSize)
	deliver(h, testPeer, testHandle, payload)

	eventually(t, func() bool { return h.repo.status(id) == interfaces.RecordReady }, "record should become ready")
	data, err := os.ReadFile(rec.FilePath)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestCoordinator_AcceptFile(t *testing.T) {
	c, h := newTestCoordinator(t, func(o *Options) { o.AutoDownload = false })
	ctx := context.Background()

	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("a.txt"))
	flush(t, c)
	assert.Equal(t, interfaces.RecordWaitingConfirmation, h.repo.status(TransferID(firstOfferID)))
	assert.Empty(t, h.transport.controlsFor(interfaces.FileControlResume))

	require.NoError(t, c.AcceptFile(ctx, firstOfferID))
	assert.Equal(t, interfaces.RecordLoading, h.repo.status(TransferID(firstOfferID)))
	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "accepted download should resume")

	assert.ErrorIs(t, c.AcceptFile(ctx, firstOfferID), ErrInvalidRequest)
	assert.ErrorIs(t, c.AcceptFile(ctx, 42), interfaces.ErrRecordNotFound)
}

func TestCoordinator_RefusesBadOffers(t *testing.T) {
	tests := []struct {
		name     string
		size     uint64
		metadata []byte
	}{
		{"empty file", 0, []byte("a.txt")},
		{"no name", testFileSize, nil},
		{"invalid utf8", testFileSize, []byte{0xff, 0xfe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, h := newTestCoordinator(t, nil)
			h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, tt.size, tt.metadata)
			flush(t, c)

			assert.Len(t, h.transport.controlsFor(interfaces.FileControlCancel), 1)
			_, ok := h.repo.get(TransferID(firstOfferID))
			assert.False(t, ok)
		})
	}
}

func TestCoordinator_BlockedPeer(t *testing.T) {
	ctrl := gomock.NewController(t)
	peers := mocks.NewMockIPeerDirectory(ctrl)
	peers.EXPECT().PeerInfo(testPeerKey).Return(interfaces.PeerInfo{PublicKey: testPeerKey, Blocked: true}, true)

	c, h := newTestCoordinator(t, func(o *Options) { o.Peers = peers })
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("a.txt"))
	flush(t, c)

	assert.Len(t, h.transport.controlsFor(interfaces.FileControlCancel), 1)
	assert.Equal(t, 0, c.Downloads().Len())
}

func TestCoordinator_PeerDirectorySuppliesChat(t *testing.T) {
	ctrl := gomock.NewController(t)
	peers := mocks.NewMockIPeerDirectory(ctrl)
	peers.EXPECT().PeerInfo(testPeerKey).Return(interfaces.PeerInfo{PublicKey: testPeerKey, ChatID: "chat-7"}, true)

	c, h := newTestCoordinator(t, func(o *Options) {
		o.Peers = peers
		o.AutoDownload = false
	})
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("a.txt"))
	flush(t, c)

	rec, ok := h.repo.get(TransferID(firstOfferID))
	require.True(t, ok)
	assert.Equal(t, "chat-7", rec.ChatID)
}

func TestCoordinator_PeerControls(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	id := TransferID(firstOfferID)
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("a.txt"))
	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "download should start")

	h.transport.recvControl(testPeer, testHandle, interfaces.FileControlPause)
	flush(t, c)
	rec, _ := h.repo.get(id)
	assert.Equal(t, interfaces.RecordPaused, rec.Status)
	assert.Equal(t, interfaces.PausedByPeer, rec.PausedBy)

	h.transport.recvControl(testPeer, testHandle, interfaces.FileControlResume)
	flush(t, c)
	rec, _ = h.repo.get(id)
	assert.Equal(t, interfaces.RecordLoading, rec.Status)
	assert.Equal(t, interfaces.PausedByNone, rec.PausedBy)

	h.transport.recvControl(testPeer, testHandle, interfaces.FileControlCancel)
	flush(t, c)
	eventually(t, func() bool {
		_, ok := h.repo.get(id)
		return !ok && c.Downloads().Len() == 0
	}, "cancelled incoming file should be removed")
}

func TestCoordinator_PeerCancelsUpload(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	messageID := sendTestFile(t, c, h)

	h.transport.recvControl(testPeer, testUploadHandle, interfaces.FileControlCancel)
	flush(t, c)

	eventually(t, func() bool { return c.Uploads().Len() == 0 }, "upload should stop")
	rec, ok := h.repo.get(TransferID(messageID))
	require.True(t, ok)
	assert.Equal(t, interfaces.RecordCanceled, rec.Status)
	assert.Equal(t, int64(-1), rec.Handle)
}

func TestCoordinator_LocalPauseAndResume(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	ctx := context.Background()
	id := TransferID(firstOfferID)
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("a.txt"))
	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "download should start")

	require.NoError(t, c.PauseFile(ctx, firstOfferID))
	assert.Equal(t, []controlCall{{testPeer, testHandle, interfaces.FileControlPause}},
		h.transport.controlsFor(interfaces.FileControlPause))
	rec, _ := h.repo.get(id)
	assert.Equal(t, interfaces.PausedBySelf, rec.PausedBy)

	h.transport.recvControl(testPeer, testHandle, interfaces.FileControlResume)
	flush(t, c)
	assert.Equal(t, interfaces.RecordPaused, h.repo.status(id), "a self-paused transfer stays paused")

	require.NoError(t, c.ResumeFile(ctx, firstOfferID))
	rec, _ = h.repo.get(id)
	assert.Equal(t, interfaces.RecordLoading, rec.Status)
	assert.Equal(t, interfaces.PausedByNone, rec.PausedBy)
	assert.Len(t, h.transport.controlsFor(interfaces.FileControlResume), 2)
	assert.Equal(t, 1, c.Downloads().Len(), "resuming a running transfer must not queue another")
}

func TestCoordinator_CancelFile(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	ctx := context.Background()
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("a.txt"))
	flush(t, c)

	require.NoError(t, c.CancelFile(ctx, firstOfferID))

	assert.Equal(t, interfaces.RecordCanceled, h.repo.status(TransferID(firstOfferID)))
	eventually(t, func() bool { return c.Downloads().Len() == 0 }, "download should be gone")
	assert.ErrorIs(t, c.CancelFile(ctx, 42), interfaces.ErrRecordNotFound)
}

func offlineRecord(group bool) interfaces.TransferRecord {
	rec := incomingRecord(interfaces.RecordCanceled)
	rec.Offline, rec.Handle = true, -1
	if group {
		rec.IsGroup, rec.GroupID = true, 0
	}
	return rec
}

func TestCoordinator_RelayedDownload(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	id := TransferID(testMessageID)
	h.repo.put(offlineRecord(false))

	require.NoError(t, c.ResumeFile(context.Background(), testMessageID))
	eventually(t, func() bool { return len(h.transport.sentRelays()) == 1 }, "pull request should be sent")

	pull := h.transport.sentRelays()[0]
	assert.Equal(t, testRelayPeer, pull.peer)
	assert.Equal(t, interfaces.RelayCommandOfflineFilePull, pull.command)
	assert.Empty(t, h.transport.controlsFor(interfaces.FileControlResume), "no resume before the relay answers")

	ack := relay.FileTransfer{MessageID: testMessageID}.Marshal()
	h.transport.recvFile(testRelayPeer, testHandle, interfaces.FileKindData, testFileSize, ack)
	h.transport.recvFile(testRelayPeer, testHandle, interfaces.FileKindData, testFileSize, ack)
	flush(t, c)

	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "acknowledgment should resume the download")
	time.Sleep(10 * testPollInterval)
	assert.Equal(t, []controlCall{{testRelayPeer, testHandle, interfaces.FileControlResume}},
		h.transport.controlsFor(interfaces.FileControlResume), "resume is sent exactly once")

	rec, _ := h.repo.get(id)
	assert.Equal(t, int64(testHandle), rec.Handle)
	assert.False(t, rec.Expired)

	deliver(h, testRelayPeer, testHandle, testPayload(testFileSize))
	eventually(t, func() bool { return h.repo.status(id) == interfaces.RecordReady }, "relayed file should complete")
}

func TestCoordinator_RelayedGroupDownloadUsesFileBot(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	const fileBotPeer uint32 = 8
	h.transport.addFriend(fileBotPeer, testFileBot)
	h.repo.put(offlineRecord(true))

	require.NoError(t, c.ResumeFile(context.Background(), testMessageID))
	eventually(t, func() bool { return len(h.transport.sentRelays()) == 1 }, "pull request should be sent")

	pull := h.transport.sentRelays()[0]
	assert.Equal(t, fileBotPeer, pull.peer)
	assert.Equal(t, interfaces.RelayCommandGroupFilePull, pull.command)
}

func TestCoordinator_RelayedDownloadExpired(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	id := TransferID(testMessageID)
	h.repo.put(offlineRecord(false))

	require.NoError(t, c.ResumeFile(context.Background(), testMessageID))
	eventually(t, func() bool { return len(h.transport.sentRelays()) == 1 }, "pull request should be sent")

	ack := relay.FileTransfer{MessageID: testMessageID, Code: relay.AckExpired}.Marshal()
	h.transport.recvFile(testRelayPeer, testHandle, interfaces.FileKindData, testFileSize, ack)
	flush(t, c)

	eventually(t, func() bool { return c.Downloads().Len() == 0 }, "expired download should be cancelled")
	rec, _ := h.repo.get(id)
	assert.True(t, rec.Expired)
	assert.Equal(t, interfaces.RecordExpired, rec.Status, "failure must not overwrite expiry")
	assert.Contains(t, h.transport.controlsFor(interfaces.FileControlCancel),
		controlCall{testRelayPeer, testHandle, interfaces.FileControlCancel})
	assert.Empty(t, h.transport.controlsFor(interfaces.FileControlResume))
}

func TestCoordinator_RelayOfferWithoutDownloadIsIgnored(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	ack := relay.FileTransfer{MessageID: 77}.Marshal()

	h.transport.recvFile(testRelayPeer, testHandle, interfaces.FileKindData, testFileSize, ack)
	flush(t, c)

	assert.Empty(t, h.transport.controlsFor(interfaces.FileControlResume))
	_, ok := h.repo.get(TransferID(firstOfferID))
	assert.False(t, ok, "relay offers never create records")
}

func sendTestFile(t *testing.T, c *Coordinator, h *harness) uint64 {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, testPayload(testFileSize), 0o600))

	messageID, err := c.SendFile(context.Background(), SendRequest{
		Peer:          testPeer,
		ChatID:        testPeerKey,
		PeerPublicKey: testPeerKey,
		Path:          path,
	})
	require.NoError(t, err)
	eventually(t, func() bool {
		op := c.Uploads().FindByHandle(testPeer, testUploadHandle)
		return op != nil && op.IsExecuting()
	}, "upload should be announced")
	return messageID
}

func TestCoordinator_SendFile(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	var progress atomic.Int32
	c.OnUploadProgress(func(uint64, float64) { progress.Add(1) })

	messageID := sendTestFile(t, c, h)
	assert.Equal(t, uint64(firstOfferID), messageID)

	offers := h.transport.sentOffers()
	require.Len(t, offers, 1)
	assert.Equal(t, []byte("notes.txt"), offers[0].metadata)
	assert.Equal(t, uint64(testFileSize), offers[0].size)

	h.clock.advance(time.Second)
	h.transport.requestChunk(testPeer, testUploadHandle, 0, 500)
	h.transport.requestChunk(testPeer, testUploadHandle, 500, 500)
	h.transport.requestChunk(testPeer, testUploadHandle, testFileSize, 0)

	id := TransferID(messageID)
	eventually(t, func() bool { return h.repo.status(id) == interfaces.RecordReady }, "upload should complete")
	assert.Len(t, h.transport.sentChunks(), 2)
	assert.GreaterOrEqual(t, progress.Load(), int32(1))
}

func TestCoordinator_EnqueueUpload(t *testing.T) {
	c, h := newTestCoordinator(t, nil)
	ctx := context.Background()
	h.repo.put(outgoingRecord())
	incoming := incomingRecord(interfaces.RecordReady)
	incoming.MessageID = testMessageID + 1
	h.repo.put(incoming)

	require.NoError(t, c.EnqueueUpload(ctx, testMessageID, testPeer, NewMemorySource(testPayload(testFileSize))))
	eventually(t, func() bool { return len(h.transport.sentOffers()) == 1 }, "upload should be announced")
	eventually(t, func() bool {
		rec, _ := h.repo.get(TransferID(testMessageID))
		return rec.Handle == int64(testUploadHandle)
	}, "record should carry the transport handle")

	err := c.EnqueueUpload(ctx, testMessageID, testPeer, NewMemorySource(nil))
	assert.ErrorIs(t, err, ErrInvalidRequest, "upload is already queued")
	err = c.EnqueueUpload(ctx, testMessageID+1, testPeer, NewMemorySource(nil))
	assert.ErrorIs(t, err, ErrInvalidRequest, "incoming records cannot be uploaded")
	err = c.EnqueueUpload(ctx, 42, testPeer, NewMemorySource(nil))
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
}

func TestCoordinator_SendFileValidation(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	ctx := context.Background()

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	_, err := c.SendFile(ctx, SendRequest{Peer: testPeer, Path: empty})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = c.SendFile(ctx, SendRequest{Peer: testPeer, Path: "../secret"})
	assert.ErrorIs(t, err, ErrDirectoryTraversal)
	_, err = c.SendFile(ctx, SendRequest{Peer: testPeer, Path: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestCoordinator_SendsAvatarWhenFriendComesOnline(t *testing.T) {
	avatar := testPayload(testAvatarBytes)
	avatars := newMemAvatarStore(avatar)
	c, h := newTestCoordinator(t, func(o *Options) { o.Avatars = avatars })

	h.transport.connection(testPeer, interfaces.ConnectionTCP)
	h.transport.connection(testPeer, interfaces.ConnectionUDP)
	flush(t, c)

	offers := h.transport.sentOffers()
	require.Len(t, offers, 1, "a transport change is not a new connection")
	assert.Equal(t, interfaces.FileKindAvatar, offers[0].kind)
	assert.Equal(t, uint64(testAvatarBytes), offers[0].size)
	assert.Equal(t, FileIDFor(avatar), offers[0].fileID)
	assert.Equal(t, 1, c.Avatars().Len())

	h.transport.requestChunk(testPeer, testUploadHandle, 0, testAvatarBytes)
	h.transport.requestChunk(testPeer, testUploadHandle, testAvatarBytes, 0)
	eventually(t, func() bool { return c.Avatars().Len() == 0 }, "avatar upload should finish")

	h.transport.connection(testPeer, interfaces.ConnectionNone)
	h.transport.connection(testPeer, interfaces.ConnectionUDP)
	flush(t, c)
	assert.Len(t, h.transport.sentOffers(), 2)
}

func TestCoordinator_AvatarChanged(t *testing.T) {
	avatars := newMemAvatarStore(nil)
	c, h := newTestCoordinator(t, func(o *Options) { o.Avatars = avatars })
	h.transport.connection(testPeer, interfaces.ConnectionUDP)
	h.transport.connection(testRelayPeer, interfaces.ConnectionUDP)
	flush(t, c)

	offers := h.transport.sentOffers()
	require.Len(t, offers, 2)
	for _, o := range offers {
		assert.Zero(t, o.size, "no avatar is announced as an empty offer")
	}

	require.NoError(t, c.AvatarChanged(context.Background()))
	assert.Len(t, h.transport.sentOffers(), 4)
	assert.Equal(t, 0, c.Avatars().Len())
}

func TestCoordinator_ReceivesAvatar(t *testing.T) {
	avatars := newMemAvatarStore(nil)
	c, h := newTestCoordinator(t, func(o *Options) { o.Avatars = avatars })
	avatar := testPayload(testAvatarBytes)

	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindAvatar, testAvatarBytes, nil)
	flush(t, c)
	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "avatar download should start")

	deliver(h, testPeer, testHandle, avatar)
	eventually(t, func() bool { return len(avatars.friendAvatar(testPeerKey)) == testAvatarBytes }, "avatar should be stored")
	assert.Equal(t, avatar, avatars.friendAvatar(testPeerKey))
	_, ok := h.repo.get(TransferID(firstOfferID))
	assert.False(t, ok, "avatars have no records")
}

func TestCoordinator_RefusesAvatars(t *testing.T) {
	current := testPayload(testAvatarBytes)

	tests := []struct {
		name   string
		size   uint64
		setup  func(h *harness, avatars *memAvatarStore)
		verify func(t *testing.T, avatars *memAvatarStore)
	}{
		{
			name: "zero size clears",
			size: 0,
			setup: func(_ *harness, avatars *memAvatarStore) {
				avatars.SetFriendAvatar(testPeerKey, current)
			},
			verify: func(t *testing.T, avatars *memAvatarStore) {
				assert.Equal(t, []string{testPeerKey}, avatars.clearedKeys())
				assert.Nil(t, avatars.friendAvatar(testPeerKey))
			},
		},
		{
			name: "oversized",
			size: limits.MaxAvatarSize + 1,
		},
		{
			name: "unchanged",
			size: testAvatarBytes,
			setup: func(h *harness, avatars *memAvatarStore) {
				avatars.SetFriendAvatar(testPeerKey, current)
				h.transport.fileIDs[testHandle] = FileIDFor(current)
			},
			verify: func(t *testing.T, avatars *memAvatarStore) {
				assert.Equal(t, current, avatars.friendAvatar(testPeerKey))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avatars := newMemAvatarStore(nil)
			c, h := newTestCoordinator(t, func(o *Options) { o.Avatars = avatars })
			if tt.setup != nil {
				tt.setup(h, avatars)
			}

			h.transport.recvFile(testPeer, testHandle, interfaces.FileKindAvatar, tt.size, nil)
			flush(t, c)

			assert.Equal(t, []controlCall{{testPeer, testHandle, interfaces.FileControlCancel}},
				h.transport.controlsFor(interfaces.FileControlCancel))
			assert.Equal(t, 0, c.Avatars().Len())
			if tt.verify != nil {
				tt.verify(t, avatars)
			}
		})
	}
}

func TestCoordinator_EmptyAvatarOfferClearsStoredAvatar(t *testing.T) {
	ctrl := gomock.NewController(t)
	avatars := mocks.NewMockIAvatarStore(ctrl)
	avatars.EXPECT().ClearFriendAvatar(testPeerKey).Return(nil)
	avatars.EXPECT().SetFriendAvatar(gomock.Any(), gomock.Any()).Times(0)

	c, h := newTestCoordinator(t, func(o *Options) { o.Avatars = avatars })
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindAvatar, 0, nil)
	flush(t, c)

	assert.Len(t, h.transport.controlsFor(interfaces.FileControlCancel), 1)
	assert.Equal(t, 0, c.Avatars().Len())
}

func TestCoordinator_NodesFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	nodes := mocks.NewMockINodesStore(ctrl)
	nodesFile := testPayload(600)
	nodes.EXPECT().LoadNodes().Return(nodesFile, nil).Times(2)
	stored := make(chan []byte, 1)
	nodes.EXPECT().StoreNodes(gomock.Any()).Do(func(data []byte) { stored <- data }).Return(nil)

	c, h := newTestCoordinator(t, func(o *Options) { o.Nodes = nodes })

	require.NoError(t, c.SendNodes(context.Background(), testPeer))
	offers := h.transport.sentOffers()
	require.Len(t, offers, 1)
	assert.Equal(t, interfaces.FileKindNodes, offers[0].kind)

	h.transport.recvFile(testRelayPeer, testHandle, interfaces.FileKindNodes, uint64(len(nodesFile)), nil)
	flush(t, c)
	eventually(t, func() bool {
		return len(h.transport.controlsFor(interfaces.FileControlResume)) == 1
	}, "nodes download should start")
	deliver(h, testRelayPeer, testHandle, nodesFile)

	select {
	case data := <-stored:
		assert.Equal(t, nodesFile, data)
	case <-time.After(testWaitTimeout):
		t.Fatal("nodes file was not stored")
	}
}

func TestCoordinator_RefusesUnchangedNodesFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	nodes := mocks.NewMockINodesStore(ctrl)
	local := testPayload(600)
	nodes.EXPECT().LoadNodes().Return(local, nil)
	nodes.EXPECT().StoreNodes(gomock.Any()).Times(0)

	c, h := newTestCoordinator(t, func(o *Options) { o.Nodes = nodes })
	h.transport.fileIDs[testHandle] = FileIDFor(local)

	h.transport.recvFile(testRelayPeer, testHandle, interfaces.FileKindNodes, uint64(len(local)), nil)
	flush(t, c)

	assert.Equal(t, []controlCall{{testRelayPeer, testHandle, interfaces.FileControlCancel}},
		h.transport.controlsFor(interfaces.FileControlCancel))
	assert.Empty(t, h.transport.controlsFor(interfaces.FileControlResume))
	assert.Equal(t, 0, c.Avatars().Len())
}

func TestCoordinator_PostProcessesMedia(t *testing.T) {
	ctrl := gomock.NewController(t)
	processor := mocks.NewMockIMediaPostProcessor(ctrl)
	processor.EXPECT().
		Process(gomock.Any()).
		DoAndReturn(func(rec *interfaces.TransferRecord) (string, error) {
			assert.Equal(t, "clip.mp4", rec.FileName)
			return "0:42", nil
		})

	c, h := newTestCoordinator(t, func(o *Options) { o.PostProcessor = processor })
	id := TransferID(firstOfferID)
	h.transport.recvFile(testPeer, testHandle, interfaces.FileKindData, testFileSize, []byte("clip.mp4"))
	flush(t, c)
	deliver(h, testPeer, testHandle, testPayload(testFileSize))

	eventually(t, func() bool {
		rec, _ := h.repo.get(id)
		return rec.Status == interfaces.RecordReady && rec.Duration == "0:42"
	}, "post-processed record should carry the duration")
}

func TestCoordinator_StartCancelsPendingRecords(t *testing.T) {
	h := newHarness(t)
	for i, status := range []interfaces.RecordStatus{
		interfaces.RecordWaitingConfirmation,
		interfaces.RecordLoading,
		interfaces.RecordPaused,
		interfaces.RecordReady,
	} {
		rec := incomingRecord(status)
		rec.MessageID = uint64(100 + i)
		h.repo.put(rec)
	}

	c, err := NewCoordinator(h.transport, h.repo, testOptions(h, t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Equal(t, interfaces.RecordCanceled, h.repo.status(TransferID(100)))
	assert.Equal(t, interfaces.RecordCanceled, h.repo.status(TransferID(101)))
	assert.Equal(t, interfaces.RecordCanceled, h.repo.status(TransferID(102)))
	assert.Equal(t, interfaces.RecordReady, h.repo.status(TransferID(103)))
	for _, q := range c.queues() {
		assert.False(t, q.IsSuspended())
	}
}

func TestCoordinator_Lifecycle(t *testing.T) {
	h := newHarness(t)
	c, err := NewCoordinator(h.transport, h.repo, testOptions(h, t.TempDir()))
	require.NoError(t, err)

	assert.ErrorIs(t, c.AcceptFile(context.Background(), 1), ErrNotRunning)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), ErrNotRunning)
	assert.ErrorIs(t, c.CancelFile(context.Background(), 1), ErrNotRunning)

	_, err = NewCoordinator(nil, h.repo, Options{})
	assert.Error(t, err)
}

func TestCoordinator_RequestDroppedByClose(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	started, release := make(chan struct{}), make(chan struct{})
	c.events.post(func() {
		close(started)
		<-release
	})
	<-started

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.do(context.Background(), func() error { return nil })
	}()
	eventually(t, func() bool {
		c.events.mu.Lock()
		defer c.events.mu.Unlock()
		return len(c.events.items) == 1
	}, "request should be queued behind the blocked event")

	c.cancel()
	close(release)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrCoordinatorClosed)
	case <-time.After(testWaitTimeout):
		t.Fatal("request outlived the routing goroutine")
	}
}
