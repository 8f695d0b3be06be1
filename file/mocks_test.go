package file

import (
	"errors"
	"sync"
	"time"

	"github.com/opd-ai/toxfer/interfaces"
)

// mockTimeProvider provides deterministic time for testing.
type mockTimeProvider struct {
	mu          sync.Mutex
	currentTime time.Time
}

func (m *mockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *mockTimeProvider) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

func (m *mockTimeProvider) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

func newMockTimeProvider() *mockTimeProvider {
	return &mockTimeProvider{
		currentTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// memRepository is an in-memory IRecordRepository.
type memRepository struct {
	mu      sync.Mutex
	records map[string]interfaces.TransferRecord
	updates int
}

func newMemRepository() *memRepository {
	return &memRepository{records: make(map[string]interfaces.TransferRecord)}
}

func (r *memRepository) ReadTransferRecord(transferID string) (*interfaces.TransferRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[transferID]
	if !ok {
		return nil, interfaces.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *memRepository) UpdateTransferRecord(transferID string, mutate func(*interfaces.TransferRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[transferID]
	if !ok {
		return interfaces.ErrRecordNotFound
	}
	if err := mutate(&rec); err != nil {
		return err
	}
	r.records[transferID] = rec
	r.updates++
	return nil
}

func (r *memRepository) CreateTransferRecord(record *interfaces.TransferRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.TransferID]; ok {
		return errors.New("duplicate record")
	}
	r.records[record.TransferID] = *record
	return nil
}

func (r *memRepository) DeleteTransferRecord(transferID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[transferID]; !ok {
		return interfaces.ErrRecordNotFound
	}
	delete(r.records, transferID)
	return nil
}

func (r *memRepository) CancelPendingRecords() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, rec := range r.records {
		if rec.Status.Pending() {
			rec.Status = interfaces.RecordCanceled
			r.records[id] = rec
			n++
		}
	}
	return n, nil
}

func (r *memRepository) ListTransferRecords(filter interfaces.RecordFilter) ([]*interfaces.TransferRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*interfaces.TransferRecord
	for _, rec := range r.records {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		rec := rec
		out = append(out, &rec)
	}
	return out, nil
}

func (r *memRepository) put(rec interfaces.TransferRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.TransferID == "" {
		rec.TransferID = TransferID(rec.MessageID)
	}
	r.records[rec.TransferID] = rec
}

func (r *memRepository) get(transferID string) (interfaces.TransferRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[transferID]
	return rec, ok
}

func (r *memRepository) status(transferID string) interfaces.RecordStatus {
	rec, _ := r.get(transferID)
	return rec.Status
}

// contextRepository counts calls routed through its execution context.
type contextRepository struct {
	*memRepository
	mu   sync.Mutex
	runs int
}

func (r *contextRepository) Run(fn func() error) error {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	return fn()
}

type controlCall struct {
	peer    uint32
	handle  uint32
	control interfaces.FileControl
}

type chunkCall struct {
	peer     uint32
	handle   uint32
	position uint64
	data     []byte
}

type offerCall struct {
	peer     uint32
	kind     interfaces.FileKind
	size     uint64
	fileID   []byte
	metadata []byte
}

type relayCall struct {
	peer      uint32
	command   interfaces.RelayCommand
	messageID uint64
	payload   []byte
}

// fakeTransport records every call and lets tests fire transport events.
type fakeTransport struct {
	mu sync.Mutex

	nextHandle uint32
	sendErr    error
	controlErr error
	chunkErrs  []error
	relayErr   error

	friends map[string]uint32
	keys    map[uint32]string
	fileIDs map[uint32][]byte

	controls []controlCall
	chunks   []chunkCall
	attempts int
	offers   []offerCall
	relays   []relayCall

	onFileRecv   interfaces.FileRecvCallback
	onControl    interfaces.FileRecvControlCallback
	onChunk      interfaces.FileRecvChunkCallback
	onRequest    interfaces.FileChunkRequestCallback
	onConnection interfaces.FriendConnectionStatusCallback
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		nextHandle: testUploadHandle,
		friends:    make(map[string]uint32),
		keys:       make(map[uint32]string),
		fileIDs:    make(map[uint32][]byte),
	}
}

func (f *fakeTransport) addFriend(peer uint32, publicKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.friends[publicKey] = peer
	f.keys[peer] = publicKey
}

func (f *fakeTransport) FileSend(peer uint32, kind interfaces.FileKind, size uint64, fileID, metadata []byte) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.offers = append(f.offers, offerCall{peer, kind, size, fileID, metadata})
	handle := f.nextHandle
	f.nextHandle++
	return handle, nil
}

func (f *fakeTransport) FileControl(peer, handle uint32, control interfaces.FileControl) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, controlCall{peer, handle, control})
	return f.controlErr
}

func (f *fakeTransport) FileSendChunk(peer, handle uint32, position uint64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if len(f.chunkErrs) > 0 {
		err := f.chunkErrs[0]
		f.chunkErrs = f.chunkErrs[1:]
		if err != nil {
			return err
		}
	}
	f.chunks = append(f.chunks, chunkCall{peer, handle, position, data})
	return nil
}

func (f *fakeTransport) FileID(peer, handle uint32) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.fileIDs[handle]
	if !ok {
		return nil, errors.New("no file id")
	}
	return id, nil
}

func (f *fakeTransport) SendRelayMessage(peer uint32, command interfaces.RelayCommand, messageID uint64, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.relayErr != nil {
		return f.relayErr
	}
	f.relays = append(f.relays, relayCall{peer, command, messageID, payload})
	return nil
}

func (f *fakeTransport) FriendByPublicKey(publicKey string) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	peer, ok := f.friends[publicKey]
	if !ok {
		return 0, errors.New("unknown friend")
	}
	return peer, nil
}

func (f *fakeTransport) PublicKey(peer uint32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk, ok := f.keys[peer]
	if !ok {
		return "", errors.New("unknown friend")
	}
	return pk, nil
}

func (f *fakeTransport) OnFileRecv(cb interfaces.FileRecvCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFileRecv = cb
}

func (f *fakeTransport) OnFileRecvControl(cb interfaces.FileRecvControlCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onControl = cb
}

func (f *fakeTransport) OnFileRecvChunk(cb interfaces.FileRecvChunkCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChunk = cb
}

func (f *fakeTransport) OnFileChunkRequest(cb interfaces.FileChunkRequestCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRequest = cb
}

func (f *fakeTransport) OnFriendConnectionStatus(cb interfaces.FriendConnectionStatusCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onConnection = cb
}

func (f *fakeTransport) controlsFor(control interfaces.FileControl) []controlCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []controlCall
	for _, c := range f.controls {
		if c.control == control {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTransport) sentChunks() []chunkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chunkCall(nil), f.chunks...)
}

func (f *fakeTransport) chunkAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeTransport) sentOffers() []offerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]offerCall(nil), f.offers...)
}

func (f *fakeTransport) sentRelays() []relayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]relayCall(nil), f.relays...)
}

func (f *fakeTransport) recvFile(peer, handle uint32, kind interfaces.FileKind, size uint64, metadata []byte) {
	f.mu.Lock()
	cb := f.onFileRecv
	f.mu.Unlock()
	cb(peer, handle, kind, size, metadata)
}

func (f *fakeTransport) recvControl(peer, handle uint32, control interfaces.FileControl) {
	f.mu.Lock()
	cb := f.onControl
	f.mu.Unlock()
	cb(peer, handle, control)
}

func (f *fakeTransport) recvChunk(peer, handle uint32, position uint64, data []byte) {
	f.mu.Lock()
	cb := f.onChunk
	f.mu.Unlock()
	cb(peer, handle, position, data)
}

func (f *fakeTransport) requestChunk(peer, handle uint32, position uint64, length int) {
	f.mu.Lock()
	cb := f.onRequest
	f.mu.Unlock()
	cb(peer, handle, position, length)
}

func (f *fakeTransport) connection(peer uint32, status interfaces.ConnectionStatus) {
	f.mu.Lock()
	cb := f.onConnection
	f.mu.Unlock()
	cb(peer, status)
}

// failingSink refuses to prepare.
type failingSink struct{ MemorySink }

func (s *failingSink) Prepare() error { return errors.New("disk full") }

// countingSource counts Prepare calls.
type countingSource struct {
	MemorySource
	mu       sync.Mutex
	prepared int
}

func (s *countingSource) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepared++
	return nil
}

func (s *countingSource) prepareCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepared
}

// memAvatarStore is an in-memory IAvatarStore.
type memAvatarStore struct {
	mu      sync.Mutex
	self    []byte
	friends map[string][]byte
	cleared []string
}

func newMemAvatarStore(self []byte) *memAvatarStore {
	return &memAvatarStore{self: self, friends: make(map[string][]byte)}
}

func (s *memAvatarStore) SelfAvatar() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.self, nil
}

func (s *memAvatarStore) FriendAvatar(publicKey string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends[publicKey], nil
}

func (s *memAvatarStore) SetFriendAvatar(publicKey string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[publicKey] = data
	return nil
}

func (s *memAvatarStore) ClearFriendAvatar(publicKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friends, publicKey)
	s.cleared = append(s.cleared, publicKey)
	return nil
}

func (s *memAvatarStore) friendAvatar(publicKey string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends[publicKey]
}

func (s *memAvatarStore) clearedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cleared...)
}
