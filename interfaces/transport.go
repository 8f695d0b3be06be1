//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks

package interfaces

import "errors"

// ErrSendQueueFull is returned by FileSendChunk when the transport cannot
// accept another outbound chunk right now. Callers retry the same chunk.
var ErrSendQueueFull = errors.New("transport send queue full")

// NoHandle is the placeholder transfer handle of a relayed download that has
// not been assigned a real handle yet.
const NoHandle uint32 = ^uint32(0)

// FileKind identifies what a transfer carries.
type FileKind uint8

const (
	// FileKindData is an ordinary file (photo, audio, document).
	FileKindData FileKind = iota
	// FileKindAvatar is a peer avatar image.
	FileKindAvatar
	// FileKindNodes is the small out-of-band bootstrap nodes file.
	FileKindNodes
)

// String returns the lowercase kind name.
func (k FileKind) String() string {
	switch k {
	case FileKindData:
		return "data"
	case FileKindAvatar:
		return "avatar"
	case FileKindNodes:
		return "nodes"
	default:
		return "unknown"
	}
}

// FileControl represents a file transfer control action.
type FileControl uint8

const (
	FileControlResume FileControl = iota
	FileControlPause
	FileControlCancel
)

// String returns the lowercase control name.
func (c FileControl) String() string {
	switch c {
	case FileControlResume:
		return "resume"
	case FileControlPause:
		return "pause"
	case FileControlCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// RelayCommand selects how a relay account interprets a message sent over
// the ordinary message channel.
type RelayCommand uint8

const (
	// RelayCommandGroupFilePull asks the group file relay to push a stored file.
	RelayCommandGroupFilePull RelayCommand = iota + 1
	// RelayCommandOfflineFilePull asks the offline relay to push a stored file.
	RelayCommandOfflineFilePull
)

// ConnectionStatus mirrors the Tox friend connection states.
type ConnectionStatus uint8

const (
	ConnectionNone ConnectionStatus = iota
	ConnectionTCP
	ConnectionUDP
)

// FileRecvCallback is invoked when a peer offers a file.
type FileRecvCallback func(peer, handle uint32, kind FileKind, size uint64, metadata []byte)

// FileRecvControlCallback is invoked when a peer sends a control signal.
type FileRecvControlCallback func(peer, handle uint32, control FileControl)

// FileRecvChunkCallback is invoked for every received chunk. A nil data slice
// marks the end of the stream.
type FileRecvChunkCallback func(peer, handle uint32, position uint64, data []byte)

// FileChunkRequestCallback is invoked when a peer asks for the next chunk of
// an outgoing transfer. A zero length acknowledges the end of the stream.
type FileChunkRequestCallback func(peer, handle uint32, position uint64, length int)

// FriendConnectionStatusCallback is invoked when a peer's connectivity changes.
type FriendConnectionStatusCallback func(peer uint32, status ConnectionStatus)

// ITransferTransport is the chunk-based transport the transfer engine drives.
// Implementations must be safe for concurrent use.
type ITransferTransport interface {
	// FileSend announces a new outgoing transfer and returns its handle.
	FileSend(peer uint32, kind FileKind, size uint64, fileID, metadata []byte) (uint32, error)

	// FileControl sends a resume, pause or cancel signal for a transfer.
	FileControl(peer, handle uint32, control FileControl) error

	// FileSendChunk sends one chunk. It returns ErrSendQueueFull (possibly
	// wrapped) when the send queue is congested.
	FileSendChunk(peer, handle uint32, position uint64, data []byte) error

	// FileID returns the file id the peer attached to an incoming transfer.
	FileID(peer, handle uint32) ([]byte, error)

	// SendRelayMessage sends an opaque payload to a relay account over the
	// ordinary message channel.
	SendRelayMessage(peer uint32, command RelayCommand, messageID uint64, payload []byte) error

	// FriendByPublicKey resolves a public key to a friend number.
	FriendByPublicKey(publicKey string) (uint32, error)

	// PublicKey resolves a friend number to its public key.
	PublicKey(peer uint32) (string, error)

	OnFileRecv(callback FileRecvCallback)
	OnFileRecvControl(callback FileRecvControlCallback)
	OnFileRecvChunk(callback FileRecvChunkCallback)
	OnFileChunkRequest(callback FileChunkRequestCallback)
	OnFriendConnectionStatus(callback FriendConnectionStatusCallback)
}
