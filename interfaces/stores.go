//go:generate go run go.uber.org/mock/mockgen -source=stores.go -destination=../mocks/mock_stores.go -package=mocks

package interfaces

// PeerInfo is what the engine needs to know about a friend before it
// accepts a file offer from them.
type PeerInfo struct {
	PublicKey string
	ChatID    string
	Blocked   bool
}

// IPeerDirectory resolves friends by public key.
type IPeerDirectory interface {
	// PeerInfo returns the friend entry and false when the key is unknown.
	PeerInfo(publicKey string) (PeerInfo, bool)
}

// IAvatarStore keeps our own avatar and the avatars received from friends.
type IAvatarStore interface {
	SelfAvatar() ([]byte, error)
	FriendAvatar(publicKey string) ([]byte, error)
	SetFriendAvatar(publicKey string, data []byte) error
	ClearFriendAvatar(publicKey string) error
}

// INodesStore keeps the locally cached bootstrap nodes file.
type INodesStore interface {
	LoadNodes() ([]byte, error)
	StoreNodes(data []byte) error
}

// IMediaPostProcessor runs after a data download completes, e.g. to extract
// a video thumbnail. The returned duration is stored on the record when
// non-empty.
type IMediaPostProcessor interface {
	Process(record *TransferRecord) (duration string, err error)
}
