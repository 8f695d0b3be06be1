//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

package interfaces

import (
	"errors"
	"time"
)

// ErrRecordNotFound is returned when no transfer record exists for an id.
var ErrRecordNotFound = errors.New("transfer record not found")

// RecordStatus is the persisted lifecycle tag of a transfer.
type RecordStatus string

const (
	RecordWaitingConfirmation RecordStatus = "waiting_confirmation"
	RecordLoading             RecordStatus = "loading"
	RecordPaused              RecordStatus = "paused"
	RecordCanceled            RecordStatus = "canceled"
	RecordReady               RecordStatus = "ready"
	RecordExpired             RecordStatus = "expired"
)

// Valid reports whether s is a known status.
func (s RecordStatus) Valid() bool {
	switch s {
	case RecordWaitingConfirmation, RecordLoading, RecordPaused,
		RecordCanceled, RecordReady, RecordExpired:
		return true
	}
	return false
}

// Pending reports whether a transfer in this status is still in flight.
// Pending records left over from a previous run are canceled at startup.
func (s RecordStatus) Pending() bool {
	return s == RecordWaitingConfirmation || s == RecordLoading || s == RecordPaused
}

// PausedBy records which side paused a transfer.
type PausedBy string

const (
	PausedByNone PausedBy = "none"
	PausedBySelf PausedBy = "self"
	PausedByPeer PausedBy = "peer"
)

// TransferRecord is the persisted projection of one file transfer. The engine
// reads it for a single decision and never keeps it across calls.
type TransferRecord struct {
	TransferID    string
	MessageID     uint64
	ChatID        string
	PeerPublicKey string
	GroupID       uint64
	IsGroup       bool
	Handle        int64
	Kind          FileKind
	Outgoing      bool
	Status        RecordStatus
	Size          uint64
	FileName      string
	FilePath      string
	PausedBy      PausedBy
	Opened        bool
	Offline       bool
	Expired       bool
	Duration      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecordFilter narrows ListTransferRecords. Zero values match everything.
type RecordFilter struct {
	Status RecordStatus
	ChatID string
	Limit  int
}

// IRecordRepository persists transfer records. UpdateTransferRecord must run
// the read-modify-write atomically.
type IRecordRepository interface {
	ReadTransferRecord(transferID string) (*TransferRecord, error)
	UpdateTransferRecord(transferID string, mutate func(*TransferRecord) error) error
	CreateTransferRecord(record *TransferRecord) error
	DeleteTransferRecord(transferID string) error
	// CancelPendingRecords marks every pending record canceled and returns
	// how many were changed.
	CancelPendingRecords() (int, error)
	ListTransferRecords(filter RecordFilter) ([]*TransferRecord, error)
}

// IRepositoryContext confines repository access to a specific execution
// context. Run blocks until fn has executed there and returns its error.
type IRepositoryContext interface {
	Run(fn func() error) error
}
