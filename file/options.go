package file

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/opd-ai/toxfer/interfaces"
)

// Default timing values.
const (
	// DefaultStallTimeout is how long an operation may go without a progress
	// notification before the watchdog fails it.
	DefaultStallTimeout = 20 * time.Second
	// DefaultWatchdogInterval is the watchdog polling period.
	DefaultWatchdogInterval = 2 * time.Second
	// DefaultProgressInterval throttles progress notifications.
	DefaultProgressInterval = 100 * time.Millisecond
	// DefaultEtaInterval throttles throughput samples for the ETA estimate.
	DefaultEtaInterval = time.Second
	// DefaultBusyRetryInterval is the pause between chunk sends while the
	// transport send queue is full.
	DefaultBusyRetryInterval = 10 * time.Millisecond
	// DefaultAvatarConcurrency bounds parallel avatar and nodes transfers.
	DefaultAvatarConcurrency = 4
)

// etaWindow is the number of throughput samples kept for the ETA estimate.
const etaWindow = 10

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the duration since t.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }

// Timings groups the tunable intervals of an operation.
type Timings struct {
	StallTimeout      time.Duration
	WatchdogInterval  time.Duration
	ProgressInterval  time.Duration
	EtaInterval       time.Duration
	BusyRetryInterval time.Duration
}

// DefaultTimings returns the production intervals.
func DefaultTimings() Timings {
	return Timings{
		StallTimeout:      DefaultStallTimeout,
		WatchdogInterval:  DefaultWatchdogInterval,
		ProgressInterval:  DefaultProgressInterval,
		EtaInterval:       DefaultEtaInterval,
		BusyRetryInterval: DefaultBusyRetryInterval,
	}
}

// withDefaults fills zero fields from DefaultTimings.
func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.StallTimeout <= 0 {
		t.StallTimeout = d.StallTimeout
	}
	if t.WatchdogInterval <= 0 {
		t.WatchdogInterval = d.WatchdogInterval
	}
	if t.ProgressInterval <= 0 {
		t.ProgressInterval = d.ProgressInterval
	}
	if t.EtaInterval <= 0 {
		t.EtaInterval = d.EtaInterval
	}
	if t.BusyRetryInterval <= 0 {
		t.BusyRetryInterval = d.BusyRetryInterval
	}
	return t
}

// RelayAccounts holds the public keys of the relay accounts. GroupBot
// serves group chats, FileBot stores group files and OfflineBot stores
// files for peers that are offline.
type RelayAccounts struct {
	GroupBot   string
	FileBot    string
	OfflineBot string
}

// Contains reports whether publicKey belongs to one of the relay accounts.
func (r RelayAccounts) Contains(publicKey string) bool {
	if publicKey == "" {
		return false
	}
	return publicKey == r.GroupBot || publicKey == r.FileBot || publicKey == r.OfflineBot
}

// Env carries the collaborators every operation needs.
type Env struct {
	Transport interfaces.ITransferTransport
	Records   interfaces.IRecordRepository
	Timings   Timings
	Clock     TimeProvider
	Relays    RelayAccounts
}

// Descriptor identifies the transfer an operation drives.
type Descriptor struct {
	MessageID uint64
	Kind      interfaces.FileKind
	Peer      uint32
	Handle    uint32
	Size      uint64
}

// TransferID derives the record key of a message.
func TransferID(messageID uint64) string {
	return strconv.FormatUint(messageID, 10)
}

// newMessageIDGenerator returns a generator of process-unique message ids
// seeded from the wall clock.
func newMessageIDGenerator() func() uint64 {
	var counter atomic.Uint64
	counter.Store(uint64(time.Now().UnixNano()))
	return func() uint64 {
		return counter.Add(1)
	}
}
