package file

import "time"

// Peers and handles used across tests.
const (
	testPeer         uint32 = 3
	testRelayPeer    uint32 = 7
	testHandle       uint32 = 12
	testUploadHandle uint32 = 40

	testPeerKey    = "F404ABAA1C99A9D37D61AB54898F56793E1DEF8BD46B1038B9D822E8460FAB67"
	testOfflineBot = "B0B0000000000000000000000000000000000000000000000000000000000001"
	testFileBot    = "B0B0000000000000000000000000000000000000000000000000000000000002"
	testGroupBot   = "B0B0000000000000000000000000000000000000000000000000000000000003"
)

// Common test file size constants.
const (
	testFileSize    = 1000
	testChunkSize   = 250
	testMessageID   = 1001
	testAvatarBytes = 2048
)

// Timing used by operation tests: fast watchdog polling, production
// thresholds measured on the mock clock.
const (
	testWatchdogInterval = 5 * time.Millisecond
	testWaitTimeout      = 2 * time.Second
	testPollInterval     = 5 * time.Millisecond
)

func testRelays() RelayAccounts {
	return RelayAccounts{
		GroupBot:   testGroupBot,
		FileBot:    testFileBot,
		OfflineBot: testOfflineBot,
	}
}
