// Package limits provides centralized size limits for file transfers.
// This ensures consistent validation across the engine, the relay codec and
// the coordinator.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxAvatarSize is the largest avatar accepted from a peer (640 KiB).
	MaxAvatarSize = 655360

	// MaxNodesFileSize is the largest bootstrap nodes file accepted (1 MiB).
	MaxNodesFileSize = 1024 * 1024

	// MaxChunkSize is the largest single chunk the engine reads or accepts.
	// Tox chunks are 1371 bytes; anything above this bound is treated as a
	// protocol violation.
	MaxChunkSize = 65536

	// MaxFileNameLength matches typical filesystem limits and fits in a uint16.
	MaxFileNameLength = 255

	// MaxRelayPayload is the Tox plaintext message limit. Relay payloads
	// travel over the ordinary message channel and must fit in one message.
	MaxRelayPayload = 1372
)

var (
	// ErrEmpty indicates an empty buffer was provided.
	ErrEmpty = errors.New("empty buffer")

	// ErrTooLarge indicates a buffer exceeds its maximum size.
	ErrTooLarge = errors.New("size exceeds limit")
)

// ValidateSize validates size against maxSize. A zero size is allowed; the
// caller decides what an empty transfer means.
func ValidateSize(size uint64, maxSize uint64) error {
	if size > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrTooLarge, size, maxSize)
	}
	return nil
}

// ValidateAvatarSize validates an incoming avatar size against MaxAvatarSize.
func ValidateAvatarSize(size uint64) error {
	if size > MaxAvatarSize {
		return fmt.Errorf("%w: avatar size %d exceeds limit %d", ErrTooLarge, size, MaxAvatarSize)
	}
	return nil
}

// ValidateNodesFileSize validates an incoming nodes file size against MaxNodesFileSize.
func ValidateNodesFileSize(size uint64) error {
	if size > MaxNodesFileSize {
		return fmt.Errorf("%w: nodes file size %d exceeds limit %d", ErrTooLarge, size, MaxNodesFileSize)
	}
	return nil
}

// ValidateChunk validates a chunk length against MaxChunkSize.
func ValidateChunk(length int) error {
	if length > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d exceeds limit %d", ErrTooLarge, length, MaxChunkSize)
	}
	return nil
}

// ValidateFileName validates a display file name. Returns an error with
// context if the name is empty or exceeds MaxFileNameLength bytes.
func ValidateFileName(name string) error {
	if len(name) == 0 {
		return ErrEmpty
	}
	if len(name) > MaxFileNameLength {
		return fmt.Errorf("%w: file name length %d exceeds limit %d", ErrTooLarge, len(name), MaxFileNameLength)
	}
	return nil
}

// ValidateRelayPayload validates an encoded relay payload against MaxRelayPayload.
func ValidateRelayPayload(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmpty
	}
	if len(payload) > MaxRelayPayload {
		return fmt.Errorf("%w: relay payload size %d exceeds limit %d", ErrTooLarge, len(payload), MaxRelayPayload)
	}
	return nil
}
