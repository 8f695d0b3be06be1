// Package limits provides centralized size constants and validation functions
// for the file transfer engine.
//
// # Limits
//
//   - MaxAvatarSize (640 KiB): avatars above this size are refused with a
//     cancel control before any byte is transferred.
//
//   - MaxNodesFileSize (1 MiB): bound for the out-of-band bootstrap nodes file.
//
//   - MaxChunkSize (64 KiB): the largest chunk accepted from or handed to the
//     transport. Larger chunks are protocol violations.
//
//   - MaxFileNameLength (255 bytes): display names of offered files.
//
//   - MaxRelayPayload (1372 bytes): relay payloads travel as one plaintext
//     Tox message, so they share its limit.
//
// # Validation Functions
//
// Each validation function returns an error wrapping ErrTooLarge (or ErrEmpty
// where an empty value is meaningless):
//
//	if err := limits.ValidateAvatarSize(size); err != nil {
//	    // refuse the offer
//	}
//
//	if errors.Is(err, limits.ErrTooLarge) {
//	    // handle oversized input
//	}
package limits
