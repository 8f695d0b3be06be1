// Package interfaces defines the capabilities the file transfer engine
// consumes but does not implement.
//
// The engine is deliberately blind to how bytes cross the network, how
// records are stored and how avatars are rendered. Each of those concerns is
// reached through one of the interfaces below so that production code and
// tests can plug in different implementations.
//
// # Transport
//
// [ITransferTransport] is a Tox-style chunk transport: a transfer is
// announced with FileSend, steered with FileControl and fed with
// FileSendChunk. Incoming events are delivered through the On* callback
// registrations:
//
//	transport.OnFileRecvChunk(func(peer, handle uint32, position uint64, data []byte) {
//	    // data == nil marks the end of the stream
//	})
//
// A congested send path is reported as [ErrSendQueueFull]; every other
// FileSendChunk error is terminal for the transfer.
//
// # Records
//
// [IRecordRepository] stores [TransferRecord] values. All engine writes go
// through UpdateTransferRecord, which must perform the read-modify-write as
// one atomic step:
//
//	err := repo.UpdateTransferRecord(id, func(r *interfaces.TransferRecord) error {
//	    r.Status = interfaces.RecordReady
//	    return nil
//	})
//
// Repositories that must only be touched from one execution context also
// implement [IRepositoryContext]; the engine then funnels every call through
// Run.
//
// # Stores
//
// [IPeerDirectory], [IAvatarStore], [INodesStore] and [IMediaPostProcessor]
// are optional collaborators used by the coordinator for offer filtering,
// avatar exchange, nodes file refresh and post-download media processing.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. The engine calls them
// from its routing goroutine, from operation worker goroutines and from
// watchdog goroutines.
package interfaces
