// Package file implements the file transfer engine of the chat client:
// chat file messages, avatars and the bootstrap nodes file, sent and
// received over a Tox-style transport.
//
// # Overview
//
// The package is built from three layers:
//
//   - Task: a cancellable unit of work with an atomic ready → executing →
//     finished lifecycle whose transitions can be observed
//   - Operation: one transfer with one peer, specialized as
//     DownloadOperation and UploadOperation, with throttled progress, an
//     ETA estimate, a stall watchdog and idempotent completion
//   - Queue and Coordinator: bounded FIFO execution with de-duplication,
//     and the router that turns transport events and local requests into
//     operations and persisted record updates
//
// # Threading
//
// The Coordinator handles transport events and local requests one at a
// time on its routing goroutine. Each operation processes its chunk events
// on its own worker goroutine, so the per-transfer state is never touched
// concurrently. The watchdog polls from a separate goroutine and can only
// force a failed completion, which takes effect at most once.
//
// # Sending a File
//
//	coord, err := file.NewCoordinator(transport, store, file.Options{
//	    FilesDir: filesDir,
//	    Relays:   relays,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := coord.Start(ctx); err != nil {
//	    return err
//	}
//	defer coord.Close()
//
//	coord.OnUploadProgress(func(messageID uint64, fraction float64) {
//	    fmt.Printf("%d: %.0f%%\n", messageID, fraction*100)
//	})
//	messageID, err := coord.SendFile(ctx, file.SendRequest{
//	    Peer: friend,
//	    Path: "/home/user/photo.jpg",
//	})
//
// # Relayed Files
//
// Files for offline peers and groups are stored by relay accounts. A
// download of such a file first sends a pull request to the relay and
// resumes only when the relay pushes the file back with an
// acknowledgment. An acknowledgment reporting expiry cancels the download
// and marks the record expired.
//
// # Records
//
// Every chat file message has a TransferRecord in the repository. Records
// are created when a file is offered or sent and reconciled on completion:
// success marks them ready, failure marks them canceled unless they are
// already ready or expired.
package file
