// Package disk implements the spill channel layer: file-backed sequential
// channels that move blocks of memory segments to and from disk when a
// working set exceeds memory.
//
// A Manager enumerates channel IDs round-robin across its temp directories.
// Each channel is one spill file: a small magic+version header followed by
// length-prefixed, optionally compressed blocks. Blocks written to one
// channel are read back in exactly the order they were written; reading
// past the last block yields io.EOF, which is end-of-stream, not a failure.
//
// Writers come in two flavors. Writer blocks the caller until the bytes
// reach the file. AsyncWriter queues blocks to a single background
// goroutine and delivers completion callbacks in submission order; Close
// drains in-flight writes before returning. Either way, an IO error is
// fatal to the channel and every error is wrapped in a ChannelError naming
// the channel and operation.
//
// Spill files are process-local: the on-disk format carries no
// cross-process guarantee beyond one run of the system reading back its
// own files.
package disk
