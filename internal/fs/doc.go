// Package fs abstracts file system operations so the spill channel layer
// can be tested against injected IO failures.
//
// LocalFS is the production implementation. FaultyFS wraps any FileSystem
// and fails reads, writes, syncs or removals according to configured rules,
// which lets tests exercise the channel error paths deterministically.
package fs
