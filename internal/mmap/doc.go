// Package mmap provides memory mappings for off-heap allocation and
// zero-copy file access.
//
// # Anonymous Mappings
//
// MapAnon creates read-write anonymous mappings. These back off-heap memory
// segments: the memory lives outside the Go garbage collector's control and
// must be released explicitly via Close.
//
// # File Mappings
//
// Open maps a file read-only, giving zero-copy access to spill and blob
// contents.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (madvise is
//     a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent and
// protected by atomic operations, but callers must ensure no goroutines
// access Bytes after Close returns.
package mmap
