// Package blobstore abstracts the object storage a runtime offloads sealed
// spill files to when local disk is scarce or a spill must outlive the
// process.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem archive with mmap reads
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3 with range reads and streaming uploads
//   - minio.Store: MinIO and other S3-compatible systems
//
// Implement the Store interface to support custom backends.
package blobstore
