// Package s3 provides an Amazon S3 implementation of blobstore.Store for
// offloading sealed spill files.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("spills/"))
//
// or with an existing client:
//
//	store := s3.NewStore(client, "my-bucket", "spills/")
//
// # Features
//
//   - Range reads for partial fetches
//   - Streaming multipart uploads through an io.Pipe
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
