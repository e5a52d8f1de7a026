// Package minio provides a blobstore.Store implementation using the MinIO
// client, for offloading spill files to MinIO and other S3-compatible
// systems (Ceph, Garage, SeaweedFS).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	store := minioblob.NewStore(client, "my-bucket", "spills/")
package minio
