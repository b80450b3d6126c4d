// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("scenes/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	mgr := snapshot.NewManager(store)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads with CRC32C validation for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// For workloads needing atomic CURRENT commits across concurrent writers, see
// DDBCommitStore; for single-digit-millisecond access, see ExpressStore.
package s3
