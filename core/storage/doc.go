// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the small interface the run report archive uses:
// bucket bootstrap, uploads, downloads, listing and deletion. It works with AWS S3 and
// self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - MakeBucket: Creates a new bucket if needed.
//   - PutObject: Uploads content (with size and options).
//   - GetObject: Retrieves content as a stream.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive).
//   - RemoveObject: Deletes an object (archive retention).
//
// EnsureBucket and ObjectKey are small helpers shared by the callers.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region)
package storage
