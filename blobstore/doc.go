// Package blobstore provides storage backends for record streams: a local
// filesystem store, an in-memory store for testing, and cloud stores for
// S3 (subpackage s3) and MinIO or other S3-compatible systems (subpackage
// minio).
//
// The stream package layers JSONL encoding and compression on top of these
// stores; blobstore itself only moves opaque bytes.
package blobstore
