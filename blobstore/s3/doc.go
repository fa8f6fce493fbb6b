// Package s3 provides a blobstore.Store implementation backed by Amazon S3.
//
// # Basic Usage
//
//	store, err := s3.New(ctx, "my-bucket", "deduped/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sink := stream.NewBlobSink(store, "run-1/")
//
// Credentials and region resolve through the default AWS config chain
// (environment, shared config, instance metadata). For a pre-configured
// client use NewStore.
package s3
