// Package storage provides object storage abstractions with pluggable
// backends.
//
// Backends register a factory in init; import the ones you need for their
// side effect and build a Storage with New.
//
// # Backends
//
//   - storage/local: local filesystem
//   - storage/s3: Amazon S3 and S3-compatible storage
//
// # Configuration
//
//	recovery:
//	  provider: "s3"
//	  bucket: "voice-notes"
//	  region: "eu-central-1"
//
// Create is the only write that refuses to replace an existing object; it
// is what lets several writers pick unique names without a lock.
package storage
