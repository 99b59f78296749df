// Package offsite copies finished archives to remote storage.
//
// S3Uploader puts each archive into an S3 bucket, or an S3-compatible store
// when an endpoint is given, under <prefix>/<archive file name>.
package offsite
