package offsite

import "errors"

var (
	// errMissingBucket indicates an uploader was requested without a bucket.
	errMissingBucket = errors.New("S3 bucket is required")
	// errLoadConfigFailed indicates the AWS configuration could not be loaded.
	errLoadConfigFailed = errors.New("failed to load AWS configuration")
	// errOpenArchiveFailed indicates the archive could not be opened for upload.
	errOpenArchiveFailed = errors.New("failed to open archive")
	// errPutObjectFailed indicates S3 rejected the upload.
	errPutObjectFailed = errors.New("failed to upload archive")
)
