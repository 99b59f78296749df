package offsite

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// archiveContentType is sent with every uploaded archive.
const archiveContentType = "application/zip"

// objectPutter is the part of the S3 client used by the uploader.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 uploader.
type S3Options struct {
	Bucket   string
	Prefix   string // Key prefix, joined with the archive file name.
	Region   string // Overrides the region from the AWS configuration.
	Endpoint string // Custom endpoint for S3-compatible stores, addressed path-style.
}

// S3Uploader copies archives to an S3 bucket.
type S3Uploader struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Uploader creates an uploader using the default AWS configuration chain.
//
// Parameters:
//   - ctx: Context for loading the configuration.
//   - opts: Bucket, prefix and endpoint overrides.
//
// Returns:
//   - *S3Uploader: Configured uploader.
//   - error: Non-nil if the bucket is missing or the configuration cannot be loaded.
func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	if opts.Bucket == "" {
		return nil, errMissingBucket
	}

	var loadOpts []func(*awsConfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsConfig.WithRegion(opts.Region))
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errLoadConfigFailed, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	logrus.WithFields(logrus.Fields{
		"bucket":   opts.Bucket,
		"prefix":   opts.Prefix,
		"region":   cfg.Region,
		"endpoint": opts.Endpoint,
	}).Debug("Created S3 uploader")

	return newS3Uploader(client, opts.Bucket, opts.Prefix), nil
}

func newS3Uploader(client objectPutter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key an archive is stored under.
func (u *S3Uploader) Key(archivePath string) string {
	return path.Join(u.prefix, filepath.Base(archivePath))
}

// Upload puts the archive at archivePath into the bucket.
func (u *S3Uploader) Upload(ctx context.Context, archivePath string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %w", errOpenArchiveFailed, err)
	}
	defer file.Close()

	key := u.Key(archivePath)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(archiveContentType),
	})
	if err != nil {
		return fmt.Errorf("%w: s3://%s/%s: %w", errPutObjectFailed, u.bucket, key, err)
	}

	logrus.WithFields(logrus.Fields{
		"bucket": u.bucket,
		"key":    key,
	}).Info("Uploaded archive")

	return nil
}
