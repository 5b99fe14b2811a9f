package results

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// S3Config configures the S3 results store.
//
// Authentication uses the AWS SDK v2 default credential chain unless
// explicit credentials are provided. For S3-compatible endpoints (MinIO,
// moto) set Endpoint and typically ForcePathStyle.
type S3Config struct {
	// Bucket is the results bucket name (required).
	Bucket string

	// Region is the AWS region. Defaults to us-east-1 when neither config
	// nor environment resolves one and no custom endpoint is set.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible stores.
	Endpoint string

	// Profile is the AWS profile name from shared config.
	Profile string

	// AccessKeyID / SecretAccessKey are explicit credentials. If one is
	// set, both must be.
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle forces path-style URLs. Required for most
	// S3-compatible stores.
	ForcePathStyle bool
}

// Validate checks that required configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3 config: Bucket: bucket name is required")
	}
	if (c.AccessKeyID != "") != (c.SecretAccessKey != "") {
		return errors.New("s3 config: AccessKeyID/SecretAccessKey: both must be provided together")
	}
	return nil
}

// S3Store implements Store against AWS S3.
//
// Uploads are direct PutObject calls with the executing environment's IAM
// credentials; presigned URLs are only ever minted for downloads.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

var _ Store = (*S3Store)(nil)

// NewS3Store creates an S3-backed results store.
func NewS3Store(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &StorageError{Op: "NewS3Store", Bucket: cfg.Bucket, Message: sanitizeCredentials(err.Error()), Err: err}
	}
	if awsCfg.Region == "" && cfg.Endpoint == "" {
		awsCfg.Region = "us-east-1"
	}

	clientOpts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger,
	}, nil
}

// UploadRunResults uploads a results archive to its deterministic key.
func (s *S3Store) UploadRunResults(ctx context.Context, prefix ArtifactPrefix, runID int64, archive []byte) (UploadLocation, error) {
	key := prefix.RunResultsKey(runID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(archive),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return UploadLocation{}, s.wrapError("UploadRunResults", key, err)
	}

	s.logger.Info("uploaded results archive",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(archive)))

	return UploadLocation{
		URL: fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key),
	}, nil
}

// PresignDownload mints a time-limited GET URL for a stored artifact.
func (s *S3Store) PresignDownload(ctx context.Context, resultsURL string, expiry time.Duration) (UploadLocation, error) {
	bucket, key, err := ExtractBucketKey(resultsURL)
	if err != nil {
		return UploadLocation{}, err
	}
	if bucket != s.bucket {
		s.logger.Warn("presigning URL for different bucket",
			zap.String("bucket", bucket),
			zap.String("store_bucket", s.bucket))
	}
	if expiry <= 0 {
		expiry = DefaultDownloadExpiry
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return UploadLocation{}, s.wrapError("PresignDownload", key, err)
	}

	return UploadLocation{URL: req.URL}, nil
}

// wrapError converts S3 errors to storage errors with sentinels and a
// credential-sanitized message.
func (s *S3Store) wrapError(op, key string, err error) error {
	wrapped := &StorageError{
		Op:      op,
		Bucket:  s.bucket,
		Key:     key,
		Message: sanitizeCredentials(err.Error()),
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		wrapped.Err = ErrNotFound
		return wrapped
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			wrapped.Err = ErrNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = ErrAccessDenied
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = ErrStorageUnavailable
		}
		return wrapped
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "404"):
		wrapped.Err = ErrNotFound
	case strings.Contains(msg, "AccessDenied") || strings.Contains(msg, "403"):
		wrapped.Err = ErrAccessDenied
	case strings.Contains(msg, "SlowDown") || strings.Contains(msg, "429"):
		wrapped.Err = ErrThrottled
	case strings.Contains(msg, "ServiceUnavailable") || strings.Contains(msg, "503"):
		wrapped.Err = ErrStorageUnavailable
	}
	return wrapped
}
