package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
)

// S3Config configures an S3Store. Endpoint is only needed for S3-compatible services such as
// DigitalOcean Spaces or MinIO.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PathStyle forces path-style addressing, which MinIO requires.
	PathStyle bool
}

// S3Store is an ObjectStore backed by an S3 bucket.
type S3Store struct {
	client s3iface.S3API
	bucket string
	logger logrus.FieldLogger
}

// NewS3Store creates a store for cfg.Bucket. Static credentials are used when both keys are
// set; otherwise the default AWS credential chain applies.
func NewS3Store(cfg S3Config, logger logrus.FieldLogger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.PathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{"bucket": cfg.Bucket, "region": cfg.Region, "endpoint": cfg.Endpoint}).
		Info("S3 object store configured")

	return newS3Store(s3.New(sess), cfg.Bucket, logger), nil
}

func newS3Store(client s3iface.S3API, bucket string, logger logrus.FieldLogger) *S3Store {
	return &S3Store{client: client, bucket: bucket, logger: logger}
}

// Put uploads data under key as a private object.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPrivate),
	})
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to upload object")
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.logger.WithFields(logrus.Fields{"key": key, "size_bytes": len(data)}).Debug("uploaded object")
	return nil
}

// Get downloads the object under key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object under key. A missing object is not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Healthy reports whether the bucket is reachable.
func (s *S3Store) Healthy(ctx context.Context) bool {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		s.logger.WithError(err).WithField("bucket", s.bucket).Error("S3 health check failed")
		return false
	}
	return true
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
