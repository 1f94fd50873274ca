package destination

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/spf13/afero"
)

const writeTestKey = ".slicer_write_test"

// Uploader publishes an emitted file and returns where it landed.
type Uploader interface {
	Upload(ctx context.Context, fs afero.Fs, localPath string) (string, error)
}

// S3Uploader copies emitted artifacts to s3://<bucket>/<prefix>/.
type S3Uploader struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Uploader configures the AWS session. Explicit keys win; otherwise the default credential
// chain (env vars, shared config, instance role) is used.
func NewS3Uploader(cfg *types.S3Config) (*S3Uploader, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required for uploads")
	}

	awsCfg := aws.NewConfig()
	if cfg.Region != "" {
		awsCfg.WithRegion(cfg.Region)
	} else if cfg.Endpoint == "" {
		logger.Warn("S3 region not explicitly provided for uploads, attempting to use default AWS credential chain resolution")
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		logger.Debug("using explicit S3 credentials for uploads")
		awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken))
	}

	if cfg.Endpoint != "" {
		logger.Infof("using custom S3 endpoint for uploads: %s", cfg.Endpoint)
		awsCfg.WithEndpoint(cfg.Endpoint)
		awsCfg.WithS3ForcePathStyle(cfg.PathStyle)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := s3.New(sess)
	return &S3Uploader{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(filepath.ToSlash(cfg.Prefix), "/"),
	}, nil
}

// Check writes and deletes a probe object so bad credentials or permissions fail before a scan.
func (u *S3Uploader) Check(ctx context.Context) error {
	key := u.key(writeTestKey)
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader("slicer write test"),
	})
	if err != nil {
		return fmt.Errorf("S3 write check failed (bucket: %s, key: %s): %w", u.bucket, key, err)
	}

	_, _ = u.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return nil
}

func (u *S3Uploader) Upload(ctx context.Context, fs afero.Fs, localPath string) (string, error) {
	file, err := fs.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for upload: %w", localPath, err)
	}
	defer file.Close()

	key := u.key(filepath.Base(localPath))
	logger.Debugf("uploading %s to s3://%s/%s", localPath, u.bucket, key)

	_, err = u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s/%s: %w", localPath, u.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

func (u *S3Uploader) key(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}
