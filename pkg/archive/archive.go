// Package archive uploads a finished run directory to S3 or an
// S3-compatible object store.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-rdyn/pkg/config"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
)

// ErrNoBucket is returned when archiving is requested without a bucket.
var ErrNoBucket = errors.New("archive: bucket is required")

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader copies run files into a bucket under prefix/runID/.
type Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger logging.Logger
}

// NewUploader returns an uploader over client.
func NewUploader(client PutObjectAPI, bucket, prefix string, logger logging.Logger) (*Uploader, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With(logging.Component("archive")),
	}, nil
}

// NewClient builds an S3 client from the archive settings.
func NewClient(ctx context.Context, cfg config.Archive) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Key returns the object key of a file at rel inside the run directory.
func (u *Uploader) Key(runID, rel string) string {
	return path.Join(u.prefix, runID, filepath.ToSlash(rel))
}

// UploadDir uploads every regular file below dir and returns the object
// keys written, in lexical path order.
func (u *Uploader) UploadDir(ctx context.Context, dir, runID string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := u.Key(runID, rel)
		if err := u.put(ctx, p, key); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return keys, err
	}

	u.logger.Info("run archived",
		logging.String("bucket", u.bucket), logging.RunID(runID), logging.Count(len(keys)))
	return keys, nil
}

func (u *Uploader) put(ctx context.Context, p, key string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", p, u.bucket, key, err)
	}
	u.logger.Debug("object uploaded", logging.Path(key))
	return nil
}
