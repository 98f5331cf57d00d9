// Package s3 implements storage.Storage on Amazon S3 or an S3-compatible
// service such as MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		s, err := NewStorage(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		log.Debug("s3 storage ready", logger.Fields("bucket", cfg.Bucket, "prefix", cfg.Prefix))
		return s, nil
	})
}

// Storage keeps objects in one bucket, optionally under a key prefix.
type Storage struct {
	client *awss3.Client
	bucket string
	prefix string
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage loads the default AWS config chain for cfg.Region. Static keys
// in cfg take precedence, and a custom Endpoint switches to path-style
// addressing for MinIO and similar services.
func NewStorage(ctx context.Context, cfg storage.Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = storage.DefaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			// S3-compatible services often reject the flexible checksum headers.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		})
	} else if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Storage{
		client: awss3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Upload writes data from reader to S3, replacing any existing object.
func (s *Storage) Upload(ctx context.Context, p string, reader io.Reader) error {
	return s.put(ctx, p, reader, false)
}

// Create writes a new object using a conditional PutObject (If-None-Match: *)
// so an existing object is never replaced.
func (s *Storage) Create(ctx context.Context, p string, reader io.Reader) error {
	return s.put(ctx, p, reader, true)
}

func (s *Storage) put(ctx context.Context, p string, reader io.Reader, exclusive bool) error {
	key, err := s.key(p)
	if err != nil {
		return err
	}
	// The body is buffered so the request can be signed without a trailing
	// checksum over plain HTTP endpoints.
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: s3 read body: %w", err)
	}

	input := &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if exclusive {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		if exclusive && isConditionFailed(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("storage: s3 upload: %w", err)
	}
	return nil
}

// Download streams the object body. The caller closes it.
func (s *Storage) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	key, err := s.key(p)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, p)
		}
		return nil, fmt.Errorf("storage: s3 download: %w", err)
	}
	return out.Body, nil
}

func (s *Storage) Exists(ctx context.Context, p string) (bool, error) {
	key, err := s.key(p)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: s3 head: %w", err)
	}
	return true, nil
}

// URL returns the object URL. Custom endpoints use path style.
func (s *Storage) URL(_ context.Context, p string) (string, error) {
	key, err := s.key(p)
	if err != nil {
		return "", err
	}
	opts := s.client.Options()
	if opts.BaseEndpoint != nil && *opts.BaseEndpoint != "" {
		return strings.TrimRight(*opts.BaseEndpoint, "/") + "/" + s.bucket + "/" + escapeKey(key), nil
	}
	if opts.UsePathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", opts.Region, s.bucket, escapeKey(key)), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, opts.Region, escapeKey(key)), nil
}

// List pages through the keys under prefix. Paths are relative to the
// configured key prefix and sorted.
func (s *Storage) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	full := prefix
	if s.prefix != "" {
		full = s.prefix + "/" + strings.TrimLeft(prefix, "/")
	}

	out := []storage.FileInfo{}
	pages := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(full),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage: s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			out = append(out, storage.FileInfo{
				Path:         s.relative(aws.ToString(obj.Key)),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	slices.SortFunc(out, func(a, b storage.FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func (s *Storage) key(p string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidPath, p)
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

func (s *Storage) relative(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func isConditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
