// Package objectstore uploads and deletes admin media in an S3-compatible
// bucket. Widgets only ever see the resulting public URLs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	ErrInvalidBucket = errors.New("bucket is required")
	ErrInvalidPath   = errors.New("invalid object path")
)

// API is the part of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Config struct {
	Region    string
	Endpoint  string
	PublicURL string
}

type Store struct {
	api       API
	publicURL string
}

// New builds a store from the default AWS credential chain. A custom
// endpoint switches to path-style addressing (MinIO and similar).
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	publicURL := cfg.PublicURL
	switch {
	case publicURL != "":
	case cfg.Endpoint != "":
		publicURL = cfg.Endpoint
	default:
		publicURL = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3opts...), publicURL), nil
}

func NewWithClient(api API, publicURL string) *Store {
	return &Store{api: api, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload stores r at bucket/objectPath and returns its public URL.
func (s *Store) Upload(ctx context.Context, r io.Reader, contentType, bucket, objectPath string) (string, error) {
	key, err := objectKey(bucket, objectPath)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put object %s/%s: %w", bucket, key, err)
	}
	return s.PublicURL(bucket, key), nil
}

func (s *Store) Delete(ctx context.Context, bucket, objectPath string) error {
	key, err := objectKey(bucket, objectPath)
	if err != nil {
		return err
	}

	_, err = s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL is where a stored object can be fetched by browsers.
func (s *Store) PublicURL(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicURL + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// ExtractPath recovers the object path from a public URL produced for
// bucket. ok is false when the URL does not point into that bucket.
func ExtractPath(rawURL, bucket string) (string, bool) {
	if bucket == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	marker := "/" + bucket + "/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", false
	}
	rest := u.Path[idx+len(marker):]
	if rest == "" {
		return "", false
	}
	return rest, true
}

func objectKey(bucket, objectPath string) (string, error) {
	if strings.TrimSpace(bucket) == "" {
		return "", ErrInvalidBucket
	}
	key := strings.TrimLeft(objectPath, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
		}
	}
	return path.Clean(key), nil
}
