package cachefile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/registry"
)

// S3API is the minimal subset of *s3.Client the S3Store depends on, the same
// seam the teacher's storage adapter defines for its own S3 backend.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store persists the registry cache as a single object in an S3-compatible
// bucket, for deployments that run the core across multiple stateless
// replicas sharing one cache.
type S3Store struct {
	client S3API
	bucket string
	key    string
}

// NewS3Store returns an S3Store. client must not be nil; construct it with
// s3.NewFromConfig(cfg) against an aws-sdk-go-v2 config.Config.
func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

func (s *S3Store) Load() (registry.Cache, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, apperrors.Transient("cachefile.s3.get", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCache, "cachefile.s3.read", err)
	}
	cache, err := registry.DecodeCache(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryCache, "cachefile.s3.decode", err)
	}
	return cache, nil
}

func (s *S3Store) Save(cache registry.Cache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryCache, "cachefile.s3.encode", err)
	}
	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return apperrors.Transient("cachefile.s3.put", err)
	}
	return nil
}

var _ Store = (*S3Store)(nil)
