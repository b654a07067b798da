package cachefile_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nervalabs/routecore/internal/cachefile"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/registry"
)

type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	api := newFakeS3()
	store := cachefile.NewS3Store(api, "bucket", "cache.json")

	cache := registry.Cache{
		{HandlerName: "ffmpeg", Formats: []handler.FormatDescriptor{
			{Name: "MP3", Format: "mp3", Extension: "mp3", MIME: "audio/mpeg", From: true, To: true, Category: []string{"audio"}},
		}},
	}

	if err := store.Save(cache); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].HandlerName != "ffmpeg" {
		t.Fatalf("unexpected cache: %+v", loaded)
	}
}

func TestS3Store_LoadMissingKeyReturnsNil(t *testing.T) {
	store := cachefile.NewS3Store(newFakeS3(), "bucket", "missing.json")
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil cache for missing key, got %+v", loaded)
	}
}

type erroringS3 struct{ *fakeS3 }

func (e *erroringS3) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("network unreachable")
}

func TestS3Store_LoadPropagatesTransportErrors(t *testing.T) {
	store := cachefile.NewS3Store(&erroringS3{fakeS3: newFakeS3()}, "bucket", "cache.json")
	_, err := store.Load()
	if err == nil {
		t.Fatal("expected an error for a non-NoSuchKey failure")
	}
}
