package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	api := &fakeS3{}
	store := NewWithClient(api, "https://media.example.com/")

	got, err := store.Upload(context.Background(), strings.NewReader("PNGDATA"), "image/png", "sponsors", "/acme/logo 1.png")

	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/sponsors/acme/logo%201.png", got)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "sponsors", aws.ToString(api.puts[0].Bucket))
	assert.Equal(t, "acme/logo 1.png", aws.ToString(api.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(api.puts[0].ContentType))
	assert.Equal(t, "PNGDATA", api.bodies[0])
}

func TestUpload_RejectsBadPaths(t *testing.T) {
	store := NewWithClient(&fakeS3{}, "https://media.example.com")
	ctx := context.Background()

	_, err := store.Upload(ctx, strings.NewReader("x"), "", "", "a.png")
	assert.ErrorIs(t, err, ErrInvalidBucket)

	for _, p := range []string{"", "/", "dir/", "../secret", "a/../../b"} {
		_, err := store.Upload(ctx, strings.NewReader("x"), "", "media", p)
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", p)
	}
}

func TestUpload_WrapsClientError(t *testing.T) {
	store := NewWithClient(&fakeS3{err: errors.New("access denied")}, "https://media.example.com")

	_, err := store.Upload(context.Background(), strings.NewReader("x"), "", "media", "a.png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put object media/a.png")
	assert.Contains(t, err.Error(), "access denied")
}

func TestDelete(t *testing.T) {
	api := &fakeS3{}
	store := NewWithClient(api, "https://media.example.com")

	require.NoError(t, store.Delete(context.Background(), "resources", "acme/rules.pdf"))
	require.Len(t, api.deletes, 1)
	assert.Equal(t, "acme/rules.pdf", aws.ToString(api.deletes[0].Key))
}

func TestExtractPath(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		bucket string
		want   string
		ok     bool
	}{
		{"public url", "https://media.example.com/sponsors/acme/logo.png", "sponsors", "acme/logo.png", true},
		{"hosted storage prefix", "https://x.supabase.co/storage/v1/object/public/judges/acme/p.jpg", "judges", "acme/p.jpg", true},
		{"escaped segment", "https://media.example.com/sponsors/acme/logo%201.png", "sponsors", "acme/logo 1.png", true},
		{"other bucket", "https://media.example.com/judges/acme/p.jpg", "sponsors", "", false},
		{"bucket only", "https://media.example.com/sponsors/", "sponsors", "", false},
		{"empty bucket", "https://media.example.com/sponsors/a.png", "", "", false},
		{"not a url", "::", "sponsors", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPath(tt.url, tt.bucket)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPath_RoundTrip(t *testing.T) {
	store := NewWithClient(&fakeS3{}, "https://media.example.com")
	u := store.PublicURL("resources", "acme/2026 rules.pdf")

	got, ok := ExtractPath(u, "resources")
	assert.True(t, ok)
	assert.Equal(t, "acme/2026 rules.pdf", got)
}
