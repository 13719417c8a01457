package portfolio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakeS3{}
	s := &S3Store{client: fake, bucket: "resumes"}

	err := s.Put(context.Background(), Object{
		Key:         "resumes/u1/a.pdf",
		ContentType: contentTypePDF,
		Size:        5,
		Body:        bytes.NewReader([]byte("%PDF-")),
		Metadata:    map[string]string{"user-id": "u1"},
	})
	require.NoError(t, err)
	require.Equal(t, "resumes", aws.ToString(fake.in.Bucket))
	require.Equal(t, "resumes/u1/a.pdf", aws.ToString(fake.in.Key))
	require.Equal(t, contentTypePDF, aws.ToString(fake.in.ContentType))
	require.Equal(t, int64(5), aws.ToInt64(fake.in.ContentLength))
	require.Equal(t, []byte("%PDF-"), fake.body)
}

func TestS3Store_PutEscapesMetadata(t *testing.T) {
	fake := &fakeS3{}
	s := &S3Store{client: fake, bucket: "resumes"}

	md := map[string]string{
		"original-filename": "résumé 2026.pdf",
		"user-id":           "u1",
		"upload-time":       "2026-04-02T09:30:00Z",
	}
	require.NoError(t, s.Put(context.Background(), Object{Key: "k", Body: bytes.NewReader(nil), Metadata: md}))

	require.Equal(t, "r%C3%A9sum%C3%A9%202026.pdf", fake.in.Metadata["original-filename"])
	require.Equal(t, "u1", fake.in.Metadata["user-id"])
	require.Equal(t, "2026-04-02T09:30:00Z", fake.in.Metadata["upload-time"])
	require.Equal(t, "résumé 2026.pdf", md["original-filename"])
	for k, v := range fake.in.Metadata {
		for i := 0; i < len(v); i++ {
			require.True(t, v[i] >= 0x20 && v[i] < 0x7f, "metadata %s=%q", k, v)
		}
	}
}

func TestS3Store_PutWrapsError(t *testing.T) {
	cause := errors.New("access denied")
	s := &S3Store{client: &fakeS3{err: cause}, bucket: "b"}

	err := s.Put(context.Background(), Object{Key: "k", Body: bytes.NewReader(nil)})
	require.ErrorIs(t, err, cause)

	require.Error(t, s.Put(context.Background(), Object{Key: " "}))
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), DefaultConfig())
	require.ErrorIs(t, err, ErrConfig)
}

func TestNewS3Store_StaticCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.S3Bucket = "b"
	cfg.S3Endpoint = "http://127.0.0.1:9000"
	cfg.S3AccessKeyID = "minio"
	cfg.S3SecretAccessKey = "minio-secret"
	cfg.S3UsePathStyle = true

	s, err := NewS3Store(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "b", s.bucket)
}

func TestMemoryStore_PutGet(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Put(context.Background(), Object{Key: "k", ContentType: "text/plain", Body: bytes.NewReader([]byte("hi"))}))

	data, ct, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, "text/plain", ct)
	require.Equal(t, []byte("hi"), data)

	_, _, ok = m.Get("missing")
	require.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Put(ctx, Object{Key: "x", Body: bytes.NewReader(nil)}), context.Canceled)
}
