package portfolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object is a single upload headed for an ObjectStore.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
	Metadata    map[string]string
}

// ObjectStore persists uploaded files.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) error
}

type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects to a single bucket. It works against AWS and
// S3-compatible endpoints such as MinIO.
type S3Store struct {
	client s3PutAPI
	bucket string
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// configured, otherwise the default AWS provider chain.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("%w: S3 bucket is required", ErrConfig)
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("portfolio: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, obj Object) error {
	if strings.TrimSpace(obj.Key) == "" {
		return errors.New("portfolio: empty object key")
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(obj.Key),
		Body:          obj.Body,
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
		Metadata:      headerSafe(obj.Metadata),
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("portfolio: s3 put %s: %w", obj.Key, err)
	}
	return nil
}

// headerSafe percent-encodes metadata values that would not survive as
// x-amz-meta-* headers (non-ASCII, control bytes, '%').
func headerSafe(md map[string]string) map[string]string {
	if md == nil {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		if needsEscape(v) {
			v = url.PathEscape(v)
		}
		out[k] = v
	}
	return out
}

func needsEscape(v string) bool {
	for i := 0; i < len(v); i++ {
		if c := v[i]; c < 0x20 || c >= 0x7f || c == '%' {
			return true
		}
	}
	return false
}

// MemoryStore keeps objects in process. Used when no bucket is configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	ContentType string
	Data        []byte
	Metadata    map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]storedObject)}
}

func (m *MemoryStore) Put(ctx context.Context, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(obj.Key) == "" {
		return errors.New("portfolio: empty object key")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Body); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = storedObject{
		ContentType: obj.ContentType,
		Data:        buf.Bytes(),
		Metadata:    obj.Metadata,
	}
	return nil
}

// Keys lists stored object keys in no particular order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

func (m *MemoryStore) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(o.Data), o.ContentType, true
}

var (
	_ ObjectStore = (*S3Store)(nil)
	_ ObjectStore = (*MemoryStore)(nil)
)
