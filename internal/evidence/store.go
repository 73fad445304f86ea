package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"

	"leicca/pkg/platform/sentinel"
)

// Store persists evidence-file contents keyed by content hash. Keys are
// immutable: a hash always maps to the same bytes, so overwrites are no-ops
// in practice.
type Store interface {
	Put(ctx context.Context, key string, data []byte, mimetype string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// MemoryStore is the in-process evidence store used when no object storage is
// configured.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte, mimetype string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.files[key] = buf
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: evidence %s", sentinel.ErrNotFound, key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// MinioStore keeps evidence files in an object-storage bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore wraps an existing minio client. The bucket must already exist
// or be creatable by the configured credentials.
func NewMinioStore(ctx context.Context, client *minio.Client, bucket string) (*MinioStore, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: check evidence bucket: %v", sentinel.ErrUnavailable, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: create evidence bucket: %v", sentinel.ErrUnavailable, err)
		}
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, mimetype string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimetype})
	if err != nil {
		return fmt.Errorf("%w: store evidence %s: %v", sentinel.ErrUnavailable, key, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch evidence %s: %v", sentinel.ErrUnavailable, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: evidence %s", sentinel.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: read evidence %s: %v", sentinel.ErrUnavailable, key, err)
	}
	return data, nil
}
