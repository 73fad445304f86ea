package evidence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"leicca/internal/capsule"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/hashutil"
	"leicca/pkg/platform/sentinel"
)

// Upload is one evidence file arriving with a classification record.
type Upload struct {
	Filename string
	Mimetype string
	Data     []byte
}

// Recorder mirrors stored evidence into the audit trail.
type Recorder interface {
	RecordEvidence(ctx context.Context, file capsule.EvidenceFile) error
}

// Service stores evidence files and produces their capsule metadata. The
// content hash is computed exactly once, at upload time; everything downstream
// carries the stored hash.
type Service struct {
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithRecorder attaches the audit recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates an evidence service over the given store.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store hashes and persists one upload, returning its capsule metadata.
func (s *Service) Store(ctx context.Context, up Upload, uploadedAt time.Time) (capsule.EvidenceFile, error) {
	if up.Filename == "" {
		return capsule.EvidenceFile{}, dErrors.New(dErrors.CodeInvalidInput, "evidence filename is required")
	}
	if len(up.Data) == 0 {
		return capsule.EvidenceFile{}, dErrors.New(dErrors.CodeInvalidInput, "evidence file is empty")
	}

	hash := hashutil.Sum(up.Data)
	if err := s.store.Put(ctx, hash, up.Data, up.Mimetype); err != nil {
		return capsule.EvidenceFile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "evidence storage failed")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "evidence stored",
			"filename", up.Filename,
			"size", len(up.Data),
			"hash", hashutil.Truncate(hash, 6, 6),
		)
	}

	file := capsule.EvidenceFile{
		Filename:   up.Filename,
		Size:       int64(len(up.Data)),
		Mimetype:   up.Mimetype,
		Hash:       hash,
		UploadedAt: uploadedAt.UTC(),
	}

	if s.recorder != nil {
		if err := s.recorder.RecordEvidence(ctx, file); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "recording evidence storage failed",
				"hash", hashutil.Truncate(hash, 6, 6),
				"error", err,
			)
		}
	}
	return file, nil
}

// StoreAll persists a batch of uploads concurrently, preserving input order
// in the returned metadata. Any single failure fails the batch.
func (s *Service) StoreAll(ctx context.Context, uploads []Upload, uploadedAt time.Time) ([]capsule.EvidenceFile, error) {
	files := make([]capsule.EvidenceFile, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, up := range uploads {
		g.Go(func() error {
			file, err := s.Store(gctx, up, uploadedAt)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Fetch returns the stored bytes for a content hash.
func (s *Service) Fetch(ctx context.Context, hash string) ([]byte, error) {
	data, err := s.store.Get(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "evidence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "evidence storage unavailable")
	}
	return data, nil
}
