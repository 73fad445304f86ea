package evidence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/internal/capsule"
	"leicca/internal/evidence"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/hashutil"
)

func newTestService() *evidence.Service {
	return evidence.NewService(evidence.NewMemoryStore(), nil)
}

func TestStoreComputesHashOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	uploadedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	data := []byte("articles of incorporation")
	file, err := svc.Store(ctx, evidence.Upload{
		Filename: "articles.pdf",
		Mimetype: "application/pdf",
		Data:     data,
	}, uploadedAt)
	require.NoError(t, err)

	assert.Equal(t, "articles.pdf", file.Filename)
	assert.Equal(t, int64(len(data)), file.Size)
	assert.Equal(t, "application/pdf", file.Mimetype)
	assert.Equal(t, hashutil.Sum(data), file.Hash)
	assert.Equal(t, uploadedAt, file.UploadedAt)

	// The stored bytes are retrievable by the recorded hash.
	got, err := svc.Fetch(ctx, file.Hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

type fakeRecorder struct {
	files []capsule.EvidenceFile
}

func (f *fakeRecorder) RecordEvidence(ctx context.Context, file capsule.EvidenceFile) error {
	f.files = append(f.files, file)
	return nil
}

func TestStoreRecordsAuditEvent(t *testing.T) {
	ctx := context.Background()
	recorder := &fakeRecorder{}
	svc := evidence.NewService(evidence.NewMemoryStore(), nil, evidence.WithRecorder(recorder))

	data := []byte("register extract")
	file, err := svc.Store(ctx, evidence.Upload{
		Filename: "extract.png",
		Mimetype: "image/png",
		Data:     data,
	}, time.Now())
	require.NoError(t, err)

	require.Len(t, recorder.files, 1)
	assert.Equal(t, file.Hash, recorder.files[0].Hash)

	// Rejected uploads never reach the trail.
	_, err = svc.Store(ctx, evidence.Upload{Filename: "empty.pdf"}, time.Now())
	require.Error(t, err)
	assert.Len(t, recorder.files, 1)
}

func TestStoreRejectsInvalidUploads(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Store(ctx, evidence.Upload{Mimetype: "application/pdf", Data: []byte("x")}, time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.Store(ctx, evidence.Upload{Filename: "empty.pdf"}, time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestStoreAllPreservesOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	uploads := []evidence.Upload{
		{Filename: "a.pdf", Mimetype: "application/pdf", Data: []byte("first")},
		{Filename: "b.png", Mimetype: "image/png", Data: []byte("second")},
		{Filename: "c.txt", Mimetype: "text/plain", Data: []byte("third")},
	}

	files, err := svc.StoreAll(ctx, uploads, time.Now())
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i, up := range uploads {
		assert.Equal(t, up.Filename, files[i].Filename)
		assert.Equal(t, hashutil.Sum(up.Data), files[i].Hash)
	}
}

func TestStoreAllFailsBatchOnBadUpload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	uploads := []evidence.Upload{
		{Filename: "a.pdf", Mimetype: "application/pdf", Data: []byte("first")},
		{Filename: "", Mimetype: "application/pdf", Data: []byte("second")},
	}

	_, err := svc.StoreAll(ctx, uploads, time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestFetchUnknownHash(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Fetch(ctx, hashutil.SumString("never stored"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestIdenticalContentSharesStorageKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	data := []byte("same bytes")
	first, err := svc.Store(ctx, evidence.Upload{Filename: "one.pdf", Mimetype: "application/pdf", Data: data}, time.Now())
	require.NoError(t, err)
	second, err := svc.Store(ctx, evidence.Upload{Filename: "two.pdf", Mimetype: "application/pdf", Data: data}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.NotEqual(t, first.Filename, second.Filename)
}
