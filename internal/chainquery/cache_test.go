package chainquery_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"leicca/internal/chainquery"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/sentinel"
)

const minedTxID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const mempoolTxID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
const unknownTxID = "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"

// fakeSource is an in-memory chain source recording call counts. Proof calls
// can be delayed to widen the coalescing window.
type fakeSource struct {
	mu          sync.Mutex
	proofs      map[string]*chainquery.MerkleProof
	mempool     map[string]bool
	height      int64
	proofCalls  atomic.Int64
	heightCalls atomic.Int64
	proofDelay  time.Duration
	fail        bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		proofs: map[string]*chainquery.MerkleProof{
			minedTxID: {
				TxID:        minedTxID,
				BlockHeight: 100,
				MerkleRoot:  "root",
				Path:        []chainquery.ProofStep{{Offset: 1, Hash: "sibling"}},
				Index:       3,
			},
		},
		mempool: map[string]bool{mempoolTxID: true},
		height:  105,
	}
}

func (f *fakeSource) MerkleProof(ctx context.Context, txid string) (*chainquery.MerkleProof, error) {
	f.proofCalls.Add(1)
	if f.proofDelay > 0 {
		time.Sleep(f.proofDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, fmt.Errorf("%w: connection refused", sentinel.ErrUnavailable)
	}
	if proof, ok := f.proofs[txid]; ok {
		return proof, nil
	}
	if f.mempool[txid] {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: transaction %s", sentinel.ErrNotFound, txid)
}

func (f *fakeSource) CurrentHeight(ctx context.Context) (int64, error) {
	f.heightCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, fmt.Errorf("%w: connection refused", sentinel.ErrUnavailable)
	}
	return f.height, nil
}

func newTestCache(source chainquery.Source) *chainquery.Cache {
	return chainquery.New(source, chainquery.WithRateLimit(1000, 1000))
}

func TestMerkleProofStates(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)

	t.Run("mined transaction yields proof", func(t *testing.T) {
		proof, err := cache.MerkleProof(ctx, minedTxID)
		require.NoError(t, err)
		require.NotNil(t, proof)
		assert.Equal(t, int64(100), proof.BlockHeight)
	})

	t.Run("mempool transaction yields absent proof, no error", func(t *testing.T) {
		proof, err := cache.MerkleProof(ctx, mempoolTxID)
		require.NoError(t, err)
		assert.Nil(t, proof)
	})

	t.Run("unknown transaction yields typed not found", func(t *testing.T) {
		_, err := cache.MerkleProof(ctx, unknownTxID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.ErrorIs(t, err, chainquery.ErrTxNotFound)
	})
}

func TestMerkleProofValidatesTxID(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)

	for _, txid := range []string{"", "abc", "ZZ" + minedTxID[2:], minedTxID + "00"} {
		_, err := cache.MerkleProof(ctx, txid)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
	assert.Zero(t, source.proofCalls.Load(), "malformed txids must never reach the network")
}

func TestMerkleProofCachesMinedProofs(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)

	for i := 0; i < 5; i++ {
		proof, err := cache.MerkleProof(ctx, minedTxID)
		require.NoError(t, err)
		require.NotNil(t, proof)
	}
	assert.Equal(t, int64(1), source.proofCalls.Load(), "mined proofs are immutable and cacheable")
}

func TestMerkleProofDoesNotCacheAbsent(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)

	_, err := cache.MerkleProof(ctx, mempoolTxID)
	require.NoError(t, err)

	// The transaction gets mined between polls.
	source.mu.Lock()
	source.proofs[mempoolTxID] = &chainquery.MerkleProof{TxID: mempoolTxID, BlockHeight: 106}
	delete(source.mempool, mempoolTxID)
	source.mu.Unlock()

	proof, err := cache.MerkleProof(ctx, mempoolTxID)
	require.NoError(t, err)
	require.NotNil(t, proof, "absence must be re-queried, never cached")
}

func TestConcurrentProofQueriesCoalesce(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	source.proofDelay = 50 * time.Millisecond
	cache := newTestCache(source)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			proof, err := cache.MerkleProof(ctx, minedTxID)
			if err != nil {
				return err
			}
			if proof == nil {
				return fmt.Errorf("expected proof")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// All 20 callers overlap within the 50ms window; the shared budget is
	// spent once, not twenty times.
	assert.Equal(t, int64(1), source.proofCalls.Load())
}

func TestCurrentHeightReadsFresh(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)

	height, err := cache.CurrentHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(105), height)

	source.mu.Lock()
	source.height = 106
	source.mu.Unlock()

	height, err = cache.CurrentHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(106), height, "height is never served from a stale cache")
}

func TestSourceFailureSurfacesAsUnavailable(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	source.fail = true
	cache := newTestCache(source)

	_, err := cache.MerkleProof(ctx, minedTxID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	_, err = cache.CurrentHeight(ctx)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestSharedReturnsOneInstance(t *testing.T) {
	source := newFakeSource()

	const callers = 50
	instances := make([]*chainquery.Cache, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			instances[i] = chainquery.Shared(source, chainquery.WithRateLimit(1000, 1000))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	first := instances[0]
	require.NotNil(t, first)
	for _, inst := range instances {
		assert.Same(t, first, inst, "every accessor call must observe the same instance")
	}
}
