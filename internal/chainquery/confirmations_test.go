package chainquery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/internal/chainquery"
)

func TestConfirmationsMath(t *testing.T) {
	tests := []struct {
		name          string
		currentHeight int64
		blockHeight   int64
		want          int64
	}{
		{"containing block counts as one", 100, 100, 1},
		{"five blocks above", 104, 100, 5},
		{"at finality depth", 105, 100, 6},
		{"deeply buried", 1100, 100, 1001},
		{"stale tip clamps to zero", 98, 100, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, chainquery.Confirmations(tc.currentHeight, tc.blockHeight))
		})
	}
}

func TestConfirmationsMonotonic(t *testing.T) {
	// As the tip advances the count never decreases.
	prev := int64(-1)
	for height := int64(95); height <= 120; height++ {
		n := chainquery.Confirmations(height, 100)
		require.GreaterOrEqual(t, n, prev)
		prev = n
	}
}

func TestTrackerStates(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)
	tracker := chainquery.NewTracker(cache, 0, nil)

	require.Equal(t, int64(chainquery.DefaultConfirmationThreshold), tracker.Threshold())

	t.Run("mempool transaction is pending", func(t *testing.T) {
		conf, state, err := tracker.Check(ctx, mempoolTxID)
		require.NoError(t, err)
		assert.Equal(t, chainquery.StatePending, state)
		assert.Zero(t, conf.Confirmations)
		assert.Zero(t, conf.BlockHeight)
	})

	t.Run("proof at 100 with tip 105 is confirmed at six", func(t *testing.T) {
		conf, state, err := tracker.Check(ctx, minedTxID)
		require.NoError(t, err)
		assert.Equal(t, int64(6), conf.Confirmations)
		assert.Equal(t, chainquery.StateConfirmed, state)
	})

	t.Run("five confirmations is still confirming", func(t *testing.T) {
		source.mu.Lock()
		source.height = 104
		source.mu.Unlock()

		conf, state, err := tracker.Check(ctx, minedTxID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), conf.Confirmations)
		assert.Equal(t, chainquery.StateConfirming, state)
	})
}

func TestTrackerStatusShape(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)
	tracker := chainquery.NewTracker(cache, 0, nil)

	status, err := tracker.Status(ctx, minedTxID)
	require.NoError(t, err)
	assert.True(t, status.Confirmed)
	assert.Equal(t, int64(6), status.Confirmations)
	assert.Equal(t, int64(100), status.BlockHeight)

	status, err = tracker.Status(ctx, mempoolTxID)
	require.NoError(t, err)
	assert.False(t, status.Confirmed)
	assert.Zero(t, status.Confirmations)
}

func TestTrackerCustomThreshold(t *testing.T) {
	ctx := context.Background()
	source := newFakeSource()
	cache := newTestCache(source)
	tracker := chainquery.NewTracker(cache, 3, nil)

	// 6 confirmations clears a threshold of 3.
	_, state, err := tracker.Check(ctx, minedTxID)
	require.NoError(t, err)
	assert.Equal(t, chainquery.StateConfirmed, state)
}
