package chainquery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"leicca/internal/chainquery/metrics"
	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/sentinel"
)

// ErrTxNotFound reports a transaction unknown to the chain source, distinct
// from a transaction that exists but is not yet mined.
var ErrTxNotFound = errors.New("transaction not found")

// Cache is the process-wide gateway to the chain-data source. It owns the
// single outbound rate limiter, coalesces identical in-flight proof queries,
// and caches proofs for mined transactions. All mutable state is internally
// synchronized; the value is safe for concurrent use.
type Cache struct {
	source  Source
	limiter *rate.Limiter
	group   singleflight.Group
	proofs  ProofStore

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithProofStore replaces the default in-memory proof cache, e.g. with the
// Redis-backed store when sharing across processes.
func WithProofStore(store ProofStore) Option {
	return func(c *Cache) { c.proofs = store }
}

// WithRateLimit overrides the default outbound budget.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Cache) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New constructs a Cache. Most callers should use Shared instead; direct
// construction exists for tests and for processes that manage their own
// lifetime.
func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(3), 3),
		proofs:  NewMemoryProofStore(),
		tracer:  otel.Tracer("leicca/chainquery"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	sharedOnce sync.Once
	shared     *Cache
)

// Shared returns the process-wide Cache, constructing it on first use. The
// construction race is resolved by sync.Once: the first caller wins and every
// concurrent or later caller receives the same instance, so exactly one rate
// limiter ever exists per process.
func Shared(source Source, opts ...Option) *Cache {
	sharedOnce.Do(func() {
		shared = New(source, opts...)
	})
	return shared
}

// MerkleProof resolves txid to its inclusion proof. Returns (nil, nil) while
// the transaction is unmined, ErrTxNotFound (wrapped, CodeNotFound) for an
// unknown transaction, and CodeUnavailable for source failures.
//
// Identical in-flight queries are coalesced so concurrent pollers of the same
// transaction spend one slot of the shared rate budget, not N.
func (c *Cache) MerkleProof(ctx context.Context, txid string) (*MerkleProof, error) {
	if err := ValidateTxID(txid); err != nil {
		return nil, err
	}

	if proof, ok := c.proofs.Get(ctx, txid); ok {
		c.metrics.IncrementQuery("merkle_proof", "cache_hit")
		return proof, nil
	}

	v, err, sharedCall := c.group.Do(txid, func() (any, error) {
		return c.fetchProof(ctx, txid)
	})
	if sharedCall {
		c.metrics.IncrementQuery("merkle_proof", "coalesced")
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*MerkleProof), nil
}

func (c *Cache) fetchProof(ctx context.Context, txid string) (*MerkleProof, error) {
	ctx, span := c.tracer.Start(ctx, "chainquery.MerkleProof",
		trace.WithAttributes(attribute.String("txid", txid)))
	defer span.End()

	if err := c.wait(ctx, "merkle_proof"); err != nil {
		return nil, err
	}

	proof, err := c.source.MerkleProof(ctx, txid)
	if err != nil {
		return nil, c.translate(ctx, "merkle_proof", txid, err)
	}
	if proof == nil {
		// Mempool transaction: expected state, nothing to cache.
		c.metrics.IncrementQuery("merkle_proof", "unconfirmed")
		return nil, nil
	}

	c.proofs.Put(ctx, proof)
	c.metrics.IncrementQuery("merkle_proof", "ok")
	return proof, nil
}

// CurrentHeight reads the chain tip height. It is intentionally uncached:
// height moves roughly every ten minutes and confirmation math needs a value
// no staler than the polling round that requested it. Concurrent readers
// still coalesce through singleflight.
func (c *Cache) CurrentHeight(ctx context.Context) (int64, error) {
	v, err, _ := c.group.Do("chain-height", func() (any, error) {
		ctx, span := c.tracer.Start(ctx, "chainquery.CurrentHeight")
		defer span.End()

		if err := c.wait(ctx, "chain_height"); err != nil {
			return nil, err
		}
		height, err := c.source.CurrentHeight(ctx)
		if err != nil {
			return nil, c.translate(ctx, "chain_height", "", err)
		}
		c.metrics.IncrementQuery("chain_height", "ok")
		return height, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// wait blocks on the shared outbound budget.
func (c *Cache) wait(ctx context.Context, op string) error {
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "rate limit wait aborted")
	}
	c.metrics.ObserveLimiterWait(op, time.Since(start))
	return nil
}

func (c *Cache) translate(ctx context.Context, op, txid string, err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		c.metrics.IncrementQuery(op, "not_found")
		return dErrors.Wrap(ErrTxNotFound, dErrors.CodeNotFound, "transaction not found")
	}
	c.metrics.IncrementQuery(op, "error")
	if c.logger != nil {
		c.logger.WarnContext(ctx, "chain source query failed",
			"op", op,
			"txid", txid,
			"error", err,
		)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "chain source unavailable")
}
