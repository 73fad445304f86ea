package chainquery

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"leicca/internal/platform/redis"
)

// ProofStore caches merkle proofs for mined transactions. A mined proof is
// immutable, so cache hits are always valid and spare the shared rate budget.
// Misses are silent; the store never substitutes for the Source.
type ProofStore interface {
	Get(ctx context.Context, txid string) (*MerkleProof, bool)
	Put(ctx context.Context, proof *MerkleProof)
}

// MemoryProofStore is the default in-process proof cache.
type MemoryProofStore struct {
	mu     sync.RWMutex
	proofs map[string]*MerkleProof
}

func NewMemoryProofStore() *MemoryProofStore {
	return &MemoryProofStore{proofs: make(map[string]*MerkleProof)}
}

func (s *MemoryProofStore) Get(ctx context.Context, txid string) (*MerkleProof, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proofs[txid]
	return p, ok
}

func (s *MemoryProofStore) Put(ctx context.Context, proof *MerkleProof) {
	if proof == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[proof.TxID] = proof
}

// RedisProofStore shares the proof cache across processes. Entries carry a
// generous TTL purely for housekeeping; correctness never depends on expiry.
type RedisProofStore struct {
	client *redis.Client
	ttl    time.Duration
}

const redisProofKeyPrefix = "leicca:proof:"

func NewRedisProofStore(client *redis.Client) *RedisProofStore {
	return &RedisProofStore{client: client, ttl: 7 * 24 * time.Hour}
}

func (s *RedisProofStore) Get(ctx context.Context, txid string) (*MerkleProof, bool) {
	data, err := s.client.Client.Get(ctx, redisProofKeyPrefix+txid).Bytes()
	if err != nil {
		// Cache miss or redis trouble; either way the caller falls through
		// to the source.
		return nil, false
	}
	var proof MerkleProof
	if err := json.Unmarshal(data, &proof); err != nil {
		return nil, false
	}
	return &proof, true
}

func (s *RedisProofStore) Put(ctx context.Context, proof *MerkleProof) {
	if proof == nil {
		return
	}
	data, err := json.Marshal(proof)
	if err != nil {
		return
	}
	_ = s.client.Client.Set(ctx, redisProofKeyPrefix+proof.TxID, data, s.ttl).Err()
}
