// Package sync provides concurrency primitives keyed by resource identity.
package sync

import (
	"sync"
)

// shardCount is a power of two so the modulo stays cheap and keys spread
// evenly. 32 shards keeps same-key serialization while letting unrelated
// keys proceed in parallel.
const shardCount = 32

// ShardedMutex maps string keys onto a fixed set of mutexes. Two callers
// locking the same key always contend; callers locking different keys only
// contend when their hashes collide on a shard.
//
// The zero value is not ready to use; construct with NewShardedMutex.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

// NewShardedMutex returns a sharded mutex with shardCount shards.
func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the shard owning key. It blocks until the shard is free.
func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the shard owning key. The key must match the Lock call.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

func (m *ShardedMutex) shardFor(key string) int {
	return int(keyHash(key) % shardCount)
}

// keyHash is FNV-1a over the key bytes. Inlined to avoid the allocation of
// a hash.Hash32 per lock call.
func keyHash(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
