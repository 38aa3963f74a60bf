// Package sequence hands out per-scope counters used to build ledger
// transaction numbers.
package sequence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sequencer returns the next value of a named counter, starting at 1.
type Sequencer interface {
	Next(ctx context.Context, scope string) (int64, error)
}

// RedisSequence keeps counters in Redis so every instance shares them.
type RedisSequence struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSequence stores counters under "<prefix>:<scope>" for ttl after their last use.
func NewRedisSequence(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSequence {
	return &RedisSequence{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisSequence) Next(ctx context.Context, scope string) (int64, error) {
	key := fmt.Sprintf("%s:%s", s.prefix, scope)
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

// LocalSequence keeps counters in process memory.
type LocalSequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewLocalSequence() *LocalSequence {
	return &LocalSequence{counters: make(map[string]int64)}
}

func (s *LocalSequence) Next(_ context.Context, scope string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[scope]++
	return s.counters[scope], nil
}

// Prefixer yields the number prefix of a movement type (IMP, ADJ, ...).
type Prefixer interface {
	NumberPrefix() string
}

// NumberGenerator formats transaction numbers as
// <PREFIX>-<yyyyMMddHHmmss>-<6-digit sequence>[-<instance tag>].
// The sequence restarts every day per prefix.
type NumberGenerator struct {
	seq         Sequencer
	instanceTag string
}

// NewNumberGenerator builds a generator over a shared sequence.
func NewNumberGenerator(seq Sequencer) *NumberGenerator {
	return &NumberGenerator{seq: seq}
}

// NewLocalNumberGenerator builds a generator over an in-process sequence. A
// random instance tag keeps numbers from separate processes apart.
func NewLocalNumberGenerator() *NumberGenerator {
	tag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return &NumberGenerator{seq: NewLocalSequence(), instanceTag: tag}
}

func (g *NumberGenerator) Next(ctx context.Context, kind Prefixer, at time.Time) (string, error) {
	prefix := kind.NumberPrefix()
	at = at.UTC()
	n, err := g.seq.Next(ctx, prefix+":"+at.Format("20060102"))
	if err != nil {
		return "", err
	}
	number := fmt.Sprintf("%s-%s-%06d", prefix, at.Format("20060102150405"), n)
	if g.instanceTag != "" {
		number += "-" + g.instanceTag
	}
	return number, nil
}
