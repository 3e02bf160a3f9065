package draftstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// KV keeps snapshots in a JetStream key-value bucket. The bucket's history
// doubles as the revision log for Previous.
type KV struct {
	kv  jetstream.KeyValue
	key string
}

func NewKV(kv jetstream.KeyValue, profile string) *KV {
	return &KV{kv: kv, key: Key(profile)}
}

func (s *KV) Name() string { return "nats" }

func (s *KV) Load(ctx context.Context) ([]byte, error) {
	entry, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", s.key, err)
	}
	return entry.Value(), nil
}

func (s *KV) Save(ctx context.Context, data []byte) error {
	rev, err := s.kv.Put(ctx, s.key, data)
	if err != nil {
		return fmt.Errorf("kv put %s: %w", s.key, err)
	}
	log.Debug("saved %s revision %d", s.key, rev)
	return nil
}

func (s *KV) Previous(ctx context.Context) ([]byte, error) {
	entries, err := s.kv.History(ctx, s.key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrNoPrevious
	}
	if err != nil {
		return nil, fmt.Errorf("kv history %s: %w", s.key, err)
	}
	// History is oldest first; skip deletes and purges.
	var puts []jetstream.KeyValueEntry
	for _, e := range entries {
		if e.Operation() == jetstream.KeyValuePut {
			puts = append(puts, e)
		}
	}
	if len(puts) < 2 {
		return nil, ErrNoPrevious
	}
	return puts[len(puts)-2].Value(), nil
}

func (s *KV) Delete(ctx context.Context) error {
	err := s.kv.Purge(ctx, s.key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv purge %s: %w", s.key, err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (s *KV) Close() error { return nil }
