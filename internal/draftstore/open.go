package draftstore

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/recruitdash/recruitdash/internal/config"
	inats "github.com/recruitdash/recruitdash/internal/nats"
)

// Open creates the backend named by cfg.Storage. js is only used for the
// nats backend and may be nil otherwise.
func Open(ctx context.Context, cfg *config.Config, js jetstream.JetStream) (Backend, error) {
	switch cfg.Storage {
	case config.StorageNATS, "":
		if js == nil {
			return nil, fmt.Errorf("nats storage needs a JetStream connection")
		}
		kv, err := inats.SetupDraftBucket(ctx, js)
		if err != nil {
			return nil, fmt.Errorf("setting up draft bucket: %w", err)
		}
		return NewKV(kv, cfg.Profile), nil
	case config.StorageFile:
		return NewFile(cfg.DataDir, cfg.Profile)
	case config.StorageRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		}, cfg.Profile)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
