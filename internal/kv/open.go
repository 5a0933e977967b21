package kv

import (
	"context"

	"go-reseller-ws/config"

	"github.com/pkg/errors"
)

// Open builds the backend named by cfg.Session.Backend.
func Open(ctx context.Context, cfg *config.Config) (KeyValueStore, error) {
	switch cfg.Session.Backend {
	case "redis":
		s, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file":
		s, err := NewFileStore(cfg.Session.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, errors.Errorf("unknown session backend %q", cfg.Session.Backend)
}
