package starter

import (
	"context"
	"fmt"

	"github.com/nightconcept/cratesmith/internal/core/config"
	"github.com/nightconcept/cratesmith/internal/core/source"
)

// Open connects to the backend named in cfg.
func Open(ctx context.Context, cfg config.StarterConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		s, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMongo:
		s, err := DialMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendGitHub:
		loc, err := source.ParseLocation(cfg.GitHubSource)
		if err != nil {
			return nil, err
		}
		return NewGitHubStore(loc, nil), nil
	default:
		return nil, fmt.Errorf("unknown starter backend %q", cfg.Backend)
	}
}
