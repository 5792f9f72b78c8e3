// Package backends opens the kv.Store selected by configuration.
package backends

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/idilsaglam/grocer/internal/config"
	"github.com/idilsaglam/grocer/internal/kv"
	"github.com/idilsaglam/grocer/internal/kv/filekv"
	"github.com/idilsaglam/grocer/internal/kv/memory"
	"github.com/idilsaglam/grocer/internal/kv/pgkv"
	"github.com/idilsaglam/grocer/internal/kv/s3kv"
	"github.com/idilsaglam/grocer/internal/kv/sqlitekv"
)

// Open returns the store for cfg.Backend. The close func releases any handle
// the backend holds and is never nil.
func Open(ctx context.Context, cfg config.Config, env map[string]string) (kv.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), noop, nil

	case config.BackendFile, "":
		st, err := filekv.New(cfg.DataDir)
		if err != nil {
			return nil, noop, fmt.Errorf("open file backend: %w", err)
		}
		return st, noop, nil

	case config.BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "grocer.db")
		}
		st, err := sqlitekv.New(ctx, path)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite backend: %w", err)
		}
		return st, st.Close, nil

	case config.BackendPostgres:
		st, err := pgkv.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres backend: %w", err)
		}
		return st, st.Close, nil

	case config.BackendS3:
		s3cfg := s3kv.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		}
		creds, err := config.GetCredentials(env)
		if err != nil {
			return nil, noop, err
		}
		if creds != nil {
			s3cfg.AccessKeyID = creds.AccessKeyID
			s3cfg.SecretAccessKey = creds.SecretAccessKey
		}
		st, err := s3kv.New(ctx, s3cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("open s3 backend: %w", err)
		}
		return st, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
}
