package source

import (
	"context"
	"log/slog"

	"superstore-analytics/internal/config"
)

// Open builds the source described by cfg. PostgreSQL is used when a
// database URL is configured, otherwise the CSV file, optionally behind the
// snapshot cache. The returned func releases any connection pool.
func Open(ctx context.Context, cfg config.DataConfig, logger *slog.Logger) (Source, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresSource(pool, cfg.DatabaseTable), pool.Close, nil
	}

	csv := NewCSVSource(cfg.CSVFile)
	if cfg.CacheEnabled {
		return NewCachedSource(csv, cfg.CacheDir, logger), func() {}, nil
	}
	return csv, func() {}, nil
}
