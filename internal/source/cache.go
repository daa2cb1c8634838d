package source

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"superstore-analytics/internal/models"
)

const cacheVersion = "v2"

// FileSource is a Source backed by a file whose modification time tells
// whether a snapshot is stale.
type FileSource interface {
	Source
	ModTime() (time.Time, error)
}

type snapshot struct {
	Version string
	Source  string
	// SourceModTime is the file's modification time observed before it
	// was parsed. The snapshot is reused only while it matches exactly.
	SourceModTime time.Time
	SavedAt       time.Time
	Orders        []models.Order
}

// CachedSource keeps a gob snapshot of the parsed orders next to the
// process and serves it while the underlying file's modification time is
// the one observed when the snapshot was taken. Cache
// failures are logged and never fail a load.
type CachedSource struct {
	inner  FileSource
	dir    string
	logger *slog.Logger
}

func NewCachedSource(inner FileSource, dir string, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{inner: inner, dir: dir, logger: logger}
}

func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) Load(ctx context.Context) ([]models.Order, error) {
	if orders, ok := c.fresh(); ok {
		c.logger.Info("loaded from cache", "source", c.inner.Name(), "records", len(orders))
		return orders, nil
	}

	modified, modErr := c.inner.ModTime()
	orders, err := c.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	if modErr != nil {
		c.logger.Warn("skipping cache, source has no modification time", "source", c.inner.Name(), "error", modErr)
		return orders, nil
	}

	if err := c.save(orders, modified); err != nil {
		c.logger.Warn("failed to save cache", "source", c.inner.Name(), "error", err)
	}
	return orders, nil
}

func (c *CachedSource) filename() string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(c.inner.Name())
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (c *CachedSource) fresh() ([]models.Order, bool) {
	modified, err := c.inner.ModTime()
	if err != nil {
		return nil, false
	}
	snap, err := c.read()
	if err != nil {
		return nil, false
	}
	if snap.Version != cacheVersion || snap.Source != c.inner.Name() || !snap.SourceModTime.Equal(modified) {
		return nil, false
	}
	return snap.Orders, true
}

func (c *CachedSource) read() (*snapshot, error) {
	file, err := os.Open(c.filename())
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *CachedSource) save(orders []models.Order, modified time.Time) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "snapshot-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	snap := snapshot{
		Version:       cacheVersion,
		Source:        c.inner.Name(),
		SourceModTime: modified,
		SavedAt:       time.Now(),
		Orders:        orders,
	}
	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.filename())
}
