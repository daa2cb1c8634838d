package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superstore-analytics/internal/models"
)

type countingSource struct {
	FileSource
	loads int
}

func (c *countingSource) Load(ctx context.Context) ([]models.Order, error) {
	c.loads++
	return c.FileSource.Load(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedSource_ReusesSnapshot(t *testing.T) {
	path := writeCSV(t, header+"1,CA-1,2017-01-01,C1,East,Technology,Phones,Phone,10,1,0,2\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	inner := &countingSource{FileSource: NewCSVSource(path)}
	cached := NewCachedSource(inner, filepath.Join(t.TempDir(), "cache"), discardLogger())

	first, err := cached.Load(context.Background())
	require.NoError(t, err)
	second, err := cached.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.loads)
	assert.Equal(t, first, second)
	assert.Equal(t, "csv:"+path, cached.Name())
}

func TestCachedSource_StaleAfterFileChange(t *testing.T) {
	path := writeCSV(t, header+"1,CA-1,2017-01-01,C1,East,Technology,Phones,Phone,10,1,0,2\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	inner := &countingSource{FileSource: NewCSVSource(path)}
	cached := NewCachedSource(inner, t.TempDir(), discardLogger())

	_, err := cached.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(header+"1,CA-1,2017-01-01,C1,West,Technology,Phones,Phone,99,1,0,2\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	orders, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.loads)
	require.Len(t, orders, 1)
	assert.Equal(t, "West", orders[0].Region)
}

func TestCachedSource_StaleWhenReplacedByOlderFile(t *testing.T) {
	path := writeCSV(t, header+"1,CA-1,2017-01-01,C1,East,Technology,Phones,Phone,10,1,0,2\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	inner := &countingSource{FileSource: NewCSVSource(path)}
	cached := NewCachedSource(inner, t.TempDir(), discardLogger())

	_, err := cached.Load(context.Background())
	require.NoError(t, err)

	// A restored backup keeps its own, earlier modification time.
	require.NoError(t, os.WriteFile(path, []byte(header+"1,CA-1,2017-01-01,C1,South,Technology,Phones,Phone,99,1,0,2\n"), 0o644))
	older := past.Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(path, older, older))

	orders, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.loads)
	require.Len(t, orders, 1)
	assert.Equal(t, "South", orders[0].Region)

	_, err = cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.loads)
}

func TestCachedSource_CorruptSnapshotIsIgnored(t *testing.T) {
	path := writeCSV(t, header+"1,CA-1,2017-01-01,C1,East,Technology,Phones,Phone,10,1,0,2\n")
	dir := t.TempDir()
	cached := NewCachedSource(NewCSVSource(path), dir, discardLogger())
	require.NoError(t, os.WriteFile(cached.filename(), []byte("not gob"), 0o644))

	orders, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCachedSource_UnwritableDirIsNotFatal(t *testing.T) {
	path := writeCSV(t, header+"1,CA-1,2017-01-01,C1,East,Technology,Phones,Phone,10,1,0,2\n")
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cached := NewCachedSource(NewCSVSource(path), filepath.Join(blocker, "cache"), discardLogger())
	orders, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCachedSource_InnerErrorPropagates(t *testing.T) {
	path := writeCSV(t, "")
	cached := NewCachedSource(NewCSVSource(path), t.TempDir(), discardLogger())

	_, err := cached.Load(context.Background())
	assert.True(t, errors.Is(err, ErrEmptyFile))
}
