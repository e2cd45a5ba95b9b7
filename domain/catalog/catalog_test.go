package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_RecordAndAnnotated(t *testing.T) {
	c := openTemp(t)

	ok, err := c.Annotated("cat.jpg")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Record(Entry{Image: "cat.jpg", Boxes: 2, JSONPath: "/out/cat.jpg.json", ImagePath: "/out/cat.jpg.png"}))

	ok, err = c.Annotated("cat.jpg")
	require.NoError(t, err)
	require.True(t, ok)

	n, err := c.Count()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCatalog_RecordReplaces(t *testing.T) {
	c := openTemp(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.Record(Entry{Image: "dog.png", Boxes: 1}))
	require.NoError(t, c.Record(Entry{Image: "dog.png", Boxes: 4, JSONPath: "dog.png.json", SavedAt: at}))

	e, ok, err := c.Lookup("dog.png")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, e.Boxes)
	require.Equal(t, "dog.png.json", e.JSONPath)
	require.True(t, at.Equal(e.SavedAt))

	n, err := c.Count()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCatalog_LookupMissing(t *testing.T) {
	c := openTemp(t)
	_, ok, err := c.Lookup("none.png")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCatalog_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Record(Entry{Image: "a.png", Boxes: 1}))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	ok, err := c.Annotated("a.png")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCatalog_OpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "catalog.db")
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()
	n, err := c.Count()
	require.NoError(t, err)
	require.Zero(t, n)
}
