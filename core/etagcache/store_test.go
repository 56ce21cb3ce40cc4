package etagcache

import (
	"net/http"
	"path/filepath"
	"testing"

	"market-sync/core/esi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundtrip(t *testing.T) {
	store := testStore(t)

	err := store.Write(10000003, []esi.Result{
		{TypeID: 34, Status: http.StatusOK, ETag: `"abc"`, LastModified: "Mon, 31 Aug 2026 00:00:00 GMT"},
	})
	require.NoError(t, err)

	entry, err := store.Read(34, 10000003)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, `"abc"`, entry.ETag)
	assert.Equal(t, "Mon, 31 Aug 2026 00:00:00 GMT", entry.LastModified)
	assert.False(t, entry.LastChecked.IsZero())
}

func TestStoreReadAbsent(t *testing.T) {
	store := testStore(t)

	entry, err := store.Read(34, 10000003)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStoreSkipsUncacheableResults(t *testing.T) {
	store := testStore(t)

	err := store.Write(10000003, []esi.Result{
		{TypeID: 34, Status: http.StatusOK},
		{TypeID: 35, Status: http.StatusNotModified, ETag: `"ignored"`},
		{TypeID: 36, Status: http.StatusOK, ETag: `"kept"`},
	})
	require.NoError(t, err)

	for _, typeID := range []int64{34, 35} {
		entry, err := store.Read(typeID, 10000003)
		require.NoError(t, err)
		assert.Nil(t, entry, "type %d should not be cached", typeID)
	}

	entry, err := store.Read(36, 10000003)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, `"kept"`, entry.ETag)
}

func TestStoreOverwrite(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Write(10000003, []esi.Result{
		{TypeID: 34, Status: http.StatusOK, ETag: `"old"`},
	}))
	require.NoError(t, store.Write(10000003, []esi.Result{
		{TypeID: 34, Status: http.StatusOK, ETag: `"new"`},
	}))

	entry, err := store.Read(34, 10000003)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, `"new"`, entry.ETag)
}

func TestStoreRegionIsolation(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Write(10000003, []esi.Result{
		{TypeID: 34, Status: http.StatusOK, ETag: `"forge"`},
	}))
	require.NoError(t, store.Write(10000043, []esi.Result{
		{TypeID: 34, Status: http.StatusOK, ETag: `"domain"`},
	}))

	conds, err := store.Conditionals(10000003, []int64{34})
	require.NoError(t, err)
	assert.Equal(t, map[int64]esi.Conditional{34: {ETag: `"forge"`}}, conds)
}

func TestStoreConditionals(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Write(10000003, []esi.Result{
		{TypeID: 34, Status: http.StatusOK, ETag: `"a"`},
		{TypeID: 35, Status: http.StatusOK, LastModified: "Sun, 30 Aug 2026 00:00:00 GMT"},
	}))

	conds, err := store.Conditionals(10000003, []int64{34, 35, 36})
	require.NoError(t, err)
	assert.Len(t, conds, 2)
	assert.Equal(t, `"a"`, conds[34].ETag)
	assert.Equal(t, "Sun, 30 Aug 2026 00:00:00 GMT", conds[35].LastModified)
	_, present := conds[36]
	assert.False(t, present)
}
