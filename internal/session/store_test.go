package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanviz/internal/analysis"
	"cleanviz/internal/dataset"
)

func testTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, _, err := dataset.Parse([]byte("a,b,empty\n1,2,\n,,\n3,5,\n"), dataset.DelimiterComma)
	require.NoError(t, err)
	return tbl
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, 0)
	tbl := testTable(t)

	sess, err := store.Create("data.csv", dataset.FormatCSV, tbl)
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", sess.FileName)
	assert.Equal(t, 1, store.Count())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, store.Delete(sess.ID))
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(sess.ID), ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(20*time.Millisecond, time.Hour, 0)
	sess, err := store.Create("x.csv", dataset.FormatCSV, testTable(t))
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_MaxSessions(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, 2)
	tbl := testTable(t)

	for i := 0; i < 2; i++ {
		_, err := store.Create("x.csv", dataset.FormatCSV, tbl)
		require.NoError(t, err)
	}
	_, err := store.Create("x.csv", dataset.FormatCSV, tbl)
	assert.ErrorIs(t, err, ErrStoreFull)
}

func TestStore_OnEvicted(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, 0)
	var evicted []string
	store.OnEvicted(func(id string) { evicted = append(evicted, id) })

	sess, err := store.Create("x.csv", dataset.FormatCSV, testTable(t))
	require.NoError(t, err)
	require.NoError(t, store.Delete(sess.ID))

	assert.Equal(t, []string{sess.ID}, evicted)
}

func TestSession_ApplyCleaning(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, 0)
	sess, err := store.Create("x.csv", dataset.FormatCSV, testTable(t))
	require.NoError(t, err)

	sess.Lock()
	defer sess.Unlock()

	assert.Equal(t, 3, sess.Current().NumRows())
	sess.SetPCA(&analysis.PCAResult{})

	opts := dataset.CleanOptions{DropEmptyRows: true, DropEmptyColumns: true, Renames: map[string]string{"a": "alpha"}}
	require.NoError(t, sess.ApplyCleaning(opts))

	assert.Equal(t, 2, sess.Current().NumRows())
	assert.Equal(t, []string{"alpha", "b"}, sess.Current().Names())
	assert.Equal(t, 3, sess.Original().NumRows(), "original is untouched")
	assert.Nil(t, sess.PCA(), "PCA result is cleared")

	// returned options are a copy
	got := sess.Options()
	got.Renames["a"] = "changed"
	assert.Equal(t, "alpha", sess.Options().Renames["a"])

	// so is the stored one
	opts.Renames["a"] = "mutated"
	assert.Equal(t, "alpha", sess.Options().Renames["a"])
}

func TestSession_ApplyCleaningErrorKeepsState(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, 0)
	sess, err := store.Create("x.csv", dataset.FormatCSV, testTable(t))
	require.NoError(t, err)
	pca := &analysis.PCAResult{}
	sess.SetPCA(pca)

	err = sess.ApplyCleaning(dataset.CleanOptions{Renames: map[string]string{"a": "b"}})
	assert.ErrorIs(t, err, dataset.ErrDuplicateColumn)
	assert.Equal(t, []string{"a", "b", "empty"}, sess.Current().Names())
	assert.Same(t, pca, sess.PCA())
}

func TestSession_LockSerializes(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, 0)
	sess, err := store.Create("x.csv", dataset.FormatCSV, testTable(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.Lock()
			defer sess.Unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
