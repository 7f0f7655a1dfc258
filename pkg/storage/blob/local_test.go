package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutGetDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1/20240501_090000_statement.txt", []byte("hello"), "text/plain"))
	data, err := store.Get(ctx, "u1/20240501_090000_statement.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "u1/20240501_090000_statement.txt"))
	_, err = store.Get(ctx, "u1/20240501_090000_statement.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "u1/20240501_090000_statement.txt"))
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Put(context.Background(), "../escape.txt", []byte("x"), ""))
}
