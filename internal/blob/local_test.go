package blob

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutNestedKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	qrPath, err := l.Put(context.Background(), "qr/S01.png", []byte("matrix"))
	require.NoError(t, err)
	_, err = l.Put(context.Background(), "photos/S01.png", []byte("portrait"))
	require.NoError(t, err)

	// Same student, same filename, different prefix: both survive.
	data, err := os.ReadFile(qrPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("matrix"), data)
}

func TestLocalPutOverwrites(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	path, err := l.Put(context.Background(), "qr/S01.png", []byte("old"))
	require.NoError(t, err)
	_, err = l.Put(context.Background(), "qr/S01.png", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestLocalDeleteMissingIsNotAnError(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, l.Delete(context.Background(), "qr/S99.png"))
}
