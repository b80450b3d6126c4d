package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "snapshots/scene-001.bin"
	data := []byte("hello world, this is a test blob for objectmap")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	err = w.Close()
	require.NoError(t, err)

	// Verify file exists on disk
	expectedPath := filepath.Join(tmpDir, "snapshots", "scene-001.bin")
	_, err = os.Stat(expectedPath)
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadRange
	// Read "this" (offset 13, length 4)
	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	// 4. List (sorted, slash-separated names)
	blobName2 := "snapshots/scene-002.bin"
	w2, err := store.Create(ctx, blobName2)
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	blobs, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{blobName, blobName2}, blobs)

	// 5. Delete
	err = store.Delete(ctx, blobName)
	require.NoError(t, err)

	blobsAfter, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{blobName2}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error.
	require.NoError(t, store.Delete(ctx, blobName))
}

func TestLocalStore_CreateIsAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	w, err := store.Create(ctx, "pending.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("half-written"))
	require.NoError(t, err)

	// Still open: neither Open nor List may observe the blob.
	_, err = store.Open(ctx, "pending.bin")
	require.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, w.Close())

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"pending.bin"}, names)
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "obj", []byte("v1")))
	require.NoError(t, store.Put(ctx, "obj", []byte("v2 longer")))

	blob, err := store.Open(ctx, "obj")
	require.NoError(t, err)
	defer blob.Close()

	content, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, "v2 longer", string(content))
}

func TestLocalStore_ReadRangeBoundaries(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blobName := "boundary.bin"
	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, blobName, data))

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	// Case 1: full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	// Case 2: range extends past end, truncated
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Case 3: offset past EOF
	r, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
	if r != nil {
		r.Close()
	}
}

func TestLocalStore_ContextCanceled(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	require.NoError(t, store.Put(context.Background(), "obj", []byte("data")))

	blob, err := store.Open(context.Background(), "obj")
	require.NoError(t, err)
	defer blob.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = blob.ReadAt(ctx, make([]byte, 4), 0)
	require.True(t, errors.Is(err, context.Canceled))
}
