package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWriter(t *testing.T) {
	w := NewMemoryWriter("http://localhost:8089/blobs/")

	url, err := w.Put(context.Background(), "screenshots/a.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8089/blobs/screenshots/a.jpg", url)

	obj, err := w.Get("screenshots/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, []byte("jpeg"), obj.Data)
	assert.Equal(t, []string{"screenshots/a.jpg"}, w.Keys())

	_, err = w.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryWriter("").Put(ctx, "k", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}
