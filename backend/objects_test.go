package backend_test

import (
	"testing"

	"github.com/goabstract/git-index/backend"
	"github.com/goabstract/git-index/ginternals"
	"github.com/goabstract/git-index/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteObject(t *testing.T) {
	t.Parallel()

	t.Run("should persist and return the object's oid", func(t *testing.T) {
		t.Parallel()

		b, cfg := newTestBackend(t)
		o := object.New(object.TypeBlob, []byte("hi\n"))

		oid, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.Equal(t, "45b983be36b73c0788dc9cbcb76cbb80fc7bb057", oid.String())

		p := ginternals.LooseObjectPath(cfg, oid.String())
		_, err = cfg.FS.Stat(p)
		require.NoError(t, err, "the loose object should be on disk")
	})

	t.Run("should be idempotent", func(t *testing.T) {
		t.Parallel()

		b, _ := newTestBackend(t)
		o := object.New(object.TypeBlob, []byte("hi\n"))

		oid1, err := b.WriteObject(o)
		require.NoError(t, err)
		oid2, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.Equal(t, oid1, oid2)
	})
}

func TestObject(t *testing.T) {
	t.Parallel()

	t.Run("should round-trip an object", func(t *testing.T) {
		t.Parallel()

		b, _ := newTestBackend(t)
		o := object.New(object.TypeBlob, []byte("hi\n"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		loaded, err := b.Object(oid)
		require.NoError(t, err)
		assert.Equal(t, o.ID(), loaded.ID())
		assert.Equal(t, o.Type(), loaded.Type())
		assert.Equal(t, o.Bytes(), loaded.Bytes())
	})

	t.Run("should return ErrObjectNotFound for an unknown oid", func(t *testing.T) {
		t.Parallel()

		b, _ := newTestBackend(t)
		oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
		require.NoError(t, err)

		_, err = b.Object(oid)
		require.Error(t, err)
		assert.ErrorIs(t, err, ginternals.ErrObjectNotFound)
	})

	t.Run("a fresh backend should see the objects written by another one", func(t *testing.T) {
		t.Parallel()

		b, cfg := newTestBackend(t)
		o := object.New(object.TypeBlob, []byte("hello\n"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		b2, err := backend.New(cfg)
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, b2.Close())
		})

		loaded, err := b2.Object(oid)
		require.NoError(t, err)
		assert.Equal(t, o.Bytes(), loaded.Bytes())
	})
}

func TestHasObject(t *testing.T) {
	t.Parallel()

	b, _ := newTestBackend(t)
	o := object.New(object.TypeBlob, []byte("hi\n"))
	oid, err := b.WriteObject(o)
	require.NoError(t, err)

	assert.True(t, b.HasObject(oid))

	other, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
	require.NoError(t, err)
	assert.False(t, b.HasObject(other))
}
