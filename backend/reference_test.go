package backend_test

import (
	"testing"

	"github.com/goabstract/git-index/backend"
	"github.com/goabstract/git-index/ginternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReference(t *testing.T) {
	t.Parallel()

	t.Run("should store an oid reference", func(t *testing.T) {
		t.Parallel()

		b, _ := newTestBackend(t)
		oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
		require.NoError(t, err)

		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", oid)))

		ref, err := b.Reference("refs/heads/master")
		require.NoError(t, err)
		assert.Equal(t, ginternals.OidReference, ref.Type())
		assert.Equal(t, oid, ref.Target())
	})

	t.Run("should follow a symbolic reference to its target", func(t *testing.T) {
		t.Parallel()

		b, _ := newTestBackend(t)
		oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
		require.NoError(t, err)

		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", oid)))
		require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, "refs/heads/master")))

		ref, err := b.Reference(ginternals.Head)
		require.NoError(t, err)
		assert.Equal(t, ginternals.SymbolicReference, ref.Type())
		assert.Equal(t, oid, ref.Target())
	})

	t.Run("should overwrite an existing reference", func(t *testing.T) {
		t.Parallel()

		b, _ := newTestBackend(t)
		oid1, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
		require.NoError(t, err)
		oid2, err := ginternals.NewOidFromStr("45b983be36b73c0788dc9cbcb76cbb80fc7bb057")
		require.NoError(t, err)

		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", oid1)))
		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", oid2)))

		ref, err := b.Reference("refs/heads/master")
		require.NoError(t, err)
		assert.Equal(t, oid2, ref.Target())
	})
}

func TestWriteReferenceSafe(t *testing.T) {
	t.Parallel()

	b, _ := newTestBackend(t)
	oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
	require.NoError(t, err)

	require.NoError(t, b.WriteReferenceSafe(ginternals.NewReference("refs/heads/master", oid)))

	err = b.WriteReferenceSafe(ginternals.NewReference("refs/heads/master", oid))
	require.Error(t, err)
	assert.ErrorIs(t, err, ginternals.ErrRefExists)
}

func TestReferencesSurviveReload(t *testing.T) {
	t.Parallel()

	b, cfg := newTestBackend(t)
	oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
	require.NoError(t, err)
	require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", oid)))
	require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, "refs/heads/master")))

	b2, err := backend.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, b2.Close())
	})

	ref, err := b2.Reference(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, oid, ref.Target())
}
