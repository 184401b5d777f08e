package ginternals_test

import (
	"testing"

	"github.com/goabstract/git-index/ginternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOidFromStr(t *testing.T) {
	t.Parallel()

	t.Run("should parse a valid SHA", func(t *testing.T) {
		t.Parallel()

		oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
		require.NoError(t, err)
		assert.Equal(t, "9b91da06e69613397b38e0808e0ba5ee6983251b", oid.String())
		assert.Equal(t, byte(0x9b), oid[0])
	})

	t.Run("should reject a SHA that's too short", func(t *testing.T) {
		t.Parallel()

		_, err := ginternals.NewOidFromStr("9b91da06")
		require.Error(t, err)
	})

	t.Run("should reject non-hex chars", func(t *testing.T) {
		t.Parallel()

		_, err := ginternals.NewOidFromStr("zb91da06e69613397b38e0808e0ba5ee6983251b")
		require.Error(t, err)
	})
}

func TestNewOidFromContent(t *testing.T) {
	t.Parallel()

	t.Run("should return the SHA1 sum of the content", func(t *testing.T) {
		t.Parallel()

		// SHA1 of the blob header + "hi\n"
		oid := ginternals.NewOidFromContent([]byte("blob 3\x00hi\n"))
		assert.Equal(t, "45b983be36b73c0788dc9cbcb76cbb80fc7bb057", oid.String())
	})
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, ginternals.NullOid.IsZero())

	oid, err := ginternals.NewOidFromStr("9b91da06e69613397b38e0808e0ba5ee6983251b")
	require.NoError(t, err)
	assert.False(t, oid.IsZero())
}
