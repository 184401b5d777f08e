package git_test

import (
	"testing"

	git "github.com/goabstract/git-index"
	"github.com/goabstract/git-index/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeBuilder(t *testing.T) {
	t.Parallel()

	t.Run("should build a sorted tree from unsorted inserts", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		blob, err := r.NewBlob([]byte("hi\n"))
		require.NoError(t, err)

		tb := r.NewTreeBuilder()
		require.NoError(t, tb.Insert("z.txt", blob.ID(), object.ModeFile))
		require.NoError(t, tb.Insert("a.txt", blob.ID(), object.ModeFile))

		tree, err := tb.Write()
		require.NoError(t, err)

		entries := tree.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "a.txt", entries[0].Path)
		assert.Equal(t, "z.txt", entries[1].Path)

		// the tree must be in the odb
		o, err := r.GetObject(tree.ID())
		require.NoError(t, err)
		assert.Equal(t, object.TypeTree, o.Type())
	})

	t.Run("should reject an invalid mode", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		blob, err := r.NewBlob([]byte("hi\n"))
		require.NoError(t, err)

		tb := r.NewTreeBuilder()
		err = tb.Insert("a.txt", blob.ID(), object.TreeObjectMode(0o100664))
		require.Error(t, err)
	})

	t.Run("should reject an object missing from the odb", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		// a valid oid that was never stored
		o := object.New(object.TypeBlob, []byte("never stored\n"))
		tb := r.NewTreeBuilder()
		err = tb.Insert("a.txt", o.ID(), object.ModeFile)
		require.Error(t, err)
	})

	t.Run("NewTreeBuilderFromTree should carry the existing entries", func(t *testing.T) {
		t.Parallel()

		cfg := newMemRepositoryConfig(t)
		r, err := git.InitRepositoryWithOptions(cfg, git.Options{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		blob, err := r.NewBlob([]byte("hi\n"))
		require.NoError(t, err)

		tb := r.NewTreeBuilder()
		require.NoError(t, tb.Insert("a.txt", blob.ID(), object.ModeFile))
		tree, err := tb.Write()
		require.NoError(t, err)

		tb2 := r.NewTreeBuilderFromTree(tree)
		tb2.Remove("a.txt")
		require.NoError(t, tb2.Insert("b.txt", blob.ID(), object.ModeFile))
		tree2, err := tb2.Write()
		require.NoError(t, err)

		entries := tree2.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "b.txt", entries[0].Path)
	})
}
