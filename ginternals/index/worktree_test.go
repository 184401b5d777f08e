package index_test

import (
	"testing"
	"time"

	"github.com/goabstract/git-index/ginternals/object"
	"github.com/goabstract/git-index/internal/fsutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRefreshesExistingEntry(t *testing.T) {
	t.Parallel()

	idx, cfg, _ := newTestIndex(t)
	writeWorkTreeFile(t, cfg, "a.txt", "hi\n")

	first, err := idx.Add("a.txt")
	require.NoError(t, err)
	require.NoError(t, idx.Write())

	t.Run("should report a content change", func(t *testing.T) {
		writeWorkTreeFile(t, cfg, "a.txt", "hello\n")

		e, err := idx.Add("a.txt")
		require.NoError(t, err)
		assert.Same(t, first, e, "the entry should be reused")
		assert.Equal(t, int32(6), e.Size)
		assert.NotEqual(t, "45b983be36b73c0788dc9cbcb76cbb80fc7bb057", e.ID.String())
		assert.True(t, idx.HasChanges())
	})
}

func TestAddDetectsExecutableFlip(t *testing.T) {
	t.Parallel()

	if !fsutil.SupportsExecute() {
		t.Skip("the filesystem has no executable bit")
	}

	idx, cfg, odb := newTestIndex(t)
	writeWorkTreeFile(t, cfg, "run.sh", "#!/bin/sh\n")

	e, err := idx.Add("run.sh")
	require.NoError(t, err)
	require.Equal(t, object.ModeFile, e.Mode)
	require.NoError(t, idx.Write())

	require.NoError(t, cfg.FS.Chmod("/repo/run.sh", 0o755))

	e, err = idx.Add("run.sh")
	require.NoError(t, err)
	assert.Equal(t, object.ModeExecutable, e.Mode)
	// a mode flip is a content-level change
	assert.True(t, idx.HasChanges())

	oid, err := idx.WriteTree()
	require.NoError(t, err)

	o, err := odb.Object(oid)
	require.NoError(t, err)
	tree, err := o.AsTree()
	require.NoError(t, err)
	require.Len(t, tree.Entries(), 1)
	assert.Equal(t, object.ModeExecutable, tree.Entries()[0].Mode)
}

func TestAddHonorsFileModeConfig(t *testing.T) {
	t.Parallel()

	if !fsutil.SupportsExecute() {
		t.Skip("the filesystem has no executable bit")
	}

	_, cfg, _ := newTestIndex(t)
	require.NoError(t, afero.WriteFile(cfg.FS, cfg.LocalConfig, []byte("[core]\n\tfilemode = false\n"), 0o644))
	// reload the config files so core.filemode is picked up
	cfg2 := reloadConfig(t, cfg)
	idx2, _ := newTestIndexWithConfig(t, cfg2)

	require.NoError(t, afero.WriteFile(cfg2.FS, "/repo/run.sh", []byte("#!/bin/sh\n"), 0o755))

	e, err := idx2.Add("run.sh")
	require.NoError(t, err)
	assert.Equal(t, object.ModeFile, e.Mode, "filemode=false should ignore the executable bit")
}

func TestIsModified(t *testing.T) {
	t.Parallel()

	idx, cfg, _ := newTestIndex(t)
	writeWorkTreeFile(t, cfg, "a.txt", "hi\n")
	e, err := idx.Add("a.txt")
	require.NoError(t, err)

	t.Run("a fresh entry should not be modified", func(t *testing.T) {
		assert.False(t, idx.IsModified(e, false))
	})

	t.Run("assume-valid should win over everything", func(t *testing.T) {
		writeWorkTreeFile(t, cfg, "a.txt", "something else entirely\n")
		e.SetAssumeValid(true)
		assert.False(t, idx.IsModified(e, false))
		e.SetAssumeValid(false)
		// restore the content, but the mtime changed
		writeWorkTreeFile(t, cfg, "a.txt", "hi\n")
	})

	t.Run("update-needed should force a positive answer", func(t *testing.T) {
		e.SetUpdateNeeded(true)
		assert.True(t, idx.IsModified(e, false))
		e.SetUpdateNeeded(false)
	})

	t.Run("a missing file should be modified", func(t *testing.T) {
		require.NoError(t, cfg.FS.Remove("/repo/a.txt"))
		assert.True(t, idx.IsModified(e, false))
		writeWorkTreeFile(t, cfg, "a.txt", "hi\n")
	})

	t.Run("a size change should be modified", func(t *testing.T) {
		writeWorkTreeFile(t, cfg, "a.txt", "hi there\n")
		assert.True(t, idx.IsModified(e, false))
		writeWorkTreeFile(t, cfg, "a.txt", "hi\n")
	})

	t.Run("a same-size touch should be modified without a content check", func(t *testing.T) {
		now := time.Now().Add(time.Hour)
		require.NoError(t, cfg.FS.Chtimes("/repo/a.txt", now, now))
		assert.True(t, idx.IsModified(e, false))
	})

	t.Run("a same-size touch should not be modified with a content check", func(t *testing.T) {
		assert.False(t, idx.IsModified(e, true))
	})

	t.Run("a content change hidden behind a touch should be caught by the content check", func(t *testing.T) {
		writeWorkTreeFile(t, cfg, "a.txt", "ho\n")
		assert.True(t, idx.IsModified(e, true))
		writeWorkTreeFile(t, cfg, "a.txt", "hi\n")
	})

	t.Run("a second-granular cached mtime should round the file timestamp", func(t *testing.T) {
		// pretend the entry was stored on a filesystem with
		// second-granular timestamps
		rounded := time.Now().Truncate(time.Second)
		e.MTimeNs = rounded.UnixNano()
		require.NoError(t, cfg.FS.Chtimes("/repo/a.txt", rounded.Add(123*time.Nanosecond), rounded.Add(123*time.Nanosecond)))
		assert.False(t, idx.IsModified(e, false))
	})
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	idx, cfg, odb := newTestIndex(t)
	writeWorkTreeFile(t, cfg, "a.txt", "hi\n")
	writeWorkTreeFile(t, cfg, "b/c.txt", "hello\n")
	for _, f := range []string{"a.txt", "b/c.txt"} {
		_, err := idx.Add(f)
		require.NoError(t, err)
	}
	require.NoError(t, idx.Write())

	// wipe the working tree
	require.NoError(t, cfg.FS.Remove("/repo/a.txt"))
	require.NoError(t, cfg.FS.RemoveAll("/repo/b"))

	loaded := newIndexForBackend(t, cfg, odb)
	require.NoError(t, loaded.Read())
	require.NoError(t, loaded.Checkout())

	content, err := afero.ReadFile(cfg.FS, "/repo/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi\n"), content)

	content, err = afero.ReadFile(cfg.FS, "/repo/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), content)

	// the entries' stat cache must match the fresh files
	for _, e := range loaded.Entries() {
		assert.False(t, loaded.IsModified(e, false), "%s should not report as modified", e.Name())
	}
}
