package phazer_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/phazer/pkg/errors"
	"github.com/arthur-debert/phazer/pkg/phazer"
	"github.com/arthur-debert/phazer/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveWorkingPath(t *testing.T) {
	pid := os.Getpid()

	tests := []struct {
		name   string
		target string
		suffix string
	}{
		{
			name:   "target with extension",
			target: "names.zip",
			suffix: fmt.Sprintf("names.zip.phazer-working-%d-", pid),
		},
		{
			name:   "target without extension",
			target: "names",
			suffix: fmt.Sprintf("names.phazer-working-%d-", pid),
		},
		{
			name:   "leading-dot name has no extension",
			target: ".bashrc",
			suffix: fmt.Sprintf(".bashrc.phazer-working-%d-", pid),
		},
		{
			name:   "nested path keeps its directory",
			target: filepath.Join("a", "b", "config.toml"),
			suffix: fmt.Sprintf("config.toml.phazer-working-%d-", pid),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := phazer.New(tt.target)
			defer func() { _ = p.Close() }()

			working := p.WorkingPath()
			assert.Equal(t, filepath.Dir(tt.target), filepath.Dir(working))
			assert.True(t, strings.HasPrefix(filepath.Base(working), filepath.Base(tt.suffix)),
				"working %q should start with %q", filepath.Base(working), filepath.Base(tt.suffix))
			assert.NotEqual(t, tt.target, working)
		})
	}
}

func TestWorkingPathsAreUniquePerEngine(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		p := phazer.New("same-target.dat")
		assert.False(t, seen[p.WorkingPath()], "duplicate working path %s", p.WorkingPath())
		seen[p.WorkingPath()] = true
		_ = p.Close()
	}
}

func TestNoWriterCommitIsNoOp(t *testing.T) {
	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "never-written.cfg")

	p := phazer.New(target)
	require.NoError(t, p.Commit())

	assert.False(t, testutil.FileExists(t, target), "target must stay absent")
	assert.False(t, testutil.FileExists(t, p.WorkingPath()))
}

func TestNoWriterCommitLeavesExistingTargetUnchanged(t *testing.T) {
	dir := testutil.TempDir(t)
	target := testutil.CreateFile(t, dir, "existing.cfg", "old content")

	p := phazer.New(target)
	require.NoError(t, p.Commit())

	assert.Equal(t, "old content", testutil.ReadFile(t, target))
}

func TestRoundTrip(t *testing.T) {
	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "config.toml")

	publish := func(content string) string {
		p := phazer.New(target)
		defer func() { _ = p.Close() }()

		w, err := p.Writer()
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.NoError(t, p.Commit())
		return p.WorkingPath()
	}

	working1 := publish("first contents")
	assert.Equal(t, "first contents", testutil.ReadFile(t, target))

	working2 := publish("second contents")
	assert.Equal(t, "second contents", testutil.ReadFile(t, target))

	assert.False(t, testutil.FileExists(t, working1))
	assert.False(t, testutil.FileExists(t, working2))
}

func TestCleanupOnAbandonment(t *testing.T) {
	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "abandoned.dat")

	p := phazer.New(target)
	w, err := p.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("never published"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	working := p.WorkingPath()
	assert.True(t, testutil.FileExists(t, working))

	require.NoError(t, p.Close())

	assert.False(t, testutil.FileExists(t, working), "working file must be removed on abandonment")
	assert.False(t, testutil.FileExists(t, target), "target must never appear")
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := testutil.TempDir(t)
	p := phazer.New(filepath.Join(dir, "x.dat"))

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func TestCloseAfterCommitLeavesTargetAlone(t *testing.T) {
	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "keep.dat")

	p := phazer.New(target)
	w, err := p.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("published"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, p.Commit())

	require.NoError(t, p.Close())
	assert.Equal(t, "published", testutil.ReadFile(t, target))
}

func TestSecondWriterDoesNotTruncate(t *testing.T) {
	dir := testutil.TempDir(t)
	p := phazer.New(filepath.Join(dir, "incremental.log"))
	defer func() { _ = p.Close() }()

	w1, err := p.Writer()
	require.NoError(t, err)
	_, err = w1.Write([]byte("part one"))
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	w2, err := p.Writer()
	require.NoError(t, err)
	data, err := io.ReadAll(w2)
	require.NoError(t, err)
	assert.Equal(t, "part one", string(data), "reopening must not truncate")

	_, err = w2.Write([]byte(" part two"))
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	require.NoError(t, p.Commit())
	assert.Equal(t, "part one part two", testutil.ReadFile(t, p.TargetPath()))
}

func TestCommitWithOpenWriterFailsFast(t *testing.T) {
	dir := testutil.TempDir(t)
	p := phazer.New(filepath.Join(dir, "guarded.dat"))
	defer func() { _ = p.Close() }()

	w, err := p.Writer()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	err = p.Commit()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWriterOpen))

	// The guard error must leave the engine usable.
	require.NoError(t, w.Close())
	require.NoError(t, p.Commit())
}

func TestUseAfterCommitReturnsConsumed(t *testing.T) {
	dir := testutil.TempDir(t)
	p := phazer.New(filepath.Join(dir, "spent.dat"))

	require.NoError(t, p.Commit())

	_, err := p.Writer()
	assert.True(t, errors.IsErrorCode(err, errors.ErrConsumed))
	assert.True(t, errors.IsErrorCode(p.Commit(), errors.ErrConsumed))
	assert.True(t, errors.IsErrorCode(p.CommitRecoverable(), errors.ErrConsumed))
}

func TestCommitFailureRemovesWorkingFile(t *testing.T) {
	testutil.SkipIfRoot(t)

	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "blocked.dat")

	p := phazer.New(target)
	w, err := p.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("unpublishable"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// A read-only directory blocks the rename.
	require.NoError(t, os.Chmod(dir, 0555))
	defer func() { _ = os.Chmod(dir, 0755) }()

	err = p.Commit()
	require.Error(t, err)

	require.NoError(t, os.Chmod(dir, 0755))
	assert.False(t, testutil.FileExists(t, p.WorkingPath()),
		"failed non-recoverable commit must not leave the working file behind")
	assert.False(t, testutil.FileExists(t, target))
}

func TestCommitRecoverablePreservesWorkingFile(t *testing.T) {
	testutil.SkipIfRoot(t)

	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "recover.dat")

	p := phazer.New(target)
	defer func() { _ = p.Close() }()

	w, err := p.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("worth retrying"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, os.Chmod(dir, 0555))
	restored := false
	defer func() {
		if !restored {
			_ = os.Chmod(dir, 0755)
		}
	}()

	err = p.CommitRecoverable()
	require.Error(t, err)

	require.NoError(t, os.Chmod(dir, 0755))
	restored = true

	assert.True(t, testutil.FileExists(t, p.WorkingPath()),
		"working file must survive a failed recoverable commit")
	assert.Equal(t, "worth retrying", testutil.ReadFile(t, p.WorkingPath()))

	// With the obstruction gone the same engine commits cleanly.
	require.NoError(t, p.Commit())
	assert.Equal(t, "worth retrying", testutil.ReadFile(t, target))
}

func TestWriteFrom(t *testing.T) {
	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "streamed.bin")

	p := phazer.New(target)
	defer func() { _ = p.Close() }()

	content := bytes.Repeat([]byte("streaming payload "), 4096)
	n, err := p.WriteFrom(context.Background(), bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	require.NoError(t, p.Commit())
	assert.Equal(t, string(content), testutil.ReadFile(t, target))
}

func TestWriteFromCancelledContext(t *testing.T) {
	dir := testutil.TempDir(t)
	target := filepath.Join(dir, "cancelled.bin")

	p := phazer.New(target)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.WriteFrom(ctx, bytes.NewReader([]byte("doomed")))
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, p.Close())
	assert.False(t, testutil.FileExists(t, target), "cancelled transfer must not touch the target")
	assert.False(t, testutil.FileExists(t, p.WorkingPath()))
}
