package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	opts, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	contents := "enable_semantic_tokens: true\ndiagnostics_delay: 500000000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "texlab.yaml"), []byte(contents), 0o644))

	opts, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, opts.EnableSemanticTokens)
}

func TestStoreGetSet(t *testing.T) {
	s := NewStore(Default())
	assert.Equal(t, Default(), s.Get())

	updated := Default()
	updated.EnableSemanticTokens = true
	s.Set(updated)
	assert.True(t, s.Get().EnableSemanticTokens)
}

func TestPullerAppliesSuccessfulPull(t *testing.T) {
	store := NewStore(Default())
	p := NewPuller(store, func() (Options, error) {
		o := Default()
		o.EnableSemanticTokens = true
		return o, nil
	})

	require.NoError(t, p.Pull())
	assert.True(t, store.Get().EnableSemanticTokens)
}

func TestPullerCoalescesConcurrentPulls(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	store := NewStore(Default())
	p := NewPuller(store, func() (Options, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return Default(), nil
	})

	done := make(chan struct{}, 2)
	go func() { _ = p.Pull(); done <- struct{}{} }()
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = p.Pull()
		done <- struct{}{}
	}()

	time.Sleep(30 * time.Millisecond)
	close(release)
	<-done
	<-done

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFileResolverResolveAndTrack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tex")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	var notified string
	r := NewFileResolver(func(p string) { notified = p })

	text, ok := r.Resolve(path)
	require.True(t, ok)
	assert.Equal(t, "hello", text)
	assert.Contains(t, r.WatchedPaths(), path)

	r.NotifyChanged(path)
	assert.Equal(t, path, notified)
}

func TestFileResolverMissingFile(t *testing.T) {
	r := NewFileResolver(nil)
	_, ok := r.Resolve("/no/such/file.tex")
	assert.False(t, ok)
}

func TestFileResolverNotifyUnresolvedPathIsNoop(t *testing.T) {
	called := false
	r := NewFileResolver(func(string) { called = true })
	r.NotifyChanged("/never/resolved.tex")
	assert.False(t, called)
}
