package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/uri"

	"github.com/conduit-lang/conduit/internal/lsp/config"
	"github.com/conduit-lang/conduit/internal/lsp/diagnostics"
	"github.com/conduit-lang/conduit/internal/lsp/providers"
	"github.com/conduit-lang/conduit/internal/lsp/workspace"
)

func TestNewServerWiresCollaborators(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	require.NotNil(t, s)

	assert.NotNil(t, s.ws)
	assert.NotNil(t, s.reqs)
	assert.NotNil(t, s.pool)
	assert.NotNil(t, s.diagManager)
	assert.NotNil(t, s.configStore)
	assert.NotNil(t, s.components)
	assert.NotNil(t, s.resolver)
	assert.NotNil(t, s.logger)
	assert.Equal(t, "TexLab", ServerInfoName)
}

func TestBuildCapabilitiesAdvertisesOnlyWiredProviders(t *testing.T) {
	s := NewServer(nil, providers.Set{Completer: fakeCompleter{}, Hoverer: fakeHoverer{}})

	caps := s.buildCapabilities()
	assert.NotNil(t, caps.CompletionProvider)
	assert.True(t, caps.HoverProvider)
	assert.Nil(t, caps.DefinitionProvider)
	assert.False(t, caps.ReferencesProvider)
	assert.False(t, caps.DocumentSymbolProvider)
}

func TestBuildCapabilitiesGatesSemanticTokensOnConfig(t *testing.T) {
	s := NewServer(nil, providers.Set{SemanticTokenizer: fakeSemanticTokenizer{}})

	caps := s.buildCapabilities()
	assert.Nil(t, caps.SemanticTokensProvider)

	s.configStore.Set(config.Options{EnableSemanticTokens: true})
	caps = s.buildCapabilities()
	assert.NotNil(t, caps.SemanticTokensProvider)
}

func TestWorkerCountDefaultsWithoutEnvVar(t *testing.T) {
	t.Setenv("TEXLAB_WORKERS", "")
	assert.Equal(t, 4, workerCount())
}

func TestWorkerCountHonorsEnvVar(t *testing.T) {
	t.Setenv("TEXLAB_WORKERS", "9")
	assert.Equal(t, 9, workerCount())
}

func TestWorkerCountFallsBackOnInvalidEnvVar(t *testing.T) {
	t.Setenv("TEXLAB_WORKERS", "not-a-number")
	assert.Equal(t, 4, workerCount())
}

func TestParsePositiveInt(t *testing.T) {
	n, err := parsePositiveInt("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = parsePositiveInt("0")
	assert.Error(t, err)

	_, err = parsePositiveInt("abc")
	assert.Error(t, err)
}

func TestComponentDBPathIsNonEmpty(t *testing.T) {
	assert.NotEmpty(t, componentDBPath())
}

func TestStdRWCImplementsReadWriteCloser(t *testing.T) {
	rwc := stdrwc{}
	_ = rwc.Read
	_ = rwc.Write
	_ = rwc.Close
}

func TestResolverAdapterDelegatesToFileResolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "included.tex")
	require.NoError(t, os.WriteFile(path, []byte("\\section{x}"), 0o644))

	s := NewServer(nil, providers.Set{})
	adapter := resolverAdapter{s: s}

	text, ok := adapter.Resolve(workspace.Uri(uri.File(path)))
	require.True(t, ok)
	assert.Equal(t, "\\section{x}", text)
}

func TestShutdownIsSafeWithoutDiagnosticsPipeline(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	assert.NotPanics(t, func() { s.shutdown() })
}

func TestOnOpenForwardsAnalyzeMessageToStaticChannel(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	s.diagPipeline = newTestPipeline(s)

	doc := s.ws.Open("file:///main.tex", "hello", 0, 0)
	s.onOpen(s.ws, doc)

	select {
	case msg := <-s.diagPipeline.Static:
		assert.Equal(t, "file:///main.tex", msg.URI)
	default:
		t.Fatal("expected a message on the static channel")
	}
}

func TestOnOpenAlsoForwardsToExternalWhenConfigured(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	s.diagPipeline = newTestPipeline(s)
	s.configStore.Set(config.Options{Chktex: config.ChktexOptions{OnEdit: true}})

	doc := s.ws.Open("file:///main.tex", "hello", 0, 0)
	s.onOpen(s.ws, doc)

	<-s.diagPipeline.Static
	select {
	case <-s.diagPipeline.External:
	default:
		t.Fatal("expected a message on the external channel")
	}
}

func newTestPipeline(s *Server) *diagnostics.Pipeline {
	return diagnostics.NewPipeline(s.diagManager, nil, nil, nil, s.logger, diagnostics.Options{})
}
