package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTree implements ParsedTree with a fixed set of include edges.
type fakeTree struct {
	includes []Uri
}

func (t *fakeTree) Includes() []Uri     { return t.includes }
func (t *fakeTree) Citations() []string { return nil }

// fakeParser builds a fakeTree from a table of uri -> includes set up by
// the test, keyed by the text passed to Parse (tests encode includes as
// the document text for simplicity).
type fakeParser struct {
	includesByText map[string][]Uri
}

func (p *fakeParser) Parse(_ Language, text string) ParsedTree {
	return &fakeTree{includes: p.includesByText[text]}
}

// fakeResolver resolves a fixed set of on-disk documents.
type fakeResolver struct {
	files map[Uri]string
}

func (r *fakeResolver) Resolve(uri Uri) (string, bool) {
	text, ok := r.files[uri]
	return text, ok
}

func TestOpenAndGet(t *testing.T) {
	ws := New(nil, nil, nil)

	doc := ws.Open("file:///a.tex", "hello", LanguageLatex, SourceClient)
	require.NotNil(t, doc)
	assert.Equal(t, "hello", ws.Get("file:///a.tex").Text)
}

func TestOpenReplacesWithoutMutatingPriorSnapshot(t *testing.T) {
	ws := New(nil, nil, nil)

	first := ws.Open("file:///a.tex", "v1", LanguageLatex, SourceClient)
	ws.Open("file:///a.tex", "v2", LanguageLatex, SourceClient)

	assert.Equal(t, "v1", first.Text, "prior snapshot must not observe later updates")
	assert.Equal(t, "v2", ws.Get("file:///a.tex").Text)
}

func TestClientOpenWinsOverServerDocument(t *testing.T) {
	ws := New(nil, nil, nil)

	ws.Open("file:///a.tex", "server copy", LanguageLatex, SourceServer)
	ws.Open("file:///a.tex", "client copy", LanguageLatex, SourceClient)

	doc := ws.Get("file:///a.tex")
	assert.Equal(t, "client copy", doc.Text)
	assert.Equal(t, SourceClient, doc.Source)
}

func TestCloseRemovesOnlyClientDocuments(t *testing.T) {
	ws := New(nil, nil, nil)

	ws.Open("file:///client.tex", "x", LanguageLatex, SourceClient)
	ws.Open("file:///server.tex", "y", LanguageLatex, SourceServer)

	ws.Close("file:///client.tex")
	ws.Close("file:///server.tex")

	assert.Nil(t, ws.Get("file:///client.tex"))
	assert.NotNil(t, ws.Get("file:///server.tex"), "server-discovered documents survive close")
}

func TestSubsetUnknownURIReturnsNil(t *testing.T) {
	ws := New(nil, nil, nil)
	assert.Nil(t, ws.Subset("file:///missing.tex"))
}

func TestSubsetContainsSelfAndIncludes(t *testing.T) {
	parser := &fakeParser{includesByText: map[string][]Uri{
		"root": {"file:///b.tex"},
	}}
	ws := New(parser, nil, nil)

	ws.Open("file:///a.tex", "root", LanguageLatex, SourceClient)
	ws.Open("file:///b.tex", "leaf", LanguageLatex, SourceClient)

	subset := ws.Subset("file:///a.tex")
	require.Len(t, subset, 2)
	assert.Equal(t, Uri("file:///a.tex"), subset[0].URI)
	assert.Equal(t, Uri("file:///b.tex"), subset[1].URI)
}

func TestSubsetResolvesUnopenedIncludesViaResolver(t *testing.T) {
	parser := &fakeParser{includesByText: map[string][]Uri{
		"root": {"file:///b.tex"},
	}}
	resolver := &fakeResolver{files: map[Uri]string{
		"file:///b.tex": "leaf",
	}}
	ws := New(parser, resolver, nil)

	ws.Open("file:///a.tex", "root", LanguageLatex, SourceClient)

	subset := ws.Subset("file:///a.tex")
	require.Len(t, subset, 2)
	assert.Equal(t, SourceServer, subset[1].Source)
}

func TestSubsetBreaksCycles(t *testing.T) {
	parser := &fakeParser{includesByText: map[string][]Uri{
		"a": {"file:///b.tex"},
		"b": {"file:///a.tex"},
	}}
	ws := New(parser, nil, nil)

	ws.Open("file:///a.tex", "a", LanguageLatex, SourceClient)
	ws.Open("file:///b.tex", "b", LanguageLatex, SourceClient)

	subset := ws.Subset("file:///a.tex")
	assert.Len(t, subset, 2)
}

func TestRegisterOpenHandlerInvokedInOrder(t *testing.T) {
	ws := New(nil, nil, nil)

	var calls []int
	ws.RegisterOpenHandler(func(_ *Workspace, _ *Document) { calls = append(calls, 1) })
	ws.RegisterOpenHandler(func(_ *Workspace, _ *Document) { calls = append(calls, 2) })

	ws.Open("file:///a.tex", "x", LanguageLatex, SourceClient)

	assert.Equal(t, []int{1, 2}, calls)
}

func TestClassifyLanguage(t *testing.T) {
	assert.Equal(t, LanguageBibtex, ClassifyLanguage("file:///refs.bib"))
	assert.Equal(t, LanguageLatex, ClassifyLanguage("file:///main.tex"))
}
