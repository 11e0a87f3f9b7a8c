package lsp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/conduit/internal/lsp/providers"
	"github.com/conduit-lang/conduit/internal/lsp/reqqueue"
	"github.com/conduit-lang/conduit/internal/lsp/workspace"
)

// --- fakes ---

type fakeCompleter struct{ items []providers.CompletionItem }

func (f fakeCompleter) Complete(context.Context, providers.Context, providers.Position) ([]providers.CompletionItem, error) {
	return f.items, nil
}

type fakeHoverer struct {
	hover *providers.Hover
	err   error
}

func (f fakeHoverer) Hover(context.Context, providers.Context, providers.Position) (*providers.Hover, error) {
	return f.hover, f.err
}

type fakeSemanticTokenizer struct{}

func (fakeSemanticTokenizer) SemanticTokens(context.Context, providers.Context) ([]providers.SemanticToken, error) {
	return nil, nil
}

// --- conversions ---

func TestToProvidersPos(t *testing.T) {
	p := toProvidersPos(protocol.Position{Line: 2, Character: 5})
	assert.Equal(t, providers.Position{Line: 2, Character: 5}, p)
}

func TestToProtocolRange(t *testing.T) {
	r := toProtocolRange(providers.Range{
		Start: providers.Position{Line: 1, Character: 2},
		End:   providers.Position{Line: 3, Character: 4},
	})
	assert.Equal(t, uint32(1), r.Start.Line)
	assert.Equal(t, uint32(4), r.End.Character)
}

func TestClassifyParamLanguageExplicit(t *testing.T) {
	assert.Equal(t, workspace.LanguageBibtex, classifyParamLanguage("bibtex", "file:///x.tex"))
	assert.Equal(t, workspace.LanguageLatex, classifyParamLanguage("latex", "file:///x.bib"))
}

func TestClassifyParamLanguageFallsBackToExtension(t *testing.T) {
	assert.Equal(t, workspace.LanguageBibtex, classifyParamLanguage("plaintext", "file:///refs.bib"))
	assert.Equal(t, workspace.LanguageLatex, classifyParamLanguage("plaintext", "file:///main.tex"))
}

func TestToJSONRPCID(t *testing.T) {
	assert.Equal(t, jsonrpc2.NewNumberID(7), toJSONRPCID(float64(7)))
	assert.Equal(t, jsonrpc2.NewStringID("req-1"), toJSONRPCID("req-1"))
}

// --- feature execution ---

func TestFeatureContextUnknownDocumentReturnsError(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	_, err := s.featureContext("file:///missing.tex")
	assert.ErrorIs(t, err, errUnknownDocument)
}

func TestExecCompletionReturnsConvertedItems(t *testing.T) {
	s := NewServer(nil, providers.Set{Completer: fakeCompleter{items: []providers.CompletionItem{
		{Label: "\\draw", InsertText: "\\draw", IsSnippet: true},
	}}})
	s.ws.Open("file:///main.tex", "\\dr", workspace.LanguageLatex, workspace.SourceClient)

	result, err := s.execCompletion(context.Background(), protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///main.tex"},
		},
	})
	require.NoError(t, err)
	list := result.(protocol.CompletionList)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "\\draw", list.Items[0].Label)
	assert.Equal(t, protocol.InsertTextFormatSnippet, list.Items[0].InsertTextFormat)
}

func TestExecCompletionUnknownDocument(t *testing.T) {
	s := NewServer(nil, providers.Set{Completer: fakeCompleter{}})
	_, err := s.execCompletion(context.Background(), protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.tex"},
		},
	})
	assert.ErrorIs(t, err, errUnknownDocument)
}

func TestExecCompletionNoProviderReturnsEmptyList(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	result, err := s.execCompletion(context.Background(), protocol.CompletionParams{})
	require.NoError(t, err)
	assert.Equal(t, protocol.CompletionList{}, result)
}

func TestExecHoverReturnsNilWhenNoHoverFound(t *testing.T) {
	s := NewServer(nil, providers.Set{Hoverer: fakeHoverer{}})
	s.ws.Open("file:///main.tex", "text", workspace.LanguageLatex, workspace.SourceClient)

	result, err := s.execHover(context.Background(), protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///main.tex"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestExecHoverPropagatesProviderError(t *testing.T) {
	sentinel := errors.New("boom")
	s := NewServer(nil, providers.Set{Hoverer: fakeHoverer{err: sentinel}})
	s.ws.Open("file:///main.tex", "text", workspace.LanguageLatex, workspace.SourceClient)

	_, err := s.execHover(context.Background(), protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///main.tex"},
		},
	})
	assert.ErrorIs(t, err, sentinel)
}

// --- submitFeature ---

func TestSubmitFeatureDeliversSuccessfulReply(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	flag := &reqqueue.CancelFlag{}
	id := jsonrpc2.NewNumberID(1)
	_, _ = s.reqs.RegisterIncoming(id)

	var mu sync.Mutex
	var gotResult interface{}
	reply := func(_ context.Context, result interface{}, err error) error {
		mu.Lock()
		defer mu.Unlock()
		gotResult = result
		return err
	}

	err := submitFeature(s, id, flag, reply, "test/method", 42, func(_ context.Context, p int) (interface{}, error) {
		return p * 2, nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotResult != nil
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 84, gotResult)
	assert.Equal(t, 0, s.reqs.PendingIncoming())
}

func TestSubmitFeatureReportsExecError(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	flag := &reqqueue.CancelFlag{}
	id := jsonrpc2.NewNumberID(2)
	_, _ = s.reqs.RegisterIncoming(id)

	sentinel := errors.New("exec failed")
	var mu sync.Mutex
	var gotErr error
	reply := func(_ context.Context, _ interface{}, err error) error {
		mu.Lock()
		defer mu.Unlock()
		gotErr = err
		return nil
	}

	err := submitFeature(s, id, flag, reply, "test/method", 1, func(_ context.Context, _ int) (interface{}, error) {
		return nil, sentinel
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr != nil
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, gotErr, &rpcErr)
	assert.Equal(t, jsonrpc2.InternalError, rpcErr.Code)
}

func TestSubmitFeatureObservesCancelFlag(t *testing.T) {
	s := NewServer(nil, providers.Set{})
	flag := &reqqueue.CancelFlag{}
	id := jsonrpc2.NewNumberID(3)
	_, _ = s.reqs.RegisterIncoming(id)

	started := make(chan struct{})
	var mu sync.Mutex
	var gotErr error
	reply := func(_ context.Context, _ interface{}, err error) error {
		mu.Lock()
		defer mu.Unlock()
		gotErr = err
		return nil
	}

	flag.Set()
	err := submitFeature(s, id, flag, reply, "test/method", 1, func(ctx context.Context, _ int) (interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotErr != nil
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, gotErr, &rpcErr)
	assert.Equal(t, jsonrpc2.RequestCancelled, rpcErr.Code)
}
