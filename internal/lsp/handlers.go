package lsp

import (
	"context"
	"errors"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/conduit-lang/conduit/internal/lsp/config"
	"github.com/conduit-lang/conduit/internal/lsp/diagnostics"
	"github.com/conduit-lang/conduit/internal/lsp/dispatch"
	"github.com/conduit-lang/conduit/internal/lsp/providers"
	"github.com/conduit-lang/conduit/internal/lsp/reqqueue"
	"github.com/conduit-lang/conduit/internal/lsp/workerpool"
	"github.com/conduit-lang/conduit/internal/lsp/workspace"
)

// errUnknownDocument is returned by feature handlers when the request's
// document URI is not known to the workspace; submitFeature turns it
// into the fixed InternalError message spec.md §4.7 requires.
var errUnknownDocument = errors.New("unknown document URI")

const (
	// methodBuild and methodForwardSearch are custom, non-standard LSP
	// methods this server advertises via its capabilities' experimental
	// field, matching the upstream LaTeX tooling's custom commands.
	methodBuild         = "textDocument/build"
	methodForwardSearch = "textDocument/forwardSearch"
	methodCancelRequest = "$/cancelRequest"
)

// cancelParams mirrors the standard $/cancelRequest payload without
// depending on a library type for it, since the id may be either a
// number or a string.
type cancelParams struct {
	ID interface{} `json:"id"`
}

// dispatchRequest routes a single incoming call to its typed handler.
// Handlers that do real feature work submit to the pool and return
// immediately; their actual reply happens later, from within the pool
// job.
func dispatchRequest(ctx context.Context, reply jsonrpc2.Replier, call *jsonrpc2.Call, s *Server, id jsonrpc2.ID, flag *reqqueue.CancelFlag) (bool, error) {
	return dispatch.NewRequestDispatcher(ctx, reply, call).
		On(protocol.MethodInitialize, dispatch.Typed(func(ctx context.Context, reply jsonrpc2.Replier, p protocol.InitializeParams) error {
			return s.handleInitialize(ctx, reply, id, p)
		})).
		On(protocol.MethodShutdown, dispatch.Typed(func(ctx context.Context, reply jsonrpc2.Replier, _ struct{}) error {
			return s.handleShutdown(ctx, reply, id)
		})).
		On(protocol.MethodTextDocumentCompletion, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.CompletionParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentCompletion, p, s.execCompletion)
		})).
		On(protocol.MethodTextDocumentHover, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.HoverParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentHover, p, s.execHover)
		})).
		On(protocol.MethodTextDocumentDefinition, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.DefinitionParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentDefinition, p, s.execDefinition)
		})).
		On(protocol.MethodTextDocumentReferences, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.ReferenceParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentReferences, p, s.execReferences)
		})).
		On(protocol.MethodTextDocumentDocumentSymbol, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.DocumentSymbolParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentDocumentSymbol, p, s.execDocumentSymbol)
		})).
		On(protocol.MethodWorkspaceSymbol, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.WorkspaceSymbolParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodWorkspaceSymbol, p, s.execWorkspaceSymbol)
		})).
		On(protocol.MethodTextDocumentFormatting, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.DocumentFormattingParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentFormatting, p, s.execFormatting)
		})).
		On(protocol.MethodTextDocumentRangeFormatting, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.DocumentRangeFormattingParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentRangeFormatting, p, s.execRangeFormatting)
		})).
		On(methodBuild, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p buildParams) error {
			return submitFeature(s, id, flag, reply, methodBuild, p, s.execBuild)
		})).
		On(methodForwardSearch, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p forwardSearchParams) error {
			return submitFeature(s, id, flag, reply, methodForwardSearch, p, s.execForwardSearch)
		})).
		On(protocol.MethodTextDocumentDocumentLink, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.DocumentLinkParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentDocumentLink, p, s.execDocumentLinks)
		})).
		On(protocol.MethodTextDocumentFoldingRange, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.FoldingRangeParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentFoldingRange, p, s.execFoldingRanges)
		})).
		On(protocol.MethodCompletionItemResolve, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.CompletionItem) error {
			return submitFeature(s, id, flag, reply, protocol.MethodCompletionItemResolve, p, s.execCompletionResolve)
		})).
		On(protocol.MethodTextDocumentPrepareRename, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.TextDocumentPositionParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentPrepareRename, p, s.execPrepareRename)
		})).
		On(protocol.MethodTextDocumentRename, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.RenameParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentRename, p, s.execRename)
		})).
		On(protocol.MethodTextDocumentDocumentHighlight, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.DocumentHighlightParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentDocumentHighlight, p, s.execDocumentHighlight)
		})).
		On(protocol.MethodTextDocumentSemanticTokensFull, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.SemanticTokensParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentSemanticTokensFull, p, s.execSemanticTokensFull)
		})).
		On(protocol.MethodTextDocumentSemanticTokensRange, dispatch.Typed(func(_ context.Context, reply jsonrpc2.Replier, p protocol.SemanticTokensRangeParams) error {
			return submitFeature(s, id, flag, reply, protocol.MethodTextDocumentSemanticTokensRange, p, s.execSemanticTokensRange)
		})).
		Default()
}

// dispatchNotification routes a notification. Unlike requests,
// notifications with no matching feature collaborator are silently
// logged rather than erroring.
func dispatchNotification(ctx context.Context, req jsonrpc2.Request, s *Server) error {
	return dispatch.NewNotificationDispatcher(ctx, req, s.logger).
		On(protocol.MethodInitialized, dispatch.TypedNotification(s.logger, protocol.MethodInitialized, func(_ context.Context, _ struct{}) error {
			return s.handleInitialized()
		})).
		On(protocol.MethodExit, dispatch.TypedNotification(s.logger, protocol.MethodExit, func(_ context.Context, _ struct{}) error {
			return s.handleExit()
		})).
		On(protocol.MethodTextDocumentDidOpen, dispatch.TypedNotification(s.logger, protocol.MethodTextDocumentDidOpen, s.handleDidOpen)).
		On(protocol.MethodTextDocumentDidChange, dispatch.TypedNotification(s.logger, protocol.MethodTextDocumentDidChange, s.handleDidChange)).
		On(protocol.MethodTextDocumentDidClose, dispatch.TypedNotification(s.logger, protocol.MethodTextDocumentDidClose, s.handleDidClose)).
		On(protocol.MethodTextDocumentDidSave, dispatch.TypedNotification(s.logger, protocol.MethodTextDocumentDidSave, s.handleDidSave)).
		On(methodCancelRequest, dispatch.TypedNotification(s.logger, methodCancelRequest, func(_ context.Context, p cancelParams) error {
			s.reqs.Cancel(toJSONRPCID(p.ID))
			return nil
		})).
		On(protocol.MethodWorkspaceDidChangeConfiguration, dispatch.TypedNotification(s.logger, protocol.MethodWorkspaceDidChangeConfiguration, func(_ context.Context, _ protocol.DidChangeConfigurationParams) error {
			s.pullConfigurationAsync()
			return nil
		})).
		Default()
}

// submitFeature enqueues a feature request on the pool. The request's
// own execution context is canceled cooperatively once flag is set; on
// completion, exactly one of an OK, error, or canceled response is sent
// for id, and the incoming registration is completed, per spec.md §4.5.
func submitFeature[P any](s *Server, id jsonrpc2.ID, flag *reqqueue.CancelFlag, reply jsonrpc2.Replier, method string, params P, exec func(ctx context.Context, params P) (interface{}, error)) error {
	runCtx, cancelRun := context.WithCancel(context.Background())
	done := make(chan struct{})
	go watchCancelFlag(flag, cancelRun, done)

	job := workerpool.FeatureRequest[P]{
		Method: method,
		Params: params,
		Ctx:    runCtx,
		Run: func(ctx context.Context, p P) error {
			defer close(done)
			defer cancelRun()
			defer s.reqs.CompleteIncoming(id)

			result, err := exec(ctx, p)
			replyCtx := context.Background()
			switch {
			case ctx.Err() != nil:
				return reply(replyCtx, nil, &jsonrpc2.Error{Code: jsonrpc2.RequestCancelled, Message: "request canceled"})
			case err != nil:
				return reply(replyCtx, nil, &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: err.Error()})
			default:
				return reply(replyCtx, result, nil)
			}
		},
	}

	if err := workerpool.TrySubmit(s.pool, job); err != nil {
		close(done)
		cancelRun()
		s.reqs.CompleteIncoming(id)
		return reply(context.Background(), nil, &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: err.Error()})
	}
	return nil
}

func watchCancelFlag(flag *reqqueue.CancelFlag, cancel context.CancelFunc, done <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if flag.IsSet() {
				cancel()
				return
			}
		}
	}
}

func toJSONRPCID(v interface{}) jsonrpc2.ID {
	switch n := v.(type) {
	case float64:
		return jsonrpc2.NewNumberID(int32(n))
	case string:
		return jsonrpc2.NewStringID(n)
	default:
		return jsonrpc2.NewNumberID(0)
	}
}

// --- lifecycle ---

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, id jsonrpc2.ID, params protocol.InitializeParams) error {
	defer s.reqs.CompleteIncoming(id)

	switch {
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	case params.RootURI != "":
		s.workspaceRoot = params.RootURI.Filename()
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}
	s.logger.Info("initialize", zap.String("root", s.workspaceRoot), zap.Any("clientInfo", params.ClientInfo))

	go s.detectDistribution()

	result := protocol.InitializeResult{
		Capabilities: s.buildCapabilities(),
		ServerInfo:   &protocol.ServerInfo{Name: ServerInfoName, Version: "0.1.0"},
	}
	return reply(ctx, result, nil)
}

// buildCapabilities advertises semantic tokens only when configuration
// opts in, resolving spec.md §9's open question about compile-time vs.
// runtime feature gating in favor of runtime gating.
func (s *Server) buildCapabilities() protocol.ServerCapabilities {
	s.capsMu.Lock()
	defer s.capsMu.Unlock()

	caps := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.TextDocumentSyncKindFull,
			Save:      &protocol.SaveOptions{IncludeText: false},
		},
	}
	if s.providers.Completer != nil {
		caps.CompletionProvider = &protocol.CompletionOptions{TriggerCharacters: []string{"\\", "{"}}
	}
	if s.providers.Hoverer != nil {
		caps.HoverProvider = true
	}
	if s.providers.Definer != nil {
		caps.DefinitionProvider = &protocol.DefinitionOptions{}
	}
	if s.providers.Referencer != nil {
		caps.ReferencesProvider = true
	}
	if s.providers.SymbolFinder != nil {
		caps.DocumentSymbolProvider = true
		caps.WorkspaceSymbolProvider = true
	}
	if s.providers.Formatter != nil {
		caps.DocumentFormattingProvider = &protocol.DocumentFormattingOptions{}
		caps.DocumentRangeFormattingProvider = &protocol.DocumentRangeFormattingOptions{}
	}
	if s.providers.Renamer != nil {
		caps.RenameProvider = &protocol.RenameOptions{PrepareProvider: true}
	}
	if s.providers.Highlighter != nil {
		caps.DocumentHighlightProvider = true
	}
	if s.providers.Linker != nil {
		caps.DocumentLinkProvider = &protocol.DocumentLinkOptions{}
	}
	if s.providers.Folder != nil {
		caps.FoldingRangeProvider = true
	}
	if s.providers.SemanticTokenizer != nil && s.configStore.Get().EnableSemanticTokens {
		// SemanticTokensProvider is declared interface{} by go.lsp.dev/protocol
		// to support the options-or-bool union the spec allows; advertise
		// the full Options form now that both the full and range requests
		// are routed to the same SemanticTokenizer collaborator.
		caps.SemanticTokensProvider = &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{TokenTypes: semanticTokenTypes},
			Full:   true,
			Range:  true,
		}
	}
	s.capabilities = caps
	return caps
}

// detectDistribution asynchronously probes for an external LaTeX
// distribution, storing the result behind distroMu for later handlers
// (e.g. textDocument/build) to consult without blocking initialize.
func (s *Server) detectDistribution() {
	distro := detectLatexDistribution()
	s.distroMu.Lock()
	s.distro = distro
	s.distroMu.Unlock()
	s.logger.Debug("latex distribution detection finished", zap.String("distro", distro))
}

func (s *Server) handleInitialized() error {
	s.logger.Info("client initialized")

	s.configPuller = config.NewPuller(s.configStore, s.pullConfiguration)
	s.pullConfigurationAsync()

	s.diagPipeline = diagnostics.NewPipeline(
		s.diagManager,
		s.providers.StaticAnalyzer,
		s.providers.ExternalChecker,
		&publisher{client: s.client, logger: s.logger},
		s.logger,
		diagnostics.Options{StaticDelay: s.configStore.Get().DiagnosticsDelay},
	)
	s.diagPipeline.Start()
	s.ws.RegisterOpenHandler(s.onOpen)
	return nil
}

func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier, id jsonrpc2.ID) error {
	defer s.reqs.CompleteIncoming(id)
	s.logger.Info("shutdown requested")
	s.shutdown()
	return reply(ctx, nil, nil)
}

func (s *Server) handleExit() error {
	s.logger.Info("exit requested")
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// --- document sync ---

func (s *Server) handleDidOpen(_ context.Context, p protocol.DidOpenTextDocumentParams) error {
	docURI := workspace.Uri(p.TextDocument.URI)
	s.ws.Open(docURI, p.TextDocument.Text, classifyParamLanguage(string(p.TextDocument.LanguageID), docURI), workspace.SourceClient)
	return nil
}

func (s *Server) handleDidChange(_ context.Context, p protocol.DidChangeTextDocumentParams) error {
	if len(p.ContentChanges) == 0 {
		return nil
	}
	docURI := workspace.Uri(p.TextDocument.URI)
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	existing := s.ws.Get(docURI)
	lang := workspace.ClassifyLanguage(docURI)
	if existing != nil {
		lang = existing.Lang
	}
	s.ws.Open(docURI, text, lang, workspace.SourceClient)
	return nil
}

func (s *Server) handleDidClose(_ context.Context, p protocol.DidCloseTextDocumentParams) error {
	s.ws.Close(workspace.Uri(p.TextDocument.URI))
	return nil
}

func (s *Server) handleDidSave(_ context.Context, p protocol.DidSaveTextDocumentParams) error {
	opts := s.configStore.Get()
	if !opts.Chktex.OnOpenAndSave || s.diagPipeline == nil {
		return nil
	}
	doc := s.ws.Get(workspace.Uri(p.TextDocument.URI))
	if doc == nil {
		return nil
	}
	msg := diagnostics.Message{Kind: diagnostics.KindAnalyze, URI: string(doc.URI), DocumentText: doc.Text}
	select {
	case s.diagPipeline.External <- msg:
	default:
	}
	return nil
}

func classifyParamLanguage(languageID string, fallback workspace.Uri) workspace.Language {
	switch languageID {
	case "bibtex":
		return workspace.LanguageBibtex
	case "latex", "tex":
		return workspace.LanguageLatex
	default:
		return workspace.ClassifyLanguage(fallback)
	}
}

// --- feature execution ---

func (s *Server) featureContext(docURI workspace.Uri) (providers.Context, error) {
	doc := s.ws.Get(docURI)
	if doc == nil {
		return providers.Context{}, errUnknownDocument
	}
	return providers.Context{Document: doc, Subset: s.ws.Subset(docURI), Ws: s.ws}, nil
}

func toProvidersPos(p protocol.Position) providers.Position {
	return providers.Position{Line: int(p.Line), Character: int(p.Character)}
}

func toProtocolRange(r providers.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func (s *Server) execCompletion(ctx context.Context, p protocol.CompletionParams) (interface{}, error) {
	if s.providers.Completer == nil {
		return protocol.CompletionList{}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	items, err := s.providers.Completer.Complete(ctx, fctx, toProvidersPos(p.Position))
	if err != nil {
		return nil, err
	}

	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		format := protocol.InsertTextFormatPlainText
		if it.IsSnippet {
			format = protocol.InsertTextFormatSnippet
		}
		out = append(out, protocol.CompletionItem{
			Label:            it.Label,
			Detail:           it.Detail,
			InsertText:       it.InsertText,
			InsertTextFormat: format,
			SortText:         it.SortText,
			Documentation:    protocol.MarkupContent{Kind: protocol.Markdown, Value: it.Documentation},
		})
	}
	return protocol.CompletionList{Items: out}, nil
}

func (s *Server) execHover(ctx context.Context, p protocol.HoverParams) (interface{}, error) {
	if s.providers.Hoverer == nil {
		return nil, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	hover, err := s.providers.Hoverer.Hover(ctx, fctx, toProvidersPos(p.Position))
	if err != nil || hover == nil {
		return nil, err
	}
	rng := toProtocolRange(hover.Range)
	return protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: hover.Contents},
		Range:    &rng,
	}, nil
}

func (s *Server) execDefinition(ctx context.Context, p protocol.DefinitionParams) (interface{}, error) {
	if s.providers.Definer == nil {
		return nil, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	loc, err := s.providers.Definer.Definition(ctx, fctx, toProvidersPos(p.Position))
	if err != nil || loc == nil {
		return nil, err
	}
	return protocol.Location{URI: protocol.DocumentURI(loc.URI), Range: toProtocolRange(loc.Range)}, nil
}

func (s *Server) execReferences(ctx context.Context, p protocol.ReferenceParams) (interface{}, error) {
	if s.providers.Referencer == nil {
		return []protocol.Location{}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	refs, err := s.providers.Referencer.References(ctx, fctx, toProvidersPos(p.Position))
	if err != nil {
		return nil, err
	}
	out := make([]protocol.Location, 0, len(refs))
	for _, r := range refs {
		out = append(out, protocol.Location{URI: protocol.DocumentURI(r.URI), Range: toProtocolRange(r.Range)})
	}
	return out, nil
}

func (s *Server) execDocumentSymbol(ctx context.Context, p protocol.DocumentSymbolParams) (interface{}, error) {
	if s.providers.SymbolFinder == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	syms, err := s.providers.SymbolFinder.DocumentSymbols(ctx, fctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.DocumentSymbol, 0, len(syms))
	for _, sym := range syms {
		rng := toProtocolRange(sym.Range)
		out = append(out, protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           protocol.SymbolKind(sym.Kind),
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return out, nil
}

func (s *Server) execWorkspaceSymbol(ctx context.Context, p protocol.WorkspaceSymbolParams) (interface{}, error) {
	if s.providers.SymbolFinder == nil {
		return []protocol.SymbolInformation{}, nil
	}
	syms, err := s.providers.SymbolFinder.WorkspaceSymbols(ctx, s.ws, p.Query)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.SymbolInformation, 0, len(syms))
	for _, sym := range syms {
		out = append(out, protocol.SymbolInformation{
			Name:          sym.Name,
			Kind:          protocol.SymbolKind(sym.Kind),
			ContainerName: sym.ContainerName,
			Location:      protocol.Location{Range: toProtocolRange(sym.Range)},
		})
	}
	return out, nil
}

func (s *Server) execFormatting(ctx context.Context, p protocol.DocumentFormattingParams) (interface{}, error) {
	return s.runFormat(ctx, workspace.Uri(p.TextDocument.URI), nil)
}

func (s *Server) execRangeFormatting(ctx context.Context, p protocol.DocumentRangeFormattingParams) (interface{}, error) {
	r := providers.Range{Start: toProvidersPos(p.Range.Start), End: toProvidersPos(p.Range.End)}
	return s.runFormat(ctx, workspace.Uri(p.TextDocument.URI), &r)
}

func (s *Server) runFormat(ctx context.Context, docURI workspace.Uri, rng *providers.Range) (interface{}, error) {
	if s.providers.Formatter == nil {
		return []protocol.TextEdit{}, nil
	}
	fctx, err := s.featureContext(docURI)
	if err != nil {
		return nil, err
	}
	edits, err := s.providers.Formatter.Format(ctx, fctx, rng)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, protocol.TextEdit{Range: toProtocolRange(e.Range), NewText: e.NewText})
	}
	return out, nil
}

// buildParams is the custom textDocument/build request payload.
type buildParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
}

// buildResult mirrors upstream LaTeX tooling's build status codes.
type buildResult struct {
	Status int `json:"status"`
}

func (s *Server) execBuild(ctx context.Context, p buildParams) (interface{}, error) {
	if s.providers.Builder == nil {
		return buildResult{Status: int(providers.BuildError)}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	status, err := s.providers.Builder.Build(ctx, fctx)
	if err != nil {
		return nil, err
	}
	return buildResult{Status: int(status)}, nil
}

// forwardSearchParams is the custom textDocument/forwardSearch request
// payload.
type forwardSearchParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position               `json:"position"`
}

type forwardSearchResult struct {
	Status int `json:"status"`
}

func (s *Server) execForwardSearch(ctx context.Context, p forwardSearchParams) (interface{}, error) {
	if s.providers.ForwardSearcher == nil {
		return forwardSearchResult{Status: int(providers.BuildError)}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	if err := s.providers.ForwardSearcher.ForwardSearch(ctx, fctx, toProvidersPos(p.Position)); err != nil {
		return nil, err
	}
	return forwardSearchResult{Status: int(providers.BuildSuccess)}, nil
}

func (s *Server) execDocumentLinks(ctx context.Context, p protocol.DocumentLinkParams) (interface{}, error) {
	if s.providers.Linker == nil {
		return []protocol.DocumentLink{}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	links, err := s.providers.Linker.Links(ctx, fctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.DocumentLink, 0, len(links))
	for _, l := range links {
		out = append(out, protocol.DocumentLink{Range: toProtocolRange(l.Range), Target: protocol.DocumentURI(l.URI)})
	}
	return out, nil
}

func (s *Server) execFoldingRanges(ctx context.Context, p protocol.FoldingRangeParams) (interface{}, error) {
	if s.providers.Folder == nil {
		return []protocol.FoldingRange{}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	ranges, err := s.providers.Folder.FoldingRanges(ctx, fctx)
	if err != nil {
		return nil, err
	}
	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, protocol.FoldingRange{StartLine: uint32(r.StartLine), EndLine: uint32(r.EndLine)})
	}
	return out, nil
}

// execCompletionResolve answers completionItem/resolve. The Completer
// collaborator returns fully-populated items up front, so there is no
// deferred detail to fetch; resolving is a no-op echo of the item the
// client already holds.
func (s *Server) execCompletionResolve(_ context.Context, p protocol.CompletionItem) (interface{}, error) {
	return p, nil
}

// execPrepareRename answers textDocument/prepareRename. It reports
// whether renaming is supported at pos without computing a precise word
// range; a nil result is a valid "allowed, use default word detection"
// response per the LSP spec.
func (s *Server) execPrepareRename(ctx context.Context, p protocol.TextDocumentPositionParams) (interface{}, error) {
	if s.providers.Renamer == nil {
		return nil, nil
	}
	if _, err := s.featureContext(workspace.Uri(p.TextDocument.URI)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) execRename(ctx context.Context, p protocol.RenameParams) (interface{}, error) {
	if s.providers.Renamer == nil {
		return nil, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	edits, err := s.providers.Renamer.Rename(ctx, fctx, toProvidersPos(p.Position), p.NewName)
	if err != nil {
		return nil, err
	}
	changes := make(map[protocol.DocumentURI][]protocol.TextEdit, len(edits))
	for docURI, docEdits := range edits {
		out := make([]protocol.TextEdit, 0, len(docEdits))
		for _, e := range docEdits {
			out = append(out, protocol.TextEdit{Range: toProtocolRange(e.Range), NewText: e.NewText})
		}
		changes[protocol.DocumentURI(docURI)] = out
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

func (s *Server) execDocumentHighlight(ctx context.Context, p protocol.DocumentHighlightParams) (interface{}, error) {
	if s.providers.Highlighter == nil {
		return []protocol.DocumentHighlight{}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	ranges, err := s.providers.Highlighter.Highlight(ctx, fctx, toProvidersPos(p.Position))
	if err != nil {
		return nil, err
	}
	out := make([]protocol.DocumentHighlight, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, protocol.DocumentHighlight{Range: toProtocolRange(r)})
	}
	return out, nil
}

// semanticTokenTypes is the fixed legend advertised alongside semantic
// tokens: providers.SemanticToken.TokenType indexes into this slice, the
// same index-into-legend convention the LSP spec's integer encoding uses.
var semanticTokenTypes = []string{
	"keyword", "macro", "variable", "string", "comment", "number", "operator", "namespace",
}

// encodeSemanticTokens delta-encodes tokens into the flat five-uint32-per-
// token stream the LSP wire format requires, grounded on the teacher
// pack's reference encoder (golang-tools' protocol/semtok.Encode):
// [deltaLine, deltaOrAbsoluteChar, length, tokenType, modifiers]. This
// server never emits modifiers, so that field is always zero.
func encodeSemanticTokens(tokens []providers.SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	prevLine, prevChar := 0, 0
	for _, t := range tokens {
		deltaLine := t.Line - prevLine
		deltaChar := t.Character
		if deltaLine == 0 {
			deltaChar = t.Character - prevChar
		}
		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(t.Length), uint32(t.TokenType), 0)
		prevLine, prevChar = t.Line, t.Character
	}
	return data
}

func (s *Server) execSemanticTokensFull(ctx context.Context, p protocol.SemanticTokensParams) (interface{}, error) {
	if s.providers.SemanticTokenizer == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	tokens, err := s.providers.SemanticTokenizer.SemanticTokens(ctx, fctx)
	if err != nil {
		return nil, err
	}
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(tokens)}, nil
}

func (s *Server) execSemanticTokensRange(ctx context.Context, p protocol.SemanticTokensRangeParams) (interface{}, error) {
	if s.providers.SemanticTokenizer == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	fctx, err := s.featureContext(workspace.Uri(p.TextDocument.URI))
	if err != nil {
		return nil, err
	}
	tokens, err := s.providers.SemanticTokenizer.SemanticTokens(ctx, fctx)
	if err != nil {
		return nil, err
	}
	lo, hi := toProvidersPos(p.Range.Start), toProvidersPos(p.Range.End)
	filtered := tokens[:0:0]
	for _, t := range tokens {
		if (t.Line > lo.Line || (t.Line == lo.Line && t.Character >= lo.Character)) &&
			(t.Line < hi.Line || (t.Line == hi.Line && t.Character <= hi.Character)) {
			filtered = append(filtered, t)
		}
	}
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(filtered)}, nil
}
