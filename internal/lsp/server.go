// Package lsp implements the server dispatch and concurrency substrate
// for a LaTeX/BibTeX language server: the transport, request queue,
// dispatcher, workspace, worker pool, and debounced diagnostics pipeline
// that together multiplex concurrent LSP traffic over one connection.
// Feature implementations (completion, hover, build, ...) are injected
// as providers.Set collaborators; this package never implements them
// directly.
package lsp

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/conduit-lang/conduit/internal/lsp/componentdb"
	"github.com/conduit-lang/conduit/internal/lsp/config"
	"github.com/conduit-lang/conduit/internal/lsp/diagnostics"
	"github.com/conduit-lang/conduit/internal/lsp/providers"
	"github.com/conduit-lang/conduit/internal/lsp/reqqueue"
	"github.com/conduit-lang/conduit/internal/lsp/workerpool"
	"github.com/conduit-lang/conduit/internal/lsp/workspace"
)

// ServerInfoName is reported verbatim in the initialize response,
// matching the upstream LaTeX tooling this server's protocol surface is
// compatible with.
const ServerInfoName = "TexLab"

// Server is the orchestrator: it owns the shared collaborators
// (workspace, request queue, worker pool, diagnostics pipeline,
// configuration) and wires incoming transport messages to them. See
// SPEC_FULL.md §4.7 for the four-phase lifecycle this type implements.
type Server struct {
	logger *zap.Logger

	conn   jsonrpc2.Conn
	client protocol.Client

	workspaceRoot string
	rootURI       uri.URI

	ws           *workspace.Workspace
	reqs         *reqqueue.Queue
	pool         *workerpool.Pool
	diagPipeline *diagnostics.Pipeline
	diagManager  *diagnostics.Manager
	configStore  *config.Store
	configPuller *config.Puller
	components   *componentdb.DB
	resolver     *config.FileResolver
	fileWatcher  *config.ResolvedFileWatcher
	providers    providers.Set

	capsMu       sync.Mutex
	capabilities protocol.ServerCapabilities

	distroMu sync.Mutex
	distro   string

	cancel context.CancelFunc
}

// NewServer constructs a Server with the given feature collaborators.
// providers may leave any field nil; the corresponding capability is
// simply not advertised.
func NewServer(logger *zap.Logger, providerSet providers.Set) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:      logger,
		reqs:        reqqueue.New(),
		diagManager: diagnostics.NewManager(),
		configStore: config.NewStore(config.Default()),
		components:  componentdb.New(componentDBPath(), logger),
		providers:   providerSet,
	}
	s.resolver = config.NewFileResolver(s.onResolvedFileChanged)
	if fw, err := config.NewResolvedFileWatcher(s.resolver, logger); err != nil {
		logger.Warn("resolved-file watching disabled", zap.Error(err))
	} else {
		s.fileWatcher = fw
	}
	s.ws = workspace.New(nil, resolverAdapter{s}, logger)
	s.pool = workerpool.New(workerCount(), 256, logger)
	return s
}

func workerCount() int {
	if n := os.Getenv("TEXLAB_WORKERS"); n != "" {
		// best-effort; an invalid value falls back to the default below
		if v, err := parsePositiveInt(n); err == nil {
			return v
		}
	}
	return 4
}

func componentDBPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/texlab/components.json"
	}
	return "texlab-components.json"
}

// Run drives the server's lifecycle to completion: it loads project
// configuration and the component cache, opens the transport, and
// blocks until ctx is canceled (via the exit notification or an external
// shutdown).
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting language server", zap.String("name", ServerInfoName))

	if opts, err := config.Load("."); err != nil {
		s.logger.Warn("failed to load project config", zap.Error(err))
	} else {
		s.configStore.Set(opts)
	}
	if err := s.components.Load(); err != nil {
		s.logger.Warn("failed to load component database", zap.Error(err))
	}
	if s.fileWatcher != nil {
		s.fileWatcher.Start()
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn
	s.client = protocol.ClientDispatcher(conn, s.logger)

	conn.Go(ctx, s.handler())

	<-ctx.Done()

	s.logger.Info("shutting down language server")
	if err := s.components.Save(); err != nil {
		s.logger.Warn("failed to persist component database", zap.Error(err))
	}
	return conn.Close()
}

// handler is the single entry point conn.Go invokes per message. It
// distinguishes calls (which expect a reply) from notifications and
// routes each to the matching dispatch chain.
func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if call, ok := req.(*jsonrpc2.Call); ok {
			return s.handleCall(ctx, reply, call)
		}
		return s.handleNotification(ctx, req)
	}
}

// handleCall dispatches a request (a message expecting a reply),
// registering a cancel flag for its id before handing it to the feature
// dispatch chain.
func (s *Server) handleCall(ctx context.Context, reply jsonrpc2.Replier, call *jsonrpc2.Call) error {
	id := call.ID()
	flag, err := s.reqs.RegisterIncoming(id)
	if err != nil {
		s.logger.Warn("duplicate request id", zap.Error(err))
		return reply(ctx, nil, &jsonrpc2.Error{Code: jsonrpc2.InvalidRequest, Message: err.Error()})
	}

	_, err = dispatchRequest(ctx, reply, call, s, id, flag)
	return err
}

// handleNotification dispatches a notification (no reply channel).
// $/cancelRequest is handled here directly since it never has its own
// request id to register.
func (s *Server) handleNotification(ctx context.Context, req jsonrpc2.Request) error {
	return dispatchNotification(ctx, req, s)
}

// Shutdown implements the LSP shutdown request: stop accepting new
// feature work, drain the pool, stop the diagnostics pipeline.
func (s *Server) shutdown() {
	s.pool.Stop()
	if s.diagPipeline != nil {
		s.diagPipeline.Shutdown()
	}
	if s.fileWatcher != nil {
		if err := s.fileWatcher.Close(); err != nil {
			s.logger.Warn("failed to close resolved-file watcher", zap.Error(err))
		}
	}
}

// onOpen is registered as a workspace.OpenHandler during Register; it
// forwards an Analyze message to the static channel (and, if configured,
// the external channel) for every document update.
func (s *Server) onOpen(_ *workspace.Workspace, doc *workspace.Document) {
	if s.diagPipeline == nil {
		return
	}
	msg := diagnostics.Message{
		Kind:         diagnostics.KindAnalyze,
		URI:          string(doc.URI),
		DocumentText: doc.Text,
	}
	select {
	case s.diagPipeline.Static <- msg:
	default:
		s.logger.Warn("static diagnostics channel saturated, dropping analyze message", zap.String("uri", string(doc.URI)))
	}

	opts := s.configStore.Get()
	if opts.Chktex.OnEdit {
		select {
		case s.diagPipeline.External <- msg:
		default:
			s.logger.Warn("external diagnostics channel saturated, dropping analyze message", zap.String("uri", string(doc.URI)))
		}
	}
}

// resolverAdapter adapts config.FileResolver's string-path Resolve to
// workspace.Resolver's Uri-keyed signature; the config package stays
// free of a workspace import so it can be reused by any future
// collaborator that just wants path resolution. It also arms file
// watching for every path resolved through the include graph, so a
// change made outside the editor (e.g. a sibling .bib file edited in
// another tool) is picked up the same way an open document's edits are.
type resolverAdapter struct {
	s *Server
}

func (r resolverAdapter) Resolve(docURI workspace.Uri) (string, bool) {
	return r.s.resolvePath(uri.URI(docURI).Filename())
}

// resolvePath resolves path's contents and, on success, arms file
// watching for it.
func (s *Server) resolvePath(path string) (string, bool) {
	text, ok := s.resolver.Resolve(path)
	if ok && s.fileWatcher != nil {
		s.fileWatcher.Add(path)
	}
	return text, ok
}

// pullConfiguration issues a workspace/configuration request scoped to the
// "texlab" section, grounded on gopls' Server.fetchConfig
// (internal/lsp/general.go), the pack's reference for how a go.lsp.dev
// protocol.Client issues this particular client->server round trip. The
// first (and only) result item, if present, is merged onto the current
// options so an operator's texlab.toml/texlab.yaml values survive for any
// field the client leaves unset.
func (s *Server) pullConfiguration(ctx context.Context) (config.Options, error) {
	opts := s.configStore.Get()
	if s.client == nil {
		return opts, nil
	}

	results, err := s.client.Configuration(ctx, &protocol.ConfigurationParams{
		Items: []protocol.ConfigurationItem{{Section: "texlab"}},
	})
	if err != nil {
		return config.Options{}, err
	}
	if len(results) == 0 || results[0] == nil {
		return opts, nil
	}

	raw, err := json.Marshal(results[0])
	if err != nil {
		return config.Options{}, err
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

// pullConfigurationAsync runs a configPuller.Pull in the background,
// logging failures rather than surfacing them to whatever triggered the
// pull — a stale client config is not fatal, the server keeps serving
// with whatever options it already holds.
func (s *Server) pullConfigurationAsync() {
	if s.configPuller == nil {
		return
	}
	go func() {
		if err := s.configPuller.Pull(); err != nil {
			s.logger.Warn("workspace/configuration pull failed", zap.Error(err))
		}
	}()
}

// onResolvedFileChanged re-opens a server-discovered document whose
// on-disk contents changed, so the workspace's include graph and
// diagnostics stay current without requiring the client to reopen it.
func (s *Server) onResolvedFileChanged(path string) {
	text, ok := s.resolvePath(path)
	if !ok {
		return
	}
	uriStr := uri.File(path)
	s.ws.Open(workspace.Uri(uriStr), text, workspace.ClassifyLanguage(workspace.Uri(uriStr)), workspace.SourceServer)
}

// publisher adapts diagnostics.Publisher to protocol.Client.
type publisher struct {
	client protocol.Client
	logger *zap.Logger
}

func (p *publisher) Publish(docURI string, diags []diagnostics.Diagnostic) {
	lspDiags := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		lspDiags = append(lspDiags, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(d.Line), Character: uint32(d.Column)},
				End:   protocol.Position{Line: uint32(d.Line), Character: uint32(d.Column)},
			},
			Severity: protocol.DiagnosticSeverity(d.Severity),
			Message:  d.Message,
			Source:   d.Source,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Diagnostics: lspDiags,
	}); err != nil {
		p.logger.Warn("publish diagnostics failed", zap.String("uri", docURI), zap.Error(err))
	}
}

// stdrwc implements io.ReadWriteCloser over stdin/stdout, the transport
// the server speaks LSP over.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotANumber
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errNotANumber
	}
	return n, nil
}

var errNotANumber = &parseError{"TEXLAB_WORKERS must be a positive integer"}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
