// Package workspace owns the shared, mutable store of documents that make
// up a language server session. It tracks open and server-discovered
// documents, classifies their language, and computes the include-closure
// ("subset") reachable from a given entry document.
package workspace

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Uri identifies a document. It is a thin, comparable string wrapper so
// workspace internals never depend on the concrete LSP URI type.
type Uri string

// Language classifies a document's syntax.
type Language int

const (
	// LanguageLatex is the default language for documents whose
	// language id the client did not recognize.
	LanguageLatex Language = iota
	LanguageBibtex
)

// Source records who caused a document to exist in the workspace.
type Source int

const (
	// SourceClient marks documents opened by the editor.
	SourceClient Source = iota
	// SourceServer marks documents discovered by the server while
	// resolving includes.
	SourceServer
)

// ClassifyLanguage guesses a document's language from its URI's
// extension. Used when the server resolves an include whose language id
// the client never told it about.
func ClassifyLanguage(uri Uri) Language {
	if strings.HasSuffix(strings.ToLower(string(uri)), ".bib") {
		return LanguageBibtex
	}
	return LanguageLatex
}

// ParsedTree is the out-of-core syntax tree collaborator. The workspace
// only needs to know which other documents a tree includes and which
// citation keys it references; the real parser and tree types live
// outside this package's scope.
type ParsedTree interface {
	Includes() []Uri
	Citations() []string
}

// Document is an immutable snapshot of a single document revision.
// Updates never mutate a Document in place: Workspace.Open always builds
// a new *Document and swaps it into the map, so observers holding an
// older snapshot never see it change under them.
type Document struct {
	URI    Uri
	Text   string
	Lang   Language
	Source Source
	Tree   ParsedTree
}

// Subset is an ordered collection of document snapshots reachable from a
// named entry URI through include edges, deduplicated by URI.
type Subset []*Document

// Resolver is the external collaborator asked to locate a document that
// is referenced but not yet known to the workspace (e.g. a \input target
// that has never been opened). Implementations live outside this package;
// see componentdb and the filesystem-backed resolver in
// internal/lsp/config for the production implementation.
type Resolver interface {
	// Resolve attempts to locate uri on disk, returning its contents and
	// true on success.
	Resolve(uri Uri) (text string, ok bool)
}

// OpenHandler is invoked, in registration order, after every successful
// Open.
type OpenHandler func(ws *Workspace, doc *Document)

// Parser builds a ParsedTree for newly opened or updated document text.
// It is the out-of-core collaborator standing in for the real markup
// parser.
type Parser interface {
	Parse(lang Language, text string) ParsedTree
}

// Workspace is the shared mutable store of documents keyed by URI. All
// mutations are serialized under a single exclusive lock; readers acquire
// a shared lock to snapshot. Snapshots are O(1) clones of immutable data
// because Document values are never mutated after construction.
type Workspace struct {
	mu   sync.RWMutex
	docs map[Uri]*Document

	parser   Parser
	resolver Resolver
	logger   *zap.Logger

	handlersMu sync.Mutex
	handlers   []OpenHandler
}

// New creates an empty Workspace. parser builds syntax trees for newly
// opened text; resolver locates documents referenced but not yet known.
func New(parser Parser, resolver Resolver, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		docs:     make(map[Uri]*Document),
		parser:   parser,
		resolver: resolver,
		logger:   logger,
	}
}

// Open inserts or replaces the document at uri. If source is SourceClient
// and the existing document (if any) has SourceServer, the client
// document always wins — an editor's in-memory buffer takes precedence
// over whatever the server last resolved from disk. Registered open
// handlers are invoked, in registration order, after the swap.
func (w *Workspace) Open(uri Uri, text string, lang Language, source Source) *Document {
	doc := &Document{
		URI:    uri,
		Text:   text,
		Lang:   lang,
		Source: source,
	}
	if w.parser != nil {
		doc.Tree = w.parser.Parse(lang, text)
	}

	w.mu.Lock()
	w.docs[uri] = doc
	w.mu.Unlock()

	w.handlersMu.Lock()
	handlers := append([]OpenHandler(nil), w.handlers...)
	w.handlersMu.Unlock()
	for _, h := range handlers {
		h(w, doc)
	}

	return doc
}

// Get returns the latest snapshot for uri, or nil if unknown.
func (w *Workspace) Get(uri Uri) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[uri]
}

// Close removes the document at uri if and only if it was client-opened.
// Server-discovered documents persist so later subset computations do not
// need to re-resolve them.
func (w *Workspace) Close(uri Uri) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.docs[uri]
	if !ok || doc.Source != SourceClient {
		return
	}
	delete(w.docs, uri)
}

// Documents returns a snapshot slice of every document currently held.
func (w *Workspace) Documents() []*Document {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Document, 0, len(w.docs))
	for _, doc := range w.docs {
		out = append(out, doc)
	}
	return out
}

// RegisterOpenHandler appends fn to the list of handlers invoked after
// every successful Open, in registration order.
func (w *Workspace) RegisterOpenHandler(fn OpenHandler) {
	w.handlersMu.Lock()
	defer w.handlersMu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// Subset computes the transitive include-closure of uri: a breadth-first
// traversal over include edges extracted from each document's parsed
// tree. Returns nil if uri is unknown to the workspace. Unresolved URIs
// are resolved lazily against the Resolver and, if found, opened with
// SourceServer. Cycles are broken by the visited set; discovery order is
// deterministic.
func (w *Workspace) Subset(uri Uri) Subset {
	root := w.Get(uri)
	if root == nil {
		return nil
	}

	visited := map[Uri]bool{uri: true}
	queue := []Uri{uri}
	subset := Subset{root}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		doc := w.Get(cur)
		if doc == nil || doc.Tree == nil {
			continue
		}

		for _, inc := range doc.Tree.Includes() {
			if visited[inc] {
				continue
			}
			visited[inc] = true

			resolved := w.Get(inc)
			if resolved == nil {
				resolved = w.resolveAndOpen(inc)
				if resolved == nil {
					continue
				}
			}

			subset = append(subset, resolved)
			queue = append(queue, inc)
		}
	}

	return subset
}

// resolveAndOpen asks the resolver for uri's contents and, if found,
// opens it as a server-sourced document.
func (w *Workspace) resolveAndOpen(uri Uri) *Document {
	if w.resolver == nil {
		return nil
	}
	text, ok := w.resolver.Resolve(uri)
	if !ok {
		return nil
	}
	w.logger.Debug("resolved include", zap.String("uri", string(uri)))
	return w.Open(uri, text, ClassifyLanguage(uri), SourceServer)
}
