// Package providers declares the feature collaborators the server
// orchestrator dispatches to, and nothing more: completion, hover,
// definition, references, symbols, renaming, highlighting, formatting,
// folding, semantic tokens, build, and forward-search live behind small
// interfaces so the dispatch/workspace/workerpool substrate never
// depends on their concrete implementations. This mirrors the teacher's
// internal/tooling.API boundary (internal/tooling/api.go), split one
// interface per feature family instead of one God-interface, matching
// the texlab original's FeatureProvider-per-feature layout.
package providers

import (
	"context"

	"github.com/conduit-lang/conduit/internal/lsp/diagnostics"
	"github.com/conduit-lang/conduit/internal/lsp/workspace"
)

// Position is a zero-based line/column, mirroring protocol.Position
// without importing it, so providers only depend on this package.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Position
	End   Position
}

// CompletionItem is a provider-agnostic completion candidate.
type CompletionItem struct {
	Label         string
	Detail        string
	Documentation string
	InsertText    string
	SortText      string
	IsSnippet     bool
}

// Hover is the provider-agnostic hover result.
type Hover struct {
	Contents string
	Range    Range
}

// Location references a position in a document.
type Location struct {
	URI   workspace.Uri
	Range Range
}

// Symbol is one entry in a document or workspace symbol listing.
type Symbol struct {
	Name          string
	ContainerName string
	Kind          int
	Range         Range
}

// TextEdit replaces Range's contents with NewText.
type TextEdit struct {
	Range   Range
	NewText string
}

// FoldingRange marks a collapsible region.
type FoldingRange struct {
	StartLine int
	EndLine   int
}

// SemanticToken is one entry of a semantic tokens delta-encoded stream,
// pre-delta-encoding; the server orchestrator performs the LSP
// delta-encoding step.
type SemanticToken struct {
	Line      int
	Character int
	Length    int
	TokenType int
}

// BuildStatus is the outcome of a textDocument/build request.
type BuildStatus int

const (
	BuildSuccess BuildStatus = iota
	BuildFailure
	BuildError
)

// Context bundles the read-only request context every provider needs:
// the originating document, its include-closure, and the full workspace
// for cross-document lookups (e.g. citation keys from every open .bib
// file).
type Context struct {
	Document *workspace.Document
	Subset   workspace.Subset
	Ws       *workspace.Workspace
}

// Completer answers textDocument/completion.
type Completer interface {
	Complete(ctx context.Context, req Context, pos Position) ([]CompletionItem, error)
}

// Hoverer answers textDocument/hover.
type Hoverer interface {
	Hover(ctx context.Context, req Context, pos Position) (*Hover, error)
}

// Definer answers textDocument/definition.
type Definer interface {
	Definition(ctx context.Context, req Context, pos Position) (*Location, error)
}

// Referencer answers textDocument/references.
type Referencer interface {
	References(ctx context.Context, req Context, pos Position) ([]Location, error)
}

// SymbolFinder answers textDocument/documentSymbol and workspace/symbol.
type SymbolFinder interface {
	DocumentSymbols(ctx context.Context, req Context) ([]Symbol, error)
	WorkspaceSymbols(ctx context.Context, ws *workspace.Workspace, query string) ([]Symbol, error)
}

// Renamer answers textDocument/rename.
type Renamer interface {
	Rename(ctx context.Context, req Context, pos Position, newName string) (map[workspace.Uri][]TextEdit, error)
}

// Highlighter answers textDocument/documentHighlight.
type Highlighter interface {
	Highlight(ctx context.Context, req Context, pos Position) ([]Range, error)
}

// Formatter answers textDocument/formatting and
// textDocument/rangeFormatting.
type Formatter interface {
	Format(ctx context.Context, req Context, rng *Range) ([]TextEdit, error)
}

// Linker answers textDocument/documentLink.
type Linker interface {
	Links(ctx context.Context, req Context) ([]Location, error)
}

// Folder answers textDocument/foldingRange.
type Folder interface {
	FoldingRanges(ctx context.Context, req Context) ([]FoldingRange, error)
}

// SemanticTokenizer answers textDocument/semanticTokens/full and
// textDocument/semanticTokens/range (the range variant filters the same
// full token list down to the requested span). Only advertised in server
// capabilities when config.Options.EnableSemanticTokens is set.
type SemanticTokenizer interface {
	SemanticTokens(ctx context.Context, req Context) ([]SemanticToken, error)
}

// Builder answers the custom textDocument/build request.
type Builder interface {
	Build(ctx context.Context, req Context) (BuildStatus, error)
}

// ForwardSearcher answers the custom textDocument/forwardSearch request,
// driving an external PDF viewer to the position matching pos.
type ForwardSearcher interface {
	ForwardSearch(ctx context.Context, req Context, pos Position) error
}

// Set bundles every feature collaborator the orchestrator may dispatch
// to. Any field may be nil, in which case the corresponding LSP
// capability is not advertised and the method responds with
// MethodNotFound.
type Set struct {
	Completer         Completer
	Hoverer           Hoverer
	Definer           Definer
	Referencer        Referencer
	SymbolFinder      SymbolFinder
	Renamer           Renamer
	Highlighter       Highlighter
	Formatter         Formatter
	Linker            Linker
	Folder            Folder
	SemanticTokenizer SemanticTokenizer
	Builder           Builder
	ForwardSearcher   ForwardSearcher

	// StaticAnalyzer and ExternalChecker feed the diagnostics pipeline.
	// Both may be nil, in which case that channel's analysis step is a
	// no-op and only the other channel's findings are published.
	StaticAnalyzer  diagnostics.StaticAnalyzer
	ExternalChecker diagnostics.ExternalChecker
}
