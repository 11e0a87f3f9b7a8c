// Package latex implements a small set of concrete providers.Completer
// collaborators for LaTeX documents, grounded on texlab's original
// completion providers: tikz/pgf library and command completion
// (completion/latex/tikz.rs), citation key completion
// (features/completion/citation.rs), and the \begin snippet
// (features/completion/begin_command.rs). Each is a plain text/regex
// scan rather than a syntax-tree walk, since the real parser is out of
// this module's core scope (workspace.ParsedTree only exposes includes
// and citation keys).
package latex

import (
	"context"
	"regexp"
	"strings"

	"github.com/conduit-lang/conduit/internal/lsp/providers"
	"github.com/conduit-lang/conduit/internal/lsp/workspace"
)

// offset converts a zero-based line/character position into a byte
// offset into text. Out-of-range positions clamp to the end of text.
func offset(text string, pos providers.Position) int {
	lines := strings.SplitAfter(text, "\n")
	if pos.Line >= len(lines) {
		return len(text)
	}
	off := 0
	for i := 0; i < pos.Line; i++ {
		off += len(lines[i])
	}
	line := lines[pos.Line]
	col := pos.Character
	if col > len(line) {
		col = len(line)
	}
	return off + col
}

var (
	tikzLibraryArg = regexp.MustCompile(`\\usetikzlibrary\{([^}]*)$`)
	pgfLibraryArg  = regexp.MustCompile(`\\usepgflibrary\{([^}]*)$`)
	citeArg        = regexp.MustCompile(`\\(?:cite|citep|citet)\{([^}]*)$`)
	backslashWord  = regexp.MustCompile(`\\([a-zA-Z]*)$`)

	bibEntry = regexp.MustCompile(`(?s)@(\w+)\s*\{\s*([^,\s]+)\s*,`)
)

// tikzLibraries and pgfLibraries are a representative subset of the
// names texlab's language_data ships, kept short since the full list is
// a static data concern, not a core-substrate one.
var tikzLibraries = []string{"arrows", "automata", "backgrounds", "calc", "decorations.pathmorphing", "patterns", "positioning", "shapes.geometric"}
var pgfLibraries = []string{"arrows", "fpu", "luamath", "shapes"}
var tikzCommands = []string{"\\draw", "\\node", "\\path", "\\fill", "\\clip", "\\coordinate"}

// TikzCompleter implements providers.Completer for \usetikzlibrary{},
// \usepgflibrary{}, and bare tikz drawing commands.
type TikzCompleter struct{}

// Complete implements providers.Completer.
func (TikzCompleter) Complete(_ context.Context, req providers.Context, pos providers.Position) ([]providers.CompletionItem, error) {
	if req.Document == nil {
		return nil, nil
	}
	prefix := req.Document.Text[:clampOffset(req.Document.Text, offset(req.Document.Text, pos))]

	if m := tikzLibraryArg.FindStringSubmatch(prefix); m != nil {
		return itemsFor(tikzLibraries, m[1]), nil
	}
	if m := pgfLibraryArg.FindStringSubmatch(prefix); m != nil {
		return itemsFor(pgfLibraries, m[1]), nil
	}
	if m := backslashWord.FindStringSubmatch(prefix); m != nil {
		return itemsFor(tikzCommands, "\\"+m[1]), nil
	}
	return nil, nil
}

func clampOffset(text string, off int) int {
	if off > len(text) {
		return len(text)
	}
	if off < 0 {
		return 0
	}
	return off
}

func itemsFor(candidates []string, typed string) []providers.CompletionItem {
	items := make([]providers.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		if typed != "" && !strings.HasPrefix(c, typed) {
			continue
		}
		items = append(items, providers.CompletionItem{
			Label:      c,
			InsertText: c,
			Detail:     "tikz",
		})
	}
	return items
}

// CitationCompleter implements providers.Completer for \cite{},
// \citep{}, and \citet{} by scanning every bibtex-language document
// currently in the workspace for entries, matching texlab's
// complete_citations behavior of searching across all open .bib files
// rather than just the current document.
type CitationCompleter struct{}

// Complete implements providers.Completer.
func (CitationCompleter) Complete(_ context.Context, req providers.Context, pos providers.Position) ([]providers.CompletionItem, error) {
	if req.Document == nil || req.Ws == nil {
		return nil, nil
	}
	prefix := req.Document.Text[:clampOffset(req.Document.Text, offset(req.Document.Text, pos))]
	if !citeArg.MatchString(prefix) {
		return nil, nil
	}

	var items []providers.CompletionItem
	for _, doc := range req.Ws.Documents() {
		if doc.Lang != workspace.LanguageBibtex {
			continue
		}
		for _, m := range bibEntry.FindAllStringSubmatch(doc.Text, -1) {
			entryType, key := m[1], m[2]
			items = append(items, providers.CompletionItem{
				Label:      key,
				InsertText: key,
				Detail:     entryType,
			})
		}
	}
	return items, nil
}

// BeginCommandCompleter implements providers.Completer for the \begin
// snippet, offered whenever the cursor sits right after a bare backslash
// prefix, matching texlab's complete_begin_command (always offered,
// independent of surrounding context).
type BeginCommandCompleter struct{}

// Complete implements providers.Completer.
func (BeginCommandCompleter) Complete(_ context.Context, req providers.Context, pos providers.Position) ([]providers.CompletionItem, error) {
	if req.Document == nil {
		return nil, nil
	}
	prefix := req.Document.Text[:clampOffset(req.Document.Text, offset(req.Document.Text, pos))]
	if !backslashWord.MatchString(prefix) {
		return nil, nil
	}
	return []providers.CompletionItem{{
		Label:      "begin",
		InsertText: "begin{$1}\n\t$0\n\\end{$1}",
		Detail:     "environment",
		IsSnippet:  true,
	}}, nil
}

// Chain composes multiple Completers, concatenating every non-empty
// result, so the orchestrator can register one Completer for the whole
// language instead of dispatching per-provider itself.
type Chain []providers.Completer

// Complete implements providers.Completer.
func (c Chain) Complete(ctx context.Context, req providers.Context, pos providers.Position) ([]providers.CompletionItem, error) {
	var all []providers.CompletionItem
	for _, p := range c {
		items, err := p.Complete(ctx, req, pos)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}
