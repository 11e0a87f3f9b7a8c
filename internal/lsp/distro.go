package lsp

import "os/exec"

// latexDistros are checked in order of how commonly they appear on a
// developer's PATH; the first one found wins. Grounded on the teacher's
// external-tool discovery style in internal/debug/delve.go, which
// probes PATH for an optional companion binary rather than failing
// outright when one is missing.
var latexDistros = []string{"tectonic", "latexmk", "pdflatex"}

// detectLatexDistribution reports the first LaTeX toolchain found on
// PATH, or "" if none is installed. The result only informs diagnostics
// logging and the textDocument/build capability advertisement; building
// itself is delegated to providers.Builder.
func detectLatexDistribution() string {
	for _, name := range latexDistros {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}
