package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/corvid-lang/corvidc/internal/errors"
)

// useColor reports whether w should get the colored renderer instead of
// line-delimited JSON: the --json flag forces JSON, otherwise it follows
// whether w is a terminal (spec.md's "colored when stdout is a terminal,
// line-delimited JSON otherwise").
func useColor(w io.Writer) bool {
	if jsonOutput {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// renderReport prints one diagnostic to w, either as a colored one-line
// summary or as a JSON line, per useColor(w).
func renderReport(w io.Writer, rep *errors.Report) {
	if !useColor(w) {
		errors.NewJSONEncoder(w).Encode(rep)
		return
	}
	loc := ""
	if rep.Span != nil {
		loc = dim(fmt.Sprintf(" (%s:%d:%d)", rep.Span.Start.File, rep.Span.Start.Line, rep.Span.Start.Column))
	}
	fmt.Fprintf(w, "%s[%s] %s%s\n", red("error"), bold(rep.Code), rep.Message, loc)
}
