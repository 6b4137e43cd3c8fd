package main

import (
	"fmt"
	"io"

	"github.com/arthur-debert/keyfactory/pkg/codegen"
	"github.com/arthur-debert/keyfactory/pkg/core"
	"github.com/arthur-debert/keyfactory/pkg/discovery"
	"github.com/arthur-debert/keyfactory/pkg/styles"
)

var statusStyles = map[codegen.Status]string{
	codegen.StatusWritten:   "Success",
	codegen.StatusUnchanged: "Muted",
	codegen.StatusPending:   "Warning",
	codegen.StatusPruned:    "Warning",
}

func printDiagnostics(w io.Writer, diags []discovery.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintln(w, styles.Render("Warning", MsgDiagnosticsHeader))
	for _, d := range diags {
		fmt.Fprintf(w, MsgDiagnosticLine,
			styles.Render("Reason", string(d.Reason)),
			d.Package,
			styles.Render("TypeName", d.TypeName),
			d.Message)
		if d.Pos.IsValid() {
			fmt.Fprintf(w, MsgDiagnosticPos, styles.Render("Muted", d.Pos.String()))
		}
	}
}

// printFiles lists generated and pruned files. Unchanged files are only
// listed when verbose is set.
func printFiles(w io.Writer, dir string, res *core.Result, verbose bool) {
	for _, f := range res.Files {
		if f.Status == codegen.StatusUnchanged && !verbose {
			continue
		}
		label := string(f.Status)
		if f.Status == codegen.StatusPending {
			label = "would write"
		}
		printFile(w, dir, f, label)
	}
	for _, f := range res.Pruned {
		label := string(f.Status)
		if f.Status == codegen.StatusPending {
			label = "would remove"
		}
		printFile(w, dir, f, label)
	}
}

func printFile(w io.Writer, dir string, f codegen.FileResult, label string) {
	style := statusStyles[f.Status]
	fmt.Fprintf(w, MsgFileLine,
		styles.Render(style, "•"),
		styles.Render(style, label),
		styles.Render("FilePath", relPath(dir, f.Path)))
}

func printSummary(w io.Writer, res *core.Result) {
	changed := res.Count(codegen.StatusWritten) + res.Count(codegen.StatusPending)
	fmt.Fprintf(w, MsgGenerateSummary,
		res.Bindings(),
		len(res.Units),
		res.Packages,
		changed,
		res.Count(codegen.StatusUnchanged),
		len(res.Pruned))
}
