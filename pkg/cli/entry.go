// Package cli implements the adlookup tool: it loads a module manifest,
// rebuilds the declaration table and eagerly registered witnesses, replays
// the manifest's lookup requests through the witness registry, and prints a
// resolution report.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/tangentlang/tangent/internal/config"
	"github.com/tangentlang/tangent/internal/pipeline"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiDim   = "\033[2m"
)

// isManifestFile checks if a file has a recognized manifest extension.
func isManifestFile(path string) bool {
	for _, ext := range config.ManifestFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// useColor reports whether w is a terminal worth coloring.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type reporter struct {
	out   io.Writer
	color bool
}

func (r *reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// Entry runs adlookup with the given arguments and returns the process exit
// code.
func Entry(args []string, stdout, stderr io.Writer) int {
	path := config.ManifestFileName
	if len(args) > 0 {
		path = args[0]
	}
	if len(args) > 1 {
		fmt.Fprintln(stderr, "usage: adlookup [manifest.yaml]")
		return 2
	}
	if !isManifestFile(path) {
		fmt.Fprintf(stderr, "adlookup: %s is not a manifest file (want %s)\n",
			path, strings.Join(config.ManifestFileExtensions, " or "))
		return 2
	}

	p := pipeline.New(&LoadProcessor{}, &BuildProcessor{}, &ReplayProcessor{})
	ctx := p.Run(&pipeline.Context{ManifestPath: path})

	for _, err := range ctx.Errors {
		fmt.Fprintf(stderr, "adlookup: %v\n", err)
	}
	if ctx.Registry == nil {
		return 1
	}

	rep := &reporter{out: stdout, color: useColor(stdout)}
	fmt.Fprintf(rep.out, "module %s: %d function(s), %d witness(es) registered eagerly\n",
		ctx.Module.Name, len(ctx.Module.Functions), ctx.EagerWitnesses)

	unresolved := 0
	for _, res := range ctx.Results {
		params, _, _ := ctx.Module.RequestSets(res.Request)
		if res.Witness == nil {
			unresolved++
			fmt.Fprintf(rep.out, "%s %s %s -> %s\n",
				rep.paint(ansiDim, "lookup"), res.Request.Function, params,
				rep.paint(ansiRed, res.Reason))
			continue
		}
		w := res.Witness
		fmt.Fprintf(rep.out, "%s %s %s -> %s %s [%s, %s]\n",
			rep.paint(ansiDim, "lookup"), res.Request.Function, params,
			rep.paint(ansiGreen, shortID(w.ID)), w.Config, w.State, w.Linkage)
	}

	fmt.Fprintf(rep.out, "%d witness(es) registered, %d request(s) unresolved\n",
		ctx.Registry.Len(), unresolved)
	if unresolved > 0 || len(ctx.Errors) > 0 {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
