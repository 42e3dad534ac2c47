// Package lint runs an external linter over a script file and turns its
// output into per-line annotations for the highlighter.
package lint

import (
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/neoscript/nse/internal/dlog"
	"github.com/neoscript/nse/internal/highlight"
	"github.com/pkg/errors"
)

// diagLine matches the two common linter output shapes:
//
//	file.py:12:5: undefined name 'x'
//	file.py:12: undefined name 'x'
var diagLine = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:\s*(.*)$`)

// Run executes the linter command argv with the named file appended as its
// last argument and parses the diagnostics it reports for that file.
// A non-zero exit status is not an error: that's how linters say they found
// something. An empty argv yields no annotations.
func Run(ctx context.Context, argv []string, filename string) (map[int]highlight.Annotation, error) {
	if len(argv) == 0 {
		return nil, nil
	}
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], filename)...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.WithMessage(err, "lint run failed")
		}
		// Some linters print diagnostics on stderr instead.
		if len(out) == 0 {
			out = exitErr.Stderr
		}
	}
	anns := Parse(out, filename)
	dlog.Debug(dlog.CatLint, "linter finished", "cmd", argv[0], "file", filename, "diagnostics", len(anns))
	return anns, nil
}

// Parse extracts annotations from linter output, keyed by 1-indexed line
// number. Only diagnostics whose reported path has the same base name as
// filename are kept; when a line carries several diagnostics, the first one
// wins.
func Parse(output []byte, filename string) map[int]highlight.Annotation {
	base := filepath.Base(filename)
	anns := make(map[int]highlight.Annotation)
	for _, raw := range strings.Split(string(output), "\n") {
		m := diagLine.FindStringSubmatch(strings.TrimRight(raw, "\r"))
		if m == nil {
			continue
		}
		if filepath.Base(m[1]) != base {
			continue
		}
		line, err := strconv.Atoi(m[2])
		if err != nil || line < 1 {
			continue
		}
		if _, ok := anns[line]; ok {
			continue
		}
		col := 0
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}
		anns[line] = highlight.Annotation{Column: col, Message: m[4]}
	}
	if len(anns) == 0 {
		return nil
	}
	return anns
}
