// nse is a terminal script editor for Maya-style Python and MEL, with
// incremental syntax highlighting and lint feedback.
//
// Usage:
//
//	nse <file>
//
// The file argument accepts the same syntax as the in-editor Go to prompt:
// a path, optionally followed by :<line> or :<regexp>.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/neoscript/nse/internal/atomicwrite"
	"github.com/neoscript/nse/internal/buffer"
	"github.com/neoscript/nse/internal/config"
	"github.com/neoscript/nse/internal/dlog"
	"github.com/neoscript/nse/internal/pathwatch"
	"github.com/neoscript/nse/internal/termesc"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

func saveBuffer(fname string, buf *buffer.Buffer) error {
	return atomicwrite.Write(fname, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage:", os.Args[0], "<file>[:line]")
		os.Exit(2)
	}
	closeLog, err := dlog.InitFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
		closeLog = func() {}
	}
	defer closeLog()
	c, err := config.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// A broken config file shouldn't stop the editor from starting;
		// the returned config is always usable.
		dlog.ErrorErr(dlog.CatConfig, "config load failed", err)
	}
	width, height, err := terminal.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error finding terminal size:", err)
		os.Exit(2)
	}
	app := newApplication(width, height, c)
	app.watcher = pathwatch.NewWatcher()
	defer app.watcher.Close()
	// Config edits restyle the open window live.
	if p, err := config.Path(); err == nil {
		app.watcher.Add(p, app.configChanges)
	}
	if err := app.navigateTo(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	oldMode, err := terminal.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error entering raw mode:", err)
		os.Exit(2)
	}
	restoreConsole := func() {
		os.Stdout.WriteString(termesc.DisableMouseReporting + termesc.ShowCursor + termesc.ExitAlternateScreen)
		terminal.Restore(int(os.Stdin.Fd()), oldMode)
	}
	defer restoreConsole()
	os.Stdout.WriteString(termesc.EnterAlternateScreen + termesc.EnableMouseReporting)

	resizeSignal := make(chan os.Signal, 1)
	signal.Notify(resizeSignal, syscall.SIGWINCH)
	if err := app.run(os.Stdin, resizeSignal, os.Stdout); err != nil {
		restoreConsole()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
