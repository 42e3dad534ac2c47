package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/neoscript/nse/internal/buffer"
	"github.com/neoscript/nse/internal/config"
	"github.com/neoscript/nse/internal/dlog"
	"github.com/neoscript/nse/internal/highlight"
	"github.com/neoscript/nse/internal/lint"
	"github.com/neoscript/nse/internal/pathwatch"
	"github.com/neoscript/nse/internal/termesc"

	"golang.org/x/crypto/ssh/terminal"
)

type application struct {
	config                   *config.Config
	searchRE                 *regexp.Regexp // The regexp used in the last navigation command, if any
	navStack                 []location
	filename                 string
	mainWindow, promptWindow *window
	cursorVisible            bool
	width, height            int
	promptHandler            func(string) // What to do with the prompt input when the user hits Enter

	saveDelay        time.Duration
	saveTimer        *time.Timer
	saveTimerPending bool

	watcher       *pathwatch.Watcher
	fileChanges   chan struct{}
	configChanges chan struct{}
	lintResults   chan map[int]highlight.Annotation

	statusMessage    string
	titleNeedsRedraw bool
}

type location struct {
	filename string
	line     int
}

func newApplication(width, height int, c *config.Config) *application {
	return &application{
		config:        c,
		width:         width,
		height:        height,
		saveDelay:     c.AutosaveDelay.Duration,
		fileChanges:   make(chan struct{}, 10),
		configChanges: make(chan struct{}, 10),
		lintResults:   make(chan map[int]highlight.Annotation, 1),
	}
}

func (app *application) navigateTo(where string) error {
	// If this isn't the very first navigation command, save the current location and add it to the
	// navigation stack once the command completes successfully.
	oldLocation := location{filename: app.filename, line: -1}
	if app.filename != "" {
		oldLocation.line = app.mainWindow.windowCoordsToTextCoords(app.mainWindow.cursorPos).Y
	}
	line := 1
	regex := (*regexp.Regexp)(nil)
	filename := where
	err := error(nil)
	if i := strings.IndexByte(where, ':'); i != -1 {
		filename = where[:i]
		if rest := where[i+1:]; allASCIIDigits(rest) {
			line, err = strconv.Atoi(rest)
		} else {
			regex, err = regexp.Compile(rest)
		}
		if err != nil {
			return err
		}
	}
	if filename != "" {
		filename = expandPath(filename)
		// Interpret relative paths relative to the directory containing the current file, if any.
		// When starting up, interpret them relative to the working directory.
		if !filepath.IsAbs(filename) {
			if app.filename != "" {
				filename = filepath.Join(filepath.Dir(app.filename), filename)
			} else {
				if filename, err = filepath.Abs(filename); err != nil {
					return err
				}
			}
		}
	}
	if err := app.gotoFile(filename); err != nil {
		return err
	}
	loc := location{filename: app.filename, line: 0}
	switch {
	case regex != nil:
		app.mainWindow.searchRegexp(regex, 0)
		loc.line = app.mainWindow.windowCoordsToTextCoords(app.mainWindow.cursorPos).Y
	case line > 0:
		app.mainWindow.gotoLine(line - 1)
		loc.line = line - 1
	}
	if oldLocation.line >= 0 {
		app.navStack = append(app.navStack, oldLocation)
	}
	app.searchRE = regex
	return nil
}

func allASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) != 0
}

// expandPath expands references to environment variables in path, of the form $VAR or ${VAR}.
// It also expands ~/ at the start of a path to the user's home directory.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if p := strings.TrimPrefix(path, "~"+string(filepath.Separator)); len(p) != len(path) {
		// In the unlikely event that the lookup fails, leave the tilde unexpanded; it will be easier
		// to detect the problem that way.
		if u, err := currentUser(); err == nil {
			path = filepath.Join(u.HomeDir, p)
		}
	}
	return path
}

// This is a variable so that it can be mocked for tests.
var currentUser = user.Current

// gotoFile loads the file at filename into the editor, if it isn't the currently open file already.
func (app *application) gotoFile(filename string) error {
	if filename == "" || filename == app.filename {
		return nil
	}
	buf := buffer.New()
	if f, err := os.Open(filename); err == nil {
		_, err = buf.ReadFrom(f)
		f.Close()
		if err != nil {
			return err
		}
		// Allow the user to edit a file that doesn't exist yet
	} else if !os.IsNotExist(err) {
		return err
	}
	app.saveNow()
	if app.watcher != nil {
		if app.filename != "" {
			app.watcher.Remove(app.filename, app.fileChanges)
		}
		app.watcher.Add(filename, app.fileChanges)
	}
	app.mainWindow = newWindow(app.width, app.height, buf, app.config.TabWidth)
	app.mainWindow.scrollSpeed = app.config.ScrollSpeed
	app.mainWindow.setLanguage(highlight.LanguageForExtension(filepath.Ext(filename)), app.config.Palette())
	app.mainWindow.onChange = app.resetSaveTimer
	app.filename = filename
	app.titleNeedsRedraw = true
	app.runLinter()
	return nil
}

// reloadFile re-reads the current file after it changed on disk. To avoid
// clobbering unsaved work, it does nothing while a save is pending.
func (app *application) reloadFile() {
	if app.saveTimerPending || app.filename == "" {
		return
	}
	f, err := os.Open(app.filename)
	if err != nil {
		return
	}
	defer f.Close()
	buf := buffer.New()
	if _, err := buf.ReadFrom(f); err != nil {
		dlog.ErrorErr(dlog.CatWatcher, "reload failed", err, "file", app.filename)
		return
	}
	dlog.Info(dlog.CatWatcher, "reloaded file changed on disk", "file", app.filename)
	w := app.mainWindow
	w.buf = buf
	w.wrappedBuf.Reset(buf)
	w.highlighter.Invalidate(0)
	w.undoStack = w.undoStack[:0]
	w.resetSelectionState()
	w.roundCursorPos()
	w.needsRedraw = true
	app.runLinter()
}

// reloadConfig re-reads the config file after it changed on disk and applies
// the new styles and settings to the open window without losing its state.
func (app *application) reloadConfig() {
	c, err := config.Load()
	if err != nil {
		dlog.ErrorErr(dlog.CatConfig, "config reload failed", err)
		return
	}
	dlog.Info(dlog.CatConfig, "reloaded config")
	app.config = c
	app.saveDelay = c.AutosaveDelay.Duration
	if w := app.mainWindow; w != nil {
		w.tabWidth = c.TabWidth
		w.scrollSpeed = c.ScrollSpeed
		w.setLanguage(highlight.LanguageForExtension(filepath.Ext(app.filename)), c.Palette())
		// The tab width affects layout, so force a re-wrap.
		w.wrappedBuf.Reset(w.buf)
		w.roundCursorPos()
		w.needsRedraw = true
	}
	app.runLinter()
}

// formatBuffer pipes the buffer through the configured formatter and replaces
// the window's contents with its output. The previous text stays on the undo
// stack.
func (app *application) formatBuffer() {
	if app.mainWindow == nil {
		return
	}
	argv := app.config.ConfigForExt(filepath.Ext(app.filename)).Formatter
	if len(argv) == 0 {
		return
	}
	var in, out bytes.Buffer
	if _, err := app.mainWindow.buf.WriteTo(&in); err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = &in
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		dlog.ErrorErr(dlog.CatLint, "formatter failed", err, "file", app.filename)
		app.showStatus("formatter failed: " + err.Error())
		return
	}
	buf := buffer.New()
	if _, err := buf.ReadFrom(&out); err != nil {
		return
	}
	w := app.mainWindow
	w.pushUndoState()
	w.buf = buf
	w.wrappedBuf.Reset(buf)
	w.highlighter.Invalidate(0)
	w.resetSelectionState()
	w.roundCursorPos()
	w.needsRedraw = true
	if w.onChange != nil {
		w.onChange()
	}
}

// runLinter starts the configured linter for the current file, if any; the
// results arrive on app.lintResults.
func (app *application) runLinter() {
	if app.filename == "" {
		return
	}
	argv := app.config.ConfigForExt(filepath.Ext(app.filename)).Linter
	if len(argv) == 0 {
		return
	}
	filename := app.filename
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		anns, err := lint.Run(ctx, argv, filename)
		if err != nil {
			dlog.ErrorErr(dlog.CatLint, "linter failed", err, "file", filename)
			return
		}
		select {
		case app.lintResults <- anns:
		default:
			// A newer result is already waiting; this one is stale anyway.
		}
	}()
}

func (app *application) gotoNextMatch() {
	if app.searchRE != nil {
		y := app.mainWindow.windowCoordsToTextCoords(app.mainWindow.cursorPos).Y
		app.navStack = append(app.navStack, location{filename: app.filename, line: y})
		app.mainWindow.searchRegexp(app.searchRE, y+1)
	}
}

func (app *application) back() error {
	if len(app.navStack) == 0 {
		return nil
	}
	s := app.navStack
	loc := s[len(s)-1]
	if err := app.gotoFile(loc.filename); err != nil {
		return err
	}
	app.mainWindow.gotoLine(loc.line)
	app.navStack = s[:len(s)-1]
	return nil
}

func (app *application) currentFile() string { return app.filename }

func (app *application) resetSaveTimer() {
	if app.saveDelay <= 0 {
		return
	}
	if app.saveTimer == nil {
		app.saveTimer = time.NewTimer(app.saveDelay)
		app.saveTimerPending = true
		return
	}
	if !app.saveTimer.Stop() && app.saveTimerPending {
		<-app.saveTimer.C
	}
	app.saveTimer.Reset(app.saveDelay)
	app.saveTimerPending = true
}

func (app *application) saveNow() {
	if app.saveTimerPending {
		if !app.saveTimer.Stop() {
			<-app.saveTimer.C
		}
		app.saveTimerPending = false
		app.save()
	}
}

// forceSave saves immediately, whether or not an autosave is pending.
func (app *application) forceSave() {
	if app.saveTimerPending {
		if !app.saveTimer.Stop() {
			<-app.saveTimer.C
		}
		app.saveTimerPending = false
	}
	app.save()
}

func (app *application) save() {
	if app.filename == "" {
		return
	}
	if err := saveBuffer(app.filename, app.mainWindow.buf); err != nil {
		dlog.ErrorErr(dlog.CatSave, "save failed", err, "file", app.filename)
		app.showStatus(err.Error())
		return
	}
	dlog.Debug(dlog.CatSave, "saved", "file", app.filename)
	app.runLinter()
}

func (app *application) saveTimerChan() <-chan time.Time {
	if app.saveTimer == nil {
		return nil
	}
	return app.saveTimer.C
}

func (app *application) watcherErrors() <-chan error {
	if app.watcher == nil {
		return nil
	}
	return app.watcher.Errors()
}

func (app *application) showStatus(msg string) {
	app.statusMessage = msg
	if app.mainWindow != nil {
		app.mainWindow.needsRedraw = true
	}
}

func (app *application) clearStatus() {
	if app.statusMessage != "" {
		app.statusMessage = ""
		app.mainWindow.needsRedraw = true
	}
}

func (app *application) run(in io.Reader, resizeSignal <-chan os.Signal, out io.Writer) error {
	inputCh := make(chan string, 32)
	go func() {
		con := termesc.NewConsoleReader(in)
		for {
			if s, err := con.ReadToken(); err != nil {
				close(inputCh)
				return
			} else {
				inputCh <- s
			}
		}
	}()
	for {
		if err := app.redraw(out); err != nil {
			return err
		}
		aw := app.activeWindow()
		select {
		case c, ok := <-inputCh:
			if !ok {
				return nil
			}
			app.clearStatus()
			switch c {
			case termesc.UpKey:
				aw.repeatMove(aw.moveCursorUp)
			case termesc.DownKey:
				aw.repeatMove(aw.moveCursorDown)
			case termesc.LeftKey:
				aw.moveCursorLeft()
			case termesc.RightKey:
				aw.moveCursorRight()
			case termesc.HomeKey:
				aw.setCursorTextPos(buffer.Point{X: 0, Y: aw.windowCoordsToTextCoords(aw.cursorPos).Y})
			case termesc.EndKey:
				tp := aw.windowCoordsToTextCoords(aw.cursorPos)
				aw.setCursorTextPos(buffer.Point{X: charCount(aw.buf.Line(tp.Y)), Y: tp.Y})
			case "\x11": // ^Q
				if app.saveTimerPending {
					app.save()
				}
				return nil
			case "\x13": // ^S
				app.forceSave()
			case "\x14": // ^T
				app.formatBuffer()
			case "\x7f", "\b":
				aw.backspace()
			case "\x0c": // ^L
				app.openPrompt("Go to:", func(response string) {
					if err := app.navigateTo(response); err != nil {
						app.showStatus(err.Error())
					}
				})
			case "\x07": // ^G
				app.gotoNextMatch()
			case "\x02": // ^B
				if err := app.back(); err != nil {
					app.showStatus(err.Error())
				}
			case "\x06": // ^F
				app.openPrompt("Search:", func(expr string) {
					re, err := regexp.Compile(expr)
					if err != nil {
						app.showStatus(err.Error())
						return
					}
					app.searchRE = re
					y := app.mainWindow.windowCoordsToTextCoords(app.mainWindow.cursorPos).Y
					app.mainWindow.searchRegexp(re, y)
				})
			case "\x12": // ^R
				app.openPrompt("Replace:", func(searchRE string) {
					re, err := regexp.Compile(searchRE)
					if err != nil {
						app.showStatus(err.Error())
						return
					}
					app.openPrompt("With:", func(replacement string) {
						app.mainWindow.replaceRegexp(re, replacement)
					})
				})
			case "\x01": // ^A
				if !aw.inMouseSelection() {
					aw.markSelectionBound()
				}
			case "\x18": // ^X
				aw.cutSelection()
			case "\x03": // ^C
				aw.copySelection()
			case "\x16": // ^V
				aw.paste()
			case "\x1a": // ^Z
				aw.undo()
			case "\x15": // ^U
				if len(aw.undoStack) > 0 && app.promptWindow == nil {
					app.openPrompt("Discard changes [y/Esc]?", func(resp string) {
						if len(resp) != 0 && (resp[0] == 'Y' || resp[0] == 'y') {
							aw.undoAll()
						}
					})
				} else {
					aw.undoAll()
				}
			case "\x1b":
				switch {
				case aw.selection.Set || aw.selectionAnchor.Set || aw.mouseSelectionAnchor.Set:
					aw.resetSelectionState()
				case app.promptWindow != nil:
					app.cancelPrompt()
				}
			default:
				if ev, err := termesc.ParseMouseEvent(c); err == nil {
					app.handleMouseEvent(ev)
				} else if c >= " " || c == "\r" || c == "\t" {
					if app.promptWindow != nil && c == "\r" {
						app.finishPrompt()
					} else {
						aw.typeText(c)
					}
				} else if termesc.IsAltRightKey(c) {
					aw.moveCursorRightWord()
				} else if termesc.IsAltLeftKey(c) {
					aw.moveCursorLeftWord()
				}
			}
		case <-resizeSignal:
			// This can only fail if our terminal turns into a non-terminal
			// during execution, which is highly unlikely.
			if w, h, err := terminal.GetSize(0); err != nil {
				return err
			} else {
				app.resize(h, w)
			}
		case <-app.saveTimerChan():
			app.saveTimerPending = false
			app.save()
		case <-app.fileChanges:
			app.reloadFile()
		case <-app.configChanges:
			app.reloadConfig()
		case anns := <-app.lintResults:
			app.mainWindow.setErrors(anns)
		case err := <-app.watcherErrors():
			dlog.ErrorErr(dlog.CatWatcher, "watcher error", err)
		}
	}
}

func (app *application) resize(height, width int) {
	app.width = width
	app.height = height
	app.mainWindow.resize(app.height, app.width)
	if app.promptWindow != nil {
		app.promptWindow.resize(1, app.width)
	}
}

// openPrompt opens a prompt window at the bottom of the viewport.
// When the user hits Enter, whenDone is called with the entered text.
func (app *application) openPrompt(prompt string, whenDone func(string)) {
	app.promptWindow = newWindow(app.width, 1, buffer.New(), app.config.TabWidth)
	app.promptWindow.setGutterText(prompt)
	app.promptHandler = whenDone
}

func (app *application) cancelPrompt() {
	app.mainWindow.needsRedraw = true
	app.promptWindow = nil
	app.promptHandler = nil
}

func (app *application) finishPrompt() {
	// Do things in this order so that the prompt handler can safely call openPrompt.
	response := app.promptWindow.buf.Line(0)
	handler := app.promptHandler
	app.cancelPrompt()
	handler(strings.TrimSuffix(response, "\n"))
}

func (app *application) activeWindow() *window {
	if app.promptWindow != nil {
		return app.promptWindow
	}
	return app.mainWindow
}

func (app *application) promptYOffset() int {
	if app.promptWindow != nil {
		return app.height - 1
	}
	return app.height
}

func (app *application) redraw(console io.Writer) error {
	if err := app.mainWindow.redraw(console); err != nil {
		return err
	}
	if app.promptWindow != nil {
		if err := app.promptWindow.redrawAtYOffset(console, app.promptYOffset()); err != nil {
			return err
		}
	} else if app.statusMessage != "" {
		if _, err := io.WriteString(console, termesc.SetCursorPos(app.height, 1)+termesc.ClearLine+app.statusMessage); err != nil {
			return err
		}
	}
	if app.titleNeedsRedraw {
		if _, err := console.Write([]byte(termesc.SetTitle("nse: " + app.filename))); err != nil {
			return err
		}
		app.titleNeedsRedraw = false
	}
	nowVisible := app.activeWindow().cursorInViewport()
	defer func() { app.cursorVisible = nowVisible }()
	if nowVisible {
		if !app.cursorVisible {
			if _, err := console.Write([]byte(termesc.ShowCursor)); err != nil {
				return err
			}
		}
		p := app.cursorPos()
		_, err := console.Write([]byte(termesc.SetCursorPos(p.Y+1, p.X+app.activeWindow().gutterWidth()+1)))
		return err
	} else if app.cursorVisible {
		_, err := console.Write([]byte(termesc.HideCursor))
		return err
	}
	return nil
}

func (app *application) cursorPos() point {
	if app.promptWindow != nil {
		p := app.promptWindow.viewportCursorPos()
		return point{X: p.X, Y: p.Y + app.promptYOffset()}
	}
	return app.mainWindow.viewportCursorPos()
}

func (app *application) handleMouseEvent(ev termesc.MouseEvent) {
	if py := app.promptYOffset(); ev.Y >= py && app.promptWindow != nil {
		ev.Y -= py
		app.promptWindow.handleMouseEvent(ev)
		return
	}
	if app.promptWindow != nil && !ev.Move {
		app.cancelPrompt()
	}
	app.mainWindow.handleMouseEvent(ev)
}
