// Package clipboard provides functions for copying and pasting text
// across different nse instances running for the same user.
//
// On macOS and on X11 systems with xclip installed, this uses the system
// clipboard and thus works across all applications.
package clipboard

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/neoscript/nse/internal/atomicwrite"
	"github.com/pkg/errors"

	"github.com/tajtiattila/basedir"
)

// Copy overwrites the clipboard's contents with the given data.
func Copy(data []byte) error {
	return errors.WithMessage(copyGeneric(data), "copy failed")
}

// Paste returns the last data stored with Copy by any instance of nse of the same user,
// or the last data copied into the system clipboard if that is supported.
func Paste() ([]byte, error) {
	data, err := pasteGeneric()
	return data, errors.WithMessage(err, "paste failed")
}

func copyGeneric(data []byte) error {
	switch runtime.GOOS {
	case "darwin":
		if err := pipeTo(data, "pbcopy"); err == nil {
			return nil
		}
	case "linux":
		if err := pipeTo(data, "xclip", "-selection", "clipboard"); err == nil {
			return nil
		}
	}
	return copyBuiltin(data)
}

func pasteGeneric() ([]byte, error) {
	switch runtime.GOOS {
	case "darwin":
		if data, err := exec.Command("pbpaste").Output(); err == nil {
			return data, nil
		}
	case "linux":
		if data, err := exec.Command("xclip", "-selection", "clipboard", "-o").Output(); err == nil {
			return data, nil
		}
	}
	return pasteBuiltin()
}

func clipboardFilename() (string, error) {
	nseDir, err := basedir.Data.EnsureDir("nse", 0700)
	if err != nil {
		return "", err
	}
	return filepath.Join(nseDir, "clipboard"), nil
}

func copyBuiltin(data []byte) error {
	p, err := clipboardFilename()
	if err != nil {
		return err
	}
	return atomicwrite.Write(p, func(w io.Writer) error { _, err := w.Write(data); return err })
}

func pasteBuiltin() ([]byte, error) {
	p, err := clipboardFilename()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func pipeTo(data []byte, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(data)
	return cmd.Run()
}
