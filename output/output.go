// Package output publishes emitted declarations: to stdout, to one
// concatenated file, or to one .d.ts file per unit in a directory.
//
// Files are written atomically (temp file in the target directory, then
// rename) so an interrupted run never leaves a half-written declaration.
package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/clutz/emit"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
)

// Mode selects where declarations go.
type Mode string

const (
	ModeStdout Mode = "stdout"
	ModeFile   Mode = "file"
	ModeDir    Mode = "dir"
)

// Extension of every emitted declaration file.
const Extension = ".d.ts"

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeStdout, ModeFile, ModeDir:
		return m, nil
	case "":
		return ModeStdout, nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown output mode %q", s),
		"use one of: stdout, file, dir")
}

// Writer publishes emission results.
type Writer struct {
	Mode Mode
	// Path is the output file (ModeFile) or directory (ModeDir).
	Path string
	// Stdout receives ModeStdout output. Defaults to os.Stdout.
	Stdout io.Writer
}

// Write publishes res and returns the paths written.
func (w *Writer) Write(res *emit.Result) ([]string, error) {
	log := logger.ComponentLogger("output")

	switch w.Mode {
	case ModeStdout, "":
		out := w.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := io.WriteString(out, res.Text()); err != nil {
			return nil, errors.Wrap(err, "write declarations to stdout")
		}
		return nil, nil

	case ModeFile:
		if w.Path == "" {
			return nil, errors.WithHint(errors.New("file output needs a path"), "set output.path or pass --out")
		}
		if err := WriteFileAtomic(w.Path, []byte(res.Text())); err != nil {
			return nil, err
		}
		log.Debugw("declarations written", logger.FieldPath, w.Path, logger.FieldUnits, len(res.Units))
		return []string{w.Path}, nil

	case ModeDir:
		if w.Path == "" {
			return nil, errors.WithHint(errors.New("dir output needs a path"), "set output.path or pass --out")
		}
		var written []string
		for _, u := range res.Units {
			if u.Text == "" {
				continue
			}
			path := filepath.Join(w.Path, FileName(u.Name))
			if err := WriteFileAtomic(path, []byte(u.Text)); err != nil {
				return written, err
			}
			written = append(written, path)
		}
		log.Debugw("declarations written", logger.FieldPath, w.Path, logger.FieldCount, len(written))
		return written, nil
	}
	return nil, errors.Newf("unknown output mode %q", w.Mode)
}

// FileName is the per-unit file name: the namespace with path separators
// replaced, plus .d.ts.
func FileName(unit string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(unit) + Extension
}

// WriteFileAtomic writes data to path through a temp file and rename,
// creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "rename %s to %s", tmpName, path)
	}
	return nil
}
