package output

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/clutz/emit"
	"github.com/teranos/clutz/errors"
)

// CheckResult holds the result of comparing fresh output with a golden copy.
type CheckResult struct {
	UpToDate bool
	// Differences lists golden-relative files whose content differs.
	Differences []string
	// Missing lists files that would be generated but have no golden copy.
	Missing []string
	// Stale lists golden .d.ts files no unit generates any more.
	Stale []string
}

// Err returns ErrOutOfDate with the differing files as detail, or nil.
func (r *CheckResult) Err() error {
	if r.UpToDate {
		return nil
	}
	err := errors.Wrapf(errors.ErrOutOfDate, "%d changed, %d missing, %d stale",
		len(r.Differences), len(r.Missing), len(r.Stale))
	for _, f := range r.Differences {
		err = errors.WithDetailf(err, "changed: %s", f)
	}
	for _, f := range r.Missing {
		err = errors.WithDetailf(err, "missing: %s", f)
	}
	for _, f := range r.Stale {
		err = errors.WithDetailf(err, "stale: %s", f)
	}
	return errors.WithHint(err, "run clutz generate to refresh the declarations")
}

// Check compares res with golden. In ModeDir golden is a directory of
// per-unit files; otherwise it is one concatenated file. When ignoreHeader
// is set, `// Generated from` lines are not compared.
func Check(res *emit.Result, golden string, mode Mode, ignoreHeader bool) (*CheckResult, error) {
	if mode != ModeDir {
		want, err := os.ReadFile(golden)
		if os.IsNotExist(err) {
			return &CheckResult{Missing: []string{filepath.Base(golden)}}, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read golden %s", golden)
		}
		result := &CheckResult{UpToDate: true}
		if contentDiffers([]byte(res.Text()), want, ignoreHeader) {
			result.UpToDate = false
			result.Differences = []string{filepath.Base(golden)}
		}
		return result, nil
	}

	tmp, err := os.MkdirTemp("", "clutz-check-*")
	if err != nil {
		return nil, errors.Wrap(err, "create check directory")
	}
	defer os.RemoveAll(tmp)

	w := &Writer{Mode: ModeDir, Path: tmp}
	if _, err := w.Write(res); err != nil {
		return nil, err
	}
	return CompareDirectories(tmp, golden, ignoreHeader)
}

// CompareDirectories compares the .d.ts files in generated with those in golden.
func CompareDirectories(generated, golden string, ignoreHeader bool) (*CheckResult, error) {
	result := &CheckResult{}
	seen := make(map[string]bool)

	err := filepath.Walk(generated, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, Extension) {
			return err
		}
		rel, err := filepath.Rel(generated, path)
		if err != nil {
			return err
		}
		seen[rel] = true

		goldenPath := filepath.Join(golden, rel)
		if _, err := os.Stat(goldenPath); os.IsNotExist(err) {
			result.Missing = append(result.Missing, rel)
			return nil
		}
		different, err := filesAreDifferent(path, goldenPath, ignoreHeader)
		if err != nil {
			result.Differences = append(result.Differences, rel+" (error: "+err.Error()+")")
		} else if different {
			result.Differences = append(result.Differences, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", generated)
	}

	if _, err := os.Stat(golden); err == nil {
		err = filepath.Walk(golden, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(path, Extension) {
				return err
			}
			rel, err := filepath.Rel(golden, path)
			if err != nil {
				return err
			}
			if !seen[rel] {
				result.Stale = append(result.Stale, rel)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", golden)
		}
	}

	sort.Strings(result.Differences)
	sort.Strings(result.Missing)
	sort.Strings(result.Stale)
	result.UpToDate = len(result.Differences) == 0 && len(result.Missing) == 0 && len(result.Stale) == 0
	return result, nil
}

// filesAreDifferent compares two files, optionally ignoring header lines.
func filesAreDifferent(file1, file2 string, ignoreHeader bool) (bool, error) {
	content1, err := os.ReadFile(file1)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", file1)
	}
	content2, err := os.ReadFile(file2)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", file2)
	}
	return contentDiffers(content1, content2, ignoreHeader), nil
}

func contentDiffers(a, b []byte, ignoreHeader bool) bool {
	if !ignoreHeader {
		return !bytes.Equal(a, b)
	}
	return filterHeaderLines(a) != filterHeaderLines(b)
}

// filterHeaderLines removes `// Generated from` lines, whose paths vary
// between checkouts. Returns "" if the scanner fails, which makes the
// comparison fail rather than pass.
func filterHeaderLines(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "// Generated from ") {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return ""
	}
	return result.String()
}
