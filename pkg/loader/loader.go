// Package loader reads cutting-stock instance files.
//
// The format is a UTF-8 CSV-like text file:
//   - lines starting with '#' and blank lines are comments;
//   - any line containing an alphabetic character is a header and skipped;
//   - the first data line is "W,L" (stock width, length);
//   - each subsequent data line is "id,w,l,d" (one item type).
//
// Sizes are non-negative 32-bit integers. Duplicate ids are not rejected;
// the solver keys everything off positional item indices.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/platecut/pkg/model"
)

// Load reads an instance from path. If path is a directory, the
// lexicographically last *.csv file inside it is used (instance files are
// named with a leading timestamp, so the last one is the newest).
func Load(path string) (*model.Instance, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		path, err = latestInstanceFile(path)
		if err != nil {
			return nil, "", err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	inst, err := Parse(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return inst, path, nil
}

// latestInstanceFile picks the lexicographically last .csv in dir.
func latestInstanceFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read instance directory: %w", err)
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".csv") {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no instance files in %s: %w", dir, model.ErrBadInstance)
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[len(candidates)-1]), nil
}

// Parse reads an instance from r.
func Parse(r io.Reader) (*model.Instance, error) {
	var (
		stockRead   bool
		stockWidth  int
		stockLength int
		items       []model.ItemType
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isCommentOrEmpty(line) || isHeader(line) {
			continue
		}

		fields := splitFields(line)
		if !stockRead {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: stock line needs W,L: %w", lineNo, model.ErrBadInstance)
			}
			w, err := parseSize(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: stock width: %w", lineNo, err)
			}
			l, err := parseSize(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: stock length: %w", lineNo, err)
			}
			stockWidth, stockLength = w, l
			stockRead = true
			continue
		}

		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: item line needs id,w,l,d: %w", lineNo, model.ErrBadInstance)
		}
		vals := make([]int, 4)
		for k := 0; k < 4; k++ {
			v, err := parseSize(fields[k])
			if err != nil {
				return nil, fmt.Errorf("line %d: field %d: %w", lineNo, k+1, err)
			}
			vals[k] = v
		}
		items = append(items, model.ItemType{ID: vals[0], Width: vals[1], Length: vals[2], Demand: vals[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read instance: %w", err)
	}
	if !stockRead {
		return nil, fmt.Errorf("no stock line found: %w", model.ErrBadInstance)
	}

	return model.NewInstance(stockWidth, stockLength, items)
}

func isCommentOrEmpty(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// isHeader reports whether the line is a column-header line: any alphabetic
// rune makes it one.
func isHeader(line string) bool {
	for _, r := range line {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseSize parses a non-negative 32-bit integer.
func parseSize(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer: %w", s, model.ErrBadInstance)
	}
	if v < 0 {
		return 0, fmt.Errorf("%q is negative: %w", s, model.ErrBadInstance)
	}
	return int(v), nil
}
