package source

import (
	"fmt"
	"strings"
)

// header maps lower-cased column names to their index.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// find returns the index of the first present alias, or -1.
func (h header) find(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

// require is find that fails on absence.
func (h header) require(file string, aliases ...string) (int, error) {
	i := h.find(aliases...)
	if i < 0 {
		return -1, fmt.Errorf("%s: %w %q", file, ErrMissingColumn, aliases[0])
	}
	return i, nil
}

// field returns row[i] trimmed, or "" when i is out of range.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
