package widget

import (
	"fmt"
	"strings"
)

// parseName finds s (case-insensitive) in names and returns its index.
func parseName(kind, s string, names []string) (int, error) {
	want := strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(n, want) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

func nameOf(i int, names []string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", i)
	}
	return names[i]
}
