package analysis

import (
	"strings"

	"stock-analytics/src/helpers"
)

// -----------------------------------------------------------------------------

// SelectTickers restricts requested to the tickers present in universe, keeping the
// request order and dropping repeats. An empty request fails with ErrEmptySelection;
// so does a request where nothing is known.
func SelectTickers(universe, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, helpers.ErrEmptySelection
	}

	known := make(map[string]struct{}, len(universe))
	for _, t := range universe {
		known[t] = struct{}{}
	}

	selected := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, t := range requested {
		if _, ok := known[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		selected = append(selected, t)
	}

	if len(selected) == 0 {
		return nil, helpers.ErrEmptySelection
	}
	return selected, nil
}

// -----------------------------------------------------------------------------

// DefaultSelection returns the first n tickers of the universe.
func DefaultSelection(universe []string, n int) []string {
	if n > len(universe) {
		n = len(universe)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, universe[:n])
	return out
}

// -----------------------------------------------------------------------------

// ParseTickerList splits a comma separated list, trimming blanks.
func ParseTickerList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
