package watchlist

import "strings"

// DefaultInput is the watchlist shown when the user has not typed anything.
const DefaultInput = "AAPL, TSLA"

// Parse splits a comma-separated ticker list into upper-case symbols.
// Blank entries are dropped; order and duplicates are kept. The result is
// never nil.
func Parse(input string) []string {
	symbols := make([]string, 0)
	for _, piece := range strings.Split(input, ",") {
		s := strings.ToUpper(strings.TrimSpace(piece))
		if s == "" {
			continue
		}
		symbols = append(symbols, s)
	}
	return symbols
}
