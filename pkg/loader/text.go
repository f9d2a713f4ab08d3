package loader

import "strings"

// readText treats plain text as pre-extracted. Form feeds delimit pages,
// matching how most text exports of scanned SoFs mark page boundaries.
func readText(data []byte) ([]string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\f"), nil
}
