package ocr

import "strings"

// Normalize collapses runs of whitespace inside each line and drops empty lines.
func Normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.Join(strings.Fields(line), " "); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

// JoinPages normalizes each page and separates non-empty pages with a blank line.
func JoinPages(pages []string) string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, "\n\n")
}
