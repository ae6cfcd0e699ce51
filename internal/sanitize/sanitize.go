// Package sanitize turns arbitrary tag strings (artist/album/title) into
// safe filesystem path components and shell-quoted argument text.
package sanitize

import "strings"

// Path rewrites s for use as a single path component:
//   - '/' becomes a space (it would otherwise introduce a spurious
//     directory level)
//   - '"' is escaped as \" so the result stays safe inside a shell-quoted
//     argument downstream (the stricter of the two rules the original
//     source applied inconsistently; this is the canonical one)
//   - '$' becomes 'S' (prevents shell variable expansion if the path is
//     ever interpolated into a command line)
//
// All other bytes pass through unchanged. Path is idempotent on any string
// that contains none of '/', '"', '$'.
func Path(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '/':
			b.WriteRune(' ')
		case '"':
			b.WriteString(`\"`)
		case '$':
			b.WriteRune('S')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
