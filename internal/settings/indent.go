package settings

import "strings"

// detectIndent returns the leading whitespace of the first indented line in a
// JSON document, or two spaces when nothing is indented.
func detectIndent(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed != "" && len(trimmed) < len(line) {
			return line[:len(line)-len(trimmed)]
		}
	}
	return "  "
}
