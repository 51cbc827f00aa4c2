package stacktrace

import "strings"

// InternalPaths extracts the "internal/..." file:line frames of a raw stack
// as produced by runtime/debug.Stack.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		file, _, found := strings.Cut(line, " ")
		if !found {
			file = line
		}
		if !strings.Contains(file, ".go:") {
			continue
		}
		if _, rel, ok := strings.Cut(file, "/internal/"); ok {
			paths = append(paths, "internal/"+rel)
		}
	}
	return paths
}
