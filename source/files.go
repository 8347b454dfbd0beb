package source

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover finds catalog files under root matching the given glob
// patterns. Patterns support ** (e.g. "**/data.json"). Results are
// deduplicated and sorted.
func Discover(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"**/*.json"}
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		absPattern := filepath.Join(root, pattern)
		matches, err := doublestar.FilepathGlob(absPattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
