package collect

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Enumerate expands patterns (standard filesystem globs: *, ?, **, […]) and
// returns a deduplicated, sorted slice of regular-file paths. A path is
// included only if it names a regular file, or a symlink that resolves to a
// regular file; directories, sockets, devices, and broken symlinks are
// dropped silently, matching the collector pipeline's tolerance for a
// heterogeneous, partly-inaccessible corpus.
func Enumerate(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		for _, m := range matches {
			if !isRegularFile(m) {
				continue
			}

			seen[m] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths, nil
}

// isRegularFile reports whether path names a regular file, following a
// symlink if path is one. Any stat failure (including a broken symlink) is
// treated as "not a regular file" rather than propagated, since the
// enumerator's job is to silently filter the corpus down to readable
// regular files.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}
