package arr

import (
	"path/filepath"
	"strings"

	"recast/internal/config"
)

// PathMapper rewrites remote paths into local ones. The mapping with the
// longest matching remote prefix wins.
type PathMapper struct {
	mappings []config.RemotePathMapping
}

// NewPathMapper returns a mapper over mappings.
func NewPathMapper(mappings []config.RemotePathMapping) PathMapper {
	cleaned := make([]config.RemotePathMapping, 0, len(mappings))
	for _, m := range mappings {
		remote := strings.TrimSpace(m.Remote)
		local := strings.TrimSpace(m.Local)
		if remote == "" || local == "" {
			continue
		}
		cleaned = append(cleaned, config.RemotePathMapping{
			Remote: filepath.Clean(remote),
			Local:  filepath.Clean(local),
		})
	}
	return PathMapper{mappings: cleaned}
}

// Map returns path with the most specific matching remote prefix replaced.
// Paths outside every mapping are returned cleaned but otherwise unchanged.
func (m PathMapper) Map(path string) string {
	path = filepath.Clean(path)
	var best *config.RemotePathMapping
	bestDepth := -1
	for i := range m.mappings {
		candidate := &m.mappings[i]
		if !Within(path, candidate.Remote) {
			continue
		}
		if depth := pathDepth(candidate.Remote); depth > bestDepth {
			best = candidate
			bestDepth = depth
		}
	}
	if best == nil {
		return path
	}
	rel, err := filepath.Rel(best.Remote, path)
	if err != nil {
		return path
	}
	return filepath.Join(best.Local, rel)
}

// Within reports whether path equals root or lies below it, comparing whole
// path components.
func Within(path, root string) bool {
	root = strings.TrimSpace(root)
	if root == "" {
		return false
	}
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return filepath.IsAbs(path)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

func pathDepth(p string) int {
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}
