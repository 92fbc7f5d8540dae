package images

import (
	"os"
	"path/filepath"
	"strings"
)

// minValidSize guards against empty or near-empty stub files: anything at or
// below 1KB is treated as missing and replaced with a placeholder.
const minValidSize = 1024

// DefaultPlaceholders is the fixed placeholder set the storefront ships with.
var DefaultPlaceholders = []string{
	"/images/placeholder-blue.svg",
	"/images/placeholder-green.svg",
	"/images/placeholder-gray.svg",
}

// Resolver decides whether a stored product image path can be served or must
// fall back to a deterministic placeholder.
type Resolver struct {
	publicDir    string
	placeholders []string
}

func NewResolver(publicDir string, placeholders []string) *Resolver {
	if len(placeholders) == 0 {
		placeholders = DefaultPlaceholders
	}
	return &Resolver{
		publicDir:    publicDir,
		placeholders: placeholders,
	}
}

// Valid reports whether relPath points at a real servable file under the
// public assets root with more than 1KB of content. It deliberately does NOT
// special-case .svg or "placeholder" paths; that heuristic belongs to the
// image-fetching tool, not to request-time resolution.
func (r *Resolver) Valid(relPath string) bool {
	if relPath == "" {
		return false
	}
	p := filepath.Join(r.publicDir, strings.TrimPrefix(relPath, "/"))
	st, err := os.Stat(p)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular() && st.Size() > minValidSize
}

// Placeholder picks a placeholder for a product title: sum of character codes
// modulo the set size, so the same product always gets the same asset.
func (r *Resolver) Placeholder(title string) string {
	sum := 0
	for _, c := range title {
		sum += int(c)
	}
	return r.placeholders[sum%len(r.placeholders)]
}

// Resolve returns relPath when it is valid, otherwise the title's placeholder.
func (r *Resolver) Resolve(relPath, title string) string {
	if r.Valid(relPath) {
		return relPath
	}
	return r.Placeholder(title)
}

// ResolveAll resolves each path independently. The first entry of the result
// is the product's primary display image; an empty input list yields a single
// placeholder.
func (r *Resolver) ResolveAll(relPaths []string, title string) []string {
	if len(relPaths) == 0 {
		return []string{r.Placeholder(title)}
	}
	out := make([]string, len(relPaths))
	for i, p := range relPaths {
		out[i] = r.Resolve(p, title)
	}
	return out
}

// IsPlaceholderPath is the skip-download heuristic used when fetching
// replacement images: any .svg, any path mentioning "placeholder" or
// default.svg, and any missing or tiny file counts as a placeholder. It is
// intentionally stricter than Resolver.Valid: one decides whether to fetch a
// replacement, the other whether to serve a fallback.
func IsPlaceholderPath(publicDir, relPath string) bool {
	if relPath == "" {
		return true
	}
	lower := strings.ToLower(relPath)
	if strings.Contains(lower, "placeholder") || strings.HasSuffix(lower, ".svg") {
		return true
	}
	p := filepath.Join(publicDir, strings.TrimPrefix(relPath, "/"))
	st, err := os.Stat(p)
	if err != nil {
		return true
	}
	return st.Size() <= minValidSize
}
