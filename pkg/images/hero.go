package images

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

const fallbackHero = "/images/placeholder-blue.svg"

var heroDirs = []string{"images/hero", "images/banners", "images"}

// FindHero scans the public assets root for a homepage banner image. It
// prefers files named like "hero*" or "banner*" in the candidate directories
// and falls back to a bundled placeholder when nothing usable exists.
func FindHero(publicDir string) string {
	for _, dir := range heroDirs {
		entries, err := os.ReadDir(filepath.Join(publicDir, dir))
		if err != nil {
			continue
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := strings.ToLower(e.Name())
			if !strings.HasPrefix(name, "hero") && !strings.HasPrefix(name, "banner") {
				continue
			}
			if st, err := e.Info(); err != nil || st.Size() <= minValidSize {
				continue
			}
			names = append(names, e.Name())
		}
		if len(names) > 0 {
			sort.Strings(names)
			return "/" + path.Join(dir, names[0])
		}
	}
	return fallbackHero
}
