package scrape

import (
	"image"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// AssetMap maps a name key (ability letter, item, rune, spell, or path name)
// to a decoded image. It is built fresh for each renderer and never shared.
type AssetMap map[string]image.Image

// Get returns the image for name, or nil.
func (m AssetMap) Get(name string) image.Image {
	return m[name]
}

// Keys returns the map's keys in sorted order.
func (m AssetMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Closest returns the key nearest to name by case-insensitive edit distance,
// or "" when nothing is close enough. It only feeds diagnostics.
func (m AssetMap) Closest(name string) string {
	want := strings.ToLower(name)
	best, bestDist := "", -1
	for _, k := range m.Keys() {
		dist := levenshtein.ComputeDistance(want, strings.ToLower(k))
		if dist > levenshteinLimit(len(k)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = k, dist
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
