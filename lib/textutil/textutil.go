package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// CollapseSpace trims a string and collapses inner runs of whitespace into a single space.
func CollapseSpace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

var unsafeFilenameChars = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	"\x00", "",
)

// SafeFilename makes a display name usable as a single path element, characters
// other than path separators and NUL are left untouched.
func SafeFilename(name string) string {
	name = unsafeFilenameChars.Replace(CollapseSpace(name))
	switch name {
	case "", ".", "..":
		return "_"
	}
	return name
}

// Suggest returns the candidate most similar to `name` according to Jaro-Winkler
// similarity, ok is false when no candidate is at least `threshold` similar.
func Suggest(name string, candidates []string, threshold float64) (best string, ok bool) {
	normalized := NormalizeName(name)
	bestScore := 0.0
	for _, c := range candidates {
		score := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < threshold {
		return "", false
	}
	return best, true
}
