// Package engine implements the entity-resolution core of Ludex: name
// canonicalization, quality scoring, multi-criteria grouping, and the
// three-stage cleaning pipeline that drives them.
package engine

import (
	"regexp"
	"strings"

	"github.com/ekstrand/ludex/internal/config"
)

// Canonicalizer derives canonical base names, normalized comparison forms,
// and series prefixes from display names. It is stateless apart from its
// naming rules and compiled patterns, so a single instance can be shared
// across pipeline runs.
type Canonicalizer struct {
	rules *config.NamingRules
}

// Version/edition/DLC marker phrases, stripped in this fixed order. Each
// pattern is independently optional and removes every occurrence.
var versionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*-\s*(game of the year|goty|complete|definitive|enhanced|remastered|remake|special|collector'?s?|deluxe|premium|gold|hd)(\s+edition)?`),
	regexp.MustCompile(`(?i)\s+(edition|version|collection|bundle)`),
	regexp.MustCompile(`(?i)\s+(dlc|expansion|season pass|content pack)`),
	regexp.MustCompile(`(?i)\s+(remake|reboot|remaster)`),
	regexp.MustCompile(`(?i)\s+(vol\.?\s*\d+|volume\s*\d+)`),
	regexp.MustCompile(`(?i)\s+(chapter|episode|part)\s*\d+`),
}

var (
	trailingYearRe      = regexp.MustCompile(`\s+\d{2,4}$`)
	trailingSeparatorRe = regexp.MustCompile(`[:;\-–—_\s]+$`)
	nonWordRe           = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe        = regexp.MustCompile(`\s+`)
	digitRunRe          = regexp.MustCompile(`\d+`)

	// Series detection patterns, tried in order: trailing integer,
	// trailing roman numeral, text before a colon.
	seriesPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(.+)\s+\d+$`),
		regexp.MustCompile(`(?i)^(.+)\s+[ivx]+$`),
		regexp.MustCompile(`^(.+):\s*.+$`),
	}
)

// NewCanonicalizer creates a canonicalizer using the given naming rules.
// A nil rules argument falls back to the compiled defaults.
func NewCanonicalizer(rules *config.NamingRules) *Canonicalizer {
	if rules == nil {
		rules = config.DefaultNamingRules()
	}
	return &Canonicalizer{rules: rules}
}

// ExtractCanonicalName derives a canonical base name from a display name by
// removing version markers and other release decoration. The result is
// lowercased and may be unchanged from the lowercased input when nothing
// matched.
func (c *Canonicalizer) ExtractCanonicalName(gameName string) string {
	name := strings.ToLower(gameName)

	// Curated exceptions short-circuit the generic heuristics.
	if canonical, ok := c.rules.Aliases[name]; ok {
		return canonical
	}

	// Bare trailing year or number ("Doom 2016", "FIFA 22").
	name = trailingYearRe.ReplaceAllString(name, "")

	for _, marker := range versionMarkers {
		name = marker.ReplaceAllString(name, "")
	}

	// Known franchises drop their colon-separated subtitle.
	for _, franchise := range c.rules.Franchises {
		if strings.HasPrefix(name, franchise) && strings.Contains(name, ":") {
			name = name[:strings.Index(name, ":")]
		}
	}

	name = trailingSeparatorRe.ReplaceAllString(name, "")

	return strings.TrimSpace(name)
}

// NormalizeName lowercases a name, replaces every non-alphanumeric
// character with a space, and collapses whitespace runs. The normalized
// form is used only for fuzzy comparison, never as a grouping key.
func (c *Canonicalizer) NormalizeName(gameName string) string {
	name := strings.ToLower(gameName)
	name = nonWordRe.ReplaceAllString(name, " ")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ExtractSeriesName attempts to identify the franchise a name belongs to.
// It returns the series name and true on success. Candidates of three
// characters or fewer are rejected.
func (c *Canonicalizer) ExtractSeriesName(gameName string) (string, bool) {
	name := strings.ToLower(gameName)

	// Franchises with varying numeral formats are matched directly.
	for _, special := range c.rules.SeriesSpecials {
		if !strings.Contains(name, special.Contains) {
			continue
		}
		if len(special.AnyOf) == 0 {
			return special.Series, true
		}
		for _, marker := range special.AnyOf {
			if strings.Contains(name, marker) {
				return special.Series, true
			}
		}
	}

	// A name beginning with a known franchise prefix belongs to that series
	// even without a trailing numeral or subtitle, so base titles like
	// "Mass Effect" land in the same bucket as their sequels.
	for _, franchise := range c.rules.Franchises {
		if strings.HasPrefix(name, franchise) {
			return franchise, true
		}
	}

	for _, pattern := range seriesPatterns {
		match := pattern.FindStringSubmatch(gameName)
		if match == nil {
			continue
		}
		seriesName := strings.TrimSpace(match[1])
		if len(seriesName) > 3 {
			return strings.ToLower(seriesName), true
		}
	}

	return "", false
}

// DefaultSameGameThreshold is the Jaccard word-set similarity above which
// two names are considered the same game.
const DefaultSameGameThreshold = 0.8

// IsLikelySameGame reports whether two display names likely refer to the
// same game, using DefaultSameGameThreshold for the word-similarity rule.
func (c *Canonicalizer) IsLikelySameGame(name1, name2 string) bool {
	return c.IsLikelySameGameThreshold(name1, name2, DefaultSameGameThreshold)
}

// IsLikelySameGameThreshold evaluates the same-game rules in strict priority
// order, short-circuiting on the first that fires:
//
//  1. equal non-empty canonical names,
//  2. the Skyrim / Elder Scrolls short-name special case,
//  3. one name contains the other and their digit runs agree,
//  4. equal after generic normalization,
//  5. Jaccard similarity of normalized word sets >= threshold.
//
// Names whose embedded digit runs conflict are rejected before any rule
// runs: "FIFA 22" and "FIFA 21" must never match, even though the trailing
// year heuristic reduces both to the same canonical base.
func (c *Canonicalizer) IsLikelySameGameThreshold(name1, name2 string, threshold float64) bool {
	digits1 := digitSet(name1)
	digits2 := digitSet(name2)
	if len(digits1) > 0 && len(digits2) > 0 && !digitSetsEqual(digits1, digits2) {
		return false
	}

	canonical1 := c.ExtractCanonicalName(name1)
	canonical2 := c.ExtractCanonicalName(name2)
	if canonical1 == canonical2 && canonical1 != "" {
		return true
	}

	lower1 := strings.ToLower(name1)
	lower2 := strings.ToLower(name2)

	// "Skyrim" is commonly used as shorthand for its full Elder Scrolls title.
	if strings.Contains(lower1, "skyrim") && strings.Contains(lower2, "elder scrolls") {
		return true
	}
	if strings.Contains(lower2, "skyrim") && strings.Contains(lower1, "elder scrolls") {
		return true
	}

	// Substring containment ("FIFA 22" within "FIFA 22 Ultimate Edition").
	// Conflicting digit runs were already rejected above.
	if strings.Contains(lower1, lower2) || strings.Contains(lower2, lower1) {
		return true
	}

	norm1 := c.NormalizeName(name1)
	norm2 := c.NormalizeName(name2)
	if norm1 == norm2 {
		return true
	}

	words1 := wordSet(norm1)
	words2 := wordSet(norm2)
	if len(words1) == 0 || len(words2) == 0 {
		return false
	}

	intersection := 0
	for word := range words1 {
		if words2[word] {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection

	return float64(intersection)/float64(union) >= threshold
}

// digitSet collects the distinct digit runs embedded in a name.
func digitSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, run := range digitRunRe.FindAllString(name, -1) {
		set[run] = true
	}
	return set
}

func digitSetsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for run := range a {
		if !b[run] {
			return false
		}
	}
	return true
}

// wordSet splits a normalized name into its distinct words.
func wordSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(normalized) {
		set[word] = true
	}
	return set
}
