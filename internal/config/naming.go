package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NamingRules holds the curated lookup tables used by the name
// canonicalizer. The compiled defaults cover the common catalog cases;
// a YAML file can extend them without code changes.
type NamingRules struct {
	// Aliases maps a lowercased display title directly to its canonical
	// base name, bypassing the generic stripping heuristics.
	Aliases map[string]string `yaml:"aliases"`

	// Franchises lists multi-word franchise prefixes whose colon-separated
	// subtitles are discarded during canonicalization.
	Franchises []string `yaml:"franchises"`

	// SeriesSpecials are franchises whose numeral formats vary (roman vs.
	// arabic) and need hardcoded series detection.
	SeriesSpecials []SeriesSpecial `yaml:"series_specials"`
}

// SeriesSpecial matches a name that contains Contains and, when AnyOf is
// non-empty, at least one of those markers. A match resolves directly to
// Series.
type SeriesSpecial struct {
	Contains string   `yaml:"contains"`
	AnyOf    []string `yaml:"any_of,omitempty"`
	Series   string   `yaml:"series"`
}

// DefaultNamingRules returns the compiled-in lookup tables.
func DefaultNamingRules() *NamingRules {
	return &NamingRules{
		Aliases: map[string]string{
			"batman: arkham city - game of the year edition":  "batman: arkham city",
			"the witcher 3: wild hunt - complete edition":     "the witcher 3: wild hunt",
			"doom 2016":                                       "doom",
			"final fantasy vii remake":                        "final fantasy vii",
			"resident evil 4 hd":                              "resident evil 4",
			"halo: the master chief collection":               "halo",
			"assassin's creed: brotherhood":                   "assassin's creed",
			"mass effect: legendary edition":                  "mass effect",
			"fallout 4: far harbor dlc":                       "fallout 4",
			"the elder scrolls v: skyrim - dawnguard":         "the elder scrolls v: skyrim",
			"fifa 22":                                         "fifa",
			"call of duty: modern warfare 2019":               "call of duty: modern warfare",
		},
		Franchises: []string{
			"assassin's creed",
			"mass effect",
			"call of duty",
			"fallout",
			"the elder scrolls",
			"halo",
		},
		SeriesSpecials: []SeriesSpecial{
			{Contains: "final fantasy", AnyOf: []string{"vii", "7"}, Series: "final fantasy"},
			{Contains: "resident evil", AnyOf: []string{"4", "iv"}, Series: "resident evil"},
			{Contains: "elder scrolls", Series: "the elder scrolls"},
		},
	}
}

// LoadNamingRules reads naming rules from a YAML file and overlays them on
// the compiled defaults: file aliases add to (or override) default aliases,
// and file franchises and series specials are appended. An empty path
// returns the defaults unchanged.
func LoadNamingRules(path string) (*NamingRules, error) {
	rules := DefaultNamingRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read naming rules %s: %w", path, err)
	}

	var loaded NamingRules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("config: failed to parse naming rules %s: %w", path, err)
	}

	for name, canonical := range loaded.Aliases {
		rules.Aliases[name] = canonical
	}
	rules.Franchises = append(rules.Franchises, loaded.Franchises...)
	rules.SeriesSpecials = append(rules.SeriesSpecials, loaded.SeriesSpecials...)

	return rules, nil
}
