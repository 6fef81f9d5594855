package engine

import "testing"

func newTestCanonicalizer() *Canonicalizer {
	return NewCanonicalizer(nil)
}

func TestExtractCanonicalName_AliasTable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"witcher complete edition", "The Witcher 3: Wild Hunt - Complete Edition", "the witcher 3: wild hunt"},
		{"doom year suffix", "Doom 2016", "doom"},
		{"fifa numbered entry", "FIFA 22", "fifa"},
		{"master chief collection", "Halo: The Master Chief Collection", "halo"},
		{"mass effect legendary", "Mass Effect: Legendary Edition", "mass effect"},
	}

	c := newTestCanonicalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ExtractCanonicalName(tt.input); got != tt.expected {
				t.Errorf("ExtractCanonicalName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractCanonicalName_VersionMarkers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"goty edition", "The Witcher 3: Wild Hunt - Game of the Year Edition", "the witcher 3: wild hunt"},
		{"definitive edition", "Ori and the Blind Forest - Definitive Edition", "ori and the blind forest"},
		{"deluxe edition", "Stardew Valley - Deluxe Edition", "stardew valley"},
		{"bare collection", "Uncharted Collection", "uncharted"},
	}

	c := newTestCanonicalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ExtractCanonicalName(tt.input); got != tt.expected {
				t.Errorf("ExtractCanonicalName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractCanonicalName_FranchiseSubtitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Mass Effect: Andromeda", "mass effect"},
		{"Call of Duty: Black Ops", "call of duty"},
		{"The Elder Scrolls IV: Oblivion", "the elder scrolls iv"},
	}

	c := newTestCanonicalizer()
	for _, tt := range tests {
		if got := c.ExtractCanonicalName(tt.input); got != tt.expected {
			t.Errorf("ExtractCanonicalName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExtractCanonicalName_TrailingYear(t *testing.T) {
	c := newTestCanonicalizer()
	if got := c.ExtractCanonicalName("Cyberpunk 2077"); got != "cyberpunk" {
		t.Errorf("ExtractCanonicalName(Cyberpunk 2077) = %q, want cyberpunk", got)
	}
	// Single digits are not treated as years.
	if got := c.ExtractCanonicalName("Half-Life 2"); got != "half-life 2" {
		t.Errorf("ExtractCanonicalName(Half-Life 2) = %q, want half-life 2", got)
	}
}

// Canonicalization applied to its own output must return the same value for
// inputs with no alias-table match.
func TestExtractCanonicalName_Idempotent(t *testing.T) {
	inputs := []string{
		"Mass Effect: Andromeda",
		"The Witcher 3: Wild Hunt - Game of the Year Edition",
		"Grand Theft Auto V",
		"Stardew Valley - Deluxe Edition",
		"Half-Life 2",
	}

	c := newTestCanonicalizer()
	for _, input := range inputs {
		once := c.ExtractCanonicalName(input)
		twice := c.ExtractCanonicalName(once)
		if once != twice {
			t.Errorf("ExtractCanonicalName not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Witcher 3: Wild Hunt!", "the witcher 3 wild hunt"},
		{"  Assassin's   Creed  ", "assassin s creed"},
		{"DOOM", "doom"},
	}

	c := newTestCanonicalizer()
	for _, tt := range tests {
		if got := c.NormalizeName(tt.input); got != tt.expected {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExtractSeriesName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"trailing integer", "Mass Effect 2", "mass effect", true},
		{"bare franchise title", "Mass Effect", "mass effect", true},
		{"roman numeral special", "Final Fantasy VII", "final fantasy", true},
		{"arabic numeral special", "Final Fantasy 7", "final fantasy", true},
		{"elder scrolls special", "The Elder Scrolls V: Skyrim", "the elder scrolls", true},
		{"subtitle after colon", "God of War: Ragnarok", "god of war", true},
		{"no series marker", "Minecraft", "", false},
		{"short candidate rejected", "ABC 5", "", false},
	}

	c := newTestCanonicalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ExtractSeriesName(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("ExtractSeriesName(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestIsLikelySameGame(t *testing.T) {
	tests := []struct {
		name     string
		name1    string
		name2    string
		expected bool
	}{
		{"different fifa entries", "FIFA 22", "FIFA 21", false},
		{"different series entries", "The Witcher 3", "The Witcher 2", false},
		{"skyrim shorthand", "Skyrim", "The Elder Scrolls V: Skyrim", true},
		{"edition of same game", "The Witcher 3: Wild Hunt", "The Witcher 3: Wild Hunt - Complete Edition", true},
		{"substring with matching digits", "FIFA 22", "FIFA 22 Ultimate Edition", true},
		{"identical names", "Doom", "Doom", true},
		{"unrelated games", "Doom", "Tetris", false},
		{"word-set similarity", "The Legend of Zelda Breath of the Wild", "Legend of Zelda: Breath of the Wild", true},
	}

	c := newTestCanonicalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsLikelySameGame(tt.name1, tt.name2); got != tt.expected {
				t.Errorf("IsLikelySameGame(%q, %q) = %v, want %v", tt.name1, tt.name2, got, tt.expected)
			}
		})
	}
}
