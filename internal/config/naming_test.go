package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNamingRules_EmptyPathReturnsDefaults(t *testing.T) {
	rules, err := LoadNamingRules("")
	require.NoError(t, err)

	assert.Equal(t, "doom", rules.Aliases["doom 2016"])
	assert.Contains(t, rules.Franchises, "mass effect")
	assert.NotEmpty(t, rules.SeriesSpecials)
}

func TestLoadNamingRules_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "naming.yaml")
	content := `
aliases:
  "doom 2016": "doom eternal"
  "portal 2": "portal"
franchises:
  - "portal"
series_specials:
  - contains: "portal"
    series: "portal"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadNamingRules(path)
	require.NoError(t, err)

	// File aliases override defaults, new ones are added.
	assert.Equal(t, "doom eternal", rules.Aliases["doom 2016"])
	assert.Equal(t, "portal", rules.Aliases["portal 2"])

	// Defaults survive the overlay.
	assert.Equal(t, "the witcher 3: wild hunt", rules.Aliases["the witcher 3: wild hunt - complete edition"])
	assert.Contains(t, rules.Franchises, "portal")
	assert.Contains(t, rules.Franchises, "halo")
}

func TestLoadNamingRules_MissingFile(t *testing.T) {
	_, err := LoadNamingRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadNamingRules_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases: [not a map"), 0o644))

	_, err := LoadNamingRules(path)
	assert.Error(t, err)
}
