package rules

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// AliasTable maps a display name to its canonical folder.
// Names without an entry resolve to themselves.
type AliasTable map[string]string

var builtinAliases = AliasTable{
	"PrimeVideo": "AmazonPrimeVideo",
	"TikTok":     "DouYin",
	"Copilot":    "MicrosoftCopilot",
	"ChatGPT":    "OpenAI",
	"X":          "Twitter",
}

// DefaultAliases returns a copy of the built-in table.
func DefaultAliases() AliasTable {
	return maps.Clone(builtinAliases)
}

// Alias returns the canonical folder for a display name.
func (t AliasTable) Alias(display string) string {
	if folder, ok := t[display]; ok && folder != "" {
		return folder
	}
	return display
}

// Display returns the display name for a canonical folder: the first key,
// in sorted order, whose value equals folder. Unmapped folders are returned as is.
func (t AliasTable) Display(folder string) string {
	for _, k := range slices.Sorted(maps.Keys(t)) {
		if t[k] == folder {
			return k
		}
	}
	return folder
}

// Merge returns a new table with other's entries layered over t.
func (t AliasTable) Merge(other AliasTable) AliasTable {
	out := maps.Clone(t)
	if out == nil {
		out = AliasTable{}
	}
	maps.Copy(out, other)
	return out
}

// LoadAliases reads a YAML mapping of display name to folder and layers it
// over the built-in table. An empty path returns the built-in table.
func LoadAliases(path string) (AliasTable, error) {
	if path == "" {
		return DefaultAliases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse alias file %s: %w", path, err)
	}
	return DefaultAliases().Merge(extra), nil
}
