package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"savings/internal/core"
)

// LoadCatalog reads the category and swatch catalogue from a TOML file.
// An empty path returns the built-in catalogue. Sections missing from the
// file keep their defaults.
//
//	swatches = ["#ffffff", "#343a40"]
//
//	[[categories]]
//	value = "travel"
//	label = "Travel"
func LoadCatalog(path string) (core.Catalog, error) {
	cat := core.DefaultCatalog()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("reading catalog: %w", err)
	}

	var file core.Catalog
	if _, err := toml.Decode(string(data), &file); err != nil {
		return cat, fmt.Errorf("parsing catalog: %w", err)
	}

	if len(file.Categories) > 0 {
		seen := make(map[string]bool, len(file.Categories))
		for i, c := range file.Categories {
			c.Value = strings.TrimSpace(c.Value)
			if c.Value == "" || c.Value == core.FilterAll {
				return cat, fmt.Errorf("catalog category %d: invalid value %q", i, c.Value)
			}
			if seen[c.Value] {
				return cat, fmt.Errorf("catalog category %q listed twice", c.Value)
			}
			seen[c.Value] = true
			if c.Label == "" {
				file.Categories[i].Label = c.Value
			}
			file.Categories[i].Value = c.Value
		}
		cat.Categories = file.Categories
	}

	if len(file.Swatches) > 0 {
		for _, s := range file.Swatches {
			if !core.IsHexColor(s) {
				return cat, fmt.Errorf("catalog swatch %q: want #rrggbb", s)
			}
		}
		cat.Swatches = file.Swatches
	}

	return cat, nil
}
