package core

// Category is a selectable goal category.
type Category struct {
	Value string `toml:"value"`
	Label string `toml:"label"`
}

// Catalog lists the categories and background swatches offered to the user.
type Catalog struct {
	Categories []Category `toml:"categories"`
	Swatches   []string   `toml:"swatches"`
}

// DefaultCatalog returns the built-in categories and swatches.
func DefaultCatalog() Catalog {
	return Catalog{
		Categories: []Category{
			{Value: "general", Label: "General"},
			{Value: "travel", Label: "Travel"},
			{Value: "electronics", Label: "Electronics"},
			{Value: "home", Label: "Home"},
			{Value: "car", Label: "Car"},
			{Value: "education", Label: "Education"},
			{Value: "emergency", Label: "Emergency Fund"},
			{Value: "other", Label: "Other"},
		},
		Swatches: []string{
			"#ffffff", "#f8d7da", "#fff3cd", "#d4edda", "#d1ecf1", "#e2d9f3",
			"#343a40", "#dc3545", "#fd7e14", "#28a745", "#007bff", "#6f42c1",
		},
	}
}

// HasCategory reports whether value names a configured category.
func (c Catalog) HasCategory(value string) bool {
	for _, cat := range c.Categories {
		if cat.Value == value {
			return true
		}
	}
	return false
}

// DefaultCategory is the first configured category.
func (c Catalog) DefaultCategory() string {
	if len(c.Categories) == 0 {
		return ""
	}
	return c.Categories[0].Value
}

// Label returns the display label for value, or value itself when unknown.
func (c Catalog) Label(value string) string {
	for _, cat := range c.Categories {
		if cat.Value == value {
			return cat.Label
		}
	}
	return value
}
