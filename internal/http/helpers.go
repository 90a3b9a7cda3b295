package http

import (
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"savings/internal/core"
	"savings/internal/render"
)

// imageDataURL matches exactly what the upload path produces.
var imageDataURL = regexp.MustCompile(`^data:image/[a-z0-9.+-]+;base64,[A-Za-z0-9+/]*={0,2}$`)

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// templateFuncs are the helpers available to every template. Anything that
// ends up inside a style or src attribute is validated here first.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"cardStyle":   cardStyle,
		"swatchStyle": swatchStyle,
		"imageSrc":    imageSrc,
		"widthStyle":  widthStyle,
		"isLight":     core.IsLightColor,
	}
}

func cardStyle(bg render.Background) template.CSS {
	switch bg.Kind {
	case render.BackgroundColor:
		if core.IsHexColor(bg.Value) {
			return template.CSS("background-color: " + bg.Value)
		}
	case render.BackgroundImage:
		if imageDataURL.MatchString(bg.Value) {
			return template.CSS(`background-image: url("` + bg.Value + `"); background-size: cover; background-position: center`)
		}
	}
	return ""
}

func swatchStyle(hex string) template.CSS {
	if !core.IsHexColor(hex) {
		return ""
	}
	return template.CSS("background-color: " + hex)
}

func imageSrc(data string) template.URL {
	if !imageDataURL.MatchString(data) {
		return ""
	}
	return template.URL(data)
}

func widthStyle(percent int) template.CSS {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return template.CSS("width: " + strconv.Itoa(percent) + "%")
}
