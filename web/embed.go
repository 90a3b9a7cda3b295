// Package web holds the page templates and the CSS/JS served under /static.
package web

import "embed"

// TemplatesFS holds the page shell and the app partial with its modals.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the toast/drag-and-drop script.
//
//go:embed static/*
var StaticFS embed.FS
