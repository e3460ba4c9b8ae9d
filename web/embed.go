// Package web embeds the operator UI templates and static assets.
package web

import "embed"

// TemplatesFS holds the pages and htmx partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and client script.
//
//go:embed static/*
var StaticFS embed.FS
