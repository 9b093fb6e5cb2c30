// Package web holds the embedded admin templates and the browser chat app.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed static/*
var Static embed.FS
