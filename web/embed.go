package web

import "embed"

// TemplatesFS embeds the page templates rendered by the HTTP server.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds stylesheets and scripts served under /static/.
//go:embed static/*
var StaticFS embed.FS
