// Package web embeds the upload page and its script.
package web

import "embed"

//go:embed index.html static
var FS embed.FS
