// Package views holds the embedded HTML templates rendered by the server.
package views

import "embed"

//go:embed templates
var FS embed.FS
