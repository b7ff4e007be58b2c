// Package bridge embeds static assets served by the HTTP server.
package bridge

import "embed"

//go:embed public
var PublicFS embed.FS
