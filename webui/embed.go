// Package webui exposes the embedded status page filesystem.
// It lives at the module root to embed the sibling "web/" directory;
// internal/server/static.go serves it on unmatched routes.
package webui

import "embed"

// FS is the embedded web directory tree.
//
//go:embed web
var FS embed.FS
