// Package web serves the bundled single page used to check URLs from a browser.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler returns a file server for the embedded page and its script.
func Handler() (http.Handler, error) {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded assets: %w", err)
	}

	return http.FileServer(http.FS(sub)), nil
}
