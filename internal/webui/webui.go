// Package webui provides the embedded upload page served by fcskit serve.
package webui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v5"
)

//go:embed static/*
var staticFS embed.FS

// StaticFS returns an http.FileSystem for the embedded static files.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embed path is fixed at compile time.
		panic(err)
	}
	return http.FS(sub)
}

// Register serves the upload page at the root path.
func Register(e *echo.Echo) {
	files := http.FileServer(StaticFS())
	e.GET("/", func(c *echo.Context) error {
		files.ServeHTTP(c.Response(), c.Request())
		return nil
	})
}
