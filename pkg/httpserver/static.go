package httpserver

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFS embed.FS

// staticContent strips the "static/" prefix so paths served over HTTP
// match the embedded files' names directly.
func staticContent() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Only fails if the embed directive above is wrong, which would
		// have failed at compile time; unreachable at runtime.
		panic(err)
	}
	return sub
}
