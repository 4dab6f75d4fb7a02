package skills

import (
	"embed"
	"io/fs"
)

// The builtin corpus ships with the binary so the CLI works out of the box.
//
//go:embed reference/*.md
var builtinFS embed.FS

// Builtin returns the embedded reference corpus as a filesystem rooted at
// the article files.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "reference")
	if err != nil {
		// The reference directory is embedded at compile time.
		panic(err)
	}
	return sub
}
