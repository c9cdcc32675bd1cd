package web

import (
	"embed"
	"io/fs"
)

//go:embed agendas.json
var Assets embed.FS

// AgendasFile is the name of the default metadata resource inside Assets.
const AgendasFile = "agendas.json"

// Metadata returns the file system holding the bundled agenda metadata.
func Metadata() fs.FS { return Assets }
