// Package metadata loads the agenda metadata resource from disk, the bundled
// default, or an HTTP endpoint.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"svw.info/propagenda/internal/domain"
	"svw.info/propagenda/internal/ports"
	"svw.info/propagenda/web"
)

// FS reads agendas.json from a file system.
type FS struct {
	fsys fs.FS
	name string
}

func NewFS(fsys fs.FS, name string) *FS { return &FS{fsys: fsys, name: name} }

// NewFile reads the metadata from a path on disk.
func NewFile(path string) *FS {
	path = filepath.Clean(strings.TrimSpace(path))
	return &FS{fsys: os.DirFS(filepath.Dir(path)), name: filepath.Base(path)}
}

// Embedded reads the metadata bundled into the binary.
func Embedded() *FS { return NewFS(web.Metadata(), web.AgendasFile) }

func (s *FS) Load(ctx context.Context) ([]domain.Agenda, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(s.name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

func (s *FS) String() string { return s.name }

func decode(r io.Reader) ([]domain.Agenda, error) {
	var out []domain.Agenda
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode agendas: %w", err)
	}
	return out, nil
}

// Open picks a source for location: empty means the bundled default, an
// http(s) URL is fetched, anything else is a file path.
func Open(location string) ports.MetadataSource {
	loc := strings.TrimSpace(location)
	switch {
	case loc == "":
		return Embedded()
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return NewHTTP(loc, nil)
	default:
		return NewFile(strings.TrimPrefix(loc, "file://"))
	}
}
