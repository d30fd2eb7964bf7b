// Package photos resolves corpus names to image files and loads them from disk.
package photos

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// ErrInvalidName is returned for names that are empty, absolute, or escape the photo directory.
var ErrInvalidName = errors.New("invalid photo name")

// Image describes a photo that was found and decoded.
type Image struct {
	Name   string `json:"name"`
	Path   string `json:"-"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// Library is a read-only directory of photos addressed by corpus name.
type Library struct {
	dir string
}

// NewLibrary returns a library rooted at dir. The directory is not checked until a photo is loaded.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the library root.
func (l *Library) Dir() string {
	return l.dir
}

// Resolve maps a corpus name to a path inside the library.
func (l *Library) Resolve(name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.dir, name), nil
}

// Load opens the named photo and decodes its header. Missing, unreadable, or
// undecodable files are reported as *LoadError.
func (l *Library) Load(name string) (*Image, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Name: name, Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Name: name, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Name: name, Path: path, Err: errors.New("is a directory")}
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &LoadError{Name: name, Path: path, Err: fmt.Errorf("decode image: %w", err)}
	}
	return &Image{
		Name:   name,
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   info.Size(),
	}, nil
}

// Open returns the named photo for streaming. The caller closes it.
func (l *Library) Open(name string) (*os.File, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
