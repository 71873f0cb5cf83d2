package moss

import (
	"errors"
	"io/fs"
	"os"
)

// FileSystem is the registration and upload collaborator. Exists and Size
// are consulted once at registration; ReadAll runs at upload time.
type FileSystem interface {
	Exists(path string) bool
	Size(path string) (int64, error)
	ReadAll(path string) ([]byte, error)
}

// OSFileSystem resolves paths against the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, &fs.PathError{Op: "size", Path: path, Err: errIsDir}
	}
	return info.Size(), nil
}

func (OSFileSystem) ReadAll(path string) ([]byte, error) {
	return os.ReadFile(path)
}

var errIsDir = errors.New("is a directory")

// FSFileSystem adapts an fs.FS, such as os.DirFS or fstest.MapFS.
type FSFileSystem struct {
	fsys fs.FS
}

func NewFS(fsys fs.FS) FSFileSystem {
	return FSFileSystem{fsys: fsys}
}

func (f FSFileSystem) Exists(path string) bool {
	_, err := fs.Stat(f.fsys, path)
	return err == nil
}

func (f FSFileSystem) Size(path string) (int64, error) {
	info, err := fs.Stat(f.fsys, path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, &fs.PathError{Op: "size", Path: path, Err: errIsDir}
	}
	return info.Size(), nil
}

func (f FSFileSystem) ReadAll(path string) ([]byte, error) {
	return fs.ReadFile(f.fsys, path)
}
