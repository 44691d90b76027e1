package report

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/pcsplit/internal/errors"
)

// Dir is an output directory on some filesystem.
type Dir struct {
	fs   afero.Fs
	root string
}

// NewDir returns the output directory root on fs.
func NewDir(fs afero.Fs, root string) *Dir {
	return &Dir{fs: fs, root: root}
}

// Path returns the full path of name inside the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// Create writes name through fn, creating the directory when needed. The
// file is replaced if it exists. The full path is returned.
func (d *Dir) Create(name string, fn func(io.Writer) error) (string, error) {
	path := d.Path(name)
	if err := d.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(err, "create output directory %s", filepath.Dir(path))
	}
	f, err := d.fs.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "write %s", path)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", path)
	}
	return path, nil
}

// Open reads path through fn. Paths are used as given, not relative to any
// output directory. Input errors from fn that name no file get path.
func Open(fs afero.Fs, path string, fn func(io.Reader) error) error {
	f, err := fs.Open(path)
	if err != nil {
		return errors.NewInputError("open", err).WithFile(path)
	}
	defer func() { _ = f.Close() }()

	err = fn(f)
	var ie *errors.InputError
	if errors.As(err, &ie) && ie.File == "" {
		ie.File = path
	}
	return err
}

// errWriter keeps the first write error so that a listing can be written
// with plain printf calls and checked once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
