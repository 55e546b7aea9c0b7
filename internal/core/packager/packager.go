// Package packager turns an assembled crate into a deflate-compressed zip archive.
package packager

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Error reports a failure while writing the archive.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("compress %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ArchivePath is where Package writes the archive for the crate name under root.
func ArchivePath(root, name string) string {
	return filepath.Join(root, name+".zip")
}

// Package compresses <root>/<name> into <root>/<name>.zip and returns the
// archive bytes. Entries are stored as "<name>/<path>" with forward slashes.
// Compression failures are returned as *Error; reading the finished archive
// back returns the plain I/O error.
func Package(root, name string) ([]byte, error) {
	src := filepath.Join(root, name)
	dst := ArchivePath(root, name)
	if err := ZipDir(src, dst); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", dst, err)
	}
	return data, nil
}

// ZipDir writes every regular file below src into a new archive at dst.
func ZipDir(src, dst string) (err error) {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &Error{Path: dst, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &Error{Path: dst, Err: cerr}
		}
	}()

	zw := zip.NewWriter(out)
	base := filepath.Dir(src)
	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel), d)
	})
	if walkErr != nil {
		_ = zw.Close()
		return &Error{Path: src, Err: walkErr}
	}
	if err := zw.Close(); err != nil {
		return &Error{Path: dst, Err: err}
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(w, f)
	return err
}
