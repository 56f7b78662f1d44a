// Package uploads stores PDF bytes on disk, one file per session.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when an upload exceeds the store's size limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// Dir keeps uploads under a single directory as <id>.pdf.
type Dir struct {
	root     string
	maxBytes int64
}

// NewDir creates root if needed. maxBytes <= 0 disables the size limit.
func NewDir(root string, maxBytes int64) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Dir{root: root, maxBytes: maxBytes}, nil
}

// Path returns where the upload for id lives. IDs that could escape the
// directory are rejected.
func (d *Dir) Path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid upload id %q", id)
	}
	return filepath.Join(d.root, id+".pdf"), nil
}

// Save writes r to the file for id and returns its path and size. A partial
// file is removed if writing fails.
func (d *Dir) Save(id string, r io.Reader) (string, int64, error) {
	path, err := d.Path(id)
	if err != nil {
		return "", 0, err
	}
	tmp, err := os.CreateTemp(d.root, id+"-*.part")
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if d.maxBytes > 0 {
		src = io.LimitReader(r, d.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	if d.maxBytes > 0 && n > d.maxBytes {
		return "", 0, fmt.Errorf("%w (%d bytes)", ErrTooLarge, d.maxBytes)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("commit upload: %w", err)
	}
	return path, n, nil
}

// Open returns the stored PDF for id.
func (d *Dir) Open(id string) (*os.File, error) {
	path, err := d.Path(id)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes the upload for id. Removing a missing upload is not an error.
func (d *Dir) Remove(id string) error {
	path, err := d.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
