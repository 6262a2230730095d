package file

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Destination is a lakes.Destination rooted at a directory. Keys use
// forward slashes regardless of platform. Puts stage to a temporary file
// and rename into place, so a reader never sees a partial table file.
type Destination struct {
	root string
}

// NewDestination returns a Destination rooted at root, creating it if
// needed.
func NewDestination(root string) (*Destination, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating destination root %s", root)
	}
	return &Destination{root: root}, nil
}

// Put writes data at key atomically.
func (d *Destination) Put(key string, data []byte) error {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(err, "creating partition dir for %s", key)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "staging %s", key)
	}
	if err := os.Rename(tmp, full); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			return errors.Wrapf(err, "placing %s (stale staging file %s left behind: %v)", key, tmp, rmErr)
		}
		return errors.Wrapf(err, "placing %s", key)
	}
	return nil
}

// List returns every key under prefix in lexicographic order.
func (d *Destination) List(prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(d.root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the file at key. Deleting a missing key is not an error.
func (d *Destination) Delete(key string) error {
	err := os.Remove(filepath.Join(d.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}
