// Package file reads raw records from, and writes table files to, the local
// filesystem. It serves the same contracts as aws/s3 so the pipeline can
// run against local fixtures without a bucket.
package file

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// RawSource is a lakes.RawSource over a file or directory tree. Directories
// are walked recursively for .json files, which are handed out in
// lexicographic path order so enumeration is stable across runs.
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource returns a RawSource for the file or directory at pathname.
// An unreadable path is a SourceUnavailableError.
func NewRawSource(pathname string) (*RawSource, error) {
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, &lakes.SourceUnavailableError{Location: pathname, Err: err}
	}
	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(pathname, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".json") {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, &lakes.SourceUnavailableError{Location: pathname, Err: err}
		}
		sort.Strings(files)
	} else {
		files = []string{pathname}
	}
	idx := uint64(0)
	return &RawSource{files: files, fileIdx: &idx}, nil
}

// NextReader returns a reader for the next file, or io.EOF when every file
// has been handed out.
func (s *RawSource) NextReader() (lakes.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}
	f, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}
	return f, nil
}
