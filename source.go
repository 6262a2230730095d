package lakes

import "io"

// NamedReadCloser is a reader for one raw object along with the key or
// filename it was read from.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
}

// RawSource is the interface for enumerating the raw objects at a source
// location one at a time. NextReader returns io.EOF when the objects are
// exhausted. Implementations must enumerate objects in lexicographic key
// order so that record order, and therefore surrogate key assignment, is
// the same on every run over the same input. Implementations of RawSource
// should be thread safe.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}

// Destination is a flat keyed blob store that table files are written into.
// Put must be atomic per key: a reader either sees the whole object or no
// object, never a partial write.
type Destination interface {
	Put(key string, data []byte) error
	List(prefix string) ([]string, error)
	Delete(key string) error
}
