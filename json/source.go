// Package json decodes line-delimited JSON records from a reader or from
// every object of a lakes.RawSource.
package json

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// Source reads line-delimited JSON objects from a single reader.
type Source struct {
	scan *bufio.Scanner
}

// NewSource gets a new json source which will decode from the given reader,
// one object per line.
func NewSource(r io.Reader) *Source {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Source{scan: scan}
}

// Record returns the next json object decoded into a map, or io.EOF when
// the reader is exhausted. Blank lines are ignored. A line which does not
// hold a JSON object returns a SchemaMismatchError; the source remains
// usable, so callers can skip and count the bad line and keep going.
func (s *Source) Record() (map[string]interface{}, error) {
	for s.scan.Scan() {
		line := bytes.TrimSpace(s.scan.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec map[string]interface{}
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, &lakes.SchemaMismatchError{Kind: "json", Reason: "line is not a JSON object", Err: err}
		}
		return rec, nil
	}
	if err := s.scan.Err(); err != nil {
		return nil, errors.Wrap(err, "reading source")
	}
	return nil, io.EOF
}

// MultiSource decodes records from every object a RawSource enumerates, in
// order, moving to the next object when the current one is exhausted.
type MultiSource struct {
	rs lakes.RawSource

	cur    *Source
	closer io.Closer
	name   string
}

// NewSourceFromRawSource returns a MultiSource over rs.
func NewSourceFromRawSource(rs lakes.RawSource) *MultiSource {
	return &MultiSource{rs: rs}
}

// Record returns the next json object from the current source object, or
// the first object of the next one. io.EOF means every object has been
// fully decoded. Schema mismatches keep the MultiSource usable just like
// Source.Record.
func (m *MultiSource) Record() (map[string]interface{}, error) {
	if m.cur == nil {
		reader, err := m.rs.NextReader()
		if err == io.EOF {
			return nil, io.EOF
		} else if err != nil {
			return nil, errors.Wrap(err, "getting next reader")
		}
		m.cur = NewSource(reader)
		m.closer = reader
		m.name = reader.Name()
	}
	rec, err := m.cur.Record()
	if err == io.EOF {
		m.closer.Close()
		m.cur = nil
		return m.Record()
	} else if err != nil {
		return nil, errors.Wrapf(err, "decoding json from %s", m.name)
	}
	return rec, nil
}

// Name returns the name of the object currently being decoded.
func (m *MultiSource) Name() string { return m.name }
