package json_test

import (
	"io"
	"strings"
	"testing"

	lakes "github.com/stevemn/udacity-dengr-lakes"
	"github.com/stevemn/udacity-dengr-lakes/json"
)

func TestSourceRecord(t *testing.T) {
	src := json.NewSource(strings.NewReader(`{"song_id":"SOAAA","year":2000}

{"song_id":"SOBBB"}
`))
	rec, err := src.Record()
	if err != nil {
		t.Fatalf("getting first record: %v", err)
	}
	if rec["song_id"] != "SOAAA" {
		t.Fatalf("unexpected first record: %#v", rec)
	}
	if rec["year"].(float64) != 2000 {
		t.Fatalf("unexpected year: %#v", rec["year"])
	}
	rec, err = src.Record()
	if err != nil {
		t.Fatalf("getting second record: %v", err)
	}
	if rec["song_id"] != "SOBBB" {
		t.Fatalf("unexpected second record: %#v", rec)
	}
	if _, err = src.Record(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSourceSkippableMismatch(t *testing.T) {
	src := json.NewSource(strings.NewReader(`{"ok":1}
this is not json
{"ok":2}
`))
	if _, err := src.Record(); err != nil {
		t.Fatalf("getting first record: %v", err)
	}
	_, err := src.Record()
	if !lakes.IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	rec, err := src.Record()
	if err != nil {
		t.Fatalf("source should survive a bad line: %v", err)
	}
	if rec["ok"].(float64) != 2 {
		t.Fatalf("unexpected record after bad line: %#v", rec)
	}
	if _, err = src.Record(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

type fakeRawSource struct {
	names  []string
	bodies []string
	idx    int
}

type stringReadCloser struct {
	io.Reader
	name string
}

func (s *stringReadCloser) Close() error { return nil }
func (s *stringReadCloser) Name() string { return s.name }

func (f *fakeRawSource) NextReader() (lakes.NamedReadCloser, error) {
	if f.idx >= len(f.names) {
		return nil, io.EOF
	}
	r := &stringReadCloser{Reader: strings.NewReader(f.bodies[f.idx]), name: f.names[f.idx]}
	f.idx++
	return r, nil
}

func TestMultiSourceSpansObjects(t *testing.T) {
	ms := json.NewSourceFromRawSource(&fakeRawSource{
		names:  []string{"a.json", "b.json"},
		bodies: []string{"{\"n\":1}\n{\"n\":2}\n", "{\"n\":3}\n"},
	})
	var got []float64
	for {
		rec, err := ms.Record()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("getting record: %v", err)
		}
		got = append(got, rec["n"].(float64))
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected records: %v", got)
	}
}
