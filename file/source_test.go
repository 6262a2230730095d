package file_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	lakes "github.com/stevemn/udacity-dengr-lakes"
	"github.com/stevemn/udacity-dengr-lakes/file"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("making dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestRawSourceWalksSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "two.json"), "{}")
	writeFile(t, filepath.Join(dir, "a", "one.json"), "{}")
	writeFile(t, filepath.Join(dir, "a", "notes.txt"), "not data")

	src, err := file.NewRawSource(dir)
	if err != nil {
		t.Fatalf("getting raw source: %v", err)
	}
	var names []string
	for {
		r, err := src.NextReader()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("getting next reader: %v", err)
		}
		names = append(names, filepath.Base(r.Name()))
		r.Close()
	}
	if len(names) != 2 || names[0] != "one.json" || names[1] != "two.json" {
		t.Fatalf("unexpected files in unexpected order: %v", names)
	}
}

func TestRawSourceMissingPath(t *testing.T) {
	_, err := file.NewRawSource(filepath.Join(t.TempDir(), "nope"))
	if !lakes.IsSourceUnavailable(err) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestDestinationPutListDelete(t *testing.T) {
	dst, err := file.NewDestination(t.TempDir())
	if err != nil {
		t.Fatalf("getting destination: %v", err)
	}
	if err := dst.Put("songs/year=2000/artist_id=AR1/part-00000.parquet", []byte("aaa")); err != nil {
		t.Fatalf("putting: %v", err)
	}
	if err := dst.Put("songs/year=2001/artist_id=AR2/part-00000.parquet", []byte("bbb")); err != nil {
		t.Fatalf("putting: %v", err)
	}

	keys, err := dst.List("songs/year=2000/")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(keys) != 1 || keys[0] != "songs/year=2000/artist_id=AR1/part-00000.parquet" {
		t.Fatalf("unexpected listing: %v", keys)
	}

	all, err := dst.List("songs/")
	if err != nil {
		t.Fatalf("listing all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 keys, got %v", all)
	}
	for _, key := range all {
		if filepath.Ext(key) == ".tmp" {
			t.Fatalf("staging file visible in listing: %v", all)
		}
	}

	if err := dst.Delete(keys[0]); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if err := dst.Delete(keys[0]); err != nil {
		t.Fatalf("deleting a missing key should not error: %v", err)
	}
	keys, err = dst.List("songs/year=2000/")
	if err != nil {
		t.Fatalf("listing after delete: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty listing, got %v", keys)
	}
}
