package parquet_test

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	pq "github.com/parquet-go/parquet-go"
	lakes "github.com/stevemn/udacity-dengr-lakes"
	"github.com/stevemn/udacity-dengr-lakes/parquet"
)

type memDest struct {
	objs map[string][]byte
}

func newMemDest() *memDest { return &memDest{objs: map[string][]byte{}} }

func (d *memDest) Put(key string, data []byte) error {
	d.objs[key] = append([]byte(nil), data...)
	return nil
}

func (d *memDest) List(prefix string) ([]string, error) {
	var keys []string
	for key := range d.objs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (d *memDest) Delete(key string) error {
	delete(d.objs, key)
	return nil
}

func (d *memDest) keys() []string {
	keys, _ := d.List("")
	return keys
}

func TestWritePartitioned(t *testing.T) {
	dst := newMemDest()
	rows := []lakes.SongRow{
		{SongID: "SOAAA", Title: "X", ArtistID: "ARAAA", Year: 2000, Duration: 200},
		{SongID: "SOBBB", Title: "Y", ArtistID: "ARAAA", Year: 2001, Duration: 150},
		{SongID: "SOCCC", Title: "Z", ArtistID: "ARBBB", Year: 2000, Duration: 90},
	}
	if err := parquet.Write(dst, "songs", rows, "year", "artist_id"); err != nil {
		t.Fatalf("writing songs: %v", err)
	}
	want := []string{
		"songs/year=2000/artist_id=ARAAA/part-00000.parquet",
		"songs/year=2000/artist_id=ARBBB/part-00000.parquet",
		"songs/year=2001/artist_id=ARAAA/part-00000.parquet",
	}
	got := dst.keys()
	if len(got) != len(want) {
		t.Fatalf("unexpected keys: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: got %s, want %s", i, got[i], want[i])
		}
	}

	// every row in a partition file carries the partition's key values
	data := dst.objs[want[0]]
	back, err := pq.Read[lakes.SongRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading back partition: %v", err)
	}
	if len(back) != 1 || back[0].SongID != "SOAAA" || back[0].Year != 2000 || back[0].ArtistID != "ARAAA" {
		t.Fatalf("unexpected rows in partition: %#v", back)
	}
}

func TestWriteUnpartitioned(t *testing.T) {
	dst := newMemDest()
	rows := []lakes.UserRow{
		{UserID: "10", FirstName: "Sylvie", LastName: "Cruz", Gender: "F", Level: "free"},
		{UserID: "80", FirstName: "Tegan", LastName: "Levine", Gender: "F", Level: "paid"},
	}
	if err := parquet.Write(dst, "users", rows); err != nil {
		t.Fatalf("writing users: %v", err)
	}
	got := dst.keys()
	if len(got) != 1 || got[0] != "users/part-00000.parquet" {
		t.Fatalf("unexpected keys: %v", got)
	}
	data := dst.objs[got[0]]
	back, err := pq.Read[lakes.UserRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(back) != 2 || back[0].UserID != "10" || back[1].Level != "paid" {
		t.Fatalf("unexpected rows: %#v", back)
	}
}

func TestWriteReplacesTouchedPartitions(t *testing.T) {
	dst := newMemDest()
	// plant stale objects from an earlier run
	dst.objs["time/year=2018/month=11/part-00000.parquet"] = []byte("old")
	dst.objs["time/year=2018/month=11/part-00001.parquet"] = []byte("older")
	dst.objs["time/year=2017/month=01/part-00000.parquet"] = []byte("untouched")

	rows := []lakes.TimeRow{
		{StartTime: 1541030400000, Hour: 0, Day: 1, Week: 44, Month: 11, Year: 2018, Weekday: "Thursday"},
	}
	if err := parquet.Write(dst, "time", rows, "year", "month"); err != nil {
		t.Fatalf("writing time: %v", err)
	}
	if _, ok := dst.objs["time/year=2018/month=11/part-00001.parquet"]; ok {
		t.Fatal("stale object survived overwrite of its partition")
	}
	if string(dst.objs["time/year=2017/month=01/part-00000.parquet"]) != "untouched" {
		t.Fatal("untouched partition was modified")
	}
	data := dst.objs["time/year=2018/month=11/part-00000.parquet"]
	back, err := pq.Read[lakes.TimeRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(back) != 1 || back[0].Weekday != "Thursday" {
		t.Fatalf("unexpected rows: %#v", back)
	}
}

func TestWriteEmptyTouchesNothing(t *testing.T) {
	dst := newMemDest()
	dst.objs["songs/year=2000/artist_id=AR/part-00000.parquet"] = []byte("old")
	if err := parquet.Write(dst, "songs", []lakes.SongRow{}, "year", "artist_id"); err != nil {
		t.Fatalf("writing empty table: %v", err)
	}
	if len(dst.keys()) != 1 {
		t.Fatalf("empty write touched the destination: %v", dst.keys())
	}
}

func TestWriteUnknownPartitionColumn(t *testing.T) {
	dst := newMemDest()
	err := parquet.Write(dst, "songs", []lakes.SongRow{{SongID: "S"}}, "no_such_col")
	if err == nil {
		t.Fatal("expected an error for an unknown partition column")
	}
}

func TestWriteNullableColumnsRoundTrip(t *testing.T) {
	dst := newMemDest()
	songID := "SOAAA"
	artistID := "ARAAA"
	rows := []lakes.SongplayRow{
		{SongplayID: 0, StartTime: 1541030400000, UserID: "10", Level: "free",
			SongID: &songID, ArtistID: &artistID, SessionID: 5, Year: 2018, Month: 11},
		{SongplayID: 1, StartTime: 1541030460000, UserID: "11", Level: "paid",
			SessionID: 6, Year: 2018, Month: 11},
	}
	if err := parquet.Write(dst, "songplays", rows, "year", "month"); err != nil {
		t.Fatalf("writing songplays: %v", err)
	}
	data := dst.objs["songplays/year=2018/month=11/part-00000.parquet"]
	back, err := pq.Read[lakes.SongplayRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(back))
	}
	if back[0].SongID == nil || *back[0].SongID != "SOAAA" {
		t.Fatalf("matched row lost its song_id: %#v", back[0])
	}
	if back[1].SongID != nil || back[1].ArtistID != nil {
		t.Fatalf("unmatched row should keep nil foreign keys: %#v", back[1])
	}
}
