// Package sparkify is the dengr lake pipeline: it reads the raw Sparkify
// song catalog and play-event logs, derives the star schema tables, and
// writes them out partitioned.
package sparkify

import (
	"strconv"

	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// fieldReader pulls typed values out of a decoded JSON record, remembering
// the first field that failed so record coercion reads flat.
type fieldReader struct {
	rec  map[string]interface{}
	kind string
	err  error
}

func (f *fieldReader) fail(key, reason string) {
	if f.err == nil {
		f.err = &lakes.SchemaMismatchError{Kind: f.kind, Reason: key + " " + reason}
	}
}

// str returns the string at key, or "" when the field is absent or null.
func (f *fieldReader) str(key string) string {
	switch v := f.rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		f.fail(key, "is not a string")
		return ""
	}
}

// reqStr is str but the field must be present and non-empty.
func (f *fieldReader) reqStr(key string) string {
	s := f.str(key)
	if s == "" && f.err == nil {
		f.fail(key, "is missing")
	}
	return s
}

// f64 returns the number at key, or 0 when absent or null.
func (f *fieldReader) f64(key string) float64 {
	switch v := f.rec[key].(type) {
	case nil:
		return 0
	case float64:
		return v
	default:
		f.fail(key, "is not a number")
		return 0
	}
}

// reqF64 is f64 but the field must be present.
func (f *fieldReader) reqF64(key string) float64 {
	if _, ok := f.rec[key]; !ok {
		f.fail(key, "is missing")
		return 0
	}
	return f.f64(key)
}

// optF64 returns a pointer to the number at key, or nil when absent or
// null.
func (f *fieldReader) optF64(key string) *float64 {
	if v, ok := f.rec[key]; !ok || v == nil {
		return nil
	}
	v := f.f64(key)
	if f.err != nil {
		return nil
	}
	return &v
}

// id returns the identifier at key as a string. The raw logs are sloppy
// about this: user ids arrive as "10" in some files and 10 in others.
func (f *fieldReader) id(key string) string {
	switch v := f.rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		f.fail(key, "is not an identifier")
		return ""
	}
}

// songFromRecord coerces one decoded catalog record into a SongRecord.
func songFromRecord(rec map[string]interface{}) (lakes.SongRecord, error) {
	f := &fieldReader{rec: rec, kind: "song"}
	s := lakes.SongRecord{
		SongID:          f.reqStr("song_id"),
		Title:           f.reqStr("title"),
		ArtistID:        f.reqStr("artist_id"),
		ArtistName:      f.str("artist_name"),
		ArtistLatitude:  f.optF64("artist_latitude"),
		ArtistLongitude: f.optF64("artist_longitude"),
		ArtistLocation:  f.str("artist_location"),
		Year:            int32(f.f64("year")),
		Duration:        f.f64("duration"),
	}
	return s, f.err
}

// logFromRecord coerces one decoded play-event record into a LogRecord. A
// NextSong event without a user id cannot become a valid songplay row, so
// it is a schema mismatch rather than a row with a hole in it.
func logFromRecord(rec map[string]interface{}) (lakes.LogRecord, error) {
	f := &fieldReader{rec: rec, kind: "log"}
	l := lakes.LogRecord{
		TS:        int64(f.reqF64("ts")),
		UserID:    f.id("userId"),
		FirstName: f.str("firstName"),
		LastName:  f.str("lastName"),
		Gender:    f.str("gender"),
		Level:     f.str("level"),
		SessionID: int64(f.f64("sessionId")),
		Page:      f.reqStr("page"),
		Song:      f.str("song"),
		Artist:    f.str("artist"),
		Length:    f.f64("length"),
		Location:  f.str("location"),
		UserAgent: f.str("userAgent"),
	}
	if f.err == nil && l.Page == lakes.PageNextSong && l.UserID == "" {
		f.fail("userId", "is missing on a NextSong event")
	}
	return l, f.err
}
