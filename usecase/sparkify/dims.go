package sparkify

import (
	"sort"
	"time"

	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// The dimension builders are pure functions: raw records in, deduplicated
// rows out, sorted by natural key. Each duplicate-resolution policy is
// deterministic and independent of the order records arrived in, so a rerun
// over the same input always yields identical tables.

// BuildSongs derives the songs dimension, one row per song_id. When a
// song_id appears more than once, the row whose remaining fields sort first
// wins.
func BuildSongs(songs []lakes.SongRecord) []lakes.SongRow {
	sorted := append([]lakes.SongRecord(nil), songs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SongID != sorted[j].SongID {
			return sorted[i].SongID < sorted[j].SongID
		}
		return sorted[i].Title < sorted[j].Title
	})
	out := make([]lakes.SongRow, 0, len(sorted))
	for _, s := range sorted {
		if len(out) > 0 && out[len(out)-1].SongID == s.SongID {
			continue
		}
		out = append(out, lakes.SongRow{
			SongID:   s.SongID,
			Title:    s.Title,
			ArtistID: s.ArtistID,
			Year:     s.Year,
			Duration: s.Duration,
		})
	}
	return out
}

// BuildArtists derives the artists dimension, one row per artist_id. When
// an artist_id appears on several catalog records with differing location
// fields, the record with the smallest song_id wins - first-seen in a
// stable order rather than whichever record a listing happened to yield
// first.
func BuildArtists(songs []lakes.SongRecord) []lakes.ArtistRow {
	sorted := append([]lakes.SongRecord(nil), songs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ArtistID != sorted[j].ArtistID {
			return sorted[i].ArtistID < sorted[j].ArtistID
		}
		return sorted[i].SongID < sorted[j].SongID
	})
	out := make([]lakes.ArtistRow, 0, len(sorted))
	for _, s := range sorted {
		if len(out) > 0 && out[len(out)-1].ArtistID == s.ArtistID {
			continue
		}
		out = append(out, lakes.ArtistRow{
			ArtistID:  s.ArtistID,
			Name:      s.ArtistName,
			Location:  s.ArtistLocation,
			Latitude:  s.ArtistLatitude,
			Longitude: s.ArtistLongitude,
		})
	}
	return out
}

// BuildUsers derives the users dimension from play events, one row per
// user_id, sorted by user_id. The latest event (by timestamp, then read
// order) wins, so level reflects the user's most recent subscription tier.
// Events without a user id and pages other than NextSong contribute
// nothing.
func BuildUsers(logs []lakes.LogRecord) []lakes.UserRow {
	plays := nextSongs(logs)
	sort.SliceStable(plays, func(i, j int) bool {
		if plays[i].TS != plays[j].TS {
			return plays[i].TS < plays[j].TS
		}
		return plays[i].Seq < plays[j].Seq
	})
	latest := make(map[string]lakes.UserRow)
	for _, p := range plays {
		if p.UserID == "" {
			continue
		}
		latest[p.UserID] = lakes.UserRow{
			UserID:    p.UserID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Gender:    p.Gender,
			Level:     p.Level,
		}
	}
	out := make([]lakes.UserRow, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// BuildTime derives the time dimension: one row per distinct play
// timestamp, ascending, with the calendar fields computed from the epoch
// milliseconds in UTC.
func BuildTime(logs []lakes.LogRecord) []lakes.TimeRow {
	seen := make(map[int64]struct{})
	var stamps []int64
	for _, p := range nextSongs(logs) {
		if _, ok := seen[p.TS]; ok {
			continue
		}
		seen[p.TS] = struct{}{}
		stamps = append(stamps, p.TS)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
	out := make([]lakes.TimeRow, len(stamps))
	for i, ts := range stamps {
		out[i] = calendarRow(ts)
	}
	return out
}

// calendarRow expands an epoch millisecond timestamp into its calendar
// fields. Everything derives from UTC; week is the ISO week number and
// weekday the English day name.
func calendarRow(ms int64) lakes.TimeRow {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return lakes.TimeRow{
		StartTime: ms,
		Hour:      int32(t.Hour()),
		Day:       int32(t.Day()),
		Week:      int32(week),
		Month:     int32(t.Month()),
		Year:      int32(t.Year()),
		Weekday:   t.Weekday().String(),
	}
}

// nextSongs returns the play events - the rows with page NextSong - in a
// fresh slice safe to sort.
func nextSongs(logs []lakes.LogRecord) []lakes.LogRecord {
	out := make([]lakes.LogRecord, 0, len(logs))
	for _, l := range logs {
		if l.Page == lakes.PageNextSong {
			out = append(out, l)
		}
	}
	return out
}
