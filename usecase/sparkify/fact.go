package sparkify

import (
	"sort"
	"time"

	lakes "github.com/stevemn/udacity-dengr-lakes"
)

// catalogKey is the exact-match key used to resolve a play event against
// the catalog: the event's song title, artist name and track length against
// the song's title, its artist's name, and its duration.
type catalogKey struct {
	title    string
	artist   string
	duration float64
}

// BuildSongplays derives the songplays fact table from play events and the
// built catalog dimensions. Every NextSong event becomes exactly one row:
// events that match nothing in the catalog keep nil song_id and artist_id
// rather than being dropped. Surrogate songplay ids are assigned
// sequentially from zero over the events sorted by (timestamp, read order),
// so identical input yields identical ids.
//
// Calling this before the songs and artists dimensions are built is a
// driver bug and returns a DependencyOrderError.
func BuildSongplays(logs []lakes.LogRecord, songs []lakes.SongRow, artists []lakes.ArtistRow) ([]lakes.SongplayRow, error) {
	if songs == nil {
		return nil, &lakes.DependencyOrderError{Stage: "songplays", Missing: "songs dimension"}
	}
	if artists == nil {
		return nil, &lakes.DependencyOrderError{Stage: "songplays", Missing: "artists dimension"}
	}

	names := make(map[string]string, len(artists))
	for _, a := range artists {
		names[a.ArtistID] = a.Name
	}
	catalog := make(map[catalogKey]lakes.SongRow, len(songs))
	for _, s := range songs {
		name, ok := names[s.ArtistID]
		if !ok {
			continue
		}
		k := catalogKey{title: s.Title, artist: name, duration: s.Duration}
		// two songs can share title, artist and duration; the smallest
		// song_id wins so the choice does not depend on map order
		if cur, ok := catalog[k]; !ok || s.SongID < cur.SongID {
			catalog[k] = s
		}
	}

	plays := nextSongs(logs)
	sort.SliceStable(plays, func(i, j int) bool {
		if plays[i].TS != plays[j].TS {
			return plays[i].TS < plays[j].TS
		}
		return plays[i].Seq < plays[j].Seq
	})

	nexter := lakes.NewNexter()
	out := make([]lakes.SongplayRow, 0, len(plays))
	for _, p := range plays {
		t := time.UnixMilli(p.TS).UTC()
		row := lakes.SongplayRow{
			SongplayID: nexter.Next(),
			StartTime:  p.TS,
			UserID:     p.UserID,
			Level:      p.Level,
			SessionID:  p.SessionID,
			Location:   p.Location,
			UserAgent:  p.UserAgent,
			Year:       int32(t.Year()),
			Month:      int32(t.Month()),
		}
		if s, ok := catalog[catalogKey{title: p.Song, artist: p.Artist, duration: p.Length}]; ok {
			songID, artistID := s.SongID, s.ArtistID
			row.SongID = &songID
			row.ArtistID = &artistID
		}
		out = append(out, row)
	}
	return out, nil
}
