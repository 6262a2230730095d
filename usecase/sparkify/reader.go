package sparkify

import (
	"io"

	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
	"github.com/stevemn/udacity-dengr-lakes/json"
)

// ReadStats reports what one read pass consumed.
type ReadStats struct {
	Records int // records successfully coerced
	Skipped int // records dropped as schema mismatches
}

// ReadSongs decodes and coerces every catalog record beneath src. With
// strict false (the default policy) a record that does not match the song
// schema is skipped and counted; with strict true it fails the read. Any
// other error is fatal either way.
func ReadSongs(src lakes.RawSource, strict bool, stats lakes.Statter, log lakes.Logger) ([]lakes.SongRecord, ReadStats, error) {
	var out []lakes.SongRecord
	var st ReadStats
	ms := json.NewSourceFromRawSource(src)
	for {
		rec, err := ms.Record()
		if err == io.EOF {
			break
		}
		var song lakes.SongRecord
		if err == nil {
			song, err = songFromRecord(rec)
		}
		if err != nil {
			if !lakes.IsSchemaMismatch(err) {
				return nil, st, errors.Wrap(err, "reading songs")
			}
			if strict {
				return nil, st, err
			}
			st.Skipped++
			stats.Count("songs-skipped", 1, 1)
			log.Debugf("skipping song record: %v", err)
			continue
		}
		out = append(out, song)
		st.Records++
		stats.Count("songs-read", 1, 1)
	}
	return out, st, nil
}

// ReadLogs decodes and coerces every play-event record beneath src,
// assigning each record its position in the stable enumeration order. The
// mismatch policy is the same as ReadSongs. All pages are returned;
// filtering to NextSong happens in the builders.
func ReadLogs(src lakes.RawSource, strict bool, stats lakes.Statter, log lakes.Logger) ([]lakes.LogRecord, ReadStats, error) {
	var out []lakes.LogRecord
	var st ReadStats
	ms := json.NewSourceFromRawSource(src)
	for {
		rec, err := ms.Record()
		if err == io.EOF {
			break
		}
		var event lakes.LogRecord
		if err == nil {
			event, err = logFromRecord(rec)
		}
		if err != nil {
			if !lakes.IsSchemaMismatch(err) {
				return nil, st, errors.Wrap(err, "reading logs")
			}
			if strict {
				return nil, st, err
			}
			st.Skipped++
			stats.Count("logs-skipped", 1, 1)
			log.Debugf("skipping log record: %v", err)
			continue
		}
		event.Seq = st.Records
		out = append(out, event)
		st.Records++
		stats.Count("logs-read", 1, 1)
	}
	return out, st, nil
}
