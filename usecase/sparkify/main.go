package sparkify

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	lakes "github.com/stevemn/udacity-dengr-lakes"
	"github.com/stevemn/udacity-dengr-lakes/aws/s3"
	"github.com/stevemn/udacity-dengr-lakes/file"
	"github.com/stevemn/udacity-dengr-lakes/parquet"
)

// Main contains the configuration for one pipeline run. Locations may be
// s3://bucket/prefix urls or local directories; the raw data is expected
// beneath song_data/ and log_data/ under the input location, matching how
// the Sparkify dumps are laid out.
type Main struct {
	Input       string `help:"Location of the raw data: an s3://bucket/prefix url or a local directory."`
	Output      string `help:"Location the analytical tables are written beneath: s3://bucket/prefix or a local directory."`
	Region      string `help:"AWS region for s3 locations."`
	AccessKey   string `help:"Access key id for the storage backend. Empty uses the SDK default credential chain."`
	SecretKey   string `help:"Secret access key for the storage backend."`
	StrictParse bool   `help:"Fail the run on the first unparseable record instead of skipping and counting it."`

	stats lakes.Statter
	log   lakes.Logger
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Input:  "s3://udacity-dend/",
		Output: "s3://dengr-data-lakes/",
		Region: "us-west-2",
		stats:  lakes.NopStatter{},
		log:    lakes.StdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)},
	}
}

// SetStatter sets the stats collector the run reports counters to.
func (m *Main) SetStatter(s lakes.Statter) { m.stats = s }

// SetLogger sets the logger the run reports progress and skips to.
func (m *Main) SetLogger(l lakes.Logger) { m.log = l }

// Run executes the whole pipeline: read songs, build and write the songs
// and artists dimensions; read logs, build and write the users and time
// dimensions; then build and write the songplays fact, which needs the
// catalog dimensions in hand. The first failing stage aborts the run;
// tables already written stay written, which is safe because a rerun
// replaces every partition it touches.
func (m *Main) Run() error {
	dest, err := m.destination()
	if err != nil {
		return errors.Wrap(err, "opening destination")
	}

	songSrc, err := m.rawSource("song_data")
	if err != nil {
		return errors.Wrap(err, "opening song source")
	}
	songRecs, songStats, err := ReadSongs(songSrc, m.StrictParse, m.stats, m.log)
	if err != nil {
		return errors.Wrap(err, "reading songs")
	}
	songsTable := BuildSongs(songRecs)
	artistsTable := BuildArtists(songRecs)
	if err := parquet.Write(dest, "songs", songsTable, "year", "artist_id"); err != nil {
		return errors.Wrap(err, "writing songs")
	}
	if err := parquet.Write(dest, "artists", artistsTable); err != nil {
		return errors.Wrap(err, "writing artists")
	}

	logSrc, err := m.rawSource("log_data")
	if err != nil {
		return errors.Wrap(err, "opening log source")
	}
	logRecs, logStats, err := ReadLogs(logSrc, m.StrictParse, m.stats, m.log)
	if err != nil {
		return errors.Wrap(err, "reading logs")
	}
	usersTable := BuildUsers(logRecs)
	timeTable := BuildTime(logRecs)
	if err := parquet.Write(dest, "users", usersTable); err != nil {
		return errors.Wrap(err, "writing users")
	}
	if err := parquet.Write(dest, "time", timeTable, "year", "month"); err != nil {
		return errors.Wrap(err, "writing time")
	}

	songplaysTable, err := BuildSongplays(logRecs, songsTable, artistsTable)
	if err != nil {
		return errors.Wrap(err, "building songplays")
	}
	if err := parquet.Write(dest, "songplays", songplaysTable, "year", "month"); err != nil {
		return errors.Wrap(err, "writing songplays")
	}
	m.stats.Count("songplays-written", int64(len(songplaysTable)), 1)

	m.log.Printf("pipeline done: %d song records (%d skipped), %d log records (%d skipped), %d songplays",
		songStats.Records, songStats.Skipped, logStats.Records, logStats.Skipped, len(songplaysTable))
	return nil
}

func (m *Main) awsConfig() s3.Config {
	return s3.Config{
		Region:          m.Region,
		AccessKeyID:     m.AccessKey,
		SecretAccessKey: m.SecretKey,
	}
}

func (m *Main) rawSource(sub string) (lakes.RawSource, error) {
	if strings.HasPrefix(m.Input, "s3://") {
		bucket, prefix, err := s3.ParseURL(m.Input)
		if err != nil {
			return nil, err
		}
		return s3.NewRawSource(m.awsConfig(), bucket, path.Join(prefix, sub)+"/")
	}
	return file.NewRawSource(filepath.Join(m.Input, sub))
}

func (m *Main) destination() (lakes.Destination, error) {
	if strings.HasPrefix(m.Output, "s3://") {
		bucket, prefix, err := s3.ParseURL(m.Output)
		if err != nil {
			return nil, err
		}
		return s3.NewDestination(m.awsConfig(), bucket, prefix)
	}
	return file.NewDestination(m.Output)
}
