package lakes

// SongRecord is one raw catalog record: a song plus the artist that
// recorded it. Source of truth for the songs and artists dimensions.
type SongRecord struct {
	SongID          string
	Title           string
	ArtistID        string
	ArtistName      string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	ArtistLocation  string
	Year            int32
	Duration        float64
}

// LogRecord is one raw play-event record. Only records with Page ==
// PageNextSong represent actual plays; everything else is app navigation.
// Source of truth for the users and time dimensions and the songplays fact.
type LogRecord struct {
	TS        int64 // event time, epoch milliseconds
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
	SessionID int64
	Page      string
	Song      string
	Artist    string
	Length    float64
	Location  string
	UserAgent string

	// Seq is the record's position in the source's stable enumeration
	// order. It breaks timestamp ties when surrogate keys are assigned and
	// is never written out.
	Seq int
}

// PageNextSong is the page value marking a play event.
const PageNextSong = "NextSong"

// The five analytical tables. Field tags are parquet column definitions;
// the writer also reads them to locate partition-key columns.

// SongRow is one row of the songs dimension, unique by song_id.
type SongRow struct {
	SongID   string  `parquet:"song_id"`
	Title    string  `parquet:"title"`
	ArtistID string  `parquet:"artist_id"`
	Year     int32   `parquet:"year"`
	Duration float64 `parquet:"duration"`
}

// ArtistRow is one row of the artists dimension, unique by artist_id.
// Latitude and longitude are optional since many catalog records carry no
// coordinates.
type ArtistRow struct {
	ArtistID  string   `parquet:"artist_id"`
	Name      string   `parquet:"name"`
	Location  string   `parquet:"location"`
	Latitude  *float64 `parquet:"latitude,optional"`
	Longitude *float64 `parquet:"longitude,optional"`
}

// UserRow is one row of the users dimension, unique by user_id. Level is
// the most recently observed subscription tier.
type UserRow struct {
	UserID    string `parquet:"user_id"`
	FirstName string `parquet:"first_name"`
	LastName  string `parquet:"last_name"`
	Gender    string `parquet:"gender"`
	Level     string `parquet:"level"`
}

// TimeRow is one row of the time dimension, unique by start_time. Calendar
// fields are derived from the epoch millisecond timestamp in UTC; Week is
// the ISO week number and Weekday the English day name.
type TimeRow struct {
	StartTime int64  `parquet:"start_time,timestamp(millisecond)"`
	Hour      int32  `parquet:"hour"`
	Day       int32  `parquet:"day"`
	Week      int32  `parquet:"week"`
	Month     int32  `parquet:"month"`
	Year      int32  `parquet:"year"`
	Weekday   string `parquet:"weekday"`
}

// SongplayRow is one row of the songplays fact table. SongID and ArtistID
// are nil when the play matched nothing in the catalog; that is a valid
// row, not an error. Year and Month duplicate the start_time calendar
// fields so the fact table can be partitioned the same way as time.
type SongplayRow struct {
	SongplayID uint64  `parquet:"songplay_id"`
	StartTime  int64   `parquet:"start_time,timestamp(millisecond)"`
	UserID     string  `parquet:"user_id"`
	Level      string  `parquet:"level"`
	SongID     *string `parquet:"song_id,optional"`
	ArtistID   *string `parquet:"artist_id,optional"`
	SessionID  int64   `parquet:"session_id"`
	Location   string  `parquet:"location"`
	UserAgent  string  `parquet:"user_agent"`
	Year       int32   `parquet:"year"`
	Month      int32   `parquet:"month"`
}
