package storage

import (
	"context"
	"time"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

// Store provides an interface for managing survey data storage operations.
// It handles surveys, multibeam pings, side-scan pings and navigation entries.
// All operations that write to the database should be considered atomic.
type Store interface {
	// CreateSurvey registers a new survey and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - kind: Kind of data the survey holds (multibeam, side-scan, navigation)
	//   - source: Instrument or file the data came from
	//   - startTime: When the survey was recorded
	//   - config: Optional acquisition configuration. Can be string, []byte, or JSON-serializable object
	CreateSurvey(ctx context.Context, kind survey.Kind, source string, startTime time.Time, config any) (surveyID int64, err error)

	// Survey retrieves a specific survey by its ID. It returns ErrSurveyNotFound
	// when no survey with this ID exists.
	Survey(ctx context.Context, id int64) (*survey.Survey, error)

	// Surveys returns all surveys stored in the database ordered by start time.
	Surveys(ctx context.Context) ([]*survey.Survey, error)

	// StorePings saves multibeam pings of a survey in a single transaction.
	StorePings(ctx context.Context, surveyID int64, pings []survey.Ping) error

	// ReadPings returns an iterator over the multibeam pings of a survey in
	// timestamp order. The returned reader must be closed after use.
	ReadPings(ctx context.Context, surveyID int64, opts ...ReaderOption) (PingReader, error)

	// StoreSidescanPings saves side-scan pings of a survey in a single transaction.
	StoreSidescanPings(ctx context.Context, surveyID int64, pings []survey.SidescanPing) error

	// SidescanPings returns the side-scan pings of a survey in timestamp order.
	SidescanPings(ctx context.Context, surveyID int64, opts ...ReaderOption) ([]survey.SidescanPing, error)

	// StoreNavEntries saves navigation fixes of a survey in a single transaction.
	StoreNavEntries(ctx context.Context, surveyID int64, entries []survey.NavEntry) error

	// NavEntries returns the navigation fixes of a survey in timestamp order.
	NavEntries(ctx context.Context, surveyID int64, opts ...ReaderOption) ([]survey.NavEntry, error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}

// PingReader provides an iterator-based interface for reading multibeam pings.
type PingReader interface {
	// Survey returns metadata about the survey this reader is accessing.
	Survey() *survey.Survey

	// Next advances the iterator and returns true if there is another ping
	// to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current ping in the iteration.
	Current() *survey.Ping

	// Error returns any error that occurred during iteration.
	Error() error

	// Close releases any resources associated with the reader.
	Close() error
}
