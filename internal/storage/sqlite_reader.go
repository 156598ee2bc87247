package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

// ReaderOption configures the time window of a read.
type ReaderOption func(*timeFilter)

// WithStartTime excludes records with timestamps before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(f *timeFilter) {
		f.startTime = &t
	}
}

// WithEndTime excludes records with timestamps after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(f *timeFilter) {
		f.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
// This is a convenience function equivalent to applying both WithStartTime
// and WithEndTime.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(f *timeFilter) {
		f.startTime = &startTime
		f.endTime = &endTime
	}
}

type timeFilter struct {
	startTime *time.Time // Optional start of time range filter
	endTime   *time.Time // Optional end of time range filter
}

func newTimeFilter(opts ...ReaderOption) *timeFilter {
	f := &timeFilter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// bounds returns the inclusive range of Unix nanosecond timestamps to select.
func (f *timeFilter) bounds() (from, to int64, err error) {
	from, to = math.MinInt64, math.MaxInt64
	if f.startTime != nil {
		from = toNanos(*f.startTime)
	}
	if f.endTime != nil {
		to = toNanos(*f.endTime)
	}
	if from > to {
		return 0, 0, fmt.Errorf("start time %s is after end time %s", f.startTime, f.endTime)
	}
	return from, to, nil
}

var _ PingReader = (*SqlitePingReader)(nil)

// SqlitePingReader implements PingReader for SQLite database backend.
type SqlitePingReader struct {
	db *sql.DB

	surveyID int64
	survey   *survey.Survey
	filter   *timeFilter

	current *survey.Ping
	rows    *sql.Rows
	err     error
}

func newSqlitePingReader(ctx context.Context, db *sql.DB, surveyID int64, opts ...ReaderOption) (*SqlitePingReader, error) {
	pr := &SqlitePingReader{
		db:       db,
		surveyID: surveyID,
		filter:   newTimeFilter(opts...),
	}
	if err := pr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return pr, nil
}

func (pr *SqlitePingReader) init(ctx context.Context) error {
	if pr.db == nil {
		return errors.New("database connection required")
	}
	if pr.surveyID <= 0 {
		return errors.New("survey ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading survey", fn: pr.loadSurvey},
		{msg: "initializing query", fn: pr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (pr *SqlitePingReader) loadSurvey(ctx context.Context) (err error) {
	pr.survey, err = loadSurveyOfKind(ctx, pr.db, pr.surveyID, survey.KindMultibeam)
	return
}

func (pr *SqlitePingReader) initQuery(ctx context.Context) error {
	from, to, err := pr.filter.bounds()
	if err != nil {
		return err
	}

	if pr.rows, err = pr.db.QueryContext(ctx, selectPingsSQL, pr.surveyID, from, to); err != nil {
		return fmt.Errorf("querying pings: %w", err)
	}
	return nil
}

func (pr *SqlitePingReader) Survey() *survey.Survey {
	return pr.survey
}

func (pr *SqlitePingReader) Next(ctx context.Context) bool {
	if pr.err != nil || pr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		pr.err = ctx.Err()
		return false
	default:
	}

	if !pr.rows.Next() {
		pr.current = nil
		return false
	}

	var data pingData
	if pr.err = pr.rows.Scan(&data.Timestamp, &data.X, &data.Y, &data.Z, &data.Heading, &data.Beams); pr.err != nil {
		pr.err = fmt.Errorf("scanning ping: %w", pr.err)
		return false
	}

	ping, err := data.toPing()
	if err != nil {
		pr.err = fmt.Errorf("decoding ping: %w", err)
		return false
	}
	pr.current = &ping
	return true
}

func (pr *SqlitePingReader) Current() *survey.Ping {
	return pr.current
}

func (pr *SqlitePingReader) Error() error {
	if pr.err != nil {
		return pr.err
	}
	if pr.rows != nil {
		return pr.rows.Err()
	}
	return nil
}

func (pr *SqlitePingReader) Close() error {
	if pr.rows != nil {
		err := pr.rows.Close()
		pr.current = nil
		pr.rows = nil
		return err
	}
	return nil
}

// ReadAllPings drains r into a slice. r is not closed.
func ReadAllPings(ctx context.Context, r PingReader) ([]survey.Ping, error) {
	var pings []survey.Ping
	for r.Next(ctx) {
		pings = append(pings, *r.Current())
	}
	if err := r.Error(); err != nil {
		return nil, err
	}
	return pings, nil
}
