package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/bathymetry/internal/survey"
)

// ErrSurveyNotFound is returned when a survey ID does not exist in the database.
var ErrSurveyNotFound = errors.New("survey not found")

// ErrKindMismatch is returned when a survey is accessed as a kind of data it does not hold.
var ErrKindMismatch = errors.New("survey kind mismatch")

var _ Store = (*SqliteStore)(nil)

// SqliteStore handles survey database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore returns a store backed by the Sqlite database at dbPath.
// Connections are opened on first use, and the schema is created by the
// first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSurvey(ctx context.Context, kind survey.Kind, source string, startTime time.Time, config any) (surveyID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch c := config.(type) {
		case string:
			configData.Valid = true
			configData.String = c

		case []byte:
			configData.Valid = true
			configData.String = string(c)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSurveySQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, toNanos(startTime), string(kind), source, configData)
	if err != nil {
		err = fmt.Errorf("inserting survey: %w", err)
		return
	}

	surveyID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting survey ID: %w", err)
	}
	return
}

func (s *SqliteStore) Survey(ctx context.Context, id int64) (*survey.Survey, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return loadSurvey(ctx, db, id)
}

func loadSurvey(ctx context.Context, db *sql.DB, id int64) (sv *survey.Survey, err error) {
	stmt, err := db.PrepareContext(ctx, selectSurveySQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data surveyData
	err = stmt.QueryRowContext(ctx, id).Scan(&data.ID, &data.StartTime, &data.Kind, &data.Source, &data.Config)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("survey %d: %w", id, ErrSurveyNotFound)
		return
	}
	if err != nil {
		err = fmt.Errorf("scanning survey: %w", err)
		return
	}
	return data.toSurvey(), nil
}

// loadSurveyOfKind loads a survey and checks that it holds the expected kind of data.
func loadSurveyOfKind(ctx context.Context, db *sql.DB, id int64, kind survey.Kind) (*survey.Survey, error) {
	sv, err := loadSurvey(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if sv.Kind != kind {
		return nil, fmt.Errorf("survey %d holds %q data, not %q: %w", id, sv.Kind, kind, ErrKindMismatch)
	}
	return sv, nil
}

func (s *SqliteStore) Surveys(ctx context.Context) (surveys []*survey.Survey, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSurveysSQL)
	if err != nil {
		err = fmt.Errorf("querying surveys: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data surveyData
		if err = rows.Scan(&data.ID, &data.StartTime, &data.Kind, &data.Source, &data.Config); err != nil {
			err = fmt.Errorf("scanning survey: %w", err)
			return
		}
		surveys = append(surveys, data.toSurvey())
	}
	err = rows.Err()
	return
}

// ReadPings creates a PingReader over the multibeam pings of a survey. The
// reader streams rows from the database, so arbitrarily large surveys can be
// consumed without loading them in memory at once.
//
// The returned reader must be closed after use to release database resources.
// Each reader instance should only be used from a single goroutine.
//
// Returns error if the survey doesn't exist or does not hold multibeam data.
func (s *SqliteStore) ReadPings(ctx context.Context, surveyID int64, opts ...ReaderOption) (PingReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqlitePingReader(ctx, db, surveyID, opts...)
}

func (s *SqliteStore) StorePings(ctx context.Context, surveyID int64, pings []survey.Ping) error {
	return s.storeRows(ctx, insertPingSQL, "(?, ?, ?, ?, ?, ?, ?)", len(pings), func(i int) []any {
		p := &pings[i]
		return []any{
			surveyID,
			toNanos(p.Timestamp),
			p.Position.X,
			p.Position.Y,
			p.Position.Z,
			p.Heading,
			encodeBeams(p.Beams),
		}
	})
}

func (s *SqliteStore) StoreSidescanPings(ctx context.Context, surveyID int64, pings []survey.SidescanPing) error {
	return s.storeRows(ctx, insertSidescanPingSQL, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", len(pings), func(i int) []any {
		p := &pings[i]
		return []any{
			surveyID,
			toNanos(p.Timestamp),
			p.Position.X,
			p.Position.Y,
			p.Position.Z,
			p.Heading,
			encodeSamples(p.Port.Intensities),
			p.Port.SlantRange,
			p.Port.TimeDuration,
			encodeSamples(p.Starboard.Intensities),
			p.Starboard.SlantRange,
			p.Starboard.TimeDuration,
		}
	})
}

func (s *SqliteStore) StoreNavEntries(ctx context.Context, surveyID int64, entries []survey.NavEntry) error {
	return s.storeRows(ctx, insertNavEntrySQL, "(?, ?, ?, ?, ?, ?)", len(entries), func(i int) []any {
		e := &entries[i]
		return []any{
			surveyID,
			toNanos(e.Timestamp),
			e.Position.X,
			e.Position.Y,
			e.Position.Z,
			e.Heading,
		}
	})
}

func (s *SqliteStore) storeRows(ctx context.Context, insertSQL, placeholder string, n int, args func(i int) []any) (err error) {
	if n == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if err = batchInsert(ctx, tx, insertSQL, placeholder, n, args); err != nil {
		return fmt.Errorf("batch inserting: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) SidescanPings(ctx context.Context, surveyID int64, opts ...ReaderOption) (pings []survey.SidescanPing, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	if _, err = loadSurveyOfKind(ctx, db, surveyID, survey.KindSidescan); err != nil {
		return nil, err
	}

	from, to, err := newTimeFilter(opts...).bounds()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectSidescanPingsSQL, surveyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying side-scan pings: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data sidescanPingData
		err = rows.Scan(
			&data.Timestamp,
			&data.X,
			&data.Y,
			&data.Z,
			&data.Heading,
			&data.Port.Samples,
			&data.Port.SlantRange,
			&data.Port.Duration,
			&data.Starboard.Samples,
			&data.Starboard.SlantRange,
			&data.Starboard.Duration,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning side-scan ping: %w", err)
		}

		var p survey.SidescanPing
		if p, err = data.toSidescanPing(); err != nil {
			return nil, fmt.Errorf("decoding side-scan ping: %w", err)
		}
		pings = append(pings, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading side-scan pings: %w", err)
	}
	return pings, nil
}

func (s *SqliteStore) NavEntries(ctx context.Context, surveyID int64, opts ...ReaderOption) (entries []survey.NavEntry, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	if _, err = loadSurveyOfKind(ctx, db, surveyID, survey.KindNavigation); err != nil {
		return nil, err
	}

	from, to, err := newTimeFilter(opts...).bounds()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectNavEntriesSQL, surveyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying navigation entries: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var ts int64
		var e survey.NavEntry
		if err = rows.Scan(&ts, &e.Position.X, &e.Position.Y, &e.Position.Z, &e.Heading); err != nil {
			return nil, fmt.Errorf("scanning navigation entry: %w", err)
		}
		e.Timestamp = fromNanos(ts)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading navigation entries: %w", err)
	}
	return entries, nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
