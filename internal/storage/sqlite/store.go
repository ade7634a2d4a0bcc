package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"hotel_booking/internal/domain"
)

// Store is the visit repository backed by a local SQLite file, used for
// development and tests.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one connection: ":memory:" databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) UpsertHotels(ctx context.Context, hs []domain.Hotel) error {
	if len(hs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertHotelSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range hs {
		if _, err := stmt.ExecContext(ctx,
			string(h.ID),
			h.Title,
			string(h.Room),
			h.Price.Amount.Float(),
			h.Rating.Average.Float(),
			int64(h.Rating.Reviews.Float()),
		); err != nil {
			return fmt.Errorf("upsert hotel %s: %w", h.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) RecordVisit(ctx context.Context, hotelID domain.ID, rating float64) (domain.RatedHotel, error) {
	if !domain.ValidRating(rating) {
		return domain.RatedHotel{}, domain.ErrInvalidRating
	}
	res, err := s.db.ExecContext(ctx, insertVisitSQL, string(hotelID), rating, time.Now().UTC())
	if err != nil {
		return domain.RatedHotel{}, fmt.Errorf("insert visit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.RatedHotel{}, err
	}
	return scanRated(s.db.QueryRowContext(ctx, getRatedSQL, id))
}

func (s *Store) RateVisit(ctx context.Context, visitID int64, rating float64) error {
	if !domain.ValidRating(rating) {
		return domain.ErrInvalidRating
	}
	res, err := s.db.ExecContext(ctx, rateVisitSQL, rating, visitID)
	if err != nil {
		return err
	}
	// SQLite counts matched rows, so 0 means the visit does not exist.
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) FetchRatedHotels(ctx context.Context, after int64, limit int) ([]domain.RatedHotel, error) {
	rows, err := s.db.QueryContext(ctx, listRatedSQL, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RatedHotel
	for rows.Next() {
		rh, err := scanRated(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rh)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanRated(sc scanner) (domain.RatedHotel, error) {
	var (
		rh          domain.RatedHotel
		hotelID     string
		title, room sql.NullString
		visitedAt   time.Time
	)
	if err := sc.Scan(&rh.VisitID, &hotelID, &title, &room, &rh.UserRating, &visitedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RatedHotel{}, domain.ErrNotFound
		}
		return domain.RatedHotel{}, err
	}
	rh.HotelID = domain.ID(hotelID)
	rh.Title = title.String
	rh.Room = domain.BedType(room.String)
	rh.VisitedAt = visitedAt
	return rh, nil
}
