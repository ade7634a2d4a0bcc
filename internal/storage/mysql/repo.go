package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotels(ctx context.Context, hs []domain.Hotel) error {
	if len(hs) == 0 {
		return nil
	}
	values := make([]string, 0, len(hs))
	args := make([]any, 0, len(hs)*6)
	for _, h := range hs {
		// (id, title, room, price, rating_avg, reviews)
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args,
			string(h.ID),
			h.Title,
			string(h.Room),
			h.Price.Amount.Float(),
			h.Rating.Average.Float(),
			int64(h.Rating.Reviews.Float()),
		)
	}
	sqlStr := insertHotelsPrefix + strings.Join(values, ",") + insertHotelsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) RecordVisit(ctx context.Context, hotelID domain.ID, rating float64) (domain.RatedHotel, error) {
	if !domain.ValidRating(rating) {
		return domain.RatedHotel{}, domain.ErrInvalidRating
	}
	res, err := r.db.ExecContext(ctx, insertVisitSQL, string(hotelID), rating, time.Now().UTC())
	if err != nil {
		return domain.RatedHotel{}, fmt.Errorf("insert visit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.RatedHotel{}, err
	}
	return scanRated(r.db.QueryRowContext(ctx, getRatedSQL, id))
}

func (r *Repo) RateVisit(ctx context.Context, visitID int64, rating float64) error {
	if !domain.ValidRating(rating) {
		return domain.ErrInvalidRating
	}
	res, err := r.db.ExecContext(ctx, rateVisitSQL, rating, visitID)
	if err != nil {
		return err
	}
	// MySQL reports changed rows, so rating a visit with its current value
	// yields 0; tell that apart from a missing visit.
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, visitExistsSQL, visitID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) FetchRatedHotels(ctx context.Context, after int64, limit int) ([]domain.RatedHotel, error) {
	rows, err := r.db.QueryContext(ctx, listRatedSQL, after, limit)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanRated(s scanner) (domain.RatedHotel, error) {
	var (
		rh          domain.RatedHotel
		hotelID     string
		title, room sql.NullString
		visitedAt   sql.NullTime
	)
	if err := s.Scan(&rh.VisitID, &hotelID, &title, &room, &rh.UserRating, &visitedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RatedHotel{}, domain.ErrNotFound
		}
		return domain.RatedHotel{}, err
	}
	rh.HotelID = domain.ID(hotelID)
	if title.Valid {
		rh.Title = title.String
	}
	if room.Valid {
		rh.Room = domain.BedType(room.String)
	}
	if visitedAt.Valid {
		rh.VisitedAt = visitedAt.Time
	}
	return rh, nil
}
