package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dkoval/milesworth/internal/domain"
)

type FlightRepository interface {
	// ListDirect returns direct flights origin->destination with travel
	// dates inside [startDate, endDate] (YYYY-MM-DD, inclusive).
	ListDirect(ctx context.Context, origin, destination, startDate, endDate string) ([]domain.Flight, error)
	// ListDeparting returns every flight leaving origin in the window.
	ListDeparting(ctx context.Context, origin, startDate, endDate string) ([]domain.Flight, error)
	// ListArriving returns every flight landing at destination in the window.
	ListArriving(ctx context.Context, destination, startDate, endDate string) ([]domain.Flight, error)
	// CountFlights reports the total number of fare rows.
	CountFlights(ctx context.Context) (int64, error)
}

type SQLiteFlightRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func NewFlightRepository(db *sql.DB) FlightRepository {
	return &SQLiteFlightRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

var flightColumns = []string{
	"id", "airline", "flight_number", "origin", "destination",
	"date", "departure_time", "arrival_time", "price", "taxes", "miles",
}

func (r *SQLiteFlightRepository) ListDirect(ctx context.Context, origin, destination, startDate, endDate string) ([]domain.Flight, error) {
	query := r.sb.
		Select(flightColumns...).
		From("flights").
		Where(sq.Eq{"origin": origin, "destination": destination}).
		Where(sq.GtOrEq{"date": startDate}).
		Where(sq.LtOrEq{"date": endDate}).
		OrderBy("date", "departure_time")

	return r.list(ctx, query)
}

func (r *SQLiteFlightRepository) ListDeparting(ctx context.Context, origin, startDate, endDate string) ([]domain.Flight, error) {
	query := r.sb.
		Select(flightColumns...).
		From("flights").
		Where(sq.Eq{"origin": origin}).
		Where(sq.GtOrEq{"date": startDate}).
		Where(sq.LtOrEq{"date": endDate}).
		OrderBy("date", "departure_time")

	return r.list(ctx, query)
}

func (r *SQLiteFlightRepository) ListArriving(ctx context.Context, destination, startDate, endDate string) ([]domain.Flight, error) {
	query := r.sb.
		Select(flightColumns...).
		From("flights").
		Where(sq.Eq{"destination": destination}).
		Where(sq.GtOrEq{"date": startDate}).
		Where(sq.LtOrEq{"date": endDate}).
		OrderBy("date", "departure_time")

	return r.list(ctx, query)
}

func (r *SQLiteFlightRepository) CountFlights(ctx context.Context) (int64, error) {
	sqlStr, args, err := r.sb.Select("COUNT(*)").From("flights").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count sql: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flights: %w", err)
	}
	return n, nil
}

func (r *SQLiteFlightRepository) list(ctx context.Context, query sq.SelectBuilder) ([]domain.Flight, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build flights sql: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var (
			f        domain.Flight
			dep, arr string
		)
		if err := rows.Scan(&f.ID, &f.Airline, &f.FlightNumber, &f.Origin, &f.Destination,
			&f.Date, &dep, &arr, &f.Price, &f.Taxes, &f.Miles); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		if f.DepartureTime, err = parseTimestamp(dep); err != nil {
			return nil, fmt.Errorf("flight %d departure_time: %w", f.ID, err)
		}
		if f.ArrivalTime, err = parseTimestamp(arr); err != nil {
			return nil, fmt.Errorf("flight %d arrival_time: %w", f.ID, err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// The source database stores timestamps as ISO text without a zone.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

var _ FlightRepository = (*SQLiteFlightRepository)(nil)
