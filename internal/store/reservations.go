package store

import (
	"context"
	"database/sql"
	"sort"
)

type InsertReservationParams struct {
	CourtID int64
	VenueID int64
	Date    string
	Hours   []int
}

// InsertReservation creates a reservation row holding the given hours.
// Callers are responsible for conflict checking; run inside a transaction.
func (s *Store) InsertReservation(ctx context.Context, arg InsertReservationParams) (Reservation, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (court_id, venue_id, date, is_active)
		VALUES (?, ?, ?, 1)`,
		arg.CourtID, arg.VenueID, arg.Date,
	)
	if err != nil {
		return Reservation{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Reservation{}, err
	}
	if err := s.insertHours(ctx, id, arg.Hours); err != nil {
		return Reservation{}, err
	}
	return s.GetReservationByID(ctx, id)
}

func (s *Store) insertHours(ctx context.Context, reservationID int64, hours []int) error {
	for _, hour := range hours {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO reservation_hours (reservation_id, hour) VALUES (?, ?)`,
			reservationID, hour,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetReservationByID(ctx context.Context, id int64) (Reservation, error) {
	var reservation Reservation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, court_id, venue_id, date, is_active
		FROM reservations WHERE id = ?`, id,
	).Scan(&reservation.ID, &reservation.CourtID, &reservation.VenueID, &reservation.Date, &reservation.IsActive)
	if err != nil {
		return Reservation{}, err
	}
	if err := s.loadReservationChildren(ctx, &reservation); err != nil {
		return Reservation{}, err
	}
	return reservation, nil
}

// ListActiveReservations returns all active rows for a court and date with
// hours and team links populated.
func (s *Store) ListActiveReservations(ctx context.Context, courtID int64, date string) ([]Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, court_id, venue_id, date, is_active
		FROM reservations
		WHERE court_id = ? AND date = ? AND is_active = 1
		ORDER BY id`, courtID, date)
	if err != nil {
		return nil, err
	}
	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		if err := s.loadReservationChildren(ctx, &reservations[i]); err != nil {
			return nil, err
		}
	}
	return reservations, nil
}

// ListActiveReservationsForDate returns every active reservation on a date
// across all courts, used by the reminder job.
func (s *Store) ListActiveReservationsForDate(ctx context.Context, date string) ([]Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, court_id, venue_id, date, is_active
		FROM reservations
		WHERE date = ? AND is_active = 1
		ORDER BY id`, date)
	if err != nil {
		return nil, err
	}
	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		if err := s.loadReservationChildren(ctx, &reservations[i]); err != nil {
			return nil, err
		}
	}
	return reservations, nil
}

func scanReservations(rows *sql.Rows) ([]Reservation, error) {
	defer rows.Close()
	var reservations []Reservation
	for rows.Next() {
		var reservation Reservation
		if err := rows.Scan(
			&reservation.ID, &reservation.CourtID, &reservation.VenueID,
			&reservation.Date, &reservation.IsActive,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}

func (s *Store) loadReservationChildren(ctx context.Context, reservation *Reservation) error {
	hourRows, err := s.db.QueryContext(ctx,
		`SELECT hour FROM reservation_hours WHERE reservation_id = ? ORDER BY hour`,
		reservation.ID)
	if err != nil {
		return err
	}
	defer hourRows.Close()
	reservation.Hours = reservation.Hours[:0]
	for hourRows.Next() {
		var hour int
		if err := hourRows.Scan(&hour); err != nil {
			return err
		}
		reservation.Hours = append(reservation.Hours, hour)
	}
	if err := hourRows.Err(); err != nil {
		return err
	}

	linkRows, err := s.db.QueryContext(ctx, `
		SELECT reservation_id, team_id, is_creator
		FROM reservation_teams WHERE reservation_id = ? ORDER BY is_creator DESC, team_id`,
		reservation.ID)
	if err != nil {
		return err
	}
	defer linkRows.Close()
	reservation.Teams = reservation.Teams[:0]
	for linkRows.Next() {
		var link TeamLink
		if err := linkRows.Scan(&link.ReservationID, &link.TeamID, &link.IsCreator); err != nil {
			return err
		}
		reservation.Teams = append(reservation.Teams, link)
	}
	return linkRows.Err()
}

func (s *Store) AddReservationTeam(ctx context.Context, reservationID, teamID int64, isCreator bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservation_teams (reservation_id, team_id, is_creator)
		VALUES (?, ?, ?)`,
		reservationID, teamID, isCreator,
	)
	return err
}

// CancelReservation deactivates a row; hours and team links are kept for
// history but stop counting toward occupancy.
func (s *Store) CancelReservation(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reservations SET is_active = 0 WHERE id = ?`, id)
	return err
}

// SetReservationHours replaces a reservation's hour set.
func (s *Store) SetReservationHours(ctx context.Context, id int64, hours []int) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM reservation_hours WHERE reservation_id = ?`, id,
	); err != nil {
		return err
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)
	return s.insertHours(ctx, id, sorted)
}

// DeleteReservation removes a row outright; hour and team rows cascade.
func (s *Store) DeleteReservation(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}
