package store

import "context"

type CreateClosureParams struct {
	VenueID   int64
	StartDate string
	EndDate   string
	Reason    string
}

func (s *Store) CreateClosure(ctx context.Context, arg CreateClosureParams) (Closure, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO closures (venue_id, start_date, end_date, reason)
		VALUES (?, ?, ?, ?)`,
		arg.VenueID, arg.StartDate, arg.EndDate, arg.Reason,
	)
	if err != nil {
		return Closure{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Closure{}, err
	}
	return Closure{
		ID:        id,
		VenueID:   arg.VenueID,
		StartDate: arg.StartDate,
		EndDate:   arg.EndDate,
		Reason:    arg.Reason,
	}, nil
}

func (s *Store) DeleteClosure(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM closures WHERE id = ?`, id)
	return err
}

func (s *Store) ListClosuresByVenue(ctx context.Context, venueID int64) ([]Closure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, venue_id, start_date, end_date, reason
		FROM closures WHERE venue_id = ? ORDER BY start_date`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closures []Closure
	for rows.Next() {
		var closure Closure
		if err := rows.Scan(&closure.ID, &closure.VenueID, &closure.StartDate, &closure.EndDate, &closure.Reason); err != nil {
			return nil, err
		}
		closures = append(closures, closure)
	}
	return closures, rows.Err()
}

// GetClosureForDate returns the earliest closure covering date, if any.
// Dates are "2006-01-02" strings, which compare lexicographically.
func (s *Store) GetClosureForDate(ctx context.Context, venueID int64, date string) (Closure, error) {
	var closure Closure
	err := s.db.QueryRowContext(ctx, `
		SELECT id, venue_id, start_date, end_date, reason
		FROM closures
		WHERE venue_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date LIMIT 1`,
		venueID, date, date,
	).Scan(&closure.ID, &closure.VenueID, &closure.StartDate, &closure.EndDate, &closure.Reason)
	return closure, err
}

// DeleteClosuresEndedBefore prunes closures whose end date is strictly before
// the cutoff and returns how many were removed.
func (s *Store) DeleteClosuresEndedBefore(ctx context.Context, cutoff string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM closures WHERE end_date < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
