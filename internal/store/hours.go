package store

import "context"

func (s *Store) GetOperatingHours(ctx context.Context, venueID int64) ([]OperatingHours, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT venue_id, day_of_week, open_hour, close_hour
		FROM operating_hours WHERE venue_id = ? ORDER BY day_of_week`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []OperatingHours
	for rows.Next() {
		var row OperatingHours
		if err := rows.Scan(&row.VenueID, &row.DayOfWeek, &row.OpenHour, &row.CloseHour); err != nil {
			return nil, err
		}
		hours = append(hours, row)
	}
	return hours, rows.Err()
}

// GetOperatingHoursForDay returns sql.ErrNoRows when the venue is closed on
// that weekday.
func (s *Store) GetOperatingHoursForDay(ctx context.Context, venueID int64, dayOfWeek int) (OperatingHours, error) {
	var row OperatingHours
	err := s.db.QueryRowContext(ctx, `
		SELECT venue_id, day_of_week, open_hour, close_hour
		FROM operating_hours WHERE venue_id = ? AND day_of_week = ?`,
		venueID, dayOfWeek,
	).Scan(&row.VenueID, &row.DayOfWeek, &row.OpenHour, &row.CloseHour)
	return row, err
}

// ReplaceOperatingHours swaps a venue's weekly schedule wholesale. Callers
// run it inside a transaction so a failed insert cannot leave the venue
// without a schedule.
func (s *Store) ReplaceOperatingHours(ctx context.Context, venueID int64, hours []OperatingHours) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM operating_hours WHERE venue_id = ?`, venueID,
	); err != nil {
		return err
	}
	for _, row := range hours {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO operating_hours (venue_id, day_of_week, open_hour, close_hour)
			VALUES (?, ?, ?, ?)`,
			venueID, row.DayOfWeek, row.OpenHour, row.CloseHour,
		); err != nil {
			return err
		}
	}
	return nil
}
