package store

import (
	"context"
	"database/sql"
)

type CreateCourtParams struct {
	VenueID    int64
	Name       string
	Capacity   int64
	Roofed     bool
	PriceCents int64
	ImageURL   sql.NullString
}

func (s *Store) CreateCourt(ctx context.Context, arg CreateCourtParams) (Court, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO courts (venue_id, name, capacity, roofed, price_cents, image_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.VenueID, arg.Name, arg.Capacity, arg.Roofed, arg.PriceCents, arg.ImageURL,
	)
	if err != nil {
		return Court{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Court{}, err
	}
	return s.GetCourtByID(ctx, id)
}

func (s *Store) GetCourtByID(ctx context.Context, id int64) (Court, error) {
	var court Court
	err := s.db.QueryRowContext(ctx, `
		SELECT id, venue_id, name, capacity, roofed, price_cents, image_url
		FROM courts WHERE id = ?`, id,
	).Scan(&court.ID, &court.VenueID, &court.Name, &court.Capacity, &court.Roofed, &court.PriceCents, &court.ImageURL)
	return court, err
}

type UpdateCourtParams struct {
	ID         int64
	Name       string
	Capacity   int64
	Roofed     bool
	PriceCents int64
	ImageURL   sql.NullString
}

func (s *Store) UpdateCourt(ctx context.Context, arg UpdateCourtParams) (Court, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE courts SET name = ?, capacity = ?, roofed = ?, price_cents = ?, image_url = ?
		WHERE id = ?`,
		arg.Name, arg.Capacity, arg.Roofed, arg.PriceCents, arg.ImageURL, arg.ID,
	)
	if err != nil {
		return Court{}, err
	}
	return s.GetCourtByID(ctx, arg.ID)
}

// DeleteCourt removes a court. Reservations cascade via foreign keys.
func (s *Store) DeleteCourt(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM courts WHERE id = ?`, id)
	return err
}

func (s *Store) ListCourtsByVenue(ctx context.Context, venueID int64) ([]Court, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, venue_id, name, capacity, roofed, price_cents, image_url
		FROM courts WHERE venue_id = ? ORDER BY name`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var court Court
		if err := rows.Scan(
			&court.ID, &court.VenueID, &court.Name, &court.Capacity,
			&court.Roofed, &court.PriceCents, &court.ImageURL,
		); err != nil {
			return nil, err
		}
		courts = append(courts, court)
	}
	return courts, rows.Err()
}
