package store

import "context"

type CreateVenueParams struct {
	Name        string
	Address     string
	City        string
	TaxID       string
	Description string
	Phone       string
	Latitude    float64
	Longitude   float64
	Timezone    string
}

func (s *Store) CreateVenue(ctx context.Context, arg CreateVenueParams) (Venue, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO venues (name, address, city, tax_id, description, phone, latitude, longitude, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Address, arg.City, arg.TaxID, arg.Description, arg.Phone,
		arg.Latitude, arg.Longitude, arg.Timezone,
	)
	if err != nil {
		return Venue{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Venue{}, err
	}
	return s.GetVenueByID(ctx, id)
}

func (s *Store) GetVenueByID(ctx context.Context, id int64) (Venue, error) {
	var venue Venue
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, tax_id, description, phone, latitude, longitude, timezone
		FROM venues WHERE id = ?`, id,
	).Scan(
		&venue.ID, &venue.Name, &venue.Address, &venue.City, &venue.TaxID,
		&venue.Description, &venue.Phone, &venue.Latitude, &venue.Longitude, &venue.Timezone,
	)
	return venue, err
}

type UpdateVenueParams struct {
	ID          int64
	Name        string
	Address     string
	City        string
	TaxID       string
	Description string
	Phone       string
	Latitude    float64
	Longitude   float64
	Timezone    string
}

func (s *Store) UpdateVenue(ctx context.Context, arg UpdateVenueParams) (Venue, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE venues
		SET name = ?, address = ?, city = ?, tax_id = ?, description = ?,
		    phone = ?, latitude = ?, longitude = ?, timezone = ?
		WHERE id = ?`,
		arg.Name, arg.Address, arg.City, arg.TaxID, arg.Description, arg.Phone,
		arg.Latitude, arg.Longitude, arg.Timezone, arg.ID,
	)
	if err != nil {
		return Venue{}, err
	}
	return s.GetVenueByID(ctx, arg.ID)
}

func (s *Store) ListVenues(ctx context.Context) ([]Venue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, city, tax_id, description, phone, latitude, longitude, timezone
		FROM venues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []Venue
	for rows.Next() {
		var venue Venue
		if err := rows.Scan(
			&venue.ID, &venue.Name, &venue.Address, &venue.City, &venue.TaxID,
			&venue.Description, &venue.Phone, &venue.Latitude, &venue.Longitude, &venue.Timezone,
		); err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	return venues, rows.Err()
}
