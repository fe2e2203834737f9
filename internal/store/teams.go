package store

import "context"

type CreateTeamParams struct {
	Name         string
	CaptainID    int64
	ContactEmail string
	MaxSize      int64
	IsPublic     bool
}

func (s *Store) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (name, captain_id, contact_email, max_size, is_public)
		VALUES (?, ?, ?, ?, ?)`,
		arg.Name, arg.CaptainID, arg.ContactEmail, arg.MaxSize, arg.IsPublic,
	)
	if err != nil {
		return Team{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Team{}, err
	}
	return s.GetTeamByID(ctx, id)
}

func (s *Store) GetTeamByID(ctx context.Context, id int64) (Team, error) {
	var team Team
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, captain_id, contact_email, max_size, is_public
		FROM teams WHERE id = ?`, id,
	).Scan(&team.ID, &team.Name, &team.CaptainID, &team.ContactEmail, &team.MaxSize, &team.IsPublic)
	return team, err
}

func (s *Store) AddTeamPlayer(ctx context.Context, teamID, playerID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_players (team_id, player_id) VALUES (?, ?)`,
		teamID, playerID,
	)
	return err
}

func (s *Store) ListTeamPlayers(ctx context.Context, teamID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id FROM team_players WHERE team_id = ? ORDER BY player_id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []int64
	for rows.Next() {
		var playerID int64
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		players = append(players, playerID)
	}
	return players, rows.Err()
}
