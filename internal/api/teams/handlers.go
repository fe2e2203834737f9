// internal/api/teams/handlers.go
package teams

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/store"
)

const teamQueryTimeout = 10 * time.Second

var (
	database *appdb.DB
	initOnce sync.Once
)

func InitHandlers(db *appdb.DB) {
	if db == nil {
		return
	}
	initOnce.Do(func() {
		database = db
	})
}

type teamBody struct {
	Name         string `json:"name"`
	CaptainID    int64  `json:"captainId"`
	ContactEmail string `json:"contactEmail"`
	MaxSize      int64  `json:"maxSize"`
	IsPublic     bool   `json:"isPublic"`
}

// POST /api/v1/teams
func HandleTeamCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var body teamBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "name", Reason: "must not be empty"})
		return
	}
	if body.ContactEmail != "" {
		if _, err := mail.ParseAddress(body.ContactEmail); err != nil {
			apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "contactEmail", Reason: "not a valid email address"})
			return
		}
	}
	if body.MaxSize <= 0 {
		body.MaxSize = 12
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := database.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name:         body.Name,
		CaptainID:    body.CaptainID,
		ContactEmail: body.ContactEmail,
		MaxSize:      body.MaxSize,
		IsPublic:     body.IsPublic,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create team")
		http.Error(w, "Failed to create team", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":   true,
		"id":   team.ID,
		"name": team.Name,
	}); err != nil {
		logger.Error().Err(err).Int64("team_id", team.ID).Msg("Failed to write team response")
	}
}

// GET /api/v1/teams/{id}
func HandleTeamDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	teamID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := database.Store.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to fetch team")
		http.Error(w, "Failed to fetch team", http.StatusInternalServerError)
		return
	}

	players, err := database.Store.ListTeamPlayers(ctx, teamID)
	if err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to list team players")
		http.Error(w, "Failed to fetch team", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"id":           team.ID,
		"name":         team.Name,
		"captainId":    team.CaptainID,
		"contactEmail": team.ContactEmail,
		"maxSize":      team.MaxSize,
		"isPublic":     team.IsPublic,
		"players":      players,
	}); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to write team response")
	}
}

type playerBody struct {
	PlayerID int64 `json:"playerId"`
}

// POST /api/v1/teams/{id}/players
func HandlePlayerAdd(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	teamID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	var body playerBody
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.PlayerID <= 0 {
		http.Error(w, "playerId is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := database.Store.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to fetch team")
		http.Error(w, "Failed to add player", http.StatusInternalServerError)
		return
	}

	players, err := database.Store.ListTeamPlayers(ctx, teamID)
	if err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to list team players")
		http.Error(w, "Failed to add player", http.StatusInternalServerError)
		return
	}
	if int64(len(players)) >= team.MaxSize {
		apiutil.WriteEngineError(w, r, booking.ValidationError{Field: "playerId", Reason: "team is full"})
		return
	}

	if err := database.Store.AddTeamPlayer(ctx, teamID, body.PlayerID); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Int64("player_id", body.PlayerID).Msg("Failed to add player")
		http.Error(w, "Failed to add player", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"teamId":  teamID,
		"players": len(players) + 1,
	}); err != nil {
		logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to write player response")
	}
}
