package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/notify"
	"github.com/courtsidehq/courtside/internal/store"
)

// The reminder job fires every window; a reservation is picked up in the
// single run whose window contains start-of-hour minus the lead time.
const reminderJobWindow = 15 * time.Minute

// RegisterReminderJob schedules reservation reminders for team bookings.
// Each team on a reservation gets an email at its contact address roughly
// leadTime before the first reserved hour, evaluated in the venue's timezone.
func RegisterReminderJob(database *db.DB, mailer email.Sender, notifier notify.Notifier, cronExpr string, leadTime time.Duration) error {
	if database == nil {
		return fmt.Errorf("reminder job requires database")
	}

	jobName := "reservation_reminders"
	jobLogger := log.With().
		Str("component", "reservation_reminders_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if mailer == nil {
			jobLogger.Debug().Msg("Reminder job skipped: mailer not configured")
			return
		}
		runReminderPass(ctx, database, mailer, notifier, time.Now(), leadTime, &jobLogger)
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add reservation reminder job: %w", err)
	}
	return nil
}

func runReminderPass(ctx context.Context, database *db.DB, mailer email.Sender, notifier notify.Notifier, now time.Time, leadTime time.Duration, logger *zerolog.Logger) {
	windowStart := now.Add(leadTime)
	windowEnd := windowStart.Add(reminderJobWindow)

	venues, err := database.Store.ListVenues(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load venues for reminder job")
		return
	}

	for _, venue := range venues {
		venueLogger := logger.With().Int64("venue_id", venue.ID).Logger()
		venueCtx := venueLogger.WithContext(ctx)

		loc, err := time.LoadLocation(venue.Timezone)
		if err != nil {
			venueLogger.Warn().Err(err).Str("timezone", venue.Timezone).Msg("Falling back to UTC for reminder window")
			loc = time.UTC
		}

		// The window can straddle midnight in the venue's zone, so both
		// local dates it touches are scanned.
		for _, date := range windowDates(windowStart, windowEnd, loc) {
			reservations, err := database.Store.ListActiveReservationsForDate(venueCtx, date)
			if err != nil {
				venueLogger.Error().Err(err).Str("date", date).Msg("Failed to load reservations for reminder job")
				continue
			}
			for _, reservation := range reservations {
				if reservation.VenueID != venue.ID || reservation.Kind() != store.KindTeamBooking || len(reservation.Hours) == 0 {
					continue
				}
				startAt := reservationStart(reservation, loc)
				if startAt.Before(windowStart) || !startAt.Before(windowEnd) {
					continue
				}
				sendReservationReminder(venueCtx, database, mailer, notifier, venue, reservation, &venueLogger)
			}
		}
	}
}

func windowDates(windowStart, windowEnd time.Time, loc *time.Location) []string {
	first := booking.FormatDate(windowStart.In(loc))
	second := booking.FormatDate(windowEnd.In(loc))
	if second == first {
		return []string{first}
	}
	return []string{first, second}
}

func reservationStart(reservation store.Reservation, loc *time.Location) time.Time {
	date, err := booking.ParseDate(reservation.Date)
	if err != nil {
		return time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), reservation.Hours[0], 0, 0, 0, loc)
}

func sendReservationReminder(ctx context.Context, database *db.DB, mailer email.Sender, notifier notify.Notifier, venue store.Venue, reservation store.Reservation, logger *zerolog.Logger) {
	court, err := database.Store.GetCourtByID(ctx, reservation.CourtID)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", reservation.CourtID).Msg("Failed to load court for reminder")
		return
	}

	details := email.BookingDetails{
		VenueName: venue.Name,
		CourtName: court.Name,
		Date:      reservation.Date,
		Hours:     booking.HourLabels(reservation.Hours),
	}

	recipients := make([]notify.Recipient, 0, len(reservation.Teams))
	for _, link := range reservation.Teams {
		team, err := database.Store.GetTeamByID(ctx, link.TeamID)
		if err != nil {
			logger.Error().Err(err).Int64("team_id", link.TeamID).Msg("Failed to load team for reminder")
			continue
		}
		details.TeamName = team.Name
		email.SendAsync(ctx, mailer, team.ContactEmail, email.BuildReminder(details), logger)
		recipients = append(recipients, notify.Recipient{ID: team.ID, Kind: notify.RecipientTeam})
	}

	if notifier != nil && len(recipients) > 0 {
		err := notifier.Publish(ctx, notify.Notification{
			Title:      "Upcoming reservation",
			Message:    fmt.Sprintf("Court time at %s on %s starting %s", venue.Name, reservation.Date, booking.FormatHour(reservation.Hours[0])),
			TargetURL:  fmt.Sprintf("/api/v1/reservations/%d", reservation.ID),
			Recipients: recipients,
		})
		if err != nil {
			logger.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("Failed to publish reminder notification")
		}
	}
}
