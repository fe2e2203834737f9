package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 5 * time.Second

// Message is a rendered transactional email.
type Message struct {
	Subject string
	Body    string
}

// BookingDetails feeds the booking-related templates.
type BookingDetails struct {
	VenueName string
	CourtName string
	Date      string
	Hours     []string
	TeamName  string
}

// BuildBookingConfirmation renders the email sent to the creating team's
// captain after a successful booking.
func BuildBookingConfirmation(details BookingDetails) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Your booking at %s is confirmed.\n\n", details.VenueName)
	fmt.Fprintf(&b, "Court: %s\n", details.CourtName)
	fmt.Fprintf(&b, "Date: %s\n", details.Date)
	fmt.Fprintf(&b, "Hours: %s\n", strings.Join(details.Hours, ", "))
	if details.TeamName != "" {
		fmt.Fprintf(&b, "Team: %s\n", details.TeamName)
	}
	return Message{
		Subject: fmt.Sprintf("Booking confirmed at %s on %s", details.VenueName, details.Date),
		Body:    b.String(),
	}
}

// BuildRivalJoined renders the email sent to the creating team when a rival
// team joins its reservation.
func BuildRivalJoined(details BookingDetails, rivalName string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has joined your reservation as the rival team.\n\n", rivalName)
	fmt.Fprintf(&b, "Venue: %s\n", details.VenueName)
	fmt.Fprintf(&b, "Court: %s\n", details.CourtName)
	fmt.Fprintf(&b, "Date: %s\n", details.Date)
	fmt.Fprintf(&b, "Hours: %s\n", strings.Join(details.Hours, ", "))
	return Message{
		Subject: fmt.Sprintf("A rival team joined your match on %s", details.Date),
		Body:    b.String(),
	}
}

// BuildBlockOverride renders the email sent to a team whose booked hours were
// overridden by an admin block.
func BuildBlockOverride(details BookingDetails, overriddenHours []string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "The venue administrator blocked hours that overlap your booking.\n\n")
	fmt.Fprintf(&b, "Venue: %s\n", details.VenueName)
	fmt.Fprintf(&b, "Court: %s\n", details.CourtName)
	fmt.Fprintf(&b, "Date: %s\n", details.Date)
	fmt.Fprintf(&b, "Affected hours: %s\n", strings.Join(overriddenHours, ", "))
	fmt.Fprintf(&b, "\nPlease contact the venue to resolve the overlap.\n")
	return Message{
		Subject: fmt.Sprintf("Venue block overlaps your booking on %s", details.Date),
		Body:    b.String(),
	}
}

// BuildReminder renders the email sent to a team ahead of its reserved hours.
func BuildReminder(details BookingDetails) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder: your team has court time coming up.\n\n")
	fmt.Fprintf(&b, "Venue: %s\n", details.VenueName)
	fmt.Fprintf(&b, "Court: %s\n", details.CourtName)
	fmt.Fprintf(&b, "Date: %s\n", details.Date)
	fmt.Fprintf(&b, "Hours: %s\n", strings.Join(details.Hours, ", "))
	return Message{
		Subject: fmt.Sprintf("Upcoming reservation at %s on %s", details.VenueName, details.Date),
		Body:    b.String(),
	}
}

// SendAsync delivers a message in the background. Failures are logged and
// swallowed; transactional email never blocks or fails a booking request.
func SendAsync(ctx context.Context, sender Sender, recipient string, message Message, logger *zerolog.Logger) {
	if sender == nil {
		return
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || message.Subject == "" {
		return
	}

	go func() {
		sendCtx, cancel := newEmailContext(ctx, sendTimeout)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send booking email")
		}
	}()
}

func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// Detach cancellation so handler-scoped contexts don't abort async sends.
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
