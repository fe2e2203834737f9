// Package booking implements the availability and booking-conflict engine:
// schedule resolution, slot computation, booking writes, and bulk admin
// blocks over the shared reservation store.
package booking

import (
	"errors"
	"time"

	appdb "github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/notify"
)

// Clock abstracts time for testing same-day cutoff behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Engine struct {
	db       *appdb.DB
	notifier notify.Notifier
	mailer   email.Sender
	clock    Clock
}

// NewEngine builds the engine. The notifier and mailer are optional;
// when nil the corresponding side effects are skipped.
func NewEngine(database *appdb.DB, notifier notify.Notifier, mailer email.Sender) (*Engine, error) {
	if database == nil {
		return nil, errors.New("booking engine requires a database")
	}
	return &Engine{
		db:       database,
		notifier: notifier,
		mailer:   mailer,
		clock:    realClock{},
	}, nil
}
