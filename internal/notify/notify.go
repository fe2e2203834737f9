// Package notify delivers in-app notifications over a message queue.
// Delivery is fire-and-forget: failures are logged and returned so callers
// can ignore them without interrupting the request flow.
package notify

import "context"

// RecipientKind distinguishes who a notification targets.
type RecipientKind string

const (
	RecipientTeam  RecipientKind = "team"
	RecipientAdmin RecipientKind = "venue_admin"
)

type Recipient struct {
	ID   int64         `json:"id"`
	Kind RecipientKind `json:"kind"`
}

type Notification struct {
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	TargetURL  string      `json:"target_url"`
	Recipients []Recipient `json:"recipients"`
}

// Notifier publishes a notification for asynchronous delivery.
type Notifier interface {
	Publish(ctx context.Context, notification Notification) error
}
