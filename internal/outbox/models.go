package outbox

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Email delivery states.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// OutboxEmail is one per-student seat allocation notice rendered from a
// seating plan. Rows are queued idempotently: the unique index on
// (plan_id, student_id) makes re-queueing a plan skip existing rows.
type OutboxEmail struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"` // Unique identifier for the email
	PlanID    primitive.ObjectID `bson:"plan_id"`       // Plan the email was rendered from
	StudentID primitive.ObjectID `bson:"student_id"`    // Recipient student
	ToEmail   string             `bson:"to_email"`      // Recipient address
	Subject   string             `bson:"subject"`       // Rendered subject line
	Body      string             `bson:"body"`          // Rendered message body
	Status    string             `bson:"status"`        // queued, sent or failed
	CreatedAt time.Time          `bson:"created_at"`    // When the email was queued
	SentAt    time.Time          `bson:"sent_at,omitempty"` // When delivery succeeded
}
