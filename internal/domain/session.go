package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is one scheduled occurrence of a plan workout for one client on one
// calendar date. ScheduledDate is stored at midnight UTC and is the only mutable
// placement field; once Completed flips to true the session is immutable as far
// as scheduling is concerned.
type Session struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID         primitive.ObjectID `bson:"planId" json:"planId"`         // Link back to the plan
	TemplateID     primitive.ObjectID `bson:"templateId" json:"templateId"` // Which entry this session was created from
	CoachID        primitive.ObjectID `bson:"coachId" json:"coachId"`       // Denormalized for easier query/auth
	ClientID       primitive.ObjectID `bson:"clientId" json:"clientId"`     // Denormalized
	Name           string             `bson:"name" json:"name"`
	ScheduledDate  time.Time          `bson:"scheduledDate" json:"scheduledDate"`
	Completed      bool               `bson:"completed" json:"completed"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	PlacedFallback bool               `bson:"placedFallback,omitempty" json:"placedFallback,omitempty"` // Initial placement ran out of open dates
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WeekdayOrigin is the day-of-week identity a session keeps across reschedules.
// It is derived from the current ScheduledDate at the start of a reschedule pass,
// never stored separately.
func (s *Session) WeekdayOrigin() time.Weekday {
	return s.ScheduledDate.UTC().Weekday()
}
