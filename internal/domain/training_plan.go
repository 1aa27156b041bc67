// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateEntry is one workout definition inside a TrainingPlan. The (Week, Day)
// pair is the entry's ordering key and is only consulted when the plan is first
// scheduled onto a client's calendar; afterwards sessions order by date alone.
type TemplateEntry struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"` // e.g., "Week 2 Day 1: Upper Body"
	Week  int                `bson:"week" json:"week"` // 1-based week within the plan
	Day   int                `bson:"day" json:"day"`   // 1-based day within the week
	Notes string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// TrainingPlan represents a structured multi-week plan authored by a coach for a client.
type TrainingPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`   // Who created the plan
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"` // Who the plan is for
	Name        string             `bson:"name" json:"name"`         // e.g., "Phase 1: Hypertrophy"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Entries     []TemplateEntry    `bson:"entries,omitempty" json:"entries,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"` // Is this the currently active plan for the client?
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
