package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockRule excludes either one specific calendar date or one recurring weekday
// from scheduling. ClientID == nil means the rule applies to every client of the
// coach; exactly one of Date / Weekday is set (never both).
type BlockRule struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID  `bson:"coachId" json:"coachId"`
	ClientID  *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Date      *time.Time          `bson:"date,omitempty" json:"date,omitempty"`       // Specific date, midnight UTC
	Weekday   *time.Weekday       `bson:"weekday,omitempty" json:"weekday,omitempty"` // 0 (Sunday) .. 6 (Saturday)
	Reason    string              `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsGlobal reports whether the rule applies to all of the coach's clients.
func (r *BlockRule) IsGlobal() bool {
	return r.ClientID == nil || *r.ClientID == primitive.NilObjectID
}
