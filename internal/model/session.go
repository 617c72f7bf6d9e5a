package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionAbandoned  SessionStatus = "ABANDONED"
)

// Session is one user's pass through a questionnaire
type Session struct {
	ID              string        `json:"id" bson:"_id,omitempty"`
	QuestionnaireID string        `json:"questionnaireId" bson:"questionnaireId"`
	UserID          string        `json:"userId" bson:"userId"`
	Status          SessionStatus `json:"status" bson:"status"`
	StartedAt       time.Time     `json:"startedAt" bson:"startedAt"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
