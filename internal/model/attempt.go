package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptTimedOut   AttemptStatus = "timed_out"
	AttemptGraded     AttemptStatus = "graded"
	AttemptReviewed   AttemptStatus = "reviewed"
)

// AssessmentAttempt is one user's timed run through an assessment.
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	UUIDBase
	AssessmentID     string        `gorm:"size:36;not null;uniqueIndex:idx_assessment_user_attempt" json:"assessmentId"`
	UserID           uint          `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_assessment_user_attempt" json:"userId"`
	AttemptNumber    int           `gorm:"not null;uniqueIndex:idx_assessment_user_attempt" json:"attemptNumber"`
	Status           AttemptStatus `gorm:"size:20;default:'in_progress';index" json:"status"`
	StartedAt        time.Time     `json:"startedAt"`
	SubmittedAt      *time.Time    `json:"submittedAt,omitempty"`
	TotalScore       int           `gorm:"default:0" json:"totalScore"`
	MaxScore         int           `gorm:"default:0" json:"maxScore"`
	Percentage       int           `gorm:"default:0" json:"percentage"`
	TimeSpentSeconds int           `gorm:"default:0" json:"timeSpentSeconds"`
	GradedBy         *uint         `gorm:"type:bigint unsigned" json:"gradedBy,omitempty"`
	GradedAt         *time.Time    `json:"gradedAt,omitempty"`
	Feedback         string        `gorm:"type:text" json:"feedback"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}

// Closed reports whether the attempt no longer accepts answer writes.
func (a *AssessmentAttempt) Closed() bool {
	return a.Status != AttemptInProgress
}

// AttemptAnswer is one answer to one assessment question within one attempt.
// The unique index collapses concurrent duplicate submissions into a single
// row; resubmission overwrites, never duplicates.
// swagger:model AttemptAnswer
type AttemptAnswer struct {
	UUIDBase
	AttemptID            string          `gorm:"size:36;not null;uniqueIndex:idx_attempt_question" json:"attemptId"`
	AssessmentQuestionID string          `gorm:"size:36;not null;uniqueIndex:idx_attempt_question" json:"assessmentQuestionId"`
	Answer               json.RawMessage `gorm:"type:json" json:"answer"`
	IsCorrect            *bool           `json:"isCorrect,omitempty"` // nil until graded (always nil pre-manual for essay/short answer)
	Score                *int            `json:"score,omitempty"`
	MaxScore             int             `gorm:"default:0" json:"maxScore"`
	TimeTakenSeconds     int             `gorm:"default:0" json:"timeTakenSeconds"`
	MarkerComment        string          `gorm:"type:text" json:"markerComment"`
	GradedBy             *uint           `gorm:"type:bigint unsigned" json:"gradedBy,omitempty"`
	GradedAt             *time.Time      `json:"gradedAt,omitempty"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
