package model

import "time"

// TopicMastery is a per-user per-topic rolling accuracy statistic folded from
// graded attempt answers.
// swagger:model TopicMastery
type TopicMastery struct {
	BaseModel
	UserID                uint       `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_user_topic" json:"userId"`
	TopicID               string     `gorm:"size:36;not null;uniqueIndex:idx_user_topic" json:"topicId"`
	SubjectID             string     `gorm:"index;size:36" json:"subjectId"`
	QuestionsAttempted    int        `gorm:"default:0" json:"questionsAttempted"`
	QuestionsCorrect      int        `gorm:"default:0" json:"questionsCorrect"`
	ScoreSum              int        `gorm:"default:0" json:"scoreSum"`
	MaxScoreSum           int        `gorm:"default:0" json:"maxScoreSum"`
	AccuracyPercent       int        `gorm:"default:0" json:"accuracyPercent"`
	RecommendedDifficulty Difficulty `gorm:"size:20;default:'medium'" json:"recommendedDifficulty"`
	LastAttemptAt         *time.Time `json:"lastAttemptAt,omitempty"`
}

func (TopicMastery) TableName() string {
	return "topic_masteries"
}
