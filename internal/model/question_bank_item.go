package model

import "encoding/json"

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiSelect  QuestionType = "multi_select"
	TrueFalse    QuestionType = "true_false"
	ShortAnswer  QuestionType = "short_answer"
	Essay        QuestionType = "essay"
	Numeric      QuestionType = "numeric"
	Matching     QuestionType = "matching"
	Ordering     QuestionType = "ordering"
	FillBlank    QuestionType = "fill_blank"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Option is one choice of an options-based question, stored as JSON on the
// bank item. Grading resolves by option id, never by display position.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionBankItem is a reusable question definition independent of any
// assessment. Once referenced by a published assessment only metadata fields
// (explanation, tags, isActive) may change.
// swagger:model QuestionBankItem
type QuestionBankItem struct {
	UUIDBase
	SubjectID    string          `gorm:"index;size:36" json:"subjectId"`
	ModuleID     string          `gorm:"index;size:36" json:"moduleId"`
	TopicID      string          `gorm:"index;size:36" json:"topicId"`
	OutcomeID    string          `gorm:"size:36" json:"outcomeId"`
	QuestionType QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Difficulty   Difficulty      `gorm:"size:20;default:'medium'" json:"difficulty"`
	Content      string          `gorm:"type:text;not null" json:"content"` // Stem markup
	Options      json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	Answer       json.RawMessage `gorm:"type:json" json:"-"` // Correct answer key, never serialized to students
	Explanation  string          `gorm:"type:text" json:"explanation"`
	Points       int             `gorm:"default:1" json:"points"`
	Tags         json.RawMessage `gorm:"type:json" json:"tags,omitempty"`
	IsActive     bool            `gorm:"default:true" json:"isActive"`
	CreatedBy    uint            `gorm:"index;type:bigint unsigned" json:"createdBy"`
}

func (QuestionBankItem) TableName() string {
	return "question_bank_items"
}

// DecodeOptions unpacks the JSON options column. Non-option types return nil.
func (q *QuestionBankItem) DecodeOptions() ([]Option, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []Option
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
