package model

import "time"

type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentPublished AssessmentStatus = "published"
	AssessmentArchived  AssessmentStatus = "archived"
)

// swagger:model Assessment
type Assessment struct {
	UUIDBase
	Title            string           `gorm:"size:255;not null" json:"title"`
	Description      string           `gorm:"type:text" json:"description"`
	Type             string           `gorm:"size:50;default:'quiz'" json:"type"` // quiz, exam, practice
	Status           AssessmentStatus `gorm:"size:20;default:'draft';index" json:"status"`
	SubjectID        string           `gorm:"index;size:36" json:"subjectId"`
	GradeLevel       string           `gorm:"size:50" json:"gradeLevel"`
	ModuleID         string           `gorm:"index;size:36" json:"moduleId"`
	TimeLimitMinutes int              `gorm:"default:0" json:"timeLimitMinutes"` // 0 = unlimited
	TotalMarks       int              `gorm:"default:0" json:"totalMarks"`
	PassMark         int              `gorm:"default:0" json:"passMark"`
	MaxAttempts      int              `gorm:"default:1" json:"maxAttempts"`
	ShuffleQuestions bool             `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleOptions   bool             `gorm:"default:false" json:"shuffleOptions"`
	ShowResults      bool             `gorm:"default:true" json:"showResults"`
	AvailableFrom    *time.Time       `json:"availableFrom,omitempty"`
	AvailableUntil   *time.Time       `json:"availableUntil,omitempty"`
	PublishedAt      *time.Time       `json:"publishedAt,omitempty"`
	CreatedBy        uint             `gorm:"index;type:bigint unsigned" json:"createdBy"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// AvailableAt reports whether the availability window admits the given time.
// A nil bound is open-ended.
func (a *Assessment) AvailableAt(now time.Time) bool {
	if a.AvailableFrom != nil && now.Before(*a.AvailableFrom) {
		return false
	}
	if a.AvailableUntil != nil && now.After(*a.AvailableUntil) {
		return false
	}
	return true
}

// AssessmentSection is an optional ordered grouping of questions with its own
// instructions and time limit.
// swagger:model AssessmentSection
type AssessmentSection struct {
	UUIDBase
	AssessmentID     string `gorm:"index;size:36;not null" json:"assessmentId"`
	Title            string `gorm:"size:255;not null" json:"title"`
	Instructions     string `gorm:"type:text" json:"instructions"`
	TimeLimitMinutes int    `gorm:"default:0" json:"timeLimitMinutes"`
	Order            int    `gorm:"default:0" json:"order"`
}

func (AssessmentSection) TableName() string {
	return "assessment_sections"
}

// AssessmentQuestion joins an assessment (and optional section) to a bank
// item. OverridePoints supersedes the bank item's points for this assessment
// only.
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	UUIDBase
	AssessmentID   string  `gorm:"index;size:36;not null" json:"assessmentId"`
	SectionID      *string `gorm:"index;size:36" json:"sectionId,omitempty"`
	QuestionID     string  `gorm:"index;size:36;not null" json:"questionId"`
	Order          int     `gorm:"default:0" json:"order"`
	OverridePoints *int    `json:"overridePoints,omitempty"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// EffectivePoints resolves the point value for grading within this assessment.
func (aq *AssessmentQuestion) EffectivePoints(item *QuestionBankItem) int {
	if aq.OverridePoints != nil {
		return *aq.OverridePoints
	}
	return item.Points
}
