package repository

import (
	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionBankRepository struct {
	DB *gorm.DB
}

func NewQuestionBankRepository(db *gorm.DB) *QuestionBankRepository {
	return &QuestionBankRepository{DB: db}
}

func (r *QuestionBankRepository) Create(item *model.QuestionBankItem) error {
	return r.DB.Create(item).Error
}

func (r *QuestionBankRepository) FindByID(id string) (*model.QuestionBankItem, error) {
	var item model.QuestionBankItem
	err := r.DB.First(&item, "id = ?", id).Error
	return &item, err
}

func (r *QuestionBankRepository) FindByIDs(ids []string) ([]model.QuestionBankItem, error) {
	var items []model.QuestionBankItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&items).Error
	return items, err
}

type QuestionBankFilter struct {
	SubjectID    string
	TopicID      string
	QuestionType string
	Difficulty   string
	ActiveOnly   bool
}

func (r *QuestionBankRepository) List(filter QuestionBankFilter, page, limit int) ([]model.QuestionBankItem, int64, error) {
	var items []model.QuestionBankItem
	var total int64

	query := r.DB.Model(&model.QuestionBankItem{})
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.TopicID != "" {
		query = query.Where("topic_id = ?", filter.TopicID)
	}
	if filter.QuestionType != "" {
		query = query.Where("question_type = ?", filter.QuestionType)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *QuestionBankRepository) Update(item *model.QuestionBankItem) error {
	return r.DB.Save(item).Error
}

func (r *QuestionBankRepository) Delete(id string) error {
	return r.DB.Delete(&model.QuestionBankItem{}, "id = ?", id).Error
}

// ReferencedByPublished reports whether any published (or archived, which was
// once published) assessment references this bank item. Such items accept
// metadata edits only.
func (r *QuestionBankRepository) ReferencedByPublished(questionID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentQuestion{}).
		Joins("JOIN assessments ON assessments.id = assessment_questions.assessment_id").
		Where("assessment_questions.question_id = ?", questionID).
		Where("assessments.status IN ?", []model.AssessmentStatus{model.AssessmentPublished, model.AssessmentArchived}).
		Count(&count).Error
	return count > 0, err
}
