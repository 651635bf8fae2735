package repository

import (
	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, "id = ?", id).Error
	return &a, err
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

type AssessmentFilter struct {
	Status    string
	SubjectID string
	CreatedBy uint
}

func (r *AssessmentRepository) List(filter AssessmentFilter, page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64

	query := r.DB.Model(&model.Assessment{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.CreatedBy > 0 {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) CreateSection(s *model.AssessmentSection) error {
	return r.DB.Create(s).Error
}

func (r *AssessmentRepository) FindSectionByID(id string) (*model.AssessmentSection, error) {
	var s model.AssessmentSection
	err := r.DB.First(&s, "id = ?", id).Error
	return &s, err
}

func (r *AssessmentRepository) ListSections(assessmentID string) ([]model.AssessmentSection, error) {
	var ss []model.AssessmentSection
	err := r.DB.Where("assessment_id = ?", assessmentID).Order("`order` asc, created_at asc").Find(&ss).Error
	return ss, err
}

func (r *AssessmentRepository) AttachQuestion(aq *model.AssessmentQuestion) error {
	return r.DB.Create(aq).Error
}

func (r *AssessmentRepository) FindQuestionByID(id string) (*model.AssessmentQuestion, error) {
	var aq model.AssessmentQuestion
	err := r.DB.First(&aq, "id = ?", id).Error
	return &aq, err
}

func (r *AssessmentRepository) ListQuestions(assessmentID string) ([]model.AssessmentQuestion, error) {
	var aqs []model.AssessmentQuestion
	err := r.DB.Where("assessment_id = ?", assessmentID).Order("`order` asc, created_at asc").Find(&aqs).Error
	return aqs, err
}

func (r *AssessmentRepository) RemoveQuestion(id string) error {
	return r.DB.Delete(&model.AssessmentQuestion{}, "id = ?", id).Error
}
