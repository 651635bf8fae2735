package service

import (
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/util"
	"errors"
	"time"
)

// AssessmentService assembles ordered question references into a gradable
// definition: built once while in draft, read many after publication.
type AssessmentService struct {
	Repo *repository.AssessmentRepository
	Bank *repository.QuestionBankRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository, bank *repository.QuestionBankRepository) *AssessmentService {
	return &AssessmentService{Repo: repo, Bank: bank}
}

type AssessmentRequest struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	Type             string     `json:"type"`
	SubjectID        string     `json:"subjectId"`
	GradeLevel       string     `json:"gradeLevel"`
	ModuleID         string     `json:"moduleId"`
	TimeLimitMinutes int        `json:"timeLimitMinutes"`
	PassMark         int        `json:"passMark"`
	MaxAttempts      int        `json:"maxAttempts"`
	ShuffleQuestions *bool      `json:"shuffleQuestions"`
	ShuffleOptions   *bool      `json:"shuffleOptions"`
	ShowResults      *bool      `json:"showResults"`
	AvailableFrom    *time.Time `json:"availableFrom"`
	AvailableUntil   *time.Time `json:"availableUntil"`
}

func (s *AssessmentService) Create(creatorID uint, req AssessmentRequest) (*model.Assessment, error) {
	a := &model.Assessment{
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		Status:           model.AssessmentDraft,
		SubjectID:        req.SubjectID,
		GradeLevel:       req.GradeLevel,
		ModuleID:         req.ModuleID,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassMark:         req.PassMark,
		MaxAttempts:      req.MaxAttempts,
		ShowResults:      true,
		AvailableFrom:    req.AvailableFrom,
		AvailableUntil:   req.AvailableUntil,
		CreatedBy:        creatorID,
	}
	if a.Type == "" {
		a.Type = "quiz"
	}
	if a.MaxAttempts <= 0 {
		a.MaxAttempts = 1
	}
	if req.ShuffleQuestions != nil {
		a.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		a.ShuffleOptions = *req.ShuffleOptions
	}
	if req.ShowResults != nil {
		a.ShowResults = *req.ShowResults
	}
	if err := validateWindow(a.AvailableFrom, a.AvailableUntil); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update edits the definition; only drafts accept content changes.
func (s *AssessmentService) Update(id string, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssessmentDraft {
		return nil, util.ErrNotDraft
	}

	a.Title = req.Title
	a.Description = req.Description
	if req.Type != "" {
		a.Type = req.Type
	}
	a.SubjectID = req.SubjectID
	a.GradeLevel = req.GradeLevel
	a.ModuleID = req.ModuleID
	a.TimeLimitMinutes = req.TimeLimitMinutes
	a.PassMark = req.PassMark
	if req.MaxAttempts > 0 {
		a.MaxAttempts = req.MaxAttempts
	}
	if req.ShuffleQuestions != nil {
		a.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		a.ShuffleOptions = *req.ShuffleOptions
	}
	if req.ShowResults != nil {
		a.ShowResults = *req.ShowResults
	}
	a.AvailableFrom = req.AvailableFrom
	a.AvailableUntil = req.AvailableUntil

	if err := validateWindow(a.AvailableFrom, a.AvailableUntil); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Get(id string) (*model.Assessment, error) {
	return s.Repo.FindByID(id)
}

func (s *AssessmentService) List(filter repository.AssessmentFilter, page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.List(filter, page, limit)
}

// Publish is irreversible back to draft. Total marks are frozen here from the
// attached questions, override points applied.
func (s *AssessmentService) Publish(id string) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssessmentDraft {
		return nil, util.ErrNotDraft
	}

	aqs, err := s.Repo.ListQuestions(id)
	if err != nil {
		return nil, err
	}
	if len(aqs) == 0 {
		return nil, util.ErrNoQuestions
	}

	itemIDs := make([]string, len(aqs))
	for i, aq := range aqs {
		itemIDs[i] = aq.QuestionID
	}
	items, err := s.Bank.FindByIDs(itemIDs)
	if err != nil {
		return nil, err
	}
	itemMap := make(map[string]model.QuestionBankItem, len(items))
	for _, item := range items {
		itemMap[item.ID] = item
	}

	total := 0
	for _, aq := range aqs {
		item, ok := itemMap[aq.QuestionID]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		total += aq.EffectivePoints(&item)
	}

	now := time.Now()
	a.Status = model.AssessmentPublished
	a.TotalMarks = total
	a.PublishedAt = &now
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Archive(id string) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssessmentPublished {
		return nil, util.ErrNotPublished
	}
	a.Status = model.AssessmentArchived
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

type SectionRequest struct {
	Title            string `json:"title" binding:"required"`
	Instructions     string `json:"instructions"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
	Order            int    `json:"order"`
}

func (s *AssessmentService) CreateSection(assessmentID string, req SectionRequest) (*model.AssessmentSection, error) {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssessmentDraft {
		return nil, util.ErrNotDraft
	}

	section := &model.AssessmentSection{
		AssessmentID:     assessmentID,
		Title:            req.Title,
		Instructions:     req.Instructions,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Order:            req.Order,
	}
	if err := s.Repo.CreateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *AssessmentService) ListSections(assessmentID string) ([]model.AssessmentSection, error) {
	return s.Repo.ListSections(assessmentID)
}

type AttachQuestionRequest struct {
	QuestionID     string  `json:"questionId" binding:"required"`
	SectionID      *string `json:"sectionId"`
	Order          int     `json:"order"`
	OverridePoints *int    `json:"overridePoints"`
}

func (s *AssessmentService) AttachQuestion(assessmentID string, req AttachQuestionRequest) (*model.AssessmentQuestion, error) {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssessmentDraft {
		return nil, util.ErrNotDraft
	}

	item, err := s.Bank.FindByID(req.QuestionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if !item.IsActive {
		return nil, errors.New("bank item is inactive")
	}
	if req.OverridePoints != nil && *req.OverridePoints <= 0 {
		return nil, errors.New("override points must be positive")
	}
	if req.SectionID != nil {
		section, err := s.Repo.FindSectionByID(*req.SectionID)
		if err != nil || section.AssessmentID != assessmentID {
			return nil, errors.New("section does not belong to this assessment")
		}
	}

	aq := &model.AssessmentQuestion{
		AssessmentID:   assessmentID,
		SectionID:      req.SectionID,
		QuestionID:     req.QuestionID,
		Order:          req.Order,
		OverridePoints: req.OverridePoints,
	}
	if err := s.Repo.AttachQuestion(aq); err != nil {
		return nil, err
	}
	return aq, nil
}

func (s *AssessmentService) RemoveQuestion(assessmentID, assessmentQuestionID string) error {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return err
	}
	if a.Status != model.AssessmentDraft {
		return util.ErrNotDraft
	}
	aq, err := s.Repo.FindQuestionByID(assessmentQuestionID)
	if err != nil || aq.AssessmentID != assessmentID {
		return util.ErrQuestionNotFound
	}
	return s.Repo.RemoveQuestion(assessmentQuestionID)
}

// AssessmentQuestionDetail pairs the join row with its bank item for the
// authoring view (answer keys included; teacher-facing only).
type AssessmentQuestionDetail struct {
	model.AssessmentQuestion
	Item *model.QuestionBankItem `json:"item"`
}

func (s *AssessmentService) ListQuestionDetails(assessmentID string) ([]AssessmentQuestionDetail, error) {
	aqs, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(aqs))
	for i, aq := range aqs {
		ids[i] = aq.QuestionID
	}
	items, err := s.Bank.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	itemMap := make(map[string]model.QuestionBankItem, len(items))
	for _, item := range items {
		itemMap[item.ID] = item
	}

	details := make([]AssessmentQuestionDetail, len(aqs))
	for i, aq := range aqs {
		details[i] = AssessmentQuestionDetail{AssessmentQuestion: aq}
		if item, ok := itemMap[aq.QuestionID]; ok {
			copied := item
			details[i].Item = &copied
		}
	}
	return details, nil
}

func validateWindow(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return errors.New("availableUntil precedes availableFrom")
	}
	return nil
}
