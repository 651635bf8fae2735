package service

import (
	"edu_assessment_backend/internal/grading"
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
)

type QuestionBankService struct {
	Repo *repository.QuestionBankRepository
}

func NewQuestionBankService(repo *repository.QuestionBankRepository) *QuestionBankService {
	return &QuestionBankService{Repo: repo}
}

type QuestionBankItemRequest struct {
	SubjectID    string          `json:"subjectId"`
	ModuleID     string          `json:"moduleId"`
	TopicID      string          `json:"topicId"`
	OutcomeID    string          `json:"outcomeId"`
	QuestionType string          `json:"questionType" binding:"required"`
	Difficulty   string          `json:"difficulty"`
	Content      string          `json:"content" binding:"required"`
	Options      json.RawMessage `json:"options"`
	Answer       json.RawMessage `json:"answer"`
	Explanation  string          `json:"explanation"`
	Points       int             `json:"points"`
	Tags         json.RawMessage `json:"tags"`
	IsActive     *bool           `json:"isActive"`
}

func (s *QuestionBankService) CreateItem(creatorID uint, req QuestionBankItemRequest) (*model.QuestionBankItem, error) {
	item := &model.QuestionBankItem{
		SubjectID:    req.SubjectID,
		ModuleID:     req.ModuleID,
		TopicID:      req.TopicID,
		OutcomeID:    req.OutcomeID,
		QuestionType: model.QuestionType(req.QuestionType),
		Difficulty:   model.Difficulty(req.Difficulty),
		Content:      req.Content,
		Options:      req.Options,
		Answer:       req.Answer,
		Explanation:  req.Explanation,
		Points:       req.Points,
		Tags:         req.Tags,
		IsActive:     true,
		CreatedBy:    creatorID,
	}
	if item.Difficulty == "" {
		item.Difficulty = model.DifficultyMedium
	}
	if item.Points <= 0 {
		item.Points = 1
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := validateItemContent(item); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *QuestionBankService) GetItem(id string) (*model.QuestionBankItem, error) {
	return s.Repo.FindByID(id)
}

func (s *QuestionBankService) ListItems(filter repository.QuestionBankFilter, page, limit int) ([]model.QuestionBankItem, int64, error) {
	return s.Repo.List(filter, page, limit)
}

// UpdateItem applies a full update to unreferenced items. Once a published
// assessment references the item, only metadata (explanation, tags, isActive)
// may change, so already-graded attempts keep their meaning.
func (s *QuestionBankService) UpdateItem(id string, req QuestionBankItemRequest) (*model.QuestionBankItem, error) {
	item, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	locked, err := s.Repo.ReferencedByPublished(id)
	if err != nil {
		return nil, err
	}
	if locked && contentChanged(item, req) {
		return nil, util.ErrQuestionLocked
	}

	if !locked {
		item.SubjectID = req.SubjectID
		item.ModuleID = req.ModuleID
		item.TopicID = req.TopicID
		item.OutcomeID = req.OutcomeID
		item.QuestionType = model.QuestionType(req.QuestionType)
		item.Content = req.Content
		item.Options = req.Options
		item.Answer = req.Answer
		if req.Points > 0 {
			item.Points = req.Points
		}
		if req.Difficulty != "" {
			item.Difficulty = model.Difficulty(req.Difficulty)
		}
	}

	item.Explanation = req.Explanation
	item.Tags = req.Tags
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := validateItemContent(item); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *QuestionBankService) DeleteItem(id string) error {
	locked, err := s.Repo.ReferencedByPublished(id)
	if err != nil {
		return err
	}
	if locked {
		return util.ErrQuestionLocked
	}
	return s.Repo.Delete(id)
}

func contentChanged(item *model.QuestionBankItem, req QuestionBankItemRequest) bool {
	return item.QuestionType != model.QuestionType(req.QuestionType) ||
		item.Content != req.Content ||
		string(item.Options) != string(req.Options) ||
		string(item.Answer) != string(req.Answer) ||
		(req.Points > 0 && item.Points != req.Points)
}

// validateItemContent rejects bank items whose options and answer key cannot
// be graded: the key shape must fit the type and every referenced option id
// must exist.
func validateItemContent(item *model.QuestionBankItem) error {
	key, err := grading.ParseKey(item.Answer)
	if err != nil {
		return err
	}
	if err := grading.ValidateKey(item.QuestionType, key); err != nil {
		return err
	}

	switch item.QuestionType {
	case model.SingleChoice, model.MultiSelect, model.Ordering:
		options, err := item.DecodeOptions()
		if err != nil {
			return err
		}
		if len(options) < 2 {
			return errors.New("options-based questions require at least two options")
		}
		ids := make(map[string]bool, len(options))
		for _, o := range options {
			if o.ID == "" {
				return errors.New("option ids must not be empty")
			}
			if ids[o.ID] {
				return fmt.Errorf("duplicate option id %q", o.ID)
			}
			ids[o.ID] = true
		}
		for _, ref := range keyOptionIDs(item.QuestionType, key) {
			if !ids[ref] {
				return fmt.Errorf("answer key references unknown option id %q", ref)
			}
		}
	}
	return nil
}

func keyOptionIDs(qt model.QuestionType, key grading.AnswerKey) []string {
	switch qt {
	case model.SingleChoice:
		return []string{key.Single}
	case model.MultiSelect:
		return key.Multi
	case model.Ordering:
		return key.Order
	}
	return nil
}
