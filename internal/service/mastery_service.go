package service

import (
	"context"
	"edu_assessment_backend/internal/events"
	"edu_assessment_backend/internal/model"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// MasteryStore persists per-user per-topic statistics.
type MasteryStore interface {
	FindByUserAndTopic(userID uint, topicID string) (*model.TopicMastery, error)
	Upsert(m *model.TopicMastery) error
	ListByUser(userID uint) ([]model.TopicMastery, error)
}

// MasteryService folds graded attempts into rolling per-topic accuracy and a
// recommended difficulty. It only ever consumes fully graded attempts, so a
// slow manual marker cannot skew the statistics with partial data.
type MasteryService struct {
	Store   MasteryStore
	Emitter events.Emitter
	now     func() time.Time
}

func NewMasteryService(store MasteryStore, emitter events.Emitter) *MasteryService {
	return &MasteryService{Store: store, Emitter: emitter, now: time.Now}
}

// RecommendDifficulty maps rolling accuracy to the next difficulty band:
// 85 and up goes hard, 65 and up goes medium, below that easy.
func RecommendDifficulty(accuracyPercent int) model.Difficulty {
	switch {
	case accuracyPercent >= 85:
		return model.DifficultyHard
	case accuracyPercent >= 65:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

// RecordGradedAttempt groups the attempt's answer outcomes by topic and folds
// each group into that topic's mastery row. Answers without a topic are
// skipped; they still count toward the attempt score, just not mastery.
func (s *MasteryService) RecordGradedAttempt(ctx context.Context, userID uint, attempt *model.AssessmentAttempt, outcomes []AnswerOutcome) error {
	byTopic := make(map[string][]AnswerOutcome)
	for _, o := range outcomes {
		if o.TopicID == "" {
			continue
		}
		byTopic[o.TopicID] = append(byTopic[o.TopicID], o)
	}

	now := s.now()
	for topicID, group := range byTopic {
		m, err := s.Store.FindByUserAndTopic(userID, topicID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			m = &model.TopicMastery{UserID: userID, TopicID: topicID}
		}

		for _, o := range group {
			m.QuestionsAttempted++
			if o.IsCorrect {
				m.QuestionsCorrect++
			}
			m.ScoreSum += o.Score
			m.MaxScoreSum += o.MaxScore
			if o.SubjectID != "" {
				m.SubjectID = o.SubjectID
			}
		}
		if m.MaxScoreSum > 0 {
			m.AccuracyPercent = int(math.Round(float64(m.ScoreSum) / float64(m.MaxScoreSum) * 100))
		}
		m.RecommendedDifficulty = RecommendDifficulty(m.AccuracyPercent)
		m.LastAttemptAt = &now

		if err := s.Store.Upsert(m); err != nil {
			return err
		}

		if s.Emitter != nil {
			_ = s.Emitter.Emit(ctx, events.MasteryUpdated, map[string]interface{}{
				"userId":                userID,
				"topicId":               topicID,
				"accuracyPercent":       m.AccuracyPercent,
				"recommendedDifficulty": m.RecommendedDifficulty,
			})
		}
	}
	return nil
}

func (s *MasteryService) ListForUser(userID uint) ([]model.TopicMastery, error) {
	return s.Store.ListByUser(userID)
}
