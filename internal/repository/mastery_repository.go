package repository

import (
	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

func (r *MasteryRepository) FindByUserAndTopic(userID uint, topicID string) (*model.TopicMastery, error) {
	var m model.TopicMastery
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert folds a mastery row through the (user_id, topic_id) unique index.
func (r *MasteryRepository) Upsert(m *model.TopicMastery) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subject_id", "questions_attempted", "questions_correct",
			"score_sum", "max_score_sum", "accuracy_percent",
			"recommended_difficulty", "last_attempt_at", "updated_at",
		}),
	}).Create(m).Error
}

func (r *MasteryRepository) ListByUser(userID uint) ([]model.TopicMastery, error) {
	var ms []model.TopicMastery
	err := r.DB.Where("user_id = ?", userID).Order("topic_id asc").Find(&ms).Error
	return ms, err
}
