package repository

import (
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithinLimit counts the user's prior attempts and inserts the new one
// in a single transaction, so two concurrent starts cannot both pass the
// check. The unique index on (assessment_id, user_id, attempt_number) backs
// the transaction up if isolation is weakened.
func (r *AttemptRepository) CreateWithinLimit(attempt *model.AssessmentAttempt, maxAttempts int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.AssessmentAttempt{}).
			Where("assessment_id = ? AND user_id = ?", attempt.AssessmentID, attempt.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if maxAttempts > 0 && int(count) >= maxAttempts {
			return util.ErrAttemptLimitExceeded
		}
		attempt.AttemptNumber = int(count) + 1
		return tx.Create(attempt).Error
	})
}

func (r *AttemptRepository) CountForUser(assessmentID string, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentAttempt{}).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) FindByID(id string) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	err := r.DB.First(&a, "id = ?", id).Error
	return &a, err
}

func (r *AttemptRepository) Update(a *model.AssessmentAttempt) error {
	return r.DB.Save(a).Error
}

func (r *AttemptRepository) ListForUser(assessmentID string, userID uint) ([]model.AssessmentAttempt, error) {
	var as []model.AssessmentAttempt
	err := r.DB.Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		Order("attempt_number asc").Find(&as).Error
	return as, err
}

// UpsertAnswer inserts or replaces the answer row for
// (attempt_id, assessment_question_id). Concurrent duplicate submissions
// collapse onto one row through the unique index, not application locking.
func (r *AttemptRepository) UpsertAnswer(ans *model.AttemptAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "assessment_question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answer", "is_correct", "score", "max_score",
			"time_taken_seconds", "marker_comment", "graded_by", "graded_at", "updated_at",
		}),
	}).Create(ans).Error
}

func (r *AttemptRepository) ListAnswers(attemptID string) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("created_at asc").Find(&answers).Error
	return answers, err
}

func (r *AttemptRepository) UpdateAnswer(ans *model.AttemptAnswer) error {
	return r.DB.Save(ans).Error
}

// ListPendingManual returns submitted attempts waiting on a human grader.
func (r *AttemptRepository) ListPendingManual(assessmentID string) ([]model.AssessmentAttempt, error) {
	var as []model.AssessmentAttempt
	query := r.DB.Where("status = ?", model.AttemptSubmitted)
	if assessmentID != "" {
		query = query.Where("assessment_id = ?", assessmentID)
	}
	err := query.Order("submitted_at asc").Find(&as).Error
	return as, err
}

// ListExpiredInProgress finds in-progress attempts whose assessment time
// limit has elapsed, for the reaper to time out.
func (r *AttemptRepository) ListExpiredInProgress(now time.Time) ([]model.AssessmentAttempt, error) {
	var as []model.AssessmentAttempt
	err := r.DB.Model(&model.AssessmentAttempt{}).
		Joins("JOIN assessments ON assessments.id = assessment_attempts.assessment_id").
		Where("assessment_attempts.status = ?", model.AttemptInProgress).
		Where("assessments.time_limit_minutes > 0").
		Where("assessment_attempts.started_at < DATE_SUB(?, INTERVAL assessments.time_limit_minutes MINUTE)", now).
		Find(&as).Error
	return as, err
}
