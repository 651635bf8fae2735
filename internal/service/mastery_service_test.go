package service

import (
	"context"
	"edu_assessment_backend/internal/events"
	"edu_assessment_backend/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMasteryStore struct {
	rows map[string]*model.TopicMastery
}

func newFakeMasteryStore() *fakeMasteryStore {
	return &fakeMasteryStore{rows: make(map[string]*model.TopicMastery)}
}

func masteryKey(userID uint, topicID string) string {
	return fmt.Sprintf("%d/%s", userID, topicID)
}

func (f *fakeMasteryStore) FindByUserAndTopic(userID uint, topicID string) (*model.TopicMastery, error) {
	m, ok := f.rows[masteryKey(userID, topicID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMasteryStore) Upsert(m *model.TopicMastery) error {
	copied := *m
	f.rows[masteryKey(m.UserID, m.TopicID)] = &copied
	return nil
}

func (f *fakeMasteryStore) ListByUser(userID uint) ([]model.TopicMastery, error) {
	var out []model.TopicMastery
	for _, m := range f.rows {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func TestRecommendDifficulty(t *testing.T) {
	tests := []struct {
		percent int
		want    model.Difficulty
	}{
		{100, model.DifficultyHard},
		{90, model.DifficultyHard},
		{85, model.DifficultyHard},
		{84, model.DifficultyMedium},
		{70, model.DifficultyMedium},
		{65, model.DifficultyMedium},
		{64, model.DifficultyEasy},
		{40, model.DifficultyEasy},
		{0, model.DifficultyEasy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendDifficulty(tt.percent), "accuracy %d", tt.percent)
	}
}

func gradedAttempt(userID uint) *model.AssessmentAttempt {
	a := &model.AssessmentAttempt{
		UserID: userID,
		Status: model.AttemptGraded,
	}
	a.ID = "att-1"
	return a
}

func TestRecordGradedAttempt(t *testing.T) {
	store := newFakeMasteryStore()
	emitter := &captureEmitter{}
	svc := NewMasteryService(store, emitter)

	outcomes := []AnswerOutcome{
		{TopicID: "algebra", SubjectID: "math", IsCorrect: true, Score: 9, MaxScore: 10},
		{TopicID: "algebra", SubjectID: "math", IsCorrect: false, Score: 0, MaxScore: 10},
		{TopicID: "geometry", SubjectID: "math", IsCorrect: true, Score: 4, MaxScore: 4},
		{TopicID: "", IsCorrect: true, Score: 1, MaxScore: 1}, // untagged, skipped
	}

	err := svc.RecordGradedAttempt(context.Background(), 7, gradedAttempt(7), outcomes)
	require.NoError(t, err)

	algebra, err := store.FindByUserAndTopic(7, "algebra")
	require.NoError(t, err)
	assert.Equal(t, 2, algebra.QuestionsAttempted)
	assert.Equal(t, 1, algebra.QuestionsCorrect)
	assert.Equal(t, 9, algebra.ScoreSum)
	assert.Equal(t, 20, algebra.MaxScoreSum)
	assert.Equal(t, 45, algebra.AccuracyPercent)
	assert.Equal(t, model.DifficultyEasy, algebra.RecommendedDifficulty)
	assert.Equal(t, "math", algebra.SubjectID)
	assert.NotNil(t, algebra.LastAttemptAt)

	geometry, err := store.FindByUserAndTopic(7, "geometry")
	require.NoError(t, err)
	assert.Equal(t, 100, geometry.AccuracyPercent)
	assert.Equal(t, model.DifficultyHard, geometry.RecommendedDifficulty)

	_, err = store.FindByUserAndTopic(7, "")
	assert.Error(t, err, "untagged outcomes are not persisted")

	assert.Equal(t, 2, len(emitter.types))
	for _, typ := range emitter.types {
		assert.Equal(t, events.MasteryUpdated, typ)
	}
}

func TestRecordGradedAttemptAccumulates(t *testing.T) {
	store := newFakeMasteryStore()
	svc := NewMasteryService(store, events.NopEmitter{})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	first := []AnswerOutcome{
		{TopicID: "algebra", IsCorrect: true, Score: 6, MaxScore: 10},
	}
	require.NoError(t, svc.RecordGradedAttempt(context.Background(), 7, gradedAttempt(7), first))

	second := []AnswerOutcome{
		{TopicID: "algebra", IsCorrect: true, Score: 10, MaxScore: 10},
		{TopicID: "algebra", IsCorrect: true, Score: 10, MaxScore: 10},
	}
	require.NoError(t, svc.RecordGradedAttempt(context.Background(), 7, gradedAttempt(7), second))

	m, err := store.FindByUserAndTopic(7, "algebra")
	require.NoError(t, err)
	assert.Equal(t, 3, m.QuestionsAttempted)
	assert.Equal(t, 3, m.QuestionsCorrect)
	assert.Equal(t, 26, m.ScoreSum)
	assert.Equal(t, 30, m.MaxScoreSum)
	assert.Equal(t, 87, m.AccuracyPercent)
	assert.Equal(t, model.DifficultyHard, m.RecommendedDifficulty)
	assert.Equal(t, 1, m.LastAttemptAt.Day())
}
