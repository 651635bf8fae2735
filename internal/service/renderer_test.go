package service

import (
	"edu_assessment_backend/internal/model"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForAttemptStripsAnswers(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.SingleChoice, 2,
		`[{"id":"a","text":"Paris"},{"id":"b","text":"Lyon"},{"id":"c","text":"Nice"}]`,
		`{"single":"a"}`)
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 3)

	rq, err := r.ForAttempt(&item, &aq, RenderOptions{ShowPoints: true})
	require.NoError(t, err)

	assert.Nil(t, rq.CorrectAnswer)
	assert.Empty(t, rq.Explanation)
	require.Len(t, rq.Options, 3)
	for _, opt := range rq.Options {
		assert.Nil(t, opt.IsCorrect)
		assert.Nil(t, opt.IsUserSelected)
	}
	require.NotNil(t, rq.Points)
	assert.Equal(t, 2, *rq.Points)
	assert.Equal(t, 3, rq.Order)

	serialized, err := json.Marshal(rq)
	require.NoError(t, err)
	assert.NotContains(t, string(serialized), "correctAnswer")
}

func TestForAttemptShuffleKeepsIdentity(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.SingleChoice, 1,
		`[{"id":"a","text":"A"},{"id":"b","text":"B"},{"id":"c","text":"C"},{"id":"d","text":"D"}]`,
		`{"single":"a"}`)
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 1)

	rq, err := r.ForAttempt(&item, &aq, RenderOptions{ShuffleOptions: true, Seed: 99})
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, opt := range rq.Options {
		ids[opt.ID] = true
	}
	assert.Len(t, ids, 4)
	for _, want := range []string{"a", "b", "c", "d"} {
		assert.True(t, ids[want], "option %s must survive the shuffle", want)
	}

	again, err := r.ForAttempt(&item, &aq, RenderOptions{ShuffleOptions: true, Seed: 99})
	require.NoError(t, err)
	assert.Equal(t, rq.Options, again.Options, "same seed renders the same order")
}

func TestForAttemptMatchingColumns(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.Matching, 4, "",
		`{"pairs":[{"left":"France","right":"Paris"},{"left":"Spain","right":"Madrid"}]}`)
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 1)

	rq, err := r.ForAttempt(&item, &aq, RenderOptions{KeepLeftOrder: true, KeepRightOrder: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"France", "Spain"}, rq.LeftItems)
	assert.Equal(t, []string{"Paris", "Madrid"}, rq.RightItems)
}

func TestForAttemptFillBlankCount(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.FillBlank, 3, "",
		`{"blanks":["mitochondria","ribosome","nucleus"]}`)
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 1)

	rq, err := r.ForAttempt(&item, &aq, RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, rq.BlankCount)
	assert.Empty(t, rq.Options)
}

func TestForReviewAnnotatesOptions(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.MultiSelect, 6,
		`[{"id":"a","text":"2"},{"id":"b","text":"3"},{"id":"c","text":"4"}]`,
		`{"multi":["a","b"]}`)
	item.Explanation = "2 and 3 are prime"
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 1)

	score := 3
	correct := false
	answer := &model.AttemptAnswer{
		AssessmentQuestionID: "aq-1",
		Answer:               json.RawMessage(`{"type":"multi","value":["a","c"]}`),
		Score:                &score,
		IsCorrect:            &correct,
		MaxScore:             6,
	}

	rq, err := r.ForReview(&item, &aq, answer)
	require.NoError(t, err)

	require.NotNil(t, rq.CorrectAnswer)
	assert.Equal(t, []string{"a", "b"}, rq.CorrectAnswer.Multi)
	assert.Equal(t, "2 and 3 are prime", rq.Explanation)
	require.NotNil(t, rq.Score)
	assert.Equal(t, 3, *rq.Score)

	byID := make(map[string]RenderedOption)
	for _, opt := range rq.Options {
		byID[opt.ID] = opt
	}
	assert.True(t, *byID["a"].IsCorrect)
	assert.True(t, *byID["a"].IsUserSelected)
	assert.True(t, *byID["b"].IsCorrect)
	assert.False(t, *byID["b"].IsUserSelected)
	assert.False(t, *byID["c"].IsCorrect)
	assert.True(t, *byID["c"].IsUserSelected)
}

func TestForReviewTrueFalse(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.TrueFalse, 1,
		`[{"id":"true","text":"True"},{"id":"false","text":"False"}]`,
		`{"boolean":true}`)
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 1)

	answer := &model.AttemptAnswer{
		AssessmentQuestionID: "aq-1",
		Answer:               json.RawMessage(`{"type":"boolean","value":false}`),
	}

	rq, err := r.ForReview(&item, &aq, answer)
	require.NoError(t, err)

	byID := make(map[string]RenderedOption)
	for _, opt := range rq.Options {
		byID[opt.ID] = opt
	}
	assert.True(t, *byID["true"].IsCorrect)
	assert.False(t, *byID["true"].IsUserSelected)
	assert.False(t, *byID["false"].IsCorrect)
	assert.True(t, *byID["false"].IsUserSelected)
}

func TestOrderingAlwaysShuffled(t *testing.T) {
	r := NewQuestionRenderer()

	item := bankItem("q-1", model.Ordering, 4,
		`[{"id":"s1","text":"first"},{"id":"s2","text":"second"},{"id":"s3","text":"third"},{"id":"s4","text":"fourth"}]`,
		`{"order":["s1","s2","s3","s4"]}`)
	aq := assessmentQuestion("aq-1", "asmt", "q-1", 1)

	// ShuffleOptions off; ordering items shuffle regardless.
	rq, err := r.ForAttempt(&item, &aq, RenderOptions{Seed: 7})
	require.NoError(t, err)

	require.Len(t, rq.Options, 4)
	ids := make(map[string]bool)
	for _, opt := range rq.Options {
		ids[opt.ID] = true
	}
	assert.Len(t, ids, 4)
}
