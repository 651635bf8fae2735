package grading

import (
	"edu_assessment_backend/internal/model"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, a Answer)
	}{
		{"single", `{"type":"single","value":"opt-a"}`, func(t *testing.T, a Answer) {
			assert.Equal(t, "opt-a", a.Single)
		}},
		{"boolean", `{"type":"boolean","value":true}`, func(t *testing.T, a Answer) {
			assert.True(t, a.Boolean)
		}},
		{"multi", `{"type":"multi","value":["a","c"]}`, func(t *testing.T, a Answer) {
			assert.Equal(t, []string{"a", "c"}, a.Multi)
		}},
		{"text", `{"type":"text","value":"an essay"}`, func(t *testing.T, a Answer) {
			assert.Equal(t, "an essay", a.Text)
		}},
		{"numeric", `{"type":"numeric","value":3.5}`, func(t *testing.T, a Answer) {
			assert.Equal(t, 3.5, a.Numeric)
		}},
		{"pairs", `{"type":"pairs","value":[{"left":"x","right":"y"}]}`, func(t *testing.T, a Answer) {
			require.Len(t, a.Pairs, 1)
			assert.Equal(t, "x", a.Pairs[0].Left)
		}},
		{"order", `{"type":"order","value":["b","a"]}`, func(t *testing.T, a Answer) {
			assert.Equal(t, []string{"b", "a"}, a.Order)
		}},
		{"blanks", `{"type":"blanks","value":["one","two"]}`, func(t *testing.T, a Answer) {
			assert.Equal(t, []string{"one", "two"}, a.Blanks)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := ParseAnswer([]byte(tc.raw))
			require.NoError(t, err)
			tc.check(t, a)
		})
	}
}

func TestParseAnswerRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"type":"unknown","value":1}`,
		`{"type":"multi","value":"not-an-array"}`,
		`not json`,
	} {
		_, err := ParseAnswer([]byte(raw))
		var mismatch *StructuralMismatchError
		assert.True(t, errors.As(err, &mismatch), "raw=%s", raw)
	}
}

func TestAnswerRoundTrip(t *testing.T) {
	a, err := ParseAnswer([]byte(`{"type":"pairs","value":[{"left":"l","right":"r"}]}`))
	require.NoError(t, err)

	out, err := a.MarshalJSON()
	require.NoError(t, err)

	back, err := ParseAnswer(out)
	require.NoError(t, err)
	assert.Equal(t, a, back)
}

func TestValidateShape(t *testing.T) {
	tests := []struct {
		qt       model.QuestionType
		tag      string
		ok       bool
	}{
		{model.SingleChoice, TagSingle, true},
		{model.SingleChoice, TagMulti, false},
		{model.TrueFalse, TagBoolean, true},
		{model.TrueFalse, TagSingle, true},
		{model.TrueFalse, TagText, false},
		{model.MultiSelect, TagMulti, true},
		{model.MultiSelect, TagSingle, false},
		{model.ShortAnswer, TagText, true},
		{model.Essay, TagText, true},
		{model.Essay, TagBlanks, false},
		{model.Numeric, TagNumeric, true},
		{model.Numeric, TagText, false},
		{model.Matching, TagPairs, true},
		{model.Matching, TagOrder, false},
		{model.Ordering, TagOrder, true},
		{model.Ordering, TagPairs, false},
		{model.FillBlank, TagBlanks, true},
		{model.FillBlank, TagText, false},
	}
	for _, tc := range tests {
		err := ValidateShape(tc.qt, Answer{Type: tc.tag})
		if tc.ok {
			assert.NoError(t, err, "%s/%s", tc.qt, tc.tag)
			continue
		}
		var mismatch *StructuralMismatchError
		require.True(t, errors.As(err, &mismatch), "%s/%s", tc.qt, tc.tag)
		assert.Equal(t, tc.tag, mismatch.Received)
		assert.NotEmpty(t, mismatch.Expected)
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(model.SingleChoice, AnswerKey{Single: "a"}))
	assert.Error(t, ValidateKey(model.SingleChoice, AnswerKey{}))
	assert.NoError(t, ValidateKey(model.TrueFalse, AnswerKey{Boolean: boolPtr(false)}))
	assert.Error(t, ValidateKey(model.TrueFalse, AnswerKey{}))
	assert.Error(t, ValidateKey(model.MultiSelect, AnswerKey{}))
	assert.Error(t, ValidateKey(model.Numeric, AnswerKey{Numeric: floatPtr(1), Tolerance: -1}))
	assert.Error(t, ValidateKey(model.Ordering, AnswerKey{Order: []string{"only-one"}}))
	assert.NoError(t, ValidateKey(model.Essay, AnswerKey{}))
	assert.Error(t, ValidateKey(model.QuestionType("poem"), AnswerKey{}))
}
