package grading

import (
	"edu_assessment_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestGradeSingleChoice(t *testing.T) {
	q := QuestionView{Type: model.SingleChoice, Points: 5, Key: AnswerKey{Single: "opt-b"}}

	tests := []struct {
		name    string
		answer  Answer
		correct bool
		score   int
	}{
		{"correct option", Answer{Type: TagSingle, Single: "opt-b"}, true, 5},
		{"wrong option", Answer{Type: TagSingle, Single: "opt-a"}, false, 0},
		{"empty selection", Answer{Type: TagSingle}, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Grade(q, tc.answer)
			require.NotNil(t, got.IsCorrect)
			require.NotNil(t, got.Score)
			assert.Equal(t, tc.correct, *got.IsCorrect)
			assert.Equal(t, tc.score, *got.Score)
			assert.Equal(t, 5, got.MaxScore)
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	q := QuestionView{Type: model.TrueFalse, Points: 2, Key: AnswerKey{Boolean: boolPtr(true)}}

	got := Grade(q, Answer{Type: TagBoolean, Boolean: true})
	assert.True(t, *got.IsCorrect)
	assert.Equal(t, 2, *got.Score)

	got = Grade(q, Answer{Type: TagBoolean, Boolean: false})
	assert.False(t, *got.IsCorrect)
	assert.Equal(t, 0, *got.Score)

	// Option-id style submission is accepted for true/false.
	got = Grade(q, Answer{Type: TagSingle, Single: "true"})
	assert.True(t, *got.IsCorrect)
	assert.Equal(t, 2, *got.Score)
}

func TestGradeMultiSelect(t *testing.T) {
	q := QuestionView{Type: model.MultiSelect, Points: 6, Key: AnswerKey{Multi: []string{"a", "b", "c"}}}

	tests := []struct {
		name     string
		selected []string
		correct  bool
		score    int
	}{
		{"exact match", []string{"c", "a", "b"}, true, 6},
		{"two of three", []string{"a", "b"}, false, 4},
		{"one of three", []string{"a"}, false, 2},
		{"hit offset by miss", []string{"a", "b", "d"}, false, 2},
		{"misses outweigh hits clipped to zero", []string{"a", "d", "e", "f"}, false, 0},
		{"all wrong", []string{"d", "e"}, false, 0},
		{"nothing selected", nil, false, 0},
		{"duplicates collapse", []string{"a", "a", "b"}, false, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Grade(q, Answer{Type: TagMulti, Multi: tc.selected})
			assert.Equal(t, tc.correct, *got.IsCorrect)
			assert.Equal(t, tc.score, *got.Score)
		})
	}
}

// Score must be non-decreasing in correct selections and non-increasing in
// incorrect ones, always within [0, maxScore].
func TestGradeMultiSelectMonotonic(t *testing.T) {
	q := QuestionView{Type: model.MultiSelect, Points: 10, Key: AnswerKey{Multi: []string{"a", "b", "c", "d"}}}

	prev := -1
	for _, sel := range [][]string{nil, {"a"}, {"a", "b"}, {"a", "b", "c"}, {"a", "b", "c", "d"}} {
		got := Grade(q, Answer{Type: TagMulti, Multi: sel})
		assert.GreaterOrEqual(t, *got.Score, prev)
		assert.GreaterOrEqual(t, *got.Score, 0)
		assert.LessOrEqual(t, *got.Score, 10)
		prev = *got.Score
	}

	prev = 11
	for _, sel := range [][]string{{"a", "b"}, {"a", "b", "x"}, {"a", "b", "x", "y"}, {"a", "b", "x", "y", "z"}} {
		got := Grade(q, Answer{Type: TagMulti, Multi: sel})
		assert.LessOrEqual(t, *got.Score, prev)
		assert.GreaterOrEqual(t, *got.Score, 0)
		prev = *got.Score
	}
}

func TestGradeNumeric(t *testing.T) {
	tests := []struct {
		name      string
		key       AnswerKey
		value     float64
		correct   bool
	}{
		{"exact", AnswerKey{Numeric: floatPtr(42)}, 42, true},
		{"off without tolerance", AnswerKey{Numeric: floatPtr(42)}, 42.01, false},
		{"within tolerance", AnswerKey{Numeric: floatPtr(3.14), Tolerance: 0.01}, 3.149, true},
		{"at tolerance boundary", AnswerKey{Numeric: floatPtr(10), Tolerance: 0.5}, 10.5, true},
		{"beyond tolerance", AnswerKey{Numeric: floatPtr(10), Tolerance: 0.5}, 10.51, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := QuestionView{Type: model.Numeric, Points: 3, Key: tc.key}
			got := Grade(q, Answer{Type: TagNumeric, Numeric: tc.value})
			assert.Equal(t, tc.correct, *got.IsCorrect)
		})
	}
}

func TestGradeMatching(t *testing.T) {
	q := QuestionView{Type: model.Matching, Points: 8, Key: AnswerKey{Pairs: []MatchPair{
		{Left: "fr", Right: "Paris"},
		{Left: "de", Right: "Berlin"},
		{Left: "it", Right: "Rome"},
		{Left: "es", Right: "Madrid"},
	}}}

	perfect := Grade(q, Answer{Type: TagPairs, Pairs: []MatchPair{
		{Left: "de", Right: "Berlin"}, {Left: "fr", Right: "Paris"},
		{Left: "es", Right: "Madrid"}, {Left: "it", Right: "Rome"},
	}})
	assert.True(t, *perfect.IsCorrect)
	assert.Equal(t, 8, *perfect.Score)

	// Three correct, one swapped pair: round(8 * 3/4) = 6, not correct.
	swapped := Grade(q, Answer{Type: TagPairs, Pairs: []MatchPair{
		{Left: "fr", Right: "Paris"}, {Left: "de", Right: "Berlin"},
		{Left: "it", Right: "Madrid"}, {Left: "es", Right: "Rome"},
	}})
	assert.False(t, *swapped.IsCorrect)
	assert.Equal(t, 6, *swapped.Score)

	hasTwo := Grade(q, Answer{Type: TagPairs, Pairs: []MatchPair{
		{Left: "fr", Right: "Paris"}, {Left: "de", Right: "Berlin"},
	}})
	assert.False(t, *hasTwo.IsCorrect)
	assert.Equal(t, 4, *hasTwo.Score)
}

func TestGradeOrdering(t *testing.T) {
	q := QuestionView{Type: model.Ordering, Points: 4, Key: AnswerKey{Order: []string{"s1", "s2", "s3", "s4"}}}

	tests := []struct {
		name    string
		order   []string
		correct bool
		score   int
	}{
		{"canonical order", []string{"s1", "s2", "s3", "s4"}, true, 4},
		{"two adjacent swapped", []string{"s1", "s3", "s2", "s4"}, false, 2},
		{"fully reversed", []string{"s4", "s3", "s2", "s1"}, false, 0},
		{"truncated submission", []string{"s1", "s2"}, false, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Grade(q, Answer{Type: TagOrder, Order: tc.order})
			assert.Equal(t, tc.correct, *got.IsCorrect)
			assert.Equal(t, tc.score, *got.Score)
		})
	}
}

func TestGradeFillBlank(t *testing.T) {
	q := QuestionView{Type: model.FillBlank, Points: 3, Key: AnswerKey{Blanks: []string{"mitochondria", "ATP", "cell"}}}

	tests := []struct {
		name    string
		blanks  []string
		correct bool
		score   int
	}{
		{"all correct", []string{"mitochondria", "ATP", "cell"}, true, 3},
		{"case and whitespace normalized", []string{" Mitochondria ", "atp", "CELL"}, true, 3},
		{"two of three", []string{"mitochondria", "ATP", "nucleus"}, false, 2},
		{"missing trailing blank", []string{"mitochondria", "ATP"}, false, 2},
		{"all wrong", []string{"x", "y", "z"}, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Grade(q, Answer{Type: TagBlanks, Blanks: tc.blanks})
			assert.Equal(t, tc.correct, *got.IsCorrect)
			assert.Equal(t, tc.score, *got.Score)
		})
	}
}

func TestGradeManualTypesStayUngraded(t *testing.T) {
	for _, qt := range []model.QuestionType{model.Essay, model.ShortAnswer} {
		q := QuestionView{Type: qt, Points: 10}
		got := Grade(q, Answer{Type: TagText, Text: "a considered response"})
		assert.Nil(t, got.IsCorrect)
		assert.Nil(t, got.Score)
		assert.Equal(t, 10, got.MaxScore)
		assert.False(t, IsAutoGradable(qt))
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	q := QuestionView{Type: model.MultiSelect, Points: 7, Key: AnswerKey{Multi: []string{"a", "b"}}}
	ans := Answer{Type: TagMulti, Multi: []string{"a"}}

	first := Grade(q, ans)
	for i := 0; i < 5; i++ {
		again := Grade(q, ans)
		assert.Equal(t, *first.Score, *again.Score)
		assert.Equal(t, *first.IsCorrect, *again.IsCorrect)
	}
}

func TestFinalize(t *testing.T) {
	score := func(n int) *int { return &n }

	t.Run("all graded", func(t *testing.T) {
		totals := Finalize([]Result{
			{Score: score(5), MaxScore: 5, IsCorrect: boolPtr(true)},
			{Score: score(2), MaxScore: 4, IsCorrect: boolPtr(false)},
			{Score: score(0), MaxScore: 1, IsCorrect: boolPtr(false)},
		})
		assert.True(t, totals.AllGraded)
		assert.Equal(t, 7, totals.TotalScore)
		assert.Equal(t, 10, totals.MaxScore)
		assert.Equal(t, 70, totals.Percentage)
	})

	t.Run("pending manual score", func(t *testing.T) {
		totals := Finalize([]Result{
			{Score: score(5), MaxScore: 5, IsCorrect: boolPtr(true)},
			{MaxScore: 10}, // essay awaiting marker
		})
		assert.False(t, totals.AllGraded)
		assert.Equal(t, 5, totals.TotalScore)
		assert.Equal(t, 15, totals.MaxScore)
		assert.Equal(t, 33, totals.Percentage)
	})

	t.Run("empty attempt", func(t *testing.T) {
		totals := Finalize(nil)
		assert.True(t, totals.AllGraded)
		assert.Equal(t, 0, totals.Percentage)
	})
}
