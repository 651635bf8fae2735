package grading

import (
	"edu_assessment_backend/internal/model"
	"math"
	"strings"
)

// QuestionView is the minimal projection of a question needed for grading:
// its type, the effective point value within the owning assessment (override
// applied by the caller) and the parsed answer key.
type QuestionView struct {
	ID     string
	Type   model.QuestionType
	Points int
	Key    AnswerKey
}

// Result is the outcome of grading a single answer. IsCorrect and Score stay
// nil for manually graded types until a marker records a score.
type Result struct {
	IsCorrect *bool
	Score     *int
	MaxScore  int
}

// IsAutoGradable reports whether the type has a machine-checkable answer.
func IsAutoGradable(qt model.QuestionType) bool {
	switch qt {
	case model.ShortAnswer, model.Essay:
		return false
	}
	return true
}

// Grade is a pure, deterministic function of (question, answer). Resubmitting
// the same answer yields the same result, so callers may retry writes freely.
// The answer shape must already have passed ValidateShape.
func Grade(q QuestionView, ans Answer) Result {
	res := Result{MaxScore: q.Points}

	switch q.Type {
	case model.SingleChoice:
		res.setBinary(ans.Single != "" && ans.Single == q.Key.Single, q.Points)
	case model.TrueFalse:
		if ans.Type == TagSingle {
			// Accept option-id style submissions ("true"/"false").
			res.setBinary(q.Key.Boolean != nil && parseBoolID(ans.Single) == *q.Key.Boolean, q.Points)
		} else {
			res.setBinary(q.Key.Boolean != nil && ans.Boolean == *q.Key.Boolean, q.Points)
		}
	case model.MultiSelect:
		res.gradeMultiSelect(q, ans)
	case model.Numeric:
		ok := q.Key.Numeric != nil && math.Abs(ans.Numeric-*q.Key.Numeric) <= q.Key.Tolerance
		res.setBinary(ok, q.Points)
	case model.Matching:
		res.gradeMatching(q, ans)
	case model.Ordering:
		res.gradeOrdering(q, ans)
	case model.FillBlank:
		res.gradeFillBlank(q, ans)
	case model.ShortAnswer, model.Essay:
		// Not auto-gradable; a human grader records the score later.
	}
	return res
}

func (r *Result) setBinary(correct bool, points int) {
	score := 0
	if correct {
		score = points
	}
	r.IsCorrect = &correct
	r.Score = &score
}

func (r *Result) setPartial(fraction float64, points int, perfect bool) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	score := int(math.Round(fraction * float64(points)))
	r.IsCorrect = &perfect
	r.Score = &score
}

// Multi-select: maxScore * (correct - incorrect) / total, clipped to
// [0, maxScore]. Only an exact selection counts as correct.
func (r *Result) gradeMultiSelect(q QuestionView, ans Answer) {
	correct := make(map[string]bool, len(q.Key.Multi))
	for _, id := range q.Key.Multi {
		correct[id] = true
	}
	selected := make(map[string]bool, len(ans.Multi))
	for _, id := range ans.Multi {
		selected[id] = true
	}

	hits, misses := 0, 0
	for id := range selected {
		if correct[id] {
			hits++
		} else {
			misses++
		}
	}

	perfect := hits == len(correct) && misses == 0
	if len(correct) == 0 {
		r.setPartial(0, q.Points, false)
		return
	}
	r.setPartial(float64(hits-misses)/float64(len(correct)), q.Points, perfect)
}

// Matching: score proportional to the canonical pairs the submission
// reproduces; perfect match required for isCorrect.
func (r *Result) gradeMatching(q QuestionView, ans Answer) {
	submitted := make(map[string]string, len(ans.Pairs))
	for _, p := range ans.Pairs {
		submitted[p.Left] = p.Right
	}

	hits := 0
	for _, p := range q.Key.Pairs {
		if submitted[p.Left] == p.Right {
			hits++
		}
	}

	total := len(q.Key.Pairs)
	perfect := hits == total && len(ans.Pairs) == total
	r.setPartial(float64(hits)/float64(total), q.Points, perfect)
}

// Ordering: score proportional to positions matching the canonical order.
func (r *Result) gradeOrdering(q QuestionView, ans Answer) {
	hits := 0
	for i, id := range q.Key.Order {
		if i < len(ans.Order) && ans.Order[i] == id {
			hits++
		}
	}

	total := len(q.Key.Order)
	perfect := hits == total && len(ans.Order) == total
	r.setPartial(float64(hits)/float64(total), q.Points, perfect)
}

// Fill-in-blank: each blank compared case-insensitively after trimming.
func (r *Result) gradeFillBlank(q QuestionView, ans Answer) {
	hits := 0
	for i, want := range q.Key.Blanks {
		if i < len(ans.Blanks) && normalizeBlank(ans.Blanks[i]) == normalizeBlank(want) {
			hits++
		}
	}

	total := len(q.Key.Blanks)
	perfect := hits == total && len(ans.Blanks) == total
	r.setPartial(float64(hits)/float64(total), q.Points, perfect)
}

func normalizeBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseBoolID(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// Totals aggregates per-answer results to the attempt level.
type Totals struct {
	TotalScore int
	MaxScore   int
	Percentage int
	AllGraded  bool
}

// Finalize sums scored answers and the full max-score denominator. AllGraded
// is false while any answer still awaits a manual score.
func Finalize(results []Result) Totals {
	t := Totals{AllGraded: true}
	for _, r := range results {
		t.MaxScore += r.MaxScore
		if r.Score == nil {
			t.AllGraded = false
			continue
		}
		t.TotalScore += *r.Score
	}
	if t.MaxScore > 0 {
		t.Percentage = int(math.Round(float64(t.TotalScore) / float64(t.MaxScore) * 100))
	}
	return t
}
