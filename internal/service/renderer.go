package service

import (
	"edu_assessment_backend/internal/grading"
	"edu_assessment_backend/internal/model"
	"math/rand"
	"time"
)

// QuestionRenderer projects bank items for two audiences: attempt-taking
// (answers hidden, options optionally shuffled) and review (answers and
// correctness revealed). Rendering never mutates persisted state.
type QuestionRenderer struct{}

func NewQuestionRenderer() *QuestionRenderer {
	return &QuestionRenderer{}
}

type RenderOptions struct {
	ShuffleOptions bool
	ShowPoints     bool
	KeepLeftOrder  bool // matching: suppress shuffling the left column
	KeepRightOrder bool // matching: suppress shuffling the right column
	Seed           int64 // 0 = seed from the clock, per render call
}

type RenderedOption struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	IsCorrect      *bool  `json:"isCorrect,omitempty"`
	IsUserSelected *bool  `json:"isUserSelected,omitempty"`
}

type RenderedQuestion struct {
	AssessmentQuestionID string             `json:"assessmentQuestionId"`
	QuestionID           string             `json:"questionId"`
	QuestionType         model.QuestionType `json:"questionType"`
	Content              string             `json:"content"`
	Order                int                `json:"order"`
	Options              []RenderedOption   `json:"options,omitempty"`
	LeftItems            []string           `json:"leftItems,omitempty"`
	RightItems           []string           `json:"rightItems,omitempty"`
	BlankCount           int                `json:"blankCount,omitempty"`
	Points               *int               `json:"points,omitempty"`

	// Review-only fields.
	Explanation   string              `json:"explanation,omitempty"`
	UserAnswer    *grading.Answer     `json:"userAnswer,omitempty"`
	CorrectAnswer *grading.AnswerKey  `json:"correctAnswer,omitempty"`
	IsCorrect     *bool               `json:"isCorrect,omitempty"`
	Score         *int                `json:"score,omitempty"`
	MaxScore      *int                `json:"maxScore,omitempty"`
	MarkerComment string              `json:"markerComment,omitempty"`
}

// ForAttempt strips the correct answer and projects the question for a
// taker. The displayed order is never persisted; grading always resolves by
// option id, so the shuffled identity can be discarded after render.
func (r *QuestionRenderer) ForAttempt(item *model.QuestionBankItem, aq *model.AssessmentQuestion, opts RenderOptions) (*RenderedQuestion, error) {
	key, err := grading.ParseKey(item.Answer)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	rq := &RenderedQuestion{
		AssessmentQuestionID: aq.ID,
		QuestionID:           item.ID,
		QuestionType:         item.QuestionType,
		Content:              item.Content,
		Order:                aq.Order,
	}
	if opts.ShowPoints {
		points := aq.EffectivePoints(item)
		rq.Points = &points
	}

	switch item.QuestionType {
	case model.SingleChoice, model.MultiSelect, model.TrueFalse:
		options, err := item.DecodeOptions()
		if err != nil {
			return nil, err
		}
		rq.Options = stripOptions(options)
		if opts.ShuffleOptions {
			shuffleOptions(rng, rq.Options)
		}
	case model.Ordering:
		options, err := item.DecodeOptions()
		if err != nil {
			return nil, err
		}
		// The stored option order may leak the canonical arrangement, so
		// ordering items are always shuffled and re-indexed.
		rq.Options = stripOptions(options)
		shuffleOptions(rng, rq.Options)
	case model.Matching:
		// Left/right columns come from the key pairs; each side shuffles
		// independently so pair alignment is never visible.
		for _, p := range key.Pairs {
			rq.LeftItems = append(rq.LeftItems, p.Left)
			rq.RightItems = append(rq.RightItems, p.Right)
		}
		if !opts.KeepLeftOrder {
			shuffleStrings(rng, rq.LeftItems)
		}
		if !opts.KeepRightOrder {
			shuffleStrings(rng, rq.RightItems)
		}
	case model.FillBlank:
		rq.BlankCount = len(key.Blanks)
	case model.ShortAnswer, model.Essay, model.Numeric:
		// Stem only.
	}

	return rq, nil
}

// ForReview returns the full question with the user's answer, the canonical
// answer and the grading result; choice options are annotated with
// isCorrect/isUserSelected by id membership.
func (r *QuestionRenderer) ForReview(item *model.QuestionBankItem, aq *model.AssessmentQuestion, answer *model.AttemptAnswer) (*RenderedQuestion, error) {
	key, err := grading.ParseKey(item.Answer)
	if err != nil {
		return nil, err
	}

	maxScore := aq.EffectivePoints(item)
	rq := &RenderedQuestion{
		AssessmentQuestionID: aq.ID,
		QuestionID:           item.ID,
		QuestionType:         item.QuestionType,
		Content:              item.Content,
		Order:                aq.Order,
		Explanation:          item.Explanation,
		CorrectAnswer:        &key,
		MaxScore:             &maxScore,
	}

	var userAnswer *grading.Answer
	if answer != nil {
		parsed, err := grading.ParseAnswer(answer.Answer)
		if err == nil {
			userAnswer = &parsed
		}
		rq.UserAnswer = userAnswer
		rq.IsCorrect = answer.IsCorrect
		rq.Score = answer.Score
		rq.MarkerComment = answer.MarkerComment
	}

	switch item.QuestionType {
	case model.SingleChoice, model.MultiSelect, model.TrueFalse, model.Ordering:
		options, err := item.DecodeOptions()
		if err != nil {
			return nil, err
		}
		rq.Options = annotateOptions(options, item.QuestionType, key, userAnswer)
	}

	return rq, nil
}

func stripOptions(options []model.Option) []RenderedOption {
	out := make([]RenderedOption, len(options))
	for i, o := range options {
		out[i] = RenderedOption{ID: o.ID, Text: o.Text}
	}
	return out
}

func annotateOptions(options []model.Option, qt model.QuestionType, key grading.AnswerKey, userAnswer *grading.Answer) []RenderedOption {
	correctSet := make(map[string]bool)
	switch qt {
	case model.SingleChoice:
		correctSet[key.Single] = true
	case model.TrueFalse:
		if key.Boolean != nil {
			if *key.Boolean {
				correctSet["true"] = true
			} else {
				correctSet["false"] = true
			}
		}
	case model.MultiSelect:
		for _, id := range key.Multi {
			correctSet[id] = true
		}
	case model.Ordering:
		// No per-option correctness; the arrangement is what matters.
	}

	selectedSet := make(map[string]bool)
	if userAnswer != nil {
		switch userAnswer.Type {
		case grading.TagSingle:
			selectedSet[userAnswer.Single] = true
		case grading.TagBoolean:
			if userAnswer.Boolean {
				selectedSet["true"] = true
			} else {
				selectedSet["false"] = true
			}
		case grading.TagMulti:
			for _, id := range userAnswer.Multi {
				selectedSet[id] = true
			}
		case grading.TagOrder:
			for _, id := range userAnswer.Order {
				selectedSet[id] = true
			}
		}
	}

	out := make([]RenderedOption, len(options))
	for i, o := range options {
		correct := correctSet[o.ID]
		selected := selectedSet[o.ID]
		out[i] = RenderedOption{ID: o.ID, Text: o.Text, IsCorrect: &correct, IsUserSelected: &selected}
	}
	return out
}

// Fisher–Yates via rand.Shuffle, seeded per render call.
func shuffleOptions(rng *rand.Rand, options []RenderedOption) {
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

func shuffleStrings(rng *rand.Rand, items []string) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
