package grading

import (
	"edu_assessment_backend/internal/model"
	"encoding/json"
	"fmt"
)

// Answer tags carried on the wire as {"type": <tag>, "value": ...}.
const (
	TagSingle  = "single"
	TagBoolean = "boolean"
	TagMulti   = "multi"
	TagText    = "text"
	TagNumeric = "numeric"
	TagPairs   = "pairs"
	TagOrder   = "order"
	TagBlanks  = "blanks"
)

// MatchPair is one left/right association of a matching question.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Answer is the closed tagged union of every submittable answer shape.
// Exactly one value field is populated, selected by Type.
type Answer struct {
	Type    string      `json:"type"`
	Single  string      `json:"-"`
	Boolean bool        `json:"-"`
	Multi   []string    `json:"-"`
	Text    string      `json:"-"`
	Numeric float64     `json:"-"`
	Pairs   []MatchPair `json:"-"`
	Order   []string    `json:"-"`
	Blanks  []string    `json:"-"`
}

type answerEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// ParseAnswer decodes a wire payload into the union. An unknown tag or a
// value that does not decode into the tag's shape is a StructuralMismatchError
// with the received tag; the caller still has to run ValidateShape against the
// target question type.
func ParseAnswer(raw json.RawMessage) (Answer, error) {
	var env answerEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Answer{}, &StructuralMismatchError{Received: "malformed"}
	}

	a := Answer{Type: env.Type}
	var err error
	switch env.Type {
	case TagSingle:
		err = json.Unmarshal(env.Value, &a.Single)
	case TagBoolean:
		err = json.Unmarshal(env.Value, &a.Boolean)
	case TagMulti:
		err = json.Unmarshal(env.Value, &a.Multi)
	case TagText:
		err = json.Unmarshal(env.Value, &a.Text)
	case TagNumeric:
		err = json.Unmarshal(env.Value, &a.Numeric)
	case TagPairs:
		err = json.Unmarshal(env.Value, &a.Pairs)
	case TagOrder:
		err = json.Unmarshal(env.Value, &a.Order)
	case TagBlanks:
		err = json.Unmarshal(env.Value, &a.Blanks)
	default:
		return Answer{}, &StructuralMismatchError{Received: env.Type}
	}
	if err != nil {
		return Answer{}, &StructuralMismatchError{Expected: env.Type, Received: "malformed"}
	}
	return a, nil
}

// MarshalJSON re-emits the wire shape so persisted answers round-trip.
func (a Answer) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch a.Type {
	case TagSingle:
		value = a.Single
	case TagBoolean:
		value = a.Boolean
	case TagMulti:
		value = a.Multi
	case TagText:
		value = a.Text
	case TagNumeric:
		value = a.Numeric
	case TagPairs:
		value = a.Pairs
	case TagOrder:
		value = a.Order
	case TagBlanks:
		value = a.Blanks
	default:
		return nil, fmt.Errorf("unknown answer tag %q", a.Type)
	}
	return json.Marshal(struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value"`
	}{a.Type, value})
}

// StructuralMismatchError reports an answer payload whose tag does not match
// the question type. No grading is attempted on structurally invalid input.
type StructuralMismatchError struct {
	Expected string
	Received string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("structural mismatch: expected answer tag %q, received %q", e.Expected, e.Received)
}

// ExpectedTags returns the answer tags a question type accepts.
func ExpectedTags(qt model.QuestionType) []string {
	switch qt {
	case model.SingleChoice:
		return []string{TagSingle}
	case model.TrueFalse:
		return []string{TagBoolean, TagSingle}
	case model.MultiSelect:
		return []string{TagMulti}
	case model.ShortAnswer, model.Essay:
		return []string{TagText}
	case model.Numeric:
		return []string{TagNumeric}
	case model.Matching:
		return []string{TagPairs}
	case model.Ordering:
		return []string{TagOrder}
	case model.FillBlank:
		return []string{TagBlanks}
	}
	return nil
}

// ValidateShape checks that the answer carries the one tag the question type
// requires before any grading occurs.
func ValidateShape(qt model.QuestionType, a Answer) error {
	expected := ExpectedTags(qt)
	for _, tag := range expected {
		if a.Type == tag {
			return nil
		}
	}
	exp := ""
	if len(expected) > 0 {
		exp = expected[0]
	}
	return &StructuralMismatchError{Expected: exp, Received: a.Type}
}

// AnswerKey is the canonical correct answer stored on a bank item, one field
// per question type. Essay and short-answer items carry an empty key and are
// graded manually.
type AnswerKey struct {
	Single    string      `json:"single,omitempty"`
	Boolean   *bool       `json:"boolean,omitempty"`
	Multi     []string    `json:"multi,omitempty"`
	Numeric   *float64    `json:"numeric,omitempty"`
	Tolerance float64     `json:"tolerance,omitempty"`
	Pairs     []MatchPair `json:"pairs,omitempty"`
	Order     []string    `json:"order,omitempty"`
	Blanks    []string    `json:"blanks,omitempty"`
}

// ParseKey decodes the bank item's answer column. An empty column yields the
// zero key (manual grading types).
func ParseKey(raw json.RawMessage) (AnswerKey, error) {
	var key AnswerKey
	if len(raw) == 0 {
		return key, nil
	}
	if err := json.Unmarshal(raw, &key); err != nil {
		return key, fmt.Errorf("malformed answer key: %w", err)
	}
	return key, nil
}

// ValidateKey checks that the stored key carries the field the question type
// grades against. Used at authoring time so broken keys are rejected up front.
func ValidateKey(qt model.QuestionType, key AnswerKey) error {
	switch qt {
	case model.SingleChoice:
		if key.Single == "" {
			return fmt.Errorf("single_choice key requires a selected option id")
		}
	case model.TrueFalse:
		if key.Boolean == nil {
			return fmt.Errorf("true_false key requires a boolean value")
		}
	case model.MultiSelect:
		if len(key.Multi) == 0 {
			return fmt.Errorf("multi_select key requires at least one option id")
		}
	case model.Numeric:
		if key.Numeric == nil {
			return fmt.Errorf("numeric key requires a value")
		}
		if key.Tolerance < 0 {
			return fmt.Errorf("numeric tolerance must not be negative")
		}
	case model.Matching:
		if len(key.Pairs) == 0 {
			return fmt.Errorf("matching key requires at least one pair")
		}
	case model.Ordering:
		if len(key.Order) < 2 {
			return fmt.Errorf("ordering key requires at least two items")
		}
	case model.FillBlank:
		if len(key.Blanks) == 0 {
			return fmt.Errorf("fill_blank key requires at least one blank")
		}
	case model.ShortAnswer, model.Essay:
		// Manually graded; no key needed.
	default:
		return fmt.Errorf("unknown question type %q", qt)
	}
	return nil
}
