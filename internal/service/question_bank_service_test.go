package service

import (
	"edu_assessment_backend/internal/model"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateItemContent(t *testing.T) {
	tests := []struct {
		name    string
		item    model.QuestionBankItem
		wantErr bool
	}{
		{
			name: "valid single choice",
			item: bankItem("q", model.SingleChoice, 1,
				`[{"id":"a","text":"A"},{"id":"b","text":"B"}]`,
				`{"single":"a"}`),
		},
		{
			name: "key references missing option",
			item: bankItem("q", model.SingleChoice, 1,
				`[{"id":"a","text":"A"},{"id":"b","text":"B"}]`,
				`{"single":"z"}`),
			wantErr: true,
		},
		{
			name: "too few options",
			item: bankItem("q", model.SingleChoice, 1,
				`[{"id":"a","text":"A"}]`,
				`{"single":"a"}`),
			wantErr: true,
		},
		{
			name: "duplicate option ids",
			item: bankItem("q", model.MultiSelect, 1,
				`[{"id":"a","text":"A"},{"id":"a","text":"B"}]`,
				`{"multi":["a"]}`),
			wantErr: true,
		},
		{
			name: "empty option id",
			item: bankItem("q", model.SingleChoice, 1,
				`[{"id":"","text":"A"},{"id":"b","text":"B"}]`,
				`{"single":"b"}`),
			wantErr: true,
		},
		{
			name: "true_false missing boolean key",
			item: bankItem("q", model.TrueFalse, 1, "", `{}`),
			wantErr: true,
		},
		{
			name: "numeric with tolerance",
			item: bankItem("q", model.Numeric, 2, "", `{"numeric":3.14,"tolerance":0.01}`),
		},
		{
			name: "essay needs no key",
			item: bankItem("q", model.Essay, 5, "", ""),
		},
		{
			name: "ordering key must cover known options",
			item: bankItem("q", model.Ordering, 2,
				`[{"id":"s1","text":"1"},{"id":"s2","text":"2"}]`,
				`{"order":["s1","s3"]}`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateItemContent(&tt.item)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContentChanged(t *testing.T) {
	item := bankItem("q", model.SingleChoice, 2,
		`[{"id":"a","text":"A"},{"id":"b","text":"B"}]`,
		`{"single":"a"}`)
	item.Content = "What is 1+1?"

	base := QuestionBankItemRequest{
		QuestionType: string(model.SingleChoice),
		Content:      "What is 1+1?",
		Options:      json.RawMessage(`[{"id":"a","text":"A"},{"id":"b","text":"B"}]`),
		Answer:       json.RawMessage(`{"single":"a"}`),
		Points:       2,
	}
	assert.False(t, contentChanged(&item, base))

	reworded := base
	reworded.Content = "What is 2+2?"
	assert.True(t, contentChanged(&item, reworded))

	rekeyed := base
	rekeyed.Answer = json.RawMessage(`{"single":"b"}`)
	assert.True(t, contentChanged(&item, rekeyed))

	repointed := base
	repointed.Points = 5
	assert.True(t, contentChanged(&item, repointed))
}
