package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestVotePayloadDecodesSkippedAnswers(t *testing.T) {
	tests := []struct {
		body string
		want Answers
	}{
		{`{"answers": [1, 0]}`, Answers{1, 0}},
		{`{"answers": [1, null]}`, Answers{1, Unanswered}},
		{`{"answers": [null, null, 2]}`, Answers{Unanswered, Unanswered, 2}},
		{`{"answers": [-1, 3]}`, Answers{Unanswered, 3}},
		{`{"answers": []}`, Answers{}},
		{`{"answers": null}`, nil},
		{`{}`, nil},
	}

	for _, tt := range tests {
		var payload VotePayload
		if err := json.Unmarshal([]byte(tt.body), &payload); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.body, err)
		}
		if !reflect.DeepEqual(payload.Answers, tt.want) {
			t.Errorf("Unmarshal(%s) answers = %#v, want %#v", tt.body, payload.Answers, tt.want)
		}
	}
}

func TestVotePayloadRejectsNonIntegerAnswers(t *testing.T) {
	for _, body := range []string{`{"answers": ["a"]}`, `{"answers": 1}`, `{"answers": [1.5]}`} {
		var payload VotePayload
		if err := json.Unmarshal([]byte(body), &payload); err == nil {
			t.Errorf("Expected error for %s", body)
		}
	}
}
