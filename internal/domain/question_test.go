package domain

import (
	"errors"
	"testing"
)

func TestRemoveOptionAdjustsCorrectIndex(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		remove  int
		want    int
	}{
		{name: "removing correct resets to first", correct: 2, remove: 2, want: 0},
		{name: "removing below shifts down", correct: 2, remove: 0, want: 1},
		{name: "removing above keeps index", correct: 1, remove: 3, want: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{ID: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: Index(tc.correct)}
			if err := q.RemoveOption(tc.remove); err != nil {
				t.Fatalf("remove option: %v", err)
			}
			if len(q.Options) != 3 {
				t.Fatalf("expected 3 options, got %d", len(q.Options))
			}
			if *q.CorrectAnswerIndex != tc.want {
				t.Fatalf("expected correct index %d, got %d", tc.want, *q.CorrectAnswerIndex)
			}
		})
	}
}

func TestRemoveOptionKeepsPollMarker(t *testing.T) {
	q := Question{ID: "q1", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: Index(NoCorrectAnswer)}
	if err := q.RemoveOption(0); err != nil {
		t.Fatalf("remove option: %v", err)
	}
	if *q.CorrectAnswerIndex != NoCorrectAnswer {
		t.Fatalf("expected poll marker kept, got %d", *q.CorrectAnswerIndex)
	}
}

func TestOptionBounds(t *testing.T) {
	q := NewQuestion("q1", SessionTypeQuiz)
	if err := q.RemoveOption(0); !errors.Is(err, ErrTooFewOptions) {
		t.Fatalf("expected too few options, got %v", err)
	}
	for len(q.Options) < MaxOptions {
		if err := q.AddOption(); err != nil {
			t.Fatalf("add option: %v", err)
		}
	}
	if q.Options[5] != "Option F" {
		t.Fatalf("expected generated label Option F, got %q", q.Options[5])
	}
	if err := q.AddOption(); !errors.Is(err, ErrTooManyOptions) {
		t.Fatalf("expected too many options, got %v", err)
	}
	if err := q.SetCorrect(6); !errors.Is(err, ErrOptionOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		typ     SessionType
		q       Question
		wantErr bool
	}{
		{name: "quiz ok", typ: SessionTypeQuiz, q: Question{Options: []string{"a", "b"}, CorrectAnswerIndex: Index(1)}},
		{name: "quiz missing index", typ: SessionTypeQuiz, q: Question{Options: []string{"a", "b"}}, wantErr: true},
		{name: "quiz index out of range", typ: SessionTypeQuiz, q: Question{Options: []string{"a", "b"}, CorrectAnswerIndex: Index(2)}, wantErr: true},
		{name: "poll absent", typ: SessionTypePoll, q: Question{Options: []string{"a", "b"}}},
		{name: "poll marker", typ: SessionTypePoll, q: Question{Options: []string{"a", "b"}, CorrectAnswerIndex: Index(-1)}},
		{name: "poll out of range", typ: SessionTypePoll, q: Question{Options: []string{"a", "b"}, CorrectAnswerIndex: Index(4)}, wantErr: true},
		{name: "one option", typ: SessionTypePoll, q: Question{Options: []string{"a"}}, wantErr: true},
		{name: "seven options", typ: SessionTypePoll, q: Question{Options: []string{"a", "b", "c", "d", "e", "f", "g"}}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate(tc.typ)
			if tc.wantErr && !errors.Is(err, ErrInvalidQuestion) {
				t.Fatalf("expected invalid question, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewQuestionForPoll(t *testing.T) {
	q := NewQuestion("q1", SessionTypePoll)
	if *q.CorrectAnswerIndex != NoCorrectAnswer {
		t.Fatalf("expected poll question without correct answer, got %d", *q.CorrectAnswerIndex)
	}
	if err := q.Validate(SessionTypePoll); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
