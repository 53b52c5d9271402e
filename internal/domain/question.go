package domain

import "fmt"

const (
	MinOptions = 2
	MaxOptions = 6
	// NoCorrectAnswer marks poll questions.
	NoCorrectAnswer = -1
)

// Index returns a pointer to i, for CorrectAnswerIndex literals.
func Index(i int) *int {
	return &i
}

// NewQuestion returns the blank question the editor adds.
func NewQuestion(id string, sessionType SessionType) Question {
	correct := 0
	if sessionType == SessionTypePoll {
		correct = NoCorrectAnswer
	}
	return Question{
		ID:                 id,
		Options:            []string{"Option A", "Option B"},
		CorrectAnswerIndex: Index(correct),
	}
}

// Correct reports the correct option index, if the question has one.
func (q Question) Correct() (int, bool) {
	if q.CorrectAnswerIndex == nil || *q.CorrectAnswerIndex < 0 || *q.CorrectAnswerIndex >= len(q.Options) {
		return 0, false
	}
	return *q.CorrectAnswerIndex, true
}

// Validate checks option bounds and the correct index for the session type.
func (q Question) Validate(sessionType SessionType) error {
	if n := len(q.Options); n < MinOptions || n > MaxOptions {
		return fmt.Errorf("%w: %d options", ErrInvalidQuestion, n)
	}
	if sessionType == SessionTypeQuiz {
		if _, ok := q.Correct(); !ok {
			return fmt.Errorf("%w: quiz question needs a correct option", ErrInvalidQuestion)
		}
		return nil
	}
	if q.CorrectAnswerIndex != nil && *q.CorrectAnswerIndex != NoCorrectAnswer {
		if _, ok := q.Correct(); !ok {
			return fmt.Errorf("%w: correct option %d out of range", ErrInvalidQuestion, *q.CorrectAnswerIndex)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	if q.CorrectAnswerIndex != nil {
		out.CorrectAnswerIndex = Index(*q.CorrectAnswerIndex)
	}
	return out
}

// AddOption appends "Option <letter>".
func (q *Question) AddOption() error {
	if len(q.Options) >= MaxOptions {
		return ErrTooManyOptions
	}
	q.Options = append(q.Options, fmt.Sprintf("Option %c", 'A'+len(q.Options)))
	return nil
}

// RemoveOption drops option i and keeps the correct index pointing at the same option.
// Removing the correct option resets it to the first one.
func (q *Question) RemoveOption(i int) error {
	if len(q.Options) <= MinOptions {
		return ErrTooFewOptions
	}
	if i < 0 || i >= len(q.Options) {
		return ErrOptionOutOfRange
	}
	options := make([]string, 0, len(q.Options)-1)
	options = append(options, q.Options[:i]...)
	q.Options = append(options, q.Options[i+1:]...)

	if q.CorrectAnswerIndex != nil {
		switch c := *q.CorrectAnswerIndex; {
		case c == i:
			q.CorrectAnswerIndex = Index(0)
		case c > i:
			q.CorrectAnswerIndex = Index(c - 1)
		}
	}
	return nil
}

// SetOption replaces the text of option i.
func (q *Question) SetOption(i int, text string) error {
	if i < 0 || i >= len(q.Options) {
		return ErrOptionOutOfRange
	}
	q.Options[i] = text
	return nil
}

// SetCorrect marks option i as the correct answer.
func (q *Question) SetCorrect(i int) error {
	if i < 0 || i >= len(q.Options) {
		return ErrOptionOutOfRange
	}
	q.CorrectAnswerIndex = Index(i)
	return nil
}
