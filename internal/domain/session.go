package domain

import (
	"crypto/rand"
	"math/big"
	"net/url"
	"time"
)

const (
	JoinCodeLength   = 6
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewJoinCode returns a random 6 character upper-case alphanumeric code.
func NewJoinCode() string {
	code := make([]byte, JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// JoinLink embeds the join code in base as the "join" query parameter.
func JoinLink(base, joinCode string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return "?join=" + url.QueryEscape(joinCode)
	}
	q := u.Query()
	q.Set("join", joinCode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Clone returns a deep copy so working copies never alias stored sessions.
func (s Session) Clone() Session {
	out := s
	if s.Config.ScheduledStartTime != nil {
		t := *s.Config.ScheduledStartTime
		out.Config.ScheduledStartTime = &t
	}
	if s.Config.ScheduledEndTime != nil {
		t := *s.Config.ScheduledEndTime
		out.Config.ScheduledEndTime = &t
	}
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	out.Responses = make([]ParticipantResponse, len(s.Responses))
	for i, r := range s.Responses {
		answers := make(map[string]int, len(r.Answers))
		for k, v := range r.Answers {
			answers[k] = v
		}
		r.Answers = answers
		out.Responses[i] = r
	}
	return out
}

// QuestionIndex returns the position of the question with id, or -1.
func (s *Session) QuestionIndex(id string) int {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// AddQuestion appends q.
func (s *Session) AddQuestion(q Question) {
	s.Questions = append(s.Questions, q)
}

// UpdateQuestion replaces the question with the same id.
func (s *Session) UpdateQuestion(q Question) error {
	i := s.QuestionIndex(q.ID)
	if i < 0 {
		return ErrQuestionNotFound
	}
	s.Questions[i] = q
	return nil
}

// DeleteQuestion removes the question with id.
func (s *Session) DeleteQuestion(id string) error {
	i := s.QuestionIndex(id)
	if i < 0 {
		return ErrQuestionNotFound
	}
	s.Questions = append(s.Questions[:i:i], s.Questions[i+1:]...)
	return nil
}

// MoveQuestion removes the question at from and inserts it at to in one update.
func (s *Session) MoveQuestion(from, to int) error {
	n := len(s.Questions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrQuestionNotFound
	}
	if from == to {
		return nil
	}
	moved := s.Questions[from]
	rest := make([]Question, 0, n)
	rest = append(rest, s.Questions[:from]...)
	rest = append(rest, s.Questions[from+1:]...)

	out := make([]Question, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	s.Questions = out
	return nil
}

// SetTimerMode switches the timer mode and nudges the time value into a sensible range:
// a whole-quiz limit under a minute becomes 5 minutes, a per-question limit over
// 5 minutes becomes 30 seconds.
func (c *SessionConfig) SetTimerMode(mode TimerMode) {
	if mode == TimerWholeQuiz && c.TimeValue < 60 {
		c.TimeValue = 300
	}
	if mode == TimerPerQuestion && c.TimeValue > 300 {
		c.TimeValue = 30
	}
	c.TimerMode = mode
}

// SetWholeQuizMinutes stores a whole-quiz limit given in minutes.
func (c *SessionConfig) SetWholeQuizMinutes(minutes int) {
	c.TimeValue = minutes * 60
}

// Schedule records the planned start and end of a session.
func (c *SessionConfig) Schedule(start, end *time.Time) {
	if start != nil {
		t := *start
		c.ScheduledStartTime = &t
	}
	if end != nil {
		t := *end
		c.ScheduledEndTime = &t
	}
}
