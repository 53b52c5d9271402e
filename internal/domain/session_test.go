package domain

import (
	"regexp"
	"testing"
	"time"
)

func TestNewJoinCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 50; i++ {
		if code := NewJoinCode(); !pattern.MatchString(code) {
			t.Fatalf("unexpected join code %q", code)
		}
	}
}

func TestJoinLink(t *testing.T) {
	if got := JoinLink("https://quiz.example.com", "AB12CD"); got != "https://quiz.example.com?join=AB12CD" {
		t.Fatalf("unexpected link %q", got)
	}
	if got := JoinLink("", "AB12CD"); got != "?join=AB12CD" {
		t.Fatalf("unexpected relative link %q", got)
	}
}

func TestMoveQuestion(t *testing.T) {
	s := Session{Questions: []Question{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}
	if err := s.MoveQuestion(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertOrder(t, s, "b", "c", "a", "d")

	if err := s.MoveQuestion(3, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertOrder(t, s, "d", "b", "c", "a")

	if err := s.MoveQuestion(0, 4); err == nil {
		t.Fatalf("expected out of range move to fail")
	}
}

func TestDeleteQuestionDoesNotAliasClone(t *testing.T) {
	s := Session{Questions: []Question{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	clone := s.Clone()
	if err := clone.DeleteQuestion("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertOrder(t, s, "a", "b", "c")
	assertOrder(t, clone, "b", "c")
}

func TestSetTimerMode(t *testing.T) {
	c := SessionConfig{TimerMode: TimerPerQuestion, TimeValue: 30}
	c.SetTimerMode(TimerWholeQuiz)
	if c.TimeValue != 300 {
		t.Fatalf("expected 300s whole quiz limit, got %d", c.TimeValue)
	}
	c.SetWholeQuizMinutes(10)
	if c.TimeValue != 600 {
		t.Fatalf("expected 600s, got %d", c.TimeValue)
	}
	c.SetTimerMode(TimerPerQuestion)
	if c.TimeValue != 30 {
		t.Fatalf("expected 30s per question, got %d", c.TimeValue)
	}
}

func TestCloneCopiesSchedule(t *testing.T) {
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	s := Session{Config: SessionConfig{}}
	s.Config.Schedule(&start, nil)
	clone := s.Clone()
	*clone.Config.ScheduledStartTime = start.Add(time.Hour)
	if !s.Config.ScheduledStartTime.Equal(start) {
		t.Fatalf("clone aliased the schedule")
	}
}

func assertOrder(t *testing.T, s Session, ids ...string) {
	t.Helper()
	if len(s.Questions) != len(ids) {
		t.Fatalf("expected %d questions, got %d", len(ids), len(s.Questions))
	}
	for i, id := range ids {
		if s.Questions[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, s.Questions[i].ID)
		}
	}
}
