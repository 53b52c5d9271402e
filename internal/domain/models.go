package domain

import "time"

// SessionType distinguishes graded quizzes from opinion polls.
type SessionType string

const (
	SessionTypeQuiz SessionType = "QUIZ"
	SessionTypePoll SessionType = "POLL"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	return t == SessionTypeQuiz || t == SessionTypePoll
}

// Difficulty is only meaningful for quizzes.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyHard     Difficulty = "Hard"
	DifficultyVeryHard Difficulty = "Very Hard"
)

// TimerMode governs whether and how a countdown applies during play.
type TimerMode string

const (
	TimerPerQuestion TimerMode = "PER_QUESTION"
	TimerWholeQuiz   TimerMode = "WHOLE_QUIZ"
	TimerNone        TimerMode = "NONE"
)

func (m TimerMode) Valid() bool {
	return m == TimerPerQuestion || m == TimerWholeQuiz || m == TimerNone
}

// SessionStatus tracks where a session is in its hosting lifecycle.
type SessionStatus string

const (
	StatusDraft     SessionStatus = "DRAFT"
	StatusActive    SessionStatus = "ACTIVE"
	StatusScheduled SessionStatus = "SCHEDULED"
	StatusEnded     SessionStatus = "ENDED"
)

// Question is one prompt with 2 to 6 answer options.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex,omitempty"` // nil or -1 for polls
	ImageURL           string   `json:"imageUrl,omitempty"`           // data URL
	UsageCount         int      `json:"usageCount,omitempty"`
}

// SessionConfig holds generation and timing parameters.
// TimeValue is seconds per question for TimerPerQuestion and total seconds for TimerWholeQuiz.
type SessionConfig struct {
	Topic              string     `json:"topic"`
	QuestionCount      int        `json:"questionCount"`
	Difficulty         Difficulty `json:"difficulty,omitempty"`
	TimerMode          TimerMode  `json:"timerMode"`
	TimeValue          int        `json:"timeValue"`
	ScheduledStartTime *time.Time `json:"scheduledStartTime,omitempty"`
	ScheduledEndTime   *time.Time `json:"scheduledEndTime,omitempty"`
}

// ParticipantResponse is one respondent's submission.
type ParticipantResponse struct {
	ParticipantName string         `json:"participantName"`
	Answers         map[string]int `json:"answers"` // questionID -> selected option index
	Score           int            `json:"score"`
	SubmittedAt     time.Time      `json:"submittedAt"`
}

// Session is one hosted quiz or poll. It owns its questions and responses.
type Session struct {
	ID         string                `json:"id"`
	HostID     string                `json:"hostId"`
	JoinCode   string                `json:"joinCode"`
	Title      string                `json:"title"`
	Type       SessionType           `json:"type"`
	Status     SessionStatus         `json:"status"`
	HasStarted bool                  `json:"hasStarted,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	Config     SessionConfig         `json:"config"`
	Questions  []Question            `json:"questions"`
	Responses  []ParticipantResponse `json:"responses"`
}
