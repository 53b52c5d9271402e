package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"genquiz-service/internal/domain"
)

// Role decides which play controls are available.
type Role int

const (
	RoleParticipant Role = iota
	RoleHost
	RolePreview
)

// FeedbackTicks is how many ticks correct/incorrect feedback stays up before auto-advancing.
const FeedbackTicks = 2

// PlayState is a point-in-time view of an engine.
type PlayState struct {
	Index         int                `json:"index"`
	Total         int                `json:"total"`
	Question      *domain.Question   `json:"question,omitempty"`
	Type          domain.SessionType `json:"type"`
	TimerMode     domain.TimerMode   `json:"timerMode"`
	TimeLeft      int                `json:"timeLeft"`
	TotalTime     int                `json:"totalTime"`
	Paused        bool               `json:"paused"`
	Editing       bool               `json:"editing"`
	ShowFeedback  bool               `json:"showFeedback"`
	Transitioning bool               `json:"transitioning"`
	Selected      *int               `json:"selected,omitempty"`
	CorrectIndex  *int               `json:"correctIndex,omitempty"`
	Empty         bool               `json:"empty"`
	Finished      bool               `json:"finished"`
}

// EngineCallbacks are invoked outside the engine lock.
type EngineCallbacks struct {
	// OnSubmit receives the answers once the run ends. Not called in preview.
	OnSubmit func(answers map[string]int)
	// OnExit is called instead of OnSubmit when a preview ends.
	OnExit func()
	// OnEdit receives a question the host edited mid-play.
	OnEdit func(q domain.Question)
}

// errNoChange lets a command skip the broadcast.
var errNoChange = errors.New("no change")

// Engine drives one session question by question. Tick is one second of play.
type Engine struct {
	role Role
	cb   EngineCallbacks

	mu            sync.Mutex
	session       domain.Session
	index         int
	answers       map[string]int
	timeLeft      int
	totalTime     int
	paused        bool
	editing       bool
	feedback      bool
	transitioning bool
	revealLeft    int
	expired       bool
	finished      bool
	subscribers   map[chan PlayState]struct{}
}

func NewEngine(session domain.Session, role Role, cb EngineCallbacks) *Engine {
	e := &Engine{
		role:        role,
		cb:          cb,
		session:     session.Clone(),
		answers:     make(map[string]int),
		subscribers: make(map[chan PlayState]struct{}),
	}
	if session.Config.TimerMode != domain.TimerNone {
		e.timeLeft = session.Config.TimeValue
		e.totalTime = session.Config.TimeValue
	}
	return e
}

// Run ticks once per second until ctx is done or the run is submitted.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
			if e.Finished() {
				return
			}
		}
	}
}

// Tick advances countdowns and the feedback reveal by one second.
func (e *Engine) Tick() {
	_ = e.do(func() (func(), error) {
		if e.finished || len(e.session.Questions) == 0 {
			return nil, errNoChange
		}
		if e.transitioning {
			e.revealLeft--
			if e.revealLeft <= 0 {
				return e.proceedLocked(), nil
			}
			return nil, nil
		}

		mode := e.session.Config.TimerMode
		if mode == domain.TimerNone || e.paused || e.editing || e.expired {
			return nil, errNoChange
		}
		if e.timeLeft > 0 {
			e.timeLeft--
		}
		if e.timeLeft > 0 {
			return nil, nil
		}
		e.expired = true
		if mode == domain.TimerWholeQuiz {
			return e.submitLocked(), nil
		}
		return e.nextLocked(), nil
	})
}

// Select records an answer for the current question; re-selecting overwrites.
func (e *Engine) Select(option int) error {
	return e.do(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		if e.feedback && e.role == RoleParticipant {
			return nil, domain.ErrSelectionLocked
		}
		q := e.session.Questions[e.index]
		if option < 0 || option >= len(q.Options) {
			return nil, domain.ErrOptionOutOfRange
		}
		e.answers[q.ID] = option
		return nil, nil
	})
}

// Next reveals feedback where it applies, otherwise moves on.
func (e *Engine) Next() error {
	return e.do(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		return e.nextLocked(), nil
	})
}

// Skip moves to the next question without feedback.
func (e *Engine) Skip() error {
	return e.hostDo(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		if e.editing {
			e.editing = false
			if e.session.Config.TimerMode != domain.TimerPerQuestion {
				e.paused = false
			}
		}
		return e.proceedLocked(), nil
	})
}

// Pause stops the countdown.
func (e *Engine) Pause() error {
	return e.hostDo(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		e.paused = true
		return nil, nil
	})
}

// Resume restarts the countdown.
func (e *Engine) Resume() error {
	return e.hostDo(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		e.paused = false
		return nil, nil
	})
}

// BeginEdit pauses the timer and returns the current question for editing.
func (e *Engine) BeginEdit() (domain.Question, error) {
	var current domain.Question
	err := e.hostDo(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		e.editing = true
		e.paused = true
		current = e.session.Questions[e.index].Clone()
		return nil, nil
	})
	return current, err
}

// SaveEdit replaces the current question with q.
func (e *Engine) SaveEdit(q domain.Question) error {
	return e.hostDo(func() (func(), error) {
		if err := e.playableLocked(); err != nil {
			return nil, err
		}
		if !e.editing {
			return nil, domain.ErrInvalidTransition
		}
		q = q.Clone()
		q.ID = e.session.Questions[e.index].ID
		if err := q.Validate(e.session.Type); err != nil {
			return nil, err
		}
		e.session.Questions[e.index] = q
		e.editing = false
		if e.session.Config.TimerMode != domain.TimerPerQuestion {
			e.paused = false
		}
		edited := q.Clone()
		return func() {
			if e.cb.OnEdit != nil {
				e.cb.OnEdit(edited)
			}
		}, nil
	})
}

// CancelEdit leaves edit mode without changes. The timer stays paused.
func (e *Engine) CancelEdit() error {
	return e.hostDo(func() (func(), error) {
		if !e.editing {
			return nil, errNoChange
		}
		e.editing = false
		return nil, nil
	})
}

// End submits immediately. Participants may only end a session without questions.
func (e *Engine) End() error {
	return e.do(func() (func(), error) {
		if e.finished {
			return nil, domain.ErrPlayFinished
		}
		if e.role == RoleParticipant && len(e.session.Questions) > 0 {
			return nil, domain.ErrNotHost
		}
		return e.submitLocked(), nil
	})
}

// Stop ends the run without submitting. Subscribers get the final state and
// their channels are closed. A run that already finished is left alone.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished {
		return
	}
	e.finished = true
	e.editing = false
	e.feedback = false
	e.transitioning = false
	e.broadcastLocked()
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
}

// Finished reports whether the run was submitted or exited.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

// Answers returns a copy of the answers captured so far.
func (e *Engine) Answers() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyAnswers(e.answers)
}

// Snapshot returns the current play state.
func (e *Engine) Snapshot() PlayState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe returns a channel of play states starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (e *Engine) Subscribe() (<-chan PlayState, func()) {
	ch := make(chan PlayState, 8)

	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	ch <- e.snapshotLocked()
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

// do runs fn under the lock, then its followup, then broadcasts, so subscribers
// seeing a finished state can rely on the callbacks having run.
func (e *Engine) do(fn func() (func(), error)) error {
	e.mu.Lock()
	followup, err := fn()
	e.mu.Unlock()

	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	if followup != nil {
		followup()
	}
	e.mu.Lock()
	e.broadcastLocked()
	e.mu.Unlock()
	return nil
}

func (e *Engine) hostDo(fn func() (func(), error)) error {
	if e.role != RoleHost {
		return domain.ErrNotHost
	}
	return e.do(fn)
}

func (e *Engine) playableLocked() error {
	if e.finished {
		return domain.ErrPlayFinished
	}
	if len(e.session.Questions) == 0 {
		return domain.ErrNoQuestions
	}
	return nil
}

func (e *Engine) nextLocked() func() {
	if e.transitioning || e.editing {
		return nil
	}
	if e.feedback {
		return e.proceedLocked()
	}
	mode := e.session.Config.TimerMode
	if e.session.Type == domain.SessionTypeQuiz {
		if e.role == RoleHost {
			e.feedback = true
			return nil
		}
		// a running whole-quiz clock leaves no room for a reveal pause
		if mode != domain.TimerWholeQuiz {
			e.feedback = true
			e.transitioning = true
			e.revealLeft = FeedbackTicks
			if mode == domain.TimerPerQuestion {
				e.paused = true
			}
			return nil
		}
	}
	return e.proceedLocked()
}

func (e *Engine) proceedLocked() func() {
	e.feedback = false
	e.transitioning = false
	if e.session.Config.TimerMode == domain.TimerPerQuestion {
		e.paused = false
	}
	if e.index < len(e.session.Questions)-1 {
		e.index++
		e.resetQuestionLocked()
		return nil
	}
	return e.submitLocked()
}

func (e *Engine) resetQuestionLocked() {
	if e.session.Config.TimerMode != domain.TimerPerQuestion {
		return
	}
	e.timeLeft = e.session.Config.TimeValue
	e.totalTime = e.session.Config.TimeValue
	e.paused = false
	e.feedback = false
	e.transitioning = false
	e.editing = false
	e.expired = false
}

func (e *Engine) submitLocked() func() {
	e.finished = true
	answers := copyAnswers(e.answers)
	if e.role == RolePreview {
		return func() {
			if e.cb.OnExit != nil {
				e.cb.OnExit()
			}
		}
	}
	return func() {
		if e.cb.OnSubmit != nil {
			e.cb.OnSubmit(answers)
		}
	}
}

func (e *Engine) snapshotLocked() PlayState {
	state := PlayState{
		Index:         e.index,
		Total:         len(e.session.Questions),
		Type:          e.session.Type,
		TimerMode:     e.session.Config.TimerMode,
		TimeLeft:      e.timeLeft,
		TotalTime:     e.totalTime,
		Paused:        e.paused,
		Editing:       e.editing,
		ShowFeedback:  e.feedback,
		Transitioning: e.transitioning,
		Empty:         len(e.session.Questions) == 0,
		Finished:      e.finished,
	}
	if state.Empty {
		return state
	}
	q := e.session.Questions[e.index].Clone()
	if selected, ok := e.answers[q.ID]; ok {
		state.Selected = domain.Index(selected)
	}
	if correct, ok := q.Correct(); ok && e.session.Type == domain.SessionTypeQuiz && (e.feedback || e.role != RoleParticipant) {
		state.CorrectIndex = domain.Index(correct)
	}
	if e.role == RoleParticipant {
		q.CorrectAnswerIndex = nil
	}
	state.Question = &q
	return state
}

func (e *Engine) broadcastLocked() {
	state := e.snapshotLocked()
	for ch := range e.subscribers {
		select {
		case ch <- state:
		default:
			// drop the oldest update so a slow reader never blocks play
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func copyAnswers(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
