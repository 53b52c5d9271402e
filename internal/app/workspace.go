package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"genquiz-service/internal/domain"
	"github.com/google/uuid"
)

// View is the screen the host is on. Views are mutually exclusive.
type View string

const (
	ViewLanding      View = "LANDING"
	ViewCreateWizard View = "CREATE_WIZARD"
	ViewEditor       View = "EDITOR"
	ViewPreview      View = "PREVIEW"
	ViewLobby        View = "SESSION_LOBBY"
	ViewPlay         View = "SESSION_PLAY"
	ViewResults      View = "RESULTS"
)

// State is the current view together with the working-copy session it shows.
type State struct {
	View    View            `json:"view"`
	Session *domain.Session `json:"session,omitempty"`
}

// WizardInput is everything the create wizard collects.
type WizardInput struct {
	GenerateRequest
	TimerMode domain.TimerMode
	TimeValue int
}

// WorkspaceOption customises a Workspace.
type WorkspaceOption func(*Workspace)

// WithImages enables image generation for questions.
func WithImages(images *ImageGenerator) WorkspaceOption {
	return func(w *Workspace) { w.images = images }
}

// WithScorer sets the collaborator that scores submitted answers.
func WithScorer(scorer Scorer) WorkspaceOption {
	return func(w *Workspace) { w.scorer = scorer }
}

// WithHost sets the host identity stamped on new sessions and responses.
func WithHost(id, name string) WorkspaceOption {
	return func(w *Workspace) {
		w.hostID = id
		w.hostName = name
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) WorkspaceOption {
	return func(w *Workspace) { w.now = now }
}

// WithManualTicks leaves ticking engines to the caller instead of a one-second ticker.
func WithManualTicks() WorkspaceOption {
	return func(w *Workspace) { w.manualTicks = true }
}

// Workspace is the host's view state machine. It owns the current view, the
// working-copy session and, during play or preview, the play engine.
// The working copy only reaches the library on save, launch, schedule, start and finish.
type Workspace struct {
	library     *Library
	questions   *QuestionGenerator
	images      *ImageGenerator
	scorer      Scorer
	hostID      string
	hostName    string
	now         func() time.Time
	newID       func() string
	manualTicks bool
	baseCtx     context.Context

	mu         sync.Mutex
	view       View
	session    *domain.Session
	engine     *Engine
	stopEngine context.CancelFunc
	// participant engines joined to the current live run
	participants map[*Engine]struct{}
}

// NewWorkspace starts on the landing view. ctx bounds engine tickers and callbacks.
func NewWorkspace(ctx context.Context, library *Library, questions *QuestionGenerator, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{
		library:   library,
		questions: questions,
		hostID:    "host-1",
		hostName:  "Host",
		now:       time.Now,
		newID:     uuid.NewString,
		baseCtx:   ctx,
		view:      ViewLanding,

		participants: make(map[*Engine]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns a copy of the current view and session.
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// Sessions lists stored sessions, most recently touched first.
func (w *Workspace) Sessions() []domain.Session {
	return w.library.List()
}

// Lookup returns a stored session without changing the view.
func (w *Workspace) Lookup(id string) (domain.Session, error) {
	s, ok := w.library.Get(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s, nil
}

// OpenWizard starts a new session from the landing or results view.
func (w *Workspace) OpenWizard() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewLanding && w.view != ViewResults {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	w.session = nil
	w.view = ViewCreateWizard
	return w.stateLocked(), nil
}

// Generate asks the model for questions and opens the resulting draft in the editor.
// The lock is released during the model call; a result arriving after the host
// left the wizard is discarded.
func (w *Workspace) Generate(ctx context.Context, in WizardInput) (State, error) {
	w.mu.Lock()
	if w.view != ViewCreateWizard {
		defer w.mu.Unlock()
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	w.mu.Unlock()

	if in.Type == "" {
		in.Type = domain.SessionTypeQuiz
	}
	if in.Type != domain.SessionTypeQuiz {
		in.Difficulty = ""
	}
	questions, err := w.questions.Generate(ctx, in.GenerateRequest)
	if err != nil {
		return w.State(), err
	}
	session := w.newSession(in, questions)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewCreateWizard {
		slog.Warn("discarding generated questions", "reason", "view changed", "view", w.view)
		return w.stateLocked(), domain.ErrViewChanged
	}
	w.session = &session
	w.view = ViewEditor
	return w.stateLocked(), nil
}

func (w *Workspace) newSession(in WizardInput, questions []domain.Question) domain.Session {
	title := strings.TrimSpace(in.Topic)
	if title == "" {
		if in.HasSource() && strings.TrimSpace(in.Text) == "" && in.File != nil {
			title = "Analysis of " + in.File.Name
		} else {
			title = "Context Analysis Session"
		}
	}

	timerMode := in.TimerMode
	if timerMode == "" {
		timerMode = domain.TimerPerQuestion
	}
	timeValue := in.TimeValue
	if timeValue <= 0 && timerMode != domain.TimerNone {
		timeValue = 30
		if timerMode == domain.TimerWholeQuiz {
			timeValue = 300
		}
	}

	return domain.Session{
		ID:        w.newID(),
		HostID:    w.hostID,
		JoinCode:  domain.NewJoinCode(),
		Title:     title,
		Type:      in.Type,
		Status:    domain.StatusDraft,
		CreatedAt: w.now(),
		Config: domain.SessionConfig{
			Topic:         in.ResolvedTopic(),
			QuestionCount: in.Count,
			Difficulty:    in.Difficulty,
			TimerMode:     timerMode,
			TimeValue:     timeValue,
		},
		Questions: questions,
		Responses: []domain.ParticipantResponse{},
	}
}

// Edit applies fn to the working copy in the editor. A failing fn leaves the session untouched.
func (w *Workspace) Edit(fn func(s *domain.Session) error) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewEditor || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	draft := w.session.Clone()
	if err := fn(&draft); err != nil {
		return w.stateLocked(), err
	}
	w.session = &draft
	return w.stateLocked(), nil
}

// AddQuestion appends a blank question to the working copy.
func (w *Workspace) AddQuestion() (domain.Question, error) {
	var added domain.Question
	_, err := w.Edit(func(s *domain.Session) error {
		added = domain.NewQuestion(w.newID(), s.Type)
		s.AddQuestion(added)
		return nil
	})
	return added, err
}

// GenerateImage illustrates a question, falling back to the session title for blank questions.
// Regenerating replaces the previous image.
func (w *Workspace) GenerateImage(ctx context.Context, questionID string) (domain.Question, error) {
	w.mu.Lock()
	if w.view != ViewEditor || w.session == nil {
		defer w.mu.Unlock()
		return domain.Question{}, domain.ErrInvalidTransition
	}
	i := w.session.QuestionIndex(questionID)
	if i < 0 {
		w.mu.Unlock()
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	subject := strings.TrimSpace(w.session.Questions[i].Text)
	if subject == "" {
		subject = w.session.Title
	}
	sessionID := w.session.ID
	w.mu.Unlock()

	if w.images == nil {
		return domain.Question{}, domain.ErrImageGenerationFailed
	}
	imageURL, err := w.images.Generate(ctx, subject)
	if err != nil {
		return domain.Question{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewEditor || w.session == nil || w.session.ID != sessionID {
		return domain.Question{}, domain.ErrViewChanged
	}
	i = w.session.QuestionIndex(questionID)
	if i < 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	draft := w.session.Clone()
	draft.Questions[i].ImageURL = imageURL
	w.session = &draft
	return draft.Questions[i].Clone(), nil
}

// SaveDraft persists the working copy and returns to the landing view.
func (w *Workspace) SaveDraft(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewEditor || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	if err := w.library.Upsert(ctx, *w.session); err != nil {
		return w.stateLocked(), err
	}
	slog.Info("draft saved", "session", w.session.ID)
	w.session = nil
	w.view = ViewLanding
	return w.stateLocked(), nil
}

// Launch activates the session and opens the lobby.
func (w *Workspace) Launch(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewEditor || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	active := w.session.Clone()
	active.Status = domain.StatusActive
	if err := w.library.Upsert(ctx, active); err != nil {
		return w.stateLocked(), err
	}
	slog.Info("session launched", "session", active.ID, "joinCode", active.JoinCode)
	w.session = &active
	w.view = ViewLobby
	return w.stateLocked(), nil
}

// Schedule marks the session scheduled and returns to the landing view.
func (w *Workspace) Schedule(ctx context.Context, start, end *time.Time) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewEditor || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	scheduled := w.session.Clone()
	scheduled.Status = domain.StatusScheduled
	scheduled.Config.Schedule(start, end)
	if err := w.library.Upsert(ctx, scheduled); err != nil {
		return w.stateLocked(), err
	}
	slog.Info("session scheduled", "session", scheduled.ID)
	w.session = nil
	w.view = ViewLanding
	return w.stateLocked(), nil
}

// Preview plays the working copy without recording anything.
func (w *Workspace) Preview() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewEditor || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	w.view = ViewPreview
	w.startEngineLocked(RolePreview)
	return w.stateLocked(), nil
}

// ExitPreview returns to the editor.
func (w *Workspace) ExitPreview() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewPreview {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	w.stopEngineLocked()
	w.view = ViewEditor
	return w.stateLocked(), nil
}

// Start leaves the lobby and begins play.
func (w *Workspace) Start(ctx context.Context) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewLobby || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	started := w.session.Clone()
	started.HasStarted = true
	if err := w.library.Upsert(ctx, started); err != nil {
		return w.stateLocked(), err
	}
	slog.Info("session started", "session", started.ID)
	w.session = &started
	w.view = ViewPlay
	w.startEngineLocked(RoleHost)
	return w.stateLocked(), nil
}

// Finish records the answers, ends the session and shows the results.
func (w *Workspace) Finish(ctx context.Context, answers map[string]int) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishLocked(ctx, answers)
}

func (w *Workspace) finishLocked(ctx context.Context, answers map[string]int) (State, error) {
	if w.view != ViewPlay || w.session == nil {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	ended := w.session.Clone()
	ended.Status = domain.StatusEnded
	if len(answers) > 0 {
		score := 0
		if w.scorer != nil {
			score = w.scorer.Score(ended, answers)
		}
		ended.Responses = append(ended.Responses, domain.ParticipantResponse{
			ParticipantName: w.hostName,
			Answers:         copyAnswers(answers),
			Score:           score,
			SubmittedAt:     w.now(),
		})
	}
	if err := w.library.Upsert(ctx, ended); err != nil {
		return w.stateLocked(), err
	}
	slog.Info("session finished", "session", ended.ID, "responses", len(ended.Responses))
	w.stopEngineLocked()
	w.session = &ended
	w.view = ViewResults
	return w.stateLocked(), nil
}

// Back returns to the landing view from anywhere except live play.
func (w *Workspace) Back() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view == ViewPlay {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	w.stopEngineLocked()
	w.session = nil
	w.view = ViewLanding
	return w.stateLocked(), nil
}

// Open loads a stored session and routes by status: a started active session
// resumes play, an active one opens the lobby, an ended one shows results and
// drafts or scheduled sessions open the editor.
func (w *Workspace) Open(id string) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewLanding {
		return w.stateLocked(), domain.ErrInvalidTransition
	}
	session, ok := w.library.Get(id)
	if !ok {
		return w.stateLocked(), domain.ErrSessionNotFound
	}
	w.session = &session
	switch {
	case session.Status == domain.StatusActive && session.HasStarted:
		w.view = ViewPlay
		w.startEngineLocked(RoleHost)
	case session.Status == domain.StatusActive:
		w.view = ViewLobby
	case session.Status == domain.StatusEnded:
		w.view = ViewResults
	default:
		w.view = ViewEditor
	}
	return w.stateLocked(), nil
}

// Delete removes a stored session immediately. Deleting the open session also
// stops its run and returns to the landing view.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.library.Delete(ctx, id); err != nil {
		return err
	}
	if w.session != nil && w.session.ID == id {
		slog.Info("open session deleted", "session", id, "view", w.view)
		w.stopEngineLocked()
		w.session = nil
		w.view = ViewLanding
	}
	return nil
}

// Rename changes a stored session's title in place.
func (w *Workspace) Rename(ctx context.Context, id, title string) error {
	if err := w.library.Rename(ctx, id, title); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session != nil && w.session.ID == id {
		draft := w.session.Clone()
		draft.Title = title
		w.session = &draft
	}
	return nil
}

// Engine returns the running play or preview engine.
func (w *Workspace) Engine() (*Engine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine == nil || (w.view != ViewPlay && w.view != ViewPreview) {
		return nil, domain.ErrInvalidTransition
	}
	return w.engine, nil
}

// Join starts a participant run over the live session. Its submission is
// recorded as a response under name. The run ticks until ctx is done; leave
// stops it early.
func (w *Workspace) Join(ctx context.Context, name string) (*Engine, func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view != ViewPlay || w.session == nil {
		return nil, nil, domain.ErrInvalidTransition
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest"
	}
	sessionID := w.session.ID

	var engine *Engine
	engine = NewEngine(*w.session, RoleParticipant, EngineCallbacks{
		OnSubmit: func(answers map[string]int) { w.participantSubmitted(engine, sessionID, name, answers) },
	})
	w.participants[engine] = struct{}{}
	if !w.manualTicks {
		go engine.Run(ctx)
	}
	slog.Info("participant joined", "session", sessionID, "name", name)

	leave := func() {
		w.mu.Lock()
		delete(w.participants, engine)
		w.mu.Unlock()
		engine.Stop()
	}
	return engine, leave, nil
}

// Close stops any running engine.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopEngineLocked()
}

func (w *Workspace) stateLocked() State {
	state := State{View: w.view}
	if w.session != nil {
		s := w.session.Clone()
		state.Session = &s
	}
	return state
}

// startEngineLocked replaces any running engine so there is never more than one ticker.
func (w *Workspace) startEngineLocked(role Role) {
	w.stopEngineLocked()

	var engine *Engine
	engine = NewEngine(*w.session, role, EngineCallbacks{
		OnSubmit: func(answers map[string]int) { w.engineSubmitted(engine, answers) },
		OnExit:   func() { w.engineExited(engine) },
		OnEdit:   func(q domain.Question) { w.engineEdited(engine, q) },
	})
	w.engine = engine
	if w.manualTicks {
		return
	}
	ctx, cancel := context.WithCancel(w.baseCtx)
	w.stopEngine = cancel
	go engine.Run(ctx)
}

func (w *Workspace) stopEngineLocked() {
	if w.stopEngine != nil {
		w.stopEngine()
		w.stopEngine = nil
	}
	if w.engine != nil {
		w.engine.Stop()
		w.engine = nil
	}
	for p := range w.participants {
		p.Stop()
		delete(w.participants, p)
	}
}

func (w *Workspace) engineSubmitted(engine *Engine, answers map[string]int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine != engine {
		return
	}
	if _, err := w.finishLocked(w.baseCtx, answers); err != nil {
		slog.Error("failed to record submission", "error", err)
	}
}

func (w *Workspace) participantSubmitted(engine *Engine, sessionID, name string, answers map[string]int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.participants, engine)

	var target domain.Session
	if w.session != nil && w.session.ID == sessionID {
		target = w.session.Clone()
	} else {
		stored, ok := w.library.Get(sessionID)
		if !ok {
			slog.Warn("dropping participant response", "session", sessionID, "name", name, "reason", "session deleted")
			return
		}
		target = stored
	}
	score := 0
	if w.scorer != nil {
		score = w.scorer.Score(target, answers)
	}
	target.Responses = append(target.Responses, domain.ParticipantResponse{
		ParticipantName: name,
		Answers:         copyAnswers(answers),
		Score:           score,
		SubmittedAt:     w.now(),
	})
	if err := w.library.Upsert(w.baseCtx, target); err != nil {
		slog.Error("failed to record participant response", "session", sessionID, "error", err)
		return
	}
	if w.session != nil && w.session.ID == sessionID {
		w.session = &target
	}
}

func (w *Workspace) engineExited(engine *Engine) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine != engine || w.view != ViewPreview {
		return
	}
	w.stopEngineLocked()
	w.view = ViewEditor
}

func (w *Workspace) engineEdited(engine *Engine, q domain.Question) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.engine != engine || w.session == nil {
		return
	}
	draft := w.session.Clone()
	if err := draft.UpdateQuestion(q); err != nil {
		slog.Warn("dropping live edit", "question", q.ID, "error", err)
		return
	}
	w.session = &draft
}
