package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"genquiz-service/internal/app"
	"genquiz-service/internal/domain"
	"genquiz-service/internal/export"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the host workspace as JSON endpoints.
type Handler struct {
	ws        *app.Workspace
	publicURL string
	now       func() time.Time
}

func NewHandler(ws *app.Workspace, publicURL string) *Handler {
	return &Handler{ws: ws, publicURL: publicURL, now: time.Now}
}

type sourceFileRequest struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"` // base64 in JSON
}

type generateRequest struct {
	Topic      string             `json:"topic"`
	Count      int                `json:"count"`
	Type       domain.SessionType `json:"type"`
	Difficulty domain.Difficulty  `json:"difficulty"`
	Text       string             `json:"text"`
	File       *sourceFileRequest `json:"file"`
	TimerMode  domain.TimerMode   `json:"timerMode"`
	TimeValue  int                `json:"timeValue"`
}

type sessionPatch struct {
	Title            *string           `json:"title"`
	TimerMode        *domain.TimerMode `json:"timerMode"`
	TimeValue        *int              `json:"timeValue"`
	WholeQuizMinutes *int              `json:"wholeQuizMinutes"`
}

type questionRequest struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex"`
	ImageURL           string   `json:"imageUrl"`
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type scheduleRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type linkResponse struct {
	JoinCode string `json:"joinCode"`
	Link     string `json:"link"`
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.State())
}

func (h *Handler) OpenWizard(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, h.ws.OpenWizard)
}

// Generate handles POST /api/generate. The call blocks for the model round trip.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	in := app.WizardInput{
		GenerateRequest: app.GenerateRequest{
			Topic:      req.Topic,
			Count:      req.Count,
			Type:       req.Type,
			Difficulty: req.Difficulty,
			Text:       req.Text,
		},
		TimerMode: req.TimerMode,
		TimeValue: req.TimeValue,
	}
	if req.File != nil {
		in.File = &app.SourceFile{Name: req.File.Name, MIMEType: req.File.MIMEType, Data: req.File.Data}
	}
	if in.Type != "" && !in.Type.Valid() {
		writeMessage(w, http.StatusBadRequest, "type must be QUIZ or POLL")
		return
	}
	if in.TimerMode != "" && !in.TimerMode.Valid() {
		writeMessage(w, http.StatusBadRequest, "timerMode must be PER_QUESTION, WHOLE_QUIZ or NONE")
		return
	}
	if in.TimeValue < 0 {
		writeMessage(w, http.StatusBadRequest, "timeValue must not be negative")
		return
	}
	if in.Count <= 0 {
		writeMessage(w, http.StatusBadRequest, "count must be positive")
		return
	}

	state, err := h.ws.Generate(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch sessionPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if patch.TimerMode != nil && !patch.TimerMode.Valid() {
		writeMessage(w, http.StatusBadRequest, "timerMode must be PER_QUESTION, WHOLE_QUIZ or NONE")
		return
	}
	if patch.TimeValue != nil && *patch.TimeValue <= 0 {
		writeMessage(w, http.StatusBadRequest, "timeValue must be positive")
		return
	}
	if patch.WholeQuizMinutes != nil && *patch.WholeQuizMinutes <= 0 {
		writeMessage(w, http.StatusBadRequest, "wholeQuizMinutes must be positive")
		return
	}
	h.edit(w, func(s *domain.Session) error {
		if patch.Title != nil {
			s.Title = *patch.Title
		}
		if patch.TimerMode != nil {
			s.Config.SetTimerMode(*patch.TimerMode)
		}
		if patch.TimeValue != nil {
			s.Config.TimeValue = *patch.TimeValue
		}
		if patch.WholeQuizMinutes != nil {
			s.Config.SetWholeQuizMinutes(*patch.WholeQuizMinutes)
		}
		return nil
	})
}

func (h *Handler) MoveQuestion(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	h.edit(w, func(s *domain.Session) error {
		return s.MoveQuestion(req.From, req.To)
	})
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.ws.AddQuestion()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	id := chi.URLParam(r, "qid")
	h.edit(w, func(s *domain.Session) error {
		i := s.QuestionIndex(id)
		if i < 0 {
			return domain.ErrQuestionNotFound
		}
		q := domain.Question{
			ID:                 id,
			Text:               req.Text,
			Options:            req.Options,
			CorrectAnswerIndex: req.CorrectAnswerIndex,
			ImageURL:           req.ImageURL,
			UsageCount:         s.Questions[i].UsageCount,
		}
		if s.Type == domain.SessionTypePoll {
			q.CorrectAnswerIndex = domain.Index(domain.NoCorrectAnswer)
		}
		if err := q.Validate(s.Type); err != nil {
			return err
		}
		return s.UpdateQuestion(q)
	})
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "qid")
	h.edit(w, func(s *domain.Session) error {
		return s.DeleteQuestion(id)
	})
}

func (h *Handler) AddOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "qid")
	h.editQuestion(w, id, func(q *domain.Question) error {
		return q.AddOption()
	})
}

func (h *Handler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "qid")
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "option index must be a number")
		return
	}
	h.editQuestion(w, id, func(q *domain.Question) error {
		return q.RemoveOption(idx)
	})
}

func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	q, err := h.ws.GenerateImage(r.Context(), chi.URLParam(r, "qid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	state, err := h.ws.SaveDraft(r.Context())
	h.writeState(w, state, err)
}

func (h *Handler) Launch(w http.ResponseWriter, r *http.Request) {
	state, err := h.ws.Launch(r.Context())
	h.writeState(w, state, err)
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	state, err := h.ws.Schedule(r.Context(), req.Start, req.End)
	h.writeState(w, state, err)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, h.ws.Preview)
}

func (h *Handler) ExitPreview(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, h.ws.ExitPreview)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := h.ws.Start(r.Context())
	h.writeState(w, state, err)
}

// Finish submits whatever the running engine has captured.
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	var answers map[string]int
	if engine, err := h.ws.Engine(); err == nil {
		answers = engine.Answers()
	}
	state, err := h.ws.Finish(r.Context(), answers)
	h.writeState(w, state, err)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, h.ws.Back)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Sessions())
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.ws.Open(chi.URLParam(r, "id"))
	h.writeState(w, state, err)
}

func (h *Handler) RenameSession(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.ws.Rename(r.Context(), id, req.Title); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.ws.Lookup(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) JoinLink(w http.ResponseWriter, r *http.Request) {
	s, err := h.ws.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{JoinCode: s.JoinCode, Link: domain.JoinLink(h.publicURL, s.JoinCode)})
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	s, err := h.ws.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteResultsPDF(&buf, s, h.now()); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(s.Title)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) edit(w http.ResponseWriter, fn func(s *domain.Session) error) {
	state, err := h.ws.Edit(fn)
	h.writeState(w, state, err)
}

func (h *Handler) editQuestion(w http.ResponseWriter, id string, fn func(q *domain.Question) error) {
	h.edit(w, func(s *domain.Session) error {
		i := s.QuestionIndex(id)
		if i < 0 {
			return domain.ErrQuestionNotFound
		}
		return fn(&s.Questions[i])
	})
}

func (h *Handler) respondState(w http.ResponseWriter, fn func() (app.State, error)) {
	state, err := fn()
	h.writeState(w, state, err)
}

func (h *Handler) writeState(w http.ResponseWriter, state app.State, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
