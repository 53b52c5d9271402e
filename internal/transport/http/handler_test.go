package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"genquiz-service/internal/app"
	"genquiz-service/internal/domain"
	"google.golang.org/genai"
)

// stubModel answers every request with three quiz questions, or fails with err.
type stubModel struct {
	err error
}

func (m *stubModel) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	const body = `[
		{"text":"Largest planet?","options":["Mars","Jupiter","Venus","Earth"],"correctAnswerIndex":1},
		{"text":"Closest star?","options":["Sun","Sirius","Vega","Rigel"],"correctAnswerIndex":0},
		{"text":"Red planet?","options":["Mars","Jupiter","Venus","Earth"],"correctAnswerIndex":0}
	]`
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{Text: body}}},
	}}}, nil
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T, model app.ContentModel) (*apiClient, *app.Library) {
	ws, library := newTestWorkspace(t, model)
	server := httptest.NewServer(NewRouter(NewHandler(ws, "https://quiz.example.com/"), NewWSHandler(ws)))
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}, library
}

func (c *apiClient) do(method, path string, body any, out any) int {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestAPIEditorFlow(t *testing.T) {
	api, library := newAPI(t, &stubModel{})

	var state app.State
	if code := api.do(http.MethodPost, "/api/wizard", nil, &state); code != http.StatusOK {
		t.Fatalf("open wizard: %d", code)
	}
	code := api.do(http.MethodPost, "/api/generate", map[string]any{
		"topic": "Astronomy", "count": 3, "type": "QUIZ", "difficulty": "Easy", "timerMode": "PER_QUESTION", "timeValue": 20,
	}, &state)
	if code != http.StatusOK || state.View != app.ViewEditor {
		t.Fatalf("generate: %d %s", code, state.View)
	}
	if len(state.Session.Questions) != 3 || state.Session.Config.TimeValue != 20 {
		t.Fatalf("unexpected session %+v", state.Session)
	}
	qid := state.Session.Questions[0].ID

	code = api.do(http.MethodPut, "/api/session/questions/"+qid, map[string]any{
		"text": "Biggest planet?", "options": []string{"Jupiter", "Saturn"}, "correctAnswerIndex": 0,
	}, &state)
	if code != http.StatusOK || state.Session.Questions[0].Text != "Biggest planet?" {
		t.Fatalf("update question: %d", code)
	}

	if code := api.do(http.MethodDelete, "/api/session/questions/"+qid+"/options/1", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("removing below two options must fail, got %d", code)
	}
	if code := api.do(http.MethodPost, "/api/session/questions/"+qid+"/options", nil, &state); code != http.StatusOK {
		t.Fatalf("add option: %d", code)
	}
	if got := state.Session.Questions[0].Options[2]; got != "Option C" {
		t.Fatalf("expected Option C, got %q", got)
	}

	var added domain.Question
	if code := api.do(http.MethodPost, "/api/session/questions", nil, &added); code != http.StatusCreated {
		t.Fatalf("add question: %d", code)
	}
	if code := api.do(http.MethodPost, "/api/session/move", map[string]int{"from": 3, "to": 0}, &state); code != http.StatusOK {
		t.Fatalf("move: %d", code)
	}
	if state.Session.Questions[0].ID != added.ID {
		t.Fatalf("expected added question first")
	}

	code = api.do(http.MethodPatch, "/api/session", map[string]any{"title": "Space night", "timerMode": "WHOLE_QUIZ"}, &state)
	if code != http.StatusOK || state.Session.Title != "Space night" || state.Session.Config.TimeValue != 300 {
		t.Fatalf("patch session: %d %+v", code, state.Session)
	}

	if code := api.do(http.MethodPost, "/api/session/launch", nil, &state); code != http.StatusOK || state.View != app.ViewLobby {
		t.Fatalf("launch: %d %s", code, state.View)
	}
	id := state.Session.ID

	var sessions []domain.Session
	if code := api.do(http.MethodGet, "/api/sessions", nil, &sessions); code != http.StatusOK || len(sessions) != 1 {
		t.Fatalf("list sessions: %d %d", code, len(sessions))
	}

	var link linkResponse
	if code := api.do(http.MethodGet, "/api/sessions/"+id+"/link", nil, &link); code != http.StatusOK {
		t.Fatalf("link: %d", code)
	}
	if link.Link != "https://quiz.example.com/?join="+link.JoinCode {
		t.Fatalf("unexpected join link %q", link.Link)
	}

	var renamed domain.Session
	if code := api.do(http.MethodPatch, "/api/sessions/"+id, map[string]string{"title": "Renamed"}, &renamed); code != http.StatusOK || renamed.Title != "Renamed" {
		t.Fatalf("rename: %d %q", code, renamed.Title)
	}

	if code := api.do(http.MethodPost, "/api/back", nil, &state); code != http.StatusOK || state.View != app.ViewLanding {
		t.Fatalf("back: %d %s", code, state.View)
	}
	if code := api.do(http.MethodDelete, "/api/sessions/"+id, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if len(library.List()) != 0 {
		t.Fatalf("expected empty library")
	}
}

func TestAPIPlayAndFinish(t *testing.T) {
	api, library := newAPI(t, &stubModel{})
	if err := library.Upsert(context.Background(), sampleSession("s1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	var state app.State
	if code := api.do(http.MethodPost, "/api/sessions/s1/open", nil, &state); code != http.StatusOK || state.View != app.ViewLobby {
		t.Fatalf("open: %d %s", code, state.View)
	}
	if code := api.do(http.MethodPost, "/api/session/start", nil, &state); code != http.StatusOK || state.View != app.ViewPlay {
		t.Fatalf("start: %d %s", code, state.View)
	}
	if code := api.do(http.MethodPost, "/api/back", nil, nil); code != http.StatusConflict {
		t.Fatalf("back during play must conflict, got %d", code)
	}
	if code := api.do(http.MethodPost, "/api/session/finish", nil, &state); code != http.StatusOK || state.View != app.ViewResults {
		t.Fatalf("finish: %d %s", code, state.View)
	}
	if state.Session.Status != domain.StatusEnded || len(state.Session.Responses) != 0 {
		t.Fatalf("finish without answers records no response, got %+v", state.Session)
	}
}

func TestAPIExportPDF(t *testing.T) {
	api, library := newAPI(t, &stubModel{})
	if err := library.Upsert(context.Background(), sampleSession("s1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	resp, err := http.Get(api.server.URL + "/api/sessions/s1/export.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "Capitals_of_Europe_results.pdf") {
		t.Fatalf("unexpected disposition %q", got)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	failing, _ := newAPI(t, &stubModel{err: errors.New("unavailable")})
	if code := failing.do(http.MethodPost, "/api/wizard", nil, nil); code != http.StatusOK {
		t.Fatalf("open wizard: %d", code)
	}
	if code := failing.do(http.MethodPost, "/api/generate", map[string]any{"topic": "x", "count": 3, "type": "QUIZ"}, nil); code != http.StatusBadGateway {
		t.Fatalf("generation failure: expected 502, got %d", code)
	}
	if code := failing.do(http.MethodPost, "/api/generate", map[string]any{"count": 3, "type": "QUIZ"}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing topic: expected 400, got %d", code)
	}

	api, _ := newAPI(t, &stubModel{})
	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "launch from landing", method: http.MethodPost, path: "/api/session/launch", want: http.StatusConflict},
		{name: "unknown session", method: http.MethodPost, path: "/api/sessions/nope/open", want: http.StatusNotFound},
		{name: "unknown link", method: http.MethodGet, path: "/api/sessions/nope/link", want: http.StatusNotFound},
		{name: "delete unknown", method: http.MethodDelete, path: "/api/sessions/nope", want: http.StatusNotFound},
		{name: "image outside editor", method: http.MethodPost, path: "/api/session/questions/q1/image", want: http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if code := api.do(tc.method, tc.path, nil, nil); code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, code)
			}
		})
	}
}

func TestAPIRejectsNonPositiveTimers(t *testing.T) {
	api, _ := newAPI(t, &stubModel{})
	if code := api.do(http.MethodPost, "/api/wizard", nil, nil); code != http.StatusOK {
		t.Fatalf("open wizard: %d", code)
	}
	if code := api.do(http.MethodPost, "/api/generate", map[string]any{"topic": "Space", "count": 3, "type": "QUIZ"}, nil); code != http.StatusOK {
		t.Fatalf("generate: %d", code)
	}

	tests := []struct {
		name  string
		patch map[string]any
	}{
		{name: "zero seconds", patch: map[string]any{"timeValue": 0}},
		{name: "negative seconds", patch: map[string]any{"timeValue": -5}},
		{name: "zero minutes", patch: map[string]any{"timerMode": "WHOLE_QUIZ", "wholeQuizMinutes": 0}},
		{name: "unknown mode", patch: map[string]any{"timerMode": "SOMETIMES"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if code := api.do(http.MethodPatch, "/api/session", tc.patch, nil); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}

	var state app.State
	if code := api.do(http.MethodGet, "/api/state", nil, &state); code != http.StatusOK {
		t.Fatalf("state: %d", code)
	}
	if state.Session.Config.TimeValue != 30 || state.Session.Config.TimerMode != domain.TimerPerQuestion {
		t.Fatalf("rejected patches must leave the timer alone, got %+v", state.Session.Config)
	}
	if code := api.do(http.MethodPatch, "/api/session", map[string]any{"timeValue": 45}, nil); code != http.StatusOK {
		t.Fatalf("expected valid patch accepted, got %d", code)
	}
}

func TestHealthz(t *testing.T) {
	api, _ := newAPI(t, nil)
	resp, err := http.Get(api.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
