package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"genquiz-service/internal/app"
	"genquiz-service/internal/domain"
	"genquiz-service/internal/infra/memory"
	"google.golang.org/genai"
)

type modelCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeModel records calls and answers with respond.
type fakeModel struct {
	mu      sync.Mutex
	calls   []modelCall
	respond func(call modelCall) (*genai.GenerateContentResponse, error)
}

func (m *fakeModel) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	call := modelCall{model: model, contents: contents, config: config}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
	return m.respond(call)
}

func (m *fakeModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *fakeModel) lastCall(t *testing.T) modelCall {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		t.Fatalf("expected a model call")
	}
	return m.calls[len(m.calls)-1]
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

// questionsJSON renders n generated questions the way the model answers.
func questionsJSON(n int, correct int) string {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"text":               fmt.Sprintf("Question %d?", i+1),
			"options":            []string{"A", "B", "C", "D"},
			"correctAnswerIndex": correct,
		}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func questionModel(correct int) *fakeModel {
	return &fakeModel{respond: func(call modelCall) (*genai.GenerateContentResponse, error) {
		return textResponse(questionsJSON(countFromPrompt(call), correct)), nil
	}}
}

// countFromPrompt reads the requested count back out of the instruction part.
func countFromPrompt(call modelCall) int {
	parts := call.contents[0].Parts
	prompt := parts[len(parts)-1].Text
	var n int
	for _, format := range []string{"Generate %d", "Analyze the provided content carefully. Generate %d"} {
		if _, err := fmt.Sscanf(prompt, format, &n); err == nil {
			return n
		}
	}
	return 0
}

func promptOf(call modelCall) string {
	parts := call.contents[0].Parts
	return parts[len(parts)-1].Text
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newTestWorkspace(t *testing.T, model *fakeModel, opts ...app.WorkspaceOption) (*app.Workspace, *app.Library, *memory.SnapshotStore) {
	t.Helper()
	store := memory.NewSnapshotStore()
	library := app.NewLibrary(store)
	if err := library.Load(context.Background()); err != nil {
		t.Fatalf("load library: %v", err)
	}
	opts = append([]app.WorkspaceOption{app.WithManualTicks(), app.WithClock(func() time.Time { return fixedNow })}, opts...)
	ws := app.NewWorkspace(context.Background(), library, app.NewQuestionGenerator(model, "test-model"), opts...)
	t.Cleanup(ws.Close)
	return ws, library, store
}

func sampleSession(id string, typ domain.SessionType, mode domain.TimerMode, timeValue int, questions int) domain.Session {
	s := domain.Session{
		ID:        id,
		HostID:    "host-1",
		JoinCode:  "ABC123",
		Title:     "Session " + id,
		Type:      typ,
		Status:    domain.StatusActive,
		CreatedAt: fixedNow,
		Config:    domain.SessionConfig{Topic: "Testing", QuestionCount: questions, TimerMode: mode, TimeValue: timeValue},
	}
	for i := 0; i < questions; i++ {
		correct := 1
		if typ == domain.SessionTypePoll {
			correct = domain.NoCorrectAnswer
		}
		s.Questions = append(s.Questions, domain.Question{
			ID:                 fmt.Sprintf("q%d", i+1),
			Text:               fmt.Sprintf("Question %d?", i+1),
			Options:            []string{"A", "B", "C", "D"},
			CorrectAnswerIndex: domain.Index(correct),
		})
	}
	return s
}
