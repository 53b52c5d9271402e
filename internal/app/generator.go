package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"genquiz-service/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ContentModel is the generative model surface the generators need.
// *genai.Models satisfies it.
type ContentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// SourceFile is a binary document or image the questions must be drawn from.
type SourceFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// GenerateRequest describes one question generation call.
type GenerateRequest struct {
	Topic      string
	Count      int
	Type       domain.SessionType
	Difficulty domain.Difficulty
	Text       string      // pasted source text
	File       *SourceFile // uploaded document, ignored when Text is set
}

// HasSource reports whether the request carries source material.
func (r GenerateRequest) HasSource() bool {
	return strings.TrimSpace(r.Text) != "" || (r.File != nil && len(r.File.Data) > 0)
}

// ResolvedTopic is the topic sent to the model, defaulted from the source material.
func (r GenerateRequest) ResolvedTopic() string {
	if topic := strings.TrimSpace(r.Topic); topic != "" {
		return topic
	}
	if strings.TrimSpace(r.Text) == "" && r.File != nil {
		return "Analysis of " + r.File.Name
	}
	return "Context Analysis"
}

const questionSystemInstruction = `You are a specialized Quiz and Poll generator.
Create content that is engaging, accurate, and suited to the requested difficulty.
If the type is POLL, questions should be opinion or preference based with no single correct answer.
If the type is QUIZ, questions must have exactly one correct answer.
Return strictly JSON.`

// QuestionGenerator turns a topic or source material into questions with one model call.
type QuestionGenerator struct {
	model     ContentModel
	modelName string
	newID     func() string
}

func NewQuestionGenerator(model ContentModel, modelName string) *QuestionGenerator {
	return &QuestionGenerator{model: model, modelName: modelName, newID: uuid.NewString}
}

// Generate returns exactly req.Count validated questions with fresh ids.
// Every failure after input validation collapses into domain.ErrGenerationFailed.
func (g *QuestionGenerator) Generate(ctx context.Context, req GenerateRequest) ([]domain.Question, error) {
	if strings.TrimSpace(req.Topic) == "" && !req.HasSource() {
		return nil, domain.ErrTopicRequired
	}
	if req.Count <= 0 || !req.Type.Valid() {
		return nil, fmt.Errorf("%w: count %d, type %q", domain.ErrGenerationFailed, req.Count, req.Type)
	}

	resp, err := g.model.GenerateContent(ctx, g.modelName, buildQuestionContents(req), questionConfig())
	if err != nil {
		slog.Error("question generation request failed", "model", g.modelName, "error", err)
		return nil, domain.ErrGenerationFailed
	}

	questions, err := g.parse(responseText(resp), req)
	if err != nil {
		slog.Error("question generation response rejected", "model", g.modelName, "error", err)
		return nil, domain.ErrGenerationFailed
	}
	slog.Info("questions generated", "topic", req.ResolvedTopic(), "count", len(questions), "type", req.Type)
	return questions, nil
}

// questionPrompt builds the instruction part of the request.
func questionPrompt(req GenerateRequest) string {
	kind := strings.ToLower(string(req.Type))
	if req.Type == domain.SessionTypeQuiz && req.Difficulty != "" {
		kind = string(req.Difficulty) + " " + kind
	}

	var b strings.Builder
	if req.HasSource() {
		fmt.Fprintf(&b, "Analyze the provided content carefully. Generate %d %s questions based EXCLUSIVELY on the content of the provided context.\n", req.Count, kind)
		fmt.Fprintf(&b, "The user provided topic/context is: %q. Use it as a title or general theme, but every question must be answerable from the provided document or text.\n", req.ResolvedTopic())
	} else {
		fmt.Fprintf(&b, "Generate %d %s questions about %q.\n", req.Count, kind, req.ResolvedTopic())
	}
	b.WriteString("For each question, provide 4 options.\n")
	if req.Type == domain.SessionTypeQuiz {
		b.WriteString("Indicate the index (0-3) of the correct answer.\n")
	} else {
		b.WriteString("Set correctAnswerIndex to -1.\n")
	}
	return b.String()
}

func buildQuestionContents(req GenerateRequest) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)
	switch {
	case strings.TrimSpace(req.Text) != "":
		parts = append(parts, &genai.Part{Text: req.Text})
	case req.File != nil && len(req.File.Data) > 0:
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: req.File.MIMEType, Data: req.File.Data}})
	}
	parts = append(parts, &genai.Part{Text: questionPrompt(req)})
	return []*genai.Content{{Role: "user", Parts: parts}}
}

func questionConfig() *genai.GenerateContentConfig {
	temperature := float32(0.7)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: questionSystemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    questionSchema(),
		Temperature:       &temperature,
	}
}

func questionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {Type: genai.TypeString, Description: "The question text"},
				"options": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "An array of 4 possible options",
				},
				"correctAnswerIndex": {Type: genai.TypeInteger, Description: "Index of correct option, or -1 for polls"},
			},
			Required: []string{"text", "options", "correctAnswerIndex"},
		},
	}
}

type generatedQuestion struct {
	Text               *string  `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex"`
}

func (g *QuestionGenerator) parse(raw string, req GenerateRequest) ([]domain.Question, error) {
	var items []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(items) < req.Count {
		return nil, fmt.Errorf("expected %d questions, got %d", req.Count, len(items))
	}
	items = items[:req.Count]

	questions := make([]domain.Question, 0, len(items))
	for i, item := range items {
		if item.Text == nil || item.CorrectAnswerIndex == nil {
			return nil, fmt.Errorf("question %d: missing required field", i)
		}
		q := domain.Question{
			ID:                 g.newID(),
			Text:               *item.Text,
			Options:            item.Options,
			CorrectAnswerIndex: domain.Index(*item.CorrectAnswerIndex),
		}
		if req.Type == domain.SessionTypePoll {
			q.CorrectAnswerIndex = domain.Index(domain.NoCorrectAnswer)
		}
		if err := q.Validate(req.Type); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
