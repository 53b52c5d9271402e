package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"genquiz-service/internal/app"
	"genquiz-service/internal/domain"
	"google.golang.org/genai"
)

func TestImageGeneratorReturnsFirstInlineImage(t *testing.T) {
	model := &fakeModel{respond: func(modelCall) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Here is your illustration"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}},
				{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{0xff}}},
			}},
		}}}, nil
	}}

	url, err := app.NewImageGenerator(model, "image-model").Generate(context.Background(), "Who was the first Roman emperor?")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if url != "data:image/png;base64,iVBORw==" {
		t.Fatalf("unexpected data url %q", url)
	}

	call := model.lastCall(t)
	if call.config != nil {
		t.Fatalf("expected no response config for image models")
	}
	if !strings.Contains(promptOf(call), "Who was the first Roman emperor?") {
		t.Fatalf("expected question text in prompt %q", promptOf(call))
	}
}

func TestImageGeneratorWithoutImage(t *testing.T) {
	model := &fakeModel{respond: func(modelCall) (*genai.GenerateContentResponse, error) {
		return textResponse("I cannot draw that."), nil
	}}
	_, err := app.NewImageGenerator(model, "image-model").Generate(context.Background(), "x")
	if !errors.Is(err, domain.ErrImageGenerationFailed) || !errors.Is(err, domain.ErrNoImageData) {
		t.Fatalf("expected no image data error, got %v", err)
	}
}

func TestImageGeneratorRequestFailure(t *testing.T) {
	model := &fakeModel{respond: func(modelCall) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota exceeded")
	}}
	_, err := app.NewImageGenerator(model, "image-model").Generate(context.Background(), "x")
	if !errors.Is(err, domain.ErrImageGenerationFailed) {
		t.Fatalf("expected image generation failure, got %v", err)
	}
}
