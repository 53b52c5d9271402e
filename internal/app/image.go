package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"genquiz-service/internal/domain"
	"google.golang.org/genai"
)

// ImageGenerator requests one illustration per call. Nothing is cached.
type ImageGenerator struct {
	model     ContentModel
	modelName string
}

func NewImageGenerator(model ContentModel, modelName string) *ImageGenerator {
	return &ImageGenerator{model: model, modelName: modelName}
}

func imagePrompt(subject string) string {
	return fmt.Sprintf("Create a flat, modern, vector-style illustration suitable for a quiz app representing this question: %q. Do not include any text inside the image.", subject)
}

// Generate returns the first inline image of the response as a data URL.
func (g *ImageGenerator) Generate(ctx context.Context, subject string) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: imagePrompt(subject)}}}}
	// image models reject a response MIME type, so no config is sent
	resp, err := g.model.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		slog.Error("image generation request failed", "model", g.modelName, "error", err)
		return "", domain.ErrImageGenerationFailed
	}

	blob := firstInlineImage(resp)
	if blob == nil {
		slog.Error("image generation returned no image", "model", g.modelName)
		return "", fmt.Errorf("%w: %w", domain.ErrImageGenerationFailed, domain.ErrNoImageData)
	}
	return "data:" + blob.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(blob.Data), nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}
