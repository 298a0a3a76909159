// Package assistant wraps the Gemini API for the farm advisor chat.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/farmflow/backend/internal/app/models"
)

type Service struct {
	logger *zap.Logger
	apiKey string
	model  string
}

func NewService(apiKey, model string, logger *zap.Logger) *Service {
	return &Service{logger: logger, apiKey: apiKey, model: model}
}

// Enabled reports whether an API key was configured.
func (s *Service) Enabled() bool {
	return s.apiKey != ""
}

// FarmContext is the snapshot of the user's farm injected into the prompt so
// answers reference their actual crops and tasks.
type FarmContext struct {
	Crops []models.Crop
	Tasks []models.Task
}

// Chat sends the user's message to Gemini with the farm snapshot as context.
func (s *Service) Chat(ctx context.Context, message string, farm FarmContext) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("assistant not configured: %w", models.ErrServiceUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", errors.Wrap(err, "creating genai client")
	}

	prompt := buildPrompt(message, farm)
	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.5),
	})
	if err != nil {
		return "", errors.Wrap(err, "generating chat response")
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response: %w", models.ErrServiceUnavailable)
	}
	return text, nil
}

func buildPrompt(message string, farm FarmContext) string {
	var b strings.Builder
	b.WriteString("You are an experienced agronomist advising a farmer. ")
	b.WriteString("Answer concisely and practically.\n\n")

	if len(farm.Crops) > 0 {
		b.WriteString("The farmer currently grows:\n")
		for _, crop := range farm.Crops {
			fmt.Fprintf(&b, "- %s (%s), planted %s, expected harvest %s\n",
				crop.Name, crop.Status,
				crop.PlantingDate.Format("2006-01-02"),
				crop.ExpectedHarvestDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	if len(farm.Tasks) > 0 {
		b.WriteString("Open tasks:\n")
		for _, task := range farm.Tasks {
			fmt.Fprintf(&b, "- %s (%s)\n", task.Title, task.Priority)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(message)
	return b.String()
}
