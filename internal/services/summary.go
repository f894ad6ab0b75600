package services

import (
	"context"
	"strings"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/types"
)

// Content beyond these limits is truncated before submission; the
// fallback model gets a much smaller window.
const (
	summaryMaxContentChars  = 120000
	summaryFallbackMaxChars = 8000
	summaryMaxTokens        = 1000
	summaryFallbackTokens   = 500
)

const truncationMarker = "\n\n[Content truncated due to length]"

// SummaryService produces audience-specific summaries of medical
// content. Summarize never fails: when the model is unreachable or
// misbehaves it degrades to a naive extractive summary.
type SummaryService interface {
	Summarize(ctx context.Context, content string, summaryType types.SummaryType, extraContext string) types.SummaryResult
}

type SummaryConfig struct {
	Model         string
	FallbackModel string
}

type summaryService struct {
	log           *logger.Logger
	chat          ChatClient // nil when no provider is configured
	model         string
	fallbackModel string
}

func NewSummaryService(log *logger.Logger, chat ChatClient, cfg SummaryConfig) SummaryService {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}
	fallback := strings.TrimSpace(cfg.FallbackModel)
	if fallback == "" {
		fallback = "gpt-3.5-turbo"
	}
	return &summaryService{
		log:           log.With("service", "SummaryService"),
		chat:          chat,
		model:         model,
		fallbackModel: fallback,
	}
}

func (s *summaryService) Summarize(ctx context.Context, content string, summaryType types.SummaryType, extraContext string) types.SummaryResult {
	if s.chat == nil {
		return extractiveSummary(content, summaryType)
	}

	system := summaryPrompt(summaryType, extraContext)

	body := content
	if len(body) > summaryMaxContentChars {
		s.log.Warn("summary content truncated", "original_len", len(content), "max", summaryMaxContentChars)
		body = body[:summaryMaxContentChars] + truncationMarker
	}

	text, err := s.chat.Complete(ctx, s.model, system, body, ChatOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		s.log.Warn("primary summary model failed, trying fallback", "model", s.model, "error", err)
		if len(body) > summaryFallbackMaxChars {
			body = body[:summaryFallbackMaxChars] + truncationMarker
		}
		text, err = s.chat.Complete(ctx, s.fallbackModel, system, body, ChatOptions{
			MaxTokens:   summaryFallbackTokens,
			Temperature: 0.3,
		})
	}
	if err != nil {
		s.log.Error("summarization failed, using extractive fallback", "error", err)
		return extractiveSummary(content, summaryType)
	}

	return splitSummary(text, summaryType)
}

func summaryPrompt(summaryType types.SummaryType, extraContext string) string {
	base := "You are a medical AI assistant. Summarize the following content appropriately."

	var prompt string
	switch summaryType {
	case types.SummaryLayman:
		prompt = base + " Provide a simple, easy-to-understand summary for patients. Avoid medical jargon and explain concepts in plain language."
	case types.SummaryDoctor:
		prompt = base + " Provide a detailed medical summary for healthcare professionals. Include relevant medical terminology and clinical details."
	default:
		prompt = base + " Provide two summaries separated by '---': 1) A simple patient-friendly summary, 2) A detailed medical summary for professionals."
	}

	if strings.TrimSpace(extraContext) != "" {
		prompt += "\n\nContext: " + extraContext
	}
	return prompt
}

// splitSummary routes model output into the requested audience slots.
// BOTH responses carry the two summaries separated by "---"; a missing
// separator duplicates the text into both slots.
func splitSummary(text string, summaryType types.SummaryType) types.SummaryResult {
	text = strings.TrimSpace(text)
	switch summaryType {
	case types.SummaryLayman:
		return types.SummaryResult{LaymanSummary: text}
	case types.SummaryDoctor:
		return types.SummaryResult{DoctorSummary: text}
	}

	parts := strings.SplitN(text, "---", 2)
	layman := strings.TrimSpace(parts[0])
	doctor := text
	if len(parts) > 1 {
		doctor = strings.TrimSpace(parts[1])
	}
	return types.SummaryResult{LaymanSummary: layman, DoctorSummary: doctor}
}

// extractiveSummary samples the beginning, middle, and end of the
// document. It is the terminal fallback and cannot fail.
func extractiveSummary(content string, summaryType types.SummaryType) types.SummaryResult {
	const maxInput = 50000
	if len(content) > maxInput {
		content = content[:maxInput] + "\n\n[Content truncated]"
	}

	words := strings.Fields(content)
	total := len(words)

	var summary string
	if total <= 100 {
		summary = strings.TrimSpace(content)
	} else {
		sample := total / 6
		if sample > 50 {
			sample = 50
		}
		beginning := strings.Join(words[:sample], " ")
		midStart := total / 3
		middle := strings.Join(words[midStart:midStart+sample], " ")
		endStart := total - sample
		if endStart < midStart+sample {
			endStart = midStart + sample
		}
		end := strings.Join(words[endStart:], " ")
		summary = beginning + " ... " + middle + " ... " + end
	}
	if len(summary) > 2000 {
		summary = summary[:2000] + "... [summary truncated]"
	}
	if summary == "" {
		summary = "Unable to generate summary. Document processing failed."
	}

	switch summaryType {
	case types.SummaryLayman:
		return types.SummaryResult{LaymanSummary: "Document Summary: " + summary}
	case types.SummaryDoctor:
		return types.SummaryResult{DoctorSummary: "Medical Document Summary: " + summary}
	default:
		return types.SummaryResult{
			LaymanSummary: "Document Summary: " + summary,
			DoctorSummary: "Medical Document Summary: " + summary,
		}
	}
}
