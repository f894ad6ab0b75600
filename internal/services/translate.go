package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/types"
)

const DefaultLanguage = "en-IN"

// Provider character limit per translation call.
const defaultTranslateLimit = 1000

var supportedLanguages = map[string]string{
	"bn-IN": "Bengali",
	"en-IN": "English",
	"gu-IN": "Gujarati",
	"hi-IN": "Hindi",
	"kn-IN": "Kannada",
	"ml-IN": "Malayalam",
	"mr-IN": "Marathi",
	"od-IN": "Odia",
	"pa-IN": "Punjabi",
	"ta-IN": "Tamil",
	"te-IN": "Telugu",
}

type TranslationOutcome struct {
	Success        bool   `json:"success"`
	TranslatedText string `json:"translated_text,omitempty"`
	Error          string `json:"error,omitempty"`
}

// TranslationService translates patient-facing content. Long text is
// chunked to respect the provider limit; chunks whose translation
// fails pass through untranslated rather than being dropped.
type TranslationService interface {
	Translate(ctx context.Context, text, targetLanguage string) TranslationOutcome
	TranslateSummary(ctx context.Context, text, targetLanguage string, summaryType types.SummaryType) TranslationOutcome
	IsSupported(languageCode string) bool
}

type TranslationConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
	CharLimit      int
}

// translateFunc performs one provider call for a single chunk.
type translateFunc func(ctx context.Context, text, targetLanguage string) (string, error)

type translationService struct {
	log   *logger.Logger
	call  translateFunc
	limit int
}

func NewTranslationService(log *logger.Logger, cfg TranslationConfig) TranslationService {
	serviceLog := log.With("service", "TranslationService")

	limit := cfg.CharLimit
	if limit <= 0 {
		limit = defaultTranslateLimit
	}

	var call translateFunc
	if strings.TrimSpace(cfg.APIKey) != "" {
		baseURL := strings.TrimSpace(cfg.BaseURL)
		if baseURL == "" {
			baseURL = "https://api.sarvam.ai/translate"
		}
		timeoutSec := cfg.TimeoutSeconds
		if timeoutSec <= 0 {
			timeoutSec = 30
		}
		call = newProviderCall(baseURL, cfg.APIKey, time.Duration(timeoutSec)*time.Second)
	}

	return &translationService{
		log:   serviceLog,
		call:  call,
		limit: limit,
	}
}

func (t *translationService) IsSupported(languageCode string) bool {
	_, ok := supportedLanguages[languageCode]
	return ok
}

func (t *translationService) Translate(ctx context.Context, text, targetLanguage string) TranslationOutcome {
	if strings.TrimSpace(text) == "" {
		return TranslationOutcome{Success: false, Error: "empty text provided"}
	}
	if targetLanguage == DefaultLanguage {
		return TranslationOutcome{Success: true, TranslatedText: text}
	}
	if !t.IsSupported(targetLanguage) {
		return TranslationOutcome{Success: false, Error: "unsupported language: " + targetLanguage}
	}
	if t.call == nil {
		return TranslationOutcome{Success: false, Error: "translation service not configured"}
	}

	chunks := chunkText(text, t.limit)
	translated := make([]string, 0, len(chunks))
	anyOK := false
	for i, chunk := range chunks {
		out, err := t.call(ctx, chunk, targetLanguage)
		if err != nil {
			// Best-effort: keep the original chunk in place.
			t.log.Warn("chunk translation failed, passing through",
				"chunk", i, "chunks", len(chunks), "error", err)
			translated = append(translated, chunk)
			continue
		}
		anyOK = true
		translated = append(translated, out)
	}

	joined := strings.Join(translated, "\n\n")
	if !anyOK {
		return TranslationOutcome{Success: false, TranslatedText: joined, Error: "all chunks failed to translate"}
	}
	return TranslationOutcome{Success: true, TranslatedText: joined}
}

// TranslateSummary applies the audience policy: clinician summaries
// are never translated, so medical terminology stays exact.
func (t *translationService) TranslateSummary(ctx context.Context, text, targetLanguage string, summaryType types.SummaryType) TranslationOutcome {
	if summaryType == types.SummaryDoctor {
		return TranslationOutcome{
			Success: false,
			Error:   "doctor summaries are not translated to preserve medical accuracy",
		}
	}
	return t.Translate(ctx, text, targetLanguage)
}

// chunkText splits text so no chunk exceeds limit. Paragraphs are kept
// whole where possible; an oversized paragraph is split on sentence
// boundaries, and a single oversized sentence is hard-split.
func chunkText(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	appendPiece := func(piece string) {
		if piece == "" {
			return
		}
		sep := 0
		if buf.Len() > 0 {
			sep = 1
		}
		if buf.Len()+sep+len(piece) > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			buf.WriteByte(' ')
		}
		buf.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= limit {
			appendPiece(para)
			continue
		}
		for _, sentence := range splitSentences(para) {
			if len(sentence) <= limit {
				appendPiece(sentence)
				continue
			}
			// Pathological sentence longer than the provider limit.
			flush()
			for len(sentence) > limit {
				chunks = append(chunks, sentence[:limit])
				sentence = sentence[limit:]
			}
			appendPiece(sentence)
		}
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// splitSentences breaks on terminal punctuation followed by space.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
				s := strings.TrimSpace(text[start : i+1])
				if s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func newProviderCall(baseURL, apiKey string, timeout time.Duration) translateFunc {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, text, targetLanguage string) (string, error) {
		payload := map[string]any{
			"input":                text,
			"source_language_code": "auto",
			"target_language_code": targetLanguage,
		}
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, &buf)
		if err != nil {
			return "", err
		}
		req.Header.Set("api-subscription-key", apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return "", readErr
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("translation api %d: %s", resp.StatusCode, string(raw))
		}

		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", fmt.Errorf("translation decode: %w", err)
		}
		// The provider has shipped several response shapes.
		for _, key := range []string{"translated_text", "translation", "output"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s, nil
			}
		}
		return "", fmt.Errorf("translation api: unrecognized response shape")
	}
}
