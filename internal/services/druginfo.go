package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

// UnknownDrugName is the placeholder returned when no plausible drug
// name can be pulled out of a query. Lookups and rendering treat it as
// "nothing to enrich".
const UnknownDrugName = "unknown"

type DrugInfo struct {
	Summary      string         `json:"summary,omitempty"`
	DetailedInfo map[string]any `json:"detailed_info,omitempty"`
}

// DrugInfoService answers drug-information questions via an external
// knowledge model. Lookup never fails; when the provider is missing or
// erroring it returns a consult-your-provider message.
type DrugInfoService interface {
	Lookup(ctx context.Context, drugName string) DrugInfo
	ExtractDrugName(query string) string
}

type DrugInfoConfig struct {
	Model string
}

type drugInfoService struct {
	log   *logger.Logger
	chat  ChatClient // nil when no provider is configured
	cache DrugInfoCache
	model string
}

func NewDrugInfoService(log *logger.Logger, chat ChatClient, cache DrugInfoCache, cfg DrugInfoConfig) DrugInfoService {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "perplexity/llama-3.1-sonar-small-128k-online"
	}
	return &drugInfoService{
		log:   log.With("service", "DrugInfoService"),
		chat:  chat,
		cache: cache,
		model: model,
	}
}

func (d *drugInfoService) Lookup(ctx context.Context, drugName string) DrugInfo {
	drugName = strings.TrimSpace(drugName)
	if drugName == "" || strings.EqualFold(drugName, UnknownDrugName) {
		return fallbackDrugInfo(drugName)
	}

	if d.cache != nil {
		if cached, ok := d.cache.Get(ctx, drugName); ok {
			return cached
		}
	}
	if d.chat == nil {
		return fallbackDrugInfo(drugName)
	}

	info := DrugInfo{
		Summary:      d.lookupSummary(ctx, drugName),
		DetailedInfo: d.lookupDetails(ctx, drugName),
	}
	if info.Summary == "" && info.DetailedInfo == nil {
		return fallbackDrugInfo(drugName)
	}

	if d.cache != nil {
		d.cache.Set(ctx, drugName, info)
	}
	return info
}

func (d *drugInfoService) lookupSummary(ctx context.Context, drugName string) string {
	prompt := strings.Join([]string{
		"The following is the medicine name: " + drugName,
		"Provide a super-simplified, easy to understand layman's summary of the medicine '" + drugName + "' for patients to understand.",
		"Include the following information:",
		"1. Generic name and common brand names",
		"2. What it's used for (indications)",
		"3. How it works (mechanism of action)",
		"4. Common side effects",
		"5. Important warnings and precautions",
		"6. Drug interactions to be aware of",
		"7. Dosage information (general guidance)",
		"8. Storage instructions",
		"Format the response in a clear, structured manner suitable for patients. Keep it short and concise for non-medical people.",
	}, "\n")

	text, err := d.chat.Complete(ctx, d.model, "", prompt, ChatOptions{
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		d.log.Warn("drug summary lookup failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (d *drugInfoService) lookupDetails(ctx context.Context, drugName string) map[string]any {
	prompt := strings.Join([]string{
		"Search for detailed information about the medicine '" + drugName + "'.",
		"Return the information in JSON format with the following structure:",
		`{"generic_name": "string", "brand_names": [], "indications": [], "mechanism": "string",`,
		`"side_effects": [], "warnings": [], "interactions": [], "dosage": "string", "storage": "string"}`,
	}, "\n")

	text, err := d.chat.Complete(ctx, d.model, "", prompt, ChatOptions{
		MaxTokens:   1500,
		Temperature: 0.1,
	})
	if err != nil {
		d.log.Warn("drug detail lookup failed", "error", err)
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(extractJSONObject(text)), &parsed); err != nil {
		// Model answered in prose; keep it rather than dropping it.
		return map[string]any{"summary": strings.TrimSpace(text)}
	}
	return parsed
}

// extractJSONObject pulls the outermost JSON object out of model text
// that may be wrapped in prose or code fences.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

func fallbackDrugInfo(drugName string) DrugInfo {
	name := strings.TrimSpace(drugName)
	if name == "" {
		name = UnknownDrugName
	}
	return DrugInfo{
		Summary: "Medicine: " + name + "\n\n" +
			"Detailed drug information is not available right now. " +
			"Please consult with your healthcare provider or pharmacist for accurate information about " + name + ". " +
			"Always consult with a healthcare professional before taking any medication.",
	}
}

// Patterns tried in order; the first capture that is not a filler word
// wins. The "about X" form leads so queries like "tell me about
// ibuprofen dosage" yield the drug, not "dosage".
var drugNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\babout\s+([a-zA-Z][a-zA-Z0-9-]{2,})`),
	regexp.MustCompile(`(?i)\binformation\s+(?:on|about|for)\s+([a-zA-Z][a-zA-Z0-9-]{2,})`),
	regexp.MustCompile(`(?i)\bside\s+effects?\s+of\s+([a-zA-Z][a-zA-Z0-9-]{2,})`),
	regexp.MustCompile(`(?i)\bwhat\s+is\s+([a-zA-Z][a-zA-Z0-9-]{2,})`),
	regexp.MustCompile(`(?i)\b([a-zA-Z][a-zA-Z0-9-]{2,})\s+dosage\b`),
	regexp.MustCompile(`(?i)\b([a-zA-Z][a-zA-Z0-9-]{2,})\s+side\s+effects?\b`),
}

var drugNameStopwords = map[string]bool{
	"the": true, "this": true, "that": true, "these": true, "those": true,
	"my": true, "your": true, "his": true, "her": true, "their": true,
	"medicine": true, "medication": true, "medications": true, "drug": true,
	"drugs": true, "tablet": true, "pill": true, "dosage": true, "dose": true,
	"prescription": true, "taking": true, "information": true, "more": true,
	"some": true, "what": true, "tell": true, "side": true, "effects": true,
}

var capitalizedWord = regexp.MustCompile(`\b[A-Z][a-z]{3,}\b`)

// ExtractDrugName pulls a plausible drug name from free text. It never
// fails: when every heuristic misses it returns UnknownDrugName.
func (d *drugInfoService) ExtractDrugName(query string) string {
	for _, pat := range drugNamePatterns {
		for _, m := range pat.FindAllStringSubmatch(query, -1) {
			candidate := strings.ToLower(strings.TrimSpace(m[1]))
			if candidate != "" && !drugNameStopwords[candidate] {
				return candidate
			}
		}
	}

	// Capitalized words often name brands ("Tylenol").
	for i, m := range capitalizedWord.FindAllString(query, -1) {
		candidate := strings.ToLower(m)
		if i == 0 && strings.HasPrefix(query, m) {
			// Skip a sentence-initial capital; it is usually just grammar.
			continue
		}
		if !drugNameStopwords[candidate] {
			return candidate
		}
	}

	// Last long word in the query.
	words := strings.Fields(query)
	for i := len(words) - 1; i >= 0; i-- {
		candidate := strings.ToLower(strings.Trim(words[i], ".,!?;:"))
		if len(candidate) >= 6 && !drugNameStopwords[candidate] {
			return candidate
		}
	}

	return UnknownDrugName
}
