package orchestrator

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

// Intent tags form a closed set; the classifier never produces a tag
// outside this list.
const (
	IntentHistoryReport = "get_medical_history"
	IntentDrugInfo      = "drug_information"
	IntentPrescription  = "get_latest_prescription"
	IntentSearch        = "search_records"
	IntentSummary       = "generate_summary"
	IntentQueryRecord   = "query_record"
	IntentGeneral       = "general_query"
)

// IntentRule matches when any keyword from Any appears in the query
// and, if With is non-empty, at least one With keyword co-occurs.
// Rules are evaluated top to bottom and the first match wins; the
// order is a contract, not an accident, because several rules share
// trigger vocabulary.
type IntentRule struct {
	Intent string   `yaml:"intent"`
	Any    []string `yaml:"any"`
	With   []string `yaml:"with,omitempty"`
}

func (r IntentRule) matches(query string) bool {
	if !containsAny(query, r.Any) {
		return false
	}
	if len(r.With) == 0 {
		return true
	}
	return containsAny(query, r.With)
}

func containsAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// The built-in rule table. History keywords are checked first so
// report-style queries never fall into the prescription bucket; the
// drug-information rule precedes the prescription rule so that
// disambiguators like "about"/"side effects" win even when
// "medication" also appears.
func defaultRules() []IntentRule {
	return []IntentRule{
		{Intent: IntentHistoryReport, Any: []string{"history", "report", "complete", "all"}},
		{
			Intent: IntentDrugInfo,
			Any:    []string{"about", "information", "tell me", "what is", "side effect", "dosage"},
			With:   []string{"medicine", "medication", "drug", "tablet", "pill", "dosage", "dose", "side effect"},
		},
		{Intent: IntentPrescription, Any: []string{"prescription", "medication", "medicine", "latest"}},
		{Intent: IntentSearch, Any: []string{"search", "find", "look for"}},
		{Intent: IntentSummary, Any: []string{"summary", "summarize", "overview"}},
		{Intent: IntentQueryRecord, Any: []string{"query", "details", "information"}},
	}
}

const classifierRulesEnv = "INTENT_RULES_YAML"

//go:embed intent_rules.yaml
var intentRulesFS embed.FS

type rulesFile struct {
	Rules   []IntentRule `yaml:"rules"`
	Default string       `yaml:"default"`
}

var (
	loadRulesOnce sync.Once
	loadedRules   []IntentRule
)

// loadRules prefers an operator-supplied YAML file, then the embedded
// table, then the in-code fallback. Invalid YAML never breaks startup.
func loadRules(log *logger.Logger) []IntentRule {
	loadRulesOnce.Do(func() {
		loadedRules = defaultRules()

		raw, err := intentRulesFS.ReadFile("intent_rules.yaml")
		if path := strings.TrimSpace(os.Getenv(classifierRulesEnv)); path != "" {
			if fileRaw, fileErr := os.ReadFile(path); fileErr == nil {
				raw, err = fileRaw, nil
			} else if log != nil {
				log.Warn("intent rules file unreadable, using embedded table", "path", path, "error", fileErr)
			}
		}
		if err != nil {
			return
		}

		var parsed rulesFile
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			if log != nil {
				log.Warn("intent rules yaml invalid, using built-in table", "error", err)
			}
			return
		}
		if validated, err := validateRules(parsed.Rules); err != nil {
			if log != nil {
				log.Warn("intent rules rejected, using built-in table", "error", err)
			}
		} else {
			loadedRules = validated
		}
	})
	return loadedRules
}

func validateRules(rules []IntentRule) ([]IntentRule, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}
	known := map[string]bool{
		IntentHistoryReport: true,
		IntentDrugInfo:      true,
		IntentPrescription:  true,
		IntentSearch:        true,
		IntentSummary:       true,
		IntentQueryRecord:   true,
		IntentGeneral:       true,
	}
	for i, r := range rules {
		if !known[r.Intent] {
			return nil, fmt.Errorf("rule %d: unknown intent %q", i, r.Intent)
		}
		if len(r.Any) == 0 {
			return nil, fmt.Errorf("rule %d (%s): empty keyword list", i, r.Intent)
		}
	}
	return rules, nil
}

// Classifier assigns one intent tag to a free-text query. Pure: no
// I/O, no mutation, deterministic for a given rule table.
type Classifier struct {
	rules []IntentRule
}

func NewClassifier(log *logger.Logger) *Classifier {
	return &Classifier{rules: loadRules(log)}
}

func NewClassifierWithRules(rules []IntentRule) *Classifier {
	return &Classifier{rules: rules}
}

func (c *Classifier) Classify(query string) string {
	q := strings.ToLower(query)
	for _, rule := range c.rules {
		if rule.matches(q) {
			return rule.Intent
		}
	}
	return IntentGeneral
}
