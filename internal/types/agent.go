package types

type SummaryType string

const (
	SummaryLayman SummaryType = "LAYMAN"
	SummaryDoctor SummaryType = "DOCTOR"
	SummaryBoth   SummaryType = "BOTH"
)

type SummaryResult struct {
	LaymanSummary string `json:"layman_summary,omitempty"`
	DoctorSummary string `json:"doctor_summary,omitempty"`
}

// AgentQuery is the caller-facing entry payload for the orchestration
// pipeline. TargetLanguage is a provider language code such as "hi-IN";
// empty means the default ("en-IN", no translation).
type AgentQuery struct {
	Query          string   `json:"query"`
	UserID         string   `json:"user_id"`
	UserRole       UserRole `json:"user_role"`
	HealthRecordID string   `json:"health_record_id,omitempty"`
	TargetLanguage string   `json:"target_language,omitempty"`
}

type AgentResponse struct {
	Response         string   `json:"response"`
	Confidence       float64  `json:"confidence"`
	Sources          []string `json:"sources"`
	SuggestedActions []string `json:"suggested_actions"`
}
