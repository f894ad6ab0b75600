package orchestrator

import (
	"github.com/carebridge/carebridge-backend/internal/services"
	"github.com/carebridge/carebridge-backend/internal/types"
)

// PipelineState carries one request through the four pipeline stages.
// Created fresh per call, mutated stage by stage, never shared across
// requests, and discarded once the response is built.
type PipelineState struct {
	Query          string
	UserID         string
	UserRole       types.UserRole
	HealthRecordID string
	TargetLanguage string

	Intent      string
	ToolsToCall []string
	// Keyed by tool name; only names from ToolsToCall ever appear, and
	// every entry is a tagged success or failure.
	ToolResults map[string]ToolResult

	FinalResponse    string
	Confidence       float64
	Sources          []string
	SuggestedActions []string
}

// ToolResult is the tagged outcome of one tool call. Exactly one of
// the payload pointers is set on success; Error carries the message on
// failure. Tools never raise past this type.
type ToolResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	History      *HistoryReport      `json:"history,omitempty"`
	Prescription *PrescriptionReport `json:"prescription,omitempty"`
	Search       *SearchReport       `json:"search,omitempty"`
	Summary      *SummaryReport      `json:"summary,omitempty"`
	RecordQuery  *RecordQueryReport  `json:"record_query,omitempty"`
	Drug         *DrugReport         `json:"drug,omitempty"`
}

func failure(err error) ToolResult {
	return ToolResult{Success: false, Error: err.Error()}
}

type HistoryReport struct {
	RecordCount int                 `json:"record_count"`
	FileCount   int                 `json:"file_count"`
	Summary     types.SummaryResult `json:"summary"`
}

type PrescriptionReport struct {
	// Latest is nil when the patient has no medications at all.
	Latest           *types.Medication `json:"latest,omitempty"`
	TotalMedications int               `json:"total_medications"`
	MedicineInfo     string            `json:"medicine_info,omitempty"`
}

type SearchReport struct {
	Records []types.HealthRecord `json:"records"`
	Files   []types.MedicalFile  `json:"files"`
}

func (r *SearchReport) Total() int {
	return len(r.Records) + len(r.Files)
}

type SummaryReport struct {
	Record    *types.HealthRecord `json:"record"`
	FileCount int                 `json:"file_count"`
	Summary   types.SummaryResult `json:"summary"`
}

type RecordQueryReport struct {
	Record    *types.HealthRecord `json:"record"`
	FileCount int                 `json:"file_count"`
	Answer    string              `json:"answer"`
}

type DrugReport struct {
	DrugName string            `json:"drug_name"`
	Info     services.DrugInfo `json:"info"`
}
