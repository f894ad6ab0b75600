package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/services"
	"github.com/carebridge/carebridge-backend/internal/types"
)

const noResultsResponse = "I couldn't find any relevant information for your query."

// Static response metadata per intent. Sources name where the answer
// came from; actions suggest what the user can do next in the client.
var intentSources = map[string][]string{
	IntentHistoryReport: {"health_records", "medical_database"},
	IntentDrugInfo:      {"medical_database"},
	IntentPrescription:  {"health_records"},
	IntentSearch:        {"health_records"},
	IntentSummary:       {"health_records"},
	IntentQueryRecord:   {"health_records"},
	IntentGeneral:       {"health_records", "medical_database"},
}

var intentActions = map[string][]string{
	IntentHistoryReport: {"view_health_record", "schedule_appointment"},
	IntentDrugInfo:      {"schedule_appointment"},
	IntentPrescription:  {"view_health_record", "schedule_appointment"},
	IntentSearch:        {"view_health_record"},
	IntentSummary:       {"view_health_record", "schedule_appointment"},
	IntentQueryRecord:   {"view_health_record", "schedule_appointment"},
	IntentGeneral:       {"view_health_record", "schedule_appointment"},
}

// Synthesizer folds the tool results into one markdown response.
// Sections appear in request order, failures become short error lines,
// and patient-facing text is translated when the patient asked for a
// language other than the default. Clinical text is never translated.
type Synthesizer struct {
	translator services.TranslationService
	log        *logger.Logger
}

func NewSynthesizer(log *logger.Logger, translator services.TranslationService) *Synthesizer {
	return &Synthesizer{translator: translator, log: log}
}

func (s *Synthesizer) Synthesize(ctx context.Context, st *PipelineState) {
	translate := s.shouldTranslate(st)

	var sections []string
	anySuccess := false
	for _, name := range st.ToolsToCall {
		result, ok := st.ToolResults[name]
		if !ok {
			continue
		}
		if !result.Success {
			sections = append(sections, "I ran into a problem with part of your request: "+result.Error)
			continue
		}
		anySuccess = true
		section := s.renderResult(name, result, st.UserRole)
		if translate {
			section = s.translateFragment(ctx, section, st.TargetLanguage)
		}
		sections = append(sections, section)
	}

	if !anySuccess {
		response := noResultsResponse
		if translate {
			response = s.translateFragment(ctx, response, st.TargetLanguage)
		}
		st.FinalResponse = response
		st.Confidence = 0.0
		st.Sources = intentSources[st.Intent]
		st.SuggestedActions = intentActions[st.Intent]
		return
	}

	st.FinalResponse = strings.Join(sections, "\n\n")
	st.Confidence = 0.8
	st.Sources = intentSources[st.Intent]
	st.SuggestedActions = intentActions[st.Intent]
}

func (s *Synthesizer) shouldTranslate(st *PipelineState) bool {
	if st.UserRole != types.RolePatient {
		return false
	}
	lang := strings.TrimSpace(st.TargetLanguage)
	return lang != "" && lang != services.DefaultLanguage
}

func (s *Synthesizer) translateFragment(ctx context.Context, text, language string) string {
	outcome := s.translator.Translate(ctx, text, language)
	if !outcome.Success {
		s.log.Warn("response translation failed, returning original text",
			"language", language, "error", outcome.Error)
		return text
	}
	return outcome.TranslatedText
}

func (s *Synthesizer) renderResult(tool string, result ToolResult, role types.UserRole) string {
	switch tool {
	case ToolHistoryReport:
		return renderHistory(result.History, role)
	case ToolLatestPrescription:
		return renderPrescription(result.Prescription)
	case ToolSearchRecords:
		return renderSearch(result.Search)
	case ToolGenerateSummary:
		return renderSummary(result.Summary, role)
	case ToolQueryRecord:
		return renderRecordQuery(result.RecordQuery)
	case ToolDrugLookup:
		return renderDrug(result.Drug)
	default:
		return ""
	}
}

func renderHistory(report *HistoryReport, role types.UserRole) string {
	if report == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Your Medical History\n\n")
	fmt.Fprintf(&b, "I found %d health record(s) and %d medical file(s).\n\n",
		report.RecordCount, report.FileCount)
	b.WriteString(audienceSummary(report.Summary, role))
	return strings.TrimSpace(b.String())
}

func renderPrescription(report *PrescriptionReport) string {
	if report == nil {
		return ""
	}
	if report.Latest == nil {
		return "I couldn't find any prescriptions in your health records."
	}
	med := report.Latest
	var b strings.Builder
	b.WriteString("## Your Latest Prescription\n\n")
	fmt.Fprintf(&b, "**Medicine:** %s\n", orNotSpecified(med.Name))
	fmt.Fprintf(&b, "**Dosage:** %s\n", orNotSpecified(med.Dosage))
	fmt.Fprintf(&b, "**Frequency:** %s\n", orNotSpecified(med.Frequency))
	if med.Status != "" {
		fmt.Fprintf(&b, "**Status:** %s\n", string(med.Status))
	}
	if med.PrescribedBy != "" {
		fmt.Fprintf(&b, "**Prescribed by:** %s\n", med.PrescribedBy)
	}
	if med.HealthRecordTitle != "" {
		fmt.Fprintf(&b, "**Health record:** %s\n", med.HealthRecordTitle)
	}
	if report.TotalMedications > 1 {
		fmt.Fprintf(&b, "\nYou have %d medications in total across your records.\n", report.TotalMedications)
	}
	if report.MedicineInfo != "" {
		b.WriteString("\n**About this medicine:**\n" + report.MedicineInfo + "\n")
	}
	return strings.TrimSpace(b.String())
}

func renderSearch(report *SearchReport) string {
	if report == nil {
		return ""
	}
	if report.Total() == 0 {
		return "I couldn't find any records or files matching your search."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Search Results\n\nI found %d matching item(s).\n", report.Total())
	if len(report.Records) > 0 {
		b.WriteString("\n**Health records:**\n")
		for _, rec := range report.Records {
			fmt.Fprintf(&b, "- %s (%s)\n", rec.Title, orNotSpecified(rec.Ailment))
		}
	}
	if len(report.Files) > 0 {
		b.WriteString("\n**Medical files:**\n")
		for _, f := range report.Files {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Filename, orNotSpecified(f.Category))
		}
	}
	return strings.TrimSpace(b.String())
}

func renderSummary(report *SummaryReport, role types.UserRole) string {
	if report == nil || report.Record == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Summary: %s\n\n", report.Record.Title)
	if report.FileCount > 0 {
		fmt.Fprintf(&b, "This summary covers %d medical file(s).\n\n", report.FileCount)
	}
	b.WriteString(audienceSummary(report.Summary, role))
	return strings.TrimSpace(b.String())
}

func renderRecordQuery(report *RecordQueryReport) string {
	if report == nil || report.Record == nil {
		return ""
	}
	answer := strings.TrimSpace(report.Answer)
	if answer == "" {
		return "I couldn't find an answer to your question in this health record."
	}
	return answer
}

func renderDrug(report *DrugReport) string {
	if report == nil {
		return ""
	}
	var b strings.Builder
	if report.DrugName != "" && !strings.EqualFold(report.DrugName, services.UnknownDrugName) {
		fmt.Fprintf(&b, "## About %s\n\n", report.DrugName)
	} else {
		b.WriteString("## Medication Information\n\n")
	}
	b.WriteString(report.Info.Summary)
	return strings.TrimSpace(b.String())
}

// audienceSummary picks the fragment the requester should see. A
// patient never sees the clinical fragment in a synthesized response.
func audienceSummary(result types.SummaryResult, role types.UserRole) string {
	if role == types.RoleDoctor && result.DoctorSummary != "" {
		return result.DoctorSummary
	}
	return result.LaymanSummary
}

func orNotSpecified(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "unknown") {
		return "not specified"
	}
	return v
}
