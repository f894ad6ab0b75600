package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/carebridge/carebridge-backend/internal/services"
	"github.com/carebridge/carebridge-backend/internal/types"
)

type fakeTranslator struct {
	calls []string
	fail  bool
}

func (f *fakeTranslator) Translate(_ context.Context, text, targetLanguage string) services.TranslationOutcome {
	f.calls = append(f.calls, text)
	if f.fail {
		return services.TranslationOutcome{Success: false, Error: "provider down"}
	}
	return services.TranslationOutcome{Success: true, TranslatedText: "[" + targetLanguage + "] " + text}
}

func (f *fakeTranslator) TranslateSummary(ctx context.Context, text, targetLanguage string, summaryType types.SummaryType) services.TranslationOutcome {
	return f.Translate(ctx, text, targetLanguage)
}

func (f *fakeTranslator) IsSupported(languageCode string) bool { return true }

func newTestSynthesizer(t *testing.T) (*Synthesizer, *fakeTranslator) {
	t.Helper()
	tr := &fakeTranslator{}
	return NewSynthesizer(newTestLogger(t), tr), tr
}

func TestSynthesizeZeroSuccessFallback(t *testing.T) {
	s, _ := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:      IntentSearch,
		ToolsToCall: []string{ToolSearchRecords},
		ToolResults: map[string]ToolResult{
			ToolSearchRecords: failure(context.DeadlineExceeded),
		},
	}

	s.Synthesize(context.Background(), st)

	if st.FinalResponse != noResultsResponse {
		t.Fatalf("response = %q", st.FinalResponse)
	}
	if st.Confidence != 0.0 {
		t.Fatalf("confidence = %v, want 0", st.Confidence)
	}
	if len(st.Sources) == 0 || len(st.SuggestedActions) == 0 {
		t.Fatalf("sources/actions must still be populated: %v / %v", st.Sources, st.SuggestedActions)
	}
}

func TestSynthesizePartialFailure(t *testing.T) {
	s, _ := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:      IntentSearch,
		ToolsToCall: []string{"a", "b"},
		ToolResults: map[string]ToolResult{
			"a": {Success: true, Search: &SearchReport{Records: []types.HealthRecord{{Title: "Knee", Ailment: "sprain"}}}},
			"b": failure(context.DeadlineExceeded),
		},
	}

	s.Synthesize(context.Background(), st)

	if st.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", st.Confidence)
	}
	if !strings.Contains(st.FinalResponse, "Knee") {
		t.Fatalf("successful section missing: %q", st.FinalResponse)
	}
	if !strings.Contains(st.FinalResponse, "problem with part of your request") {
		t.Fatalf("failure line missing: %q", st.FinalResponse)
	}
}

func TestSynthesizeSectionsFollowRequestOrder(t *testing.T) {
	s, _ := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:      IntentGeneral,
		ToolsToCall: []string{ToolDrugLookup, ToolSearchRecords},
		ToolResults: map[string]ToolResult{
			ToolSearchRecords: {Success: true, Search: &SearchReport{Records: []types.HealthRecord{{Title: "Knee"}}}},
			ToolDrugLookup:    {Success: true, Drug: &DrugReport{DrugName: "aspirin", Info: services.DrugInfo{Summary: "pain relief"}}},
		},
	}

	s.Synthesize(context.Background(), st)

	drugIdx := strings.Index(st.FinalResponse, "About aspirin")
	searchIdx := strings.Index(st.FinalResponse, "Search Results")
	if drugIdx < 0 || searchIdx < 0 || drugIdx > searchIdx {
		t.Fatalf("sections out of request order: %q", st.FinalResponse)
	}
}

func TestSynthesizePrescriptionNeverSaysUnknown(t *testing.T) {
	s, _ := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:      IntentPrescription,
		ToolsToCall: []string{ToolLatestPrescription},
		ToolResults: map[string]ToolResult{
			ToolLatestPrescription: {Success: true, Prescription: &PrescriptionReport{
				Latest:           &types.Medication{Name: "Unknown", CreatedAt: time.Now()},
				TotalMedications: 1,
			}},
		},
	}

	s.Synthesize(context.Background(), st)

	if strings.Contains(st.FinalResponse, "Unknown") {
		t.Fatalf("response leaked placeholder name: %q", st.FinalResponse)
	}
	if !strings.Contains(st.FinalResponse, "not specified") {
		t.Fatalf("expected 'not specified', got %q", st.FinalResponse)
	}
}

func TestSynthesizeTranslatesForPatient(t *testing.T) {
	s, tr := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:         IntentSearch,
		UserRole:       types.RolePatient,
		TargetLanguage: "hi-IN",
		ToolsToCall:    []string{ToolSearchRecords},
		ToolResults: map[string]ToolResult{
			ToolSearchRecords: {Success: true, Search: &SearchReport{Records: []types.HealthRecord{{Title: "Knee"}}}},
		},
	}

	s.Synthesize(context.Background(), st)

	if len(tr.calls) == 0 {
		t.Fatalf("translator was never called")
	}
	if !strings.HasPrefix(st.FinalResponse, "[hi-IN]") {
		t.Fatalf("response not translated: %q", st.FinalResponse)
	}
}

func TestSynthesizeNeverTranslatesForDoctor(t *testing.T) {
	s, tr := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:         IntentSearch,
		UserRole:       types.RoleDoctor,
		TargetLanguage: "hi-IN",
		ToolsToCall:    []string{ToolSearchRecords},
		ToolResults: map[string]ToolResult{
			ToolSearchRecords: {Success: true, Search: &SearchReport{Records: []types.HealthRecord{{Title: "Knee"}}}},
		},
	}

	s.Synthesize(context.Background(), st)

	if len(tr.calls) != 0 {
		t.Fatalf("clinician responses must not be translated: %v", tr.calls)
	}
}

func TestSynthesizeTranslationFailureFallsBack(t *testing.T) {
	s, tr := newTestSynthesizer(t)
	tr.fail = true
	st := &PipelineState{
		Intent:         IntentSearch,
		UserRole:       types.RolePatient,
		TargetLanguage: "hi-IN",
		ToolsToCall:    []string{ToolSearchRecords},
		ToolResults: map[string]ToolResult{
			ToolSearchRecords: {Success: true, Search: &SearchReport{Records: []types.HealthRecord{{Title: "Knee"}}}},
		},
	}

	s.Synthesize(context.Background(), st)

	if !strings.Contains(st.FinalResponse, "Knee") {
		t.Fatalf("original text should survive a failed translation: %q", st.FinalResponse)
	}
}

func TestSynthesizeDoctorSeesClinicalSummary(t *testing.T) {
	s, _ := newTestSynthesizer(t)
	st := &PipelineState{
		Intent:      IntentSummary,
		UserRole:    types.RoleDoctor,
		ToolsToCall: []string{ToolGenerateSummary},
		ToolResults: map[string]ToolResult{
			ToolGenerateSummary: {Success: true, Summary: &SummaryReport{
				Record: &types.HealthRecord{Title: "Knee"},
				Summary: types.SummaryResult{
					LaymanSummary: "your knee is healing",
					DoctorSummary: "ligament shows reduced effusion",
				},
			}},
		},
	}

	s.Synthesize(context.Background(), st)

	if !strings.Contains(st.FinalResponse, "reduced effusion") {
		t.Fatalf("clinical fragment missing: %q", st.FinalResponse)
	}
	if strings.Contains(st.FinalResponse, "your knee is healing") {
		t.Fatalf("patient fragment leaked into clinician response: %q", st.FinalResponse)
	}
}
