package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carebridge/carebridge-backend/internal/services"
	"github.com/carebridge/carebridge-backend/internal/types"
)

type fakeGraph struct {
	records    []types.HealthRecord
	record     *types.HealthRecord
	files      map[string][]types.MedicalFile
	meds       map[string][]types.Medication
	searchRecs []types.HealthRecord
	searchFile []types.MedicalFile

	listErr   error
	medsErr   error
	searchErr error
}

func (f *fakeGraph) ListHealthRecords(_ context.Context, _, _, _ string) ([]types.HealthRecord, error) {
	return f.records, f.listErr
}

func (f *fakeGraph) GetHealthRecord(_ context.Context, recordID string) (*types.HealthRecord, error) {
	return f.record, nil
}

func (f *fakeGraph) ListFiles(_ context.Context, recordID string) ([]types.MedicalFile, error) {
	return f.files[recordID], nil
}

func (f *fakeGraph) ListMedications(_ context.Context, recordID string) ([]types.Medication, error) {
	return f.meds[recordID], f.medsErr
}

func (f *fakeGraph) SearchHealthRecords(_ context.Context, _, _ string, _ types.UserRole) ([]types.HealthRecord, error) {
	return f.searchRecs, f.searchErr
}

func (f *fakeGraph) SearchFiles(_ context.Context, _, _ string, _ types.UserRole) ([]types.MedicalFile, error) {
	return f.searchFile, f.searchErr
}

type fakeSummaries struct {
	lastType    types.SummaryType
	lastContext string
}

func (f *fakeSummaries) Summarize(_ context.Context, content string, summaryType types.SummaryType, extraContext string) types.SummaryResult {
	f.lastType = summaryType
	f.lastContext = extraContext
	return types.SummaryResult{LaymanSummary: "plain summary", DoctorSummary: "clinical summary"}
}

type fakeDrugs struct {
	lookups []string
}

func (f *fakeDrugs) Lookup(_ context.Context, drugName string) services.DrugInfo {
	f.lookups = append(f.lookups, drugName)
	return services.DrugInfo{Summary: "info for " + drugName}
}

func (f *fakeDrugs) ExtractDrugName(query string) string {
	return "aspirin"
}

func testRegistry(t *testing.T, graph GraphStore) (map[string]ToolFunc, *fakeSummaries, *fakeDrugs) {
	t.Helper()
	summaries := &fakeSummaries{}
	drugs := &fakeDrugs{}
	registry := NewRegistry(ToolDeps{
		Graph:     graph,
		Summaries: summaries,
		Drugs:     drugs,
		Log:       newTestLogger(t),
	})
	return registry, summaries, drugs
}

func TestLatestPrescriptionPicksNewest(t *testing.T) {
	day := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return ts
	}
	graph := &fakeGraph{
		records: []types.HealthRecord{{ID: "r1"}, {ID: "r2"}},
		meds: map[string][]types.Medication{
			"r1": {
				{Name: "amoxicillin", CreatedAt: day("2024-01-10")},
				{Name: "ibuprofen", CreatedAt: day("2024-03-01")},
			},
			"r2": {
				{Name: "metformin", CreatedAt: day("2024-02-20")},
			},
		},
	}
	registry, _, drugs := testRegistry(t, graph)

	st := &PipelineState{UserID: "p1"}
	result := registry[ToolLatestPrescription](context.Background(), st)

	if !result.Success || result.Prescription == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	rep := result.Prescription
	if rep.Latest == nil || rep.Latest.Name != "ibuprofen" {
		t.Fatalf("latest = %+v, want ibuprofen", rep.Latest)
	}
	if rep.TotalMedications != 3 {
		t.Fatalf("total = %d, want 3", rep.TotalMedications)
	}
	if len(drugs.lookups) != 1 || drugs.lookups[0] != "ibuprofen" {
		t.Fatalf("drug lookups = %v", drugs.lookups)
	}
	if rep.MedicineInfo != "info for ibuprofen" {
		t.Fatalf("medicine info = %q", rep.MedicineInfo)
	}
}

func TestLatestPrescriptionTieKeepsFirst(t *testing.T) {
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	graph := &fakeGraph{
		records: []types.HealthRecord{{ID: "r1"}},
		meds: map[string][]types.Medication{
			"r1": {
				{Name: "first", CreatedAt: ts},
				{Name: "second", CreatedAt: ts},
			},
		},
	}
	registry, _, _ := testRegistry(t, graph)

	result := registry[ToolLatestPrescription](context.Background(), &PipelineState{UserID: "p1"})
	if result.Prescription.Latest.Name != "first" {
		t.Fatalf("tie should keep first occurrence, got %q", result.Prescription.Latest.Name)
	}
}

func TestLatestPrescriptionSkipsLookupForUnknownName(t *testing.T) {
	graph := &fakeGraph{
		records: []types.HealthRecord{{ID: "r1"}},
		meds: map[string][]types.Medication{
			"r1": {{Name: "Unknown", CreatedAt: time.Now()}},
		},
	}
	registry, _, drugs := testRegistry(t, graph)

	result := registry[ToolLatestPrescription](context.Background(), &PipelineState{UserID: "p1"})
	if !result.Success {
		t.Fatalf("unexpected failure: %+v", result)
	}
	if len(drugs.lookups) != 0 {
		t.Fatalf("no lookup expected for unknown medicine, got %v", drugs.lookups)
	}
	if result.Prescription.MedicineInfo != "" {
		t.Fatalf("medicine info should be empty, got %q", result.Prescription.MedicineInfo)
	}
}

func TestLatestPrescriptionNoMedications(t *testing.T) {
	graph := &fakeGraph{records: []types.HealthRecord{{ID: "r1"}}}
	registry, _, _ := testRegistry(t, graph)

	result := registry[ToolLatestPrescription](context.Background(), &PipelineState{UserID: "p1"})
	if !result.Success {
		t.Fatalf("empty medication list is not an error: %+v", result)
	}
	if result.Prescription.Latest != nil || result.Prescription.TotalMedications != 0 {
		t.Fatalf("unexpected report: %+v", result.Prescription)
	}
}

func TestHistoryReportCountsRecordsAndFiles(t *testing.T) {
	graph := &fakeGraph{
		records: []types.HealthRecord{{ID: "r1", Title: "Knee"}, {ID: "r2", Title: "Flu"}},
		files: map[string][]types.MedicalFile{
			"r1": {{ID: "f1"}, {ID: "f2"}},
			"r2": {{ID: "f3"}},
		},
	}
	registry, summaries, _ := testRegistry(t, graph)

	st := &PipelineState{UserID: "p1"}
	result := registry[ToolHistoryReport](context.Background(), st)

	if !result.Success || result.History == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.History.RecordCount != 2 || result.History.FileCount != 3 {
		t.Fatalf("counts = %d/%d, want 2/3", result.History.RecordCount, result.History.FileCount)
	}
	if summaries.lastType != types.SummaryBoth {
		t.Fatalf("history summary should target both audiences, got %q", summaries.lastType)
	}
}

func TestHistoryReportGraphFailure(t *testing.T) {
	graph := &fakeGraph{listErr: errors.New("connection refused")}
	registry, _, _ := testRegistry(t, graph)

	result := registry[ToolHistoryReport](context.Background(), &PipelineState{UserID: "p1"})
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.Error == "" {
		t.Fatalf("failure must carry an error message")
	}
}

func TestQueryRecordAudienceFollowsRole(t *testing.T) {
	graph := &fakeGraph{record: &types.HealthRecord{ID: "r1", Title: "Knee"}}

	cases := []struct {
		name     string
		role     types.UserRole
		wantType types.SummaryType
		want     string
	}{
		{"patient_gets_layman", types.RolePatient, types.SummaryLayman, "plain summary"},
		{"doctor_gets_clinical", types.RoleDoctor, types.SummaryDoctor, "clinical summary"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			registry, summaries, _ := testRegistry(t, graph)
			st := &PipelineState{UserID: "u1", UserRole: tc.role, HealthRecordID: "r1", Query: "is it healing"}
			result := registry[ToolQueryRecord](context.Background(), st)

			if !result.Success || result.RecordQuery == nil {
				t.Fatalf("unexpected result: %+v", result)
			}
			if summaries.lastType != tc.wantType {
				t.Fatalf("summary type = %q, want %q", summaries.lastType, tc.wantType)
			}
			if result.RecordQuery.Answer != tc.want {
				t.Fatalf("answer = %q, want %q", result.RecordQuery.Answer, tc.want)
			}
		})
	}
}

func TestQueryRecordRequiresRecordID(t *testing.T) {
	registry, _, _ := testRegistry(t, &fakeGraph{})
	result := registry[ToolQueryRecord](context.Background(), &PipelineState{UserID: "u1"})
	if result.Success {
		t.Fatalf("missing record id must fail, got %+v", result)
	}
}

func TestGenerateSummaryRequiresRecordID(t *testing.T) {
	registry, _, _ := testRegistry(t, &fakeGraph{})
	result := registry[ToolGenerateSummary](context.Background(), &PipelineState{UserID: "u1"})
	if result.Success {
		t.Fatalf("missing record id must fail, got %+v", result)
	}
}

func TestDrugLookupAlwaysSucceeds(t *testing.T) {
	registry, _, drugs := testRegistry(t, &fakeGraph{})

	st := &PipelineState{Query: "tell me about aspirin"}
	result := registry[ToolDrugLookup](context.Background(), st)

	if !result.Success || result.Drug == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Drug.DrugName != "aspirin" {
		t.Fatalf("drug name = %q", result.Drug.DrugName)
	}
	if len(drugs.lookups) != 1 {
		t.Fatalf("lookups = %v", drugs.lookups)
	}
}

func TestSearchRecordsTool(t *testing.T) {
	graph := &fakeGraph{
		searchRecs: []types.HealthRecord{{ID: "r1", Title: "Knee"}},
		searchFile: []types.MedicalFile{{ID: "f1", Filename: "xray.pdf"}},
	}
	registry, _, _ := testRegistry(t, graph)

	result := registry[ToolSearchRecords](context.Background(), &PipelineState{Query: "knee", UserID: "u1"})
	if !result.Success || result.Search == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Search.Total() != 2 {
		t.Fatalf("total = %d, want 2", result.Search.Total())
	}
}
