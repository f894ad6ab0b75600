package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/services"
	"github.com/carebridge/carebridge-backend/internal/types"
)

// Fixed tool catalog.
const (
	ToolHistoryReport      = "history-report"
	ToolLatestPrescription = "latest-prescription"
	ToolSearchRecords      = "search-records"
	ToolGenerateSummary    = "generate-summary"
	ToolQueryRecord        = "query-record"
	ToolDrugLookup         = "drug-lookup"
)

// GraphStore is the slice of the graph query service the tools need.
type GraphStore interface {
	ListHealthRecords(ctx context.Context, patientID, dateFrom, dateTo string) ([]types.HealthRecord, error)
	GetHealthRecord(ctx context.Context, recordID string) (*types.HealthRecord, error)
	ListFiles(ctx context.Context, recordID string) ([]types.MedicalFile, error)
	ListMedications(ctx context.Context, recordID string) ([]types.Medication, error)
	SearchHealthRecords(ctx context.Context, query, userID string, role types.UserRole) ([]types.HealthRecord, error)
	SearchFiles(ctx context.Context, query, userID string, role types.UserRole) ([]types.MedicalFile, error)
}

// ToolFunc runs one tool against the current pipeline state. The
// closure built in NewRegistry binds exactly the state fields the tool
// needs; implementations never touch the state themselves.
type ToolFunc func(ctx context.Context, st *PipelineState) ToolResult

type ToolDeps struct {
	Graph     GraphStore
	Summaries services.SummaryService
	Drugs     services.DrugInfoService
	Log       *logger.Logger
}

// NewRegistry builds the tool-name -> implementation map injected into
// the pipeline. The explicit parameter binding per tool is deliberate:
// every field a tool reads from PipelineState is visible right here.
func NewRegistry(deps ToolDeps) map[string]ToolFunc {
	t := &toolset{deps: deps}
	return map[string]ToolFunc{
		ToolHistoryReport: func(ctx context.Context, st *PipelineState) ToolResult {
			return t.historyReport(ctx, st.UserID, "", "")
		},
		ToolLatestPrescription: func(ctx context.Context, st *PipelineState) ToolResult {
			return t.latestPrescription(ctx, st.UserID)
		},
		ToolSearchRecords: func(ctx context.Context, st *PipelineState) ToolResult {
			return t.searchRecords(ctx, st.Query, st.UserID, st.UserRole)
		},
		ToolGenerateSummary: func(ctx context.Context, st *PipelineState) ToolResult {
			return t.generateSummary(ctx, st.HealthRecordID)
		},
		ToolQueryRecord: func(ctx context.Context, st *PipelineState) ToolResult {
			return t.queryRecord(ctx, st.HealthRecordID, st.UserID, st.UserRole, st.Query)
		},
		ToolDrugLookup: func(ctx context.Context, st *PipelineState) ToolResult {
			return t.drugLookup(ctx, st.Query)
		},
	}
}

type toolset struct {
	deps ToolDeps
}

// historyReport assembles every record and file the patient has into
// one document and asks for a combined summary for both audiences.
func (t *toolset) historyReport(ctx context.Context, patientID, dateFrom, dateTo string) ToolResult {
	records, err := t.deps.Graph.ListHealthRecords(ctx, patientID, dateFrom, dateTo)
	if err != nil {
		return failure(fmt.Errorf("fetch health records: %w", err))
	}

	// File fetches fan out per record; results land by index so the
	// assembled document stays in record order regardless of
	// completion order.
	filesByRecord := make([][]types.MedicalFile, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range records {
		i := i
		recordID := records[i].ID
		g.Go(func() error {
			files, err := t.deps.Graph.ListFiles(gctx, recordID)
			if err != nil {
				return fmt.Errorf("fetch files for record %s: %w", recordID, err)
			}
			filesByRecord[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failure(err)
	}

	var allFiles []types.MedicalFile
	for _, files := range filesByRecord {
		allFiles = append(allFiles, files...)
	}

	doc, err := json.Marshal(struct {
		HealthRecords []types.HealthRecord `json:"health_records"`
		Files         []types.MedicalFile  `json:"files"`
	}{records, allFiles})
	if err != nil {
		return failure(fmt.Errorf("encode history document: %w", err))
	}

	summary := t.deps.Summaries.Summarize(ctx, string(doc), types.SummaryBoth,
		"Complete medical history for patient "+patientID)

	return ToolResult{
		Success: true,
		History: &HistoryReport{
			RecordCount: len(records),
			FileCount:   len(allFiles),
			Summary:     summary,
		},
	}
}

// latestPrescription picks the medication with the newest creation
// timestamp across all of the patient's records. Ties keep the first
// occurrence in record order, so the result is deterministic.
func (t *toolset) latestPrescription(ctx context.Context, patientID string) ToolResult {
	records, err := t.deps.Graph.ListHealthRecords(ctx, patientID, "", "")
	if err != nil {
		return failure(fmt.Errorf("fetch health records: %w", err))
	}

	var all []types.Medication
	for _, rec := range records {
		meds, err := t.deps.Graph.ListMedications(ctx, rec.ID)
		if err != nil {
			return failure(fmt.Errorf("fetch medications for record %s: %w", rec.ID, err))
		}
		all = append(all, meds...)
	}

	if len(all) == 0 {
		return ToolResult{
			Success:      true,
			Prescription: &PrescriptionReport{},
		}
	}

	latest := all[0]
	for _, med := range all[1:] {
		if med.CreatedAt.After(latest.CreatedAt) {
			latest = med
		}
	}

	report := &PrescriptionReport{
		Latest:           &latest,
		TotalMedications: len(all),
	}

	name := strings.TrimSpace(latest.Name)
	if name != "" && !strings.EqualFold(name, services.UnknownDrugName) {
		report.MedicineInfo = t.deps.Drugs.Lookup(ctx, name).Summary
	}

	return ToolResult{Success: true, Prescription: report}
}

func (t *toolset) searchRecords(ctx context.Context, query, userID string, role types.UserRole) ToolResult {
	records, err := t.deps.Graph.SearchHealthRecords(ctx, query, userID, role)
	if err != nil {
		return failure(fmt.Errorf("search health records: %w", err))
	}
	files, err := t.deps.Graph.SearchFiles(ctx, query, userID, role)
	if err != nil {
		return failure(fmt.Errorf("search files: %w", err))
	}
	return ToolResult{
		Success: true,
		Search:  &SearchReport{Records: records, Files: files},
	}
}

func (t *toolset) generateSummary(ctx context.Context, recordID string) ToolResult {
	if strings.TrimSpace(recordID) == "" {
		return failure(fmt.Errorf("health record id required for summary generation"))
	}
	record, err := t.deps.Graph.GetHealthRecord(ctx, recordID)
	if err != nil {
		return failure(fmt.Errorf("fetch health record: %w", err))
	}
	if record == nil {
		return failure(fmt.Errorf("health record not found"))
	}
	files, err := t.deps.Graph.ListFiles(ctx, recordID)
	if err != nil {
		return failure(fmt.Errorf("fetch files: %w", err))
	}

	summary := t.deps.Summaries.Summarize(ctx, recordDocument(record, files), types.SummaryBoth,
		"Health summary for record "+record.Title)

	return ToolResult{
		Success: true,
		Summary: &SummaryReport{
			Record:    record,
			FileCount: len(files),
			Summary:   summary,
		},
	}
}

// queryRecord answers a free-text question against one record. The
// audience follows the requester's role: patients get plain language,
// clinicians get clinical detail.
func (t *toolset) queryRecord(ctx context.Context, recordID, userID string, role types.UserRole, query string) ToolResult {
	if strings.TrimSpace(recordID) == "" {
		return failure(fmt.Errorf("health record id required to query a record"))
	}
	record, err := t.deps.Graph.GetHealthRecord(ctx, recordID)
	if err != nil {
		return failure(fmt.Errorf("fetch health record: %w", err))
	}
	if record == nil {
		return failure(fmt.Errorf("health record not found"))
	}
	files, err := t.deps.Graph.ListFiles(ctx, recordID)
	if err != nil {
		return failure(fmt.Errorf("fetch files: %w", err))
	}

	summaryType := types.SummaryLayman
	if role == types.RoleDoctor {
		summaryType = types.SummaryDoctor
	}
	result := t.deps.Summaries.Summarize(ctx, recordDocument(record, files), summaryType,
		"Answer the user's question directly: "+query)

	answer := result.LaymanSummary
	if summaryType == types.SummaryDoctor {
		answer = result.DoctorSummary
	}

	return ToolResult{
		Success: true,
		RecordQuery: &RecordQueryReport{
			Record:    record,
			FileCount: len(files),
			Answer:    answer,
		},
	}
}

// drugLookup never fails: extraction falls back to a placeholder name
// and the lookup degrades to a fixed advisory message.
func (t *toolset) drugLookup(ctx context.Context, query string) ToolResult {
	name := t.deps.Drugs.ExtractDrugName(query)
	info := t.deps.Drugs.Lookup(ctx, name)
	return ToolResult{
		Success: true,
		Drug:    &DrugReport{DrugName: name, Info: info},
	}
}

func recordDocument(record *types.HealthRecord, files []types.MedicalFile) string {
	var b strings.Builder
	b.WriteString("Title: " + record.Title + "\n")
	b.WriteString("Ailment: " + record.Ailment + "\n")
	b.WriteString("Status: " + record.Status + "\n")
	if record.MedicalSummary != "" {
		b.WriteString("Medical summary: " + record.MedicalSummary + "\n")
	}
	if record.LaymanSummary != "" {
		b.WriteString("Patient summary: " + record.LaymanSummary + "\n")
	}
	for _, f := range files {
		b.WriteString("\nFile: " + f.Filename + " (" + f.Category + ")\n")
		if f.ParsedContent != "" {
			b.WriteString(f.ParsedContent + "\n")
		} else if f.DoctorSummary != "" {
			b.WriteString(f.DoctorSummary + "\n")
		} else if f.LaymanSummary != "" {
			b.WriteString(f.LaymanSummary + "\n")
		}
	}
	return b.String()
}
