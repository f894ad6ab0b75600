package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebridge/carebridge-backend/internal/types"
)

const recordListLimit = 1000

// ListHealthRecords returns every record owned by a patient, newest
// first, optionally bounded by creation date (RFC 3339 or YYYY-MM-DD).
func (s *Service) ListHealthRecords(ctx context.Context, patientID, dateFrom, dateTo string) ([]types.HealthRecord, error) {
	cypher := `
MATCH (patient:User {id: $patient_id})-[:OWNS]->(hr:HealthRecord)
WHERE ($date_from = '' OR hr.created_at >= datetime($date_from))
  AND ($date_to = '' OR hr.created_at <= datetime($date_to))
OPTIONAL MATCH (doctor:User)-[:MANAGES]->(hr)
RETURN hr, patient.name AS patient_name, doctor.name AS doctor_name
ORDER BY hr.created_at DESC
LIMIT $limit
`
	rows, err := s.RunRead(ctx, cypher, map[string]any{
		"patient_id": patientID,
		"date_from":  normalizeDateBound(dateFrom, false),
		"date_to":    normalizeDateBound(dateTo, true),
		"limit":      recordListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list health records: %w", err)
	}
	records := make([]types.HealthRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeHealthRecord(row))
	}
	return records, nil
}

func (s *Service) GetHealthRecord(ctx context.Context, recordID string) (*types.HealthRecord, error) {
	cypher := `
MATCH (hr:HealthRecord {id: $record_id})
OPTIONAL MATCH (patient:User)-[:OWNS]->(hr)
OPTIONAL MATCH (doctor:User)-[:MANAGES]->(hr)
RETURN hr, patient.name AS patient_name, doctor.name AS doctor_name
`
	rows, err := s.RunRead(ctx, cypher, map[string]any{"record_id": recordID})
	if err != nil {
		return nil, fmt.Errorf("get health record: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := decodeHealthRecord(rows[0])
	return &rec, nil
}

func (s *Service) ListFiles(ctx context.Context, recordID string) ([]types.MedicalFile, error) {
	cypher := `
MATCH (hr:HealthRecord {id: $record_id})-[:HAS_FILE]->(f:File)
RETURN f
ORDER BY f.created_at ASC
LIMIT $limit
`
	rows, err := s.RunRead(ctx, cypher, map[string]any{
		"record_id": recordID,
		"limit":     recordListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	files := make([]types.MedicalFile, 0, len(rows))
	for _, row := range rows {
		props := nodeProps(row["f"])
		files = append(files, types.MedicalFile{
			ID:            propString(props, "id"),
			Filename:      propString(props, "filename"),
			Category:      propString(props, "category"),
			ParsedContent: propString(props, "parsed_content"),
			LaymanSummary: propString(props, "layman_summary"),
			DoctorSummary: propString(props, "doctor_summary"),
			Status:        types.FileStatus(propString(props, "status")),
			CreatedAt:     propTime(props, "created_at"),
		})
	}
	return files, nil
}

func (s *Service) ListMedications(ctx context.Context, recordID string) ([]types.Medication, error) {
	cypher := `
MATCH (hr:HealthRecord {id: $record_id})-[:HAS_MEDICATION]->(m:Medication)
OPTIONAL MATCH (prescriber:User)-[:PRESCRIBED]->(m)
RETURN m, hr.title AS record_title, prescriber.name AS prescriber_name
ORDER BY m.created_at ASC
`
	rows, err := s.RunRead(ctx, cypher, map[string]any{"record_id": recordID})
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	meds := make([]types.Medication, 0, len(rows))
	for _, row := range rows {
		props := nodeProps(row["m"])
		prescriber := propString(props, "prescribed_by")
		if prescriber == "" {
			prescriber = rowString(row, "prescriber_name")
		}
		meds = append(meds, types.Medication{
			ID:                propString(props, "id"),
			Name:              propString(props, "medicine_name"),
			Dosage:            propString(props, "dosage"),
			Frequency:         propString(props, "frequency"),
			Status:            types.MedicationStatus(propString(props, "status")),
			PrescribedBy:      prescriber,
			CreatedAt:         propTime(props, "created_at"),
			HealthRecordID:    recordID,
			HealthRecordTitle: rowString(row, "record_title"),
		})
	}
	return meds, nil
}

func decodeHealthRecord(row map[string]any) types.HealthRecord {
	props := nodeProps(row["hr"])
	return types.HealthRecord{
		ID:             propString(props, "id"),
		Title:          propString(props, "title"),
		Ailment:        propString(props, "ailment"),
		Status:         propString(props, "status"),
		LaymanSummary:  propString(props, "layman_summary"),
		MedicalSummary: propString(props, "medical_summary"),
		CreatedAt:      propTime(props, "created_at"),
		LastActivity:   propTime(props, "last_activity"),
		PatientName:    rowString(row, "patient_name"),
		DoctorName:     rowString(row, "doctor_name"),
	}
}

// normalizeDateBound widens a bare date to a full datetime so Cypher's
// datetime() accepts it; end bounds extend to the end of the day.
func normalizeDateBound(v string, end bool) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) == len("2006-01-02") {
		if end {
			return v + "T23:59:59Z"
		}
		return v + "T00:00:00Z"
	}
	return v
}
