package graph

import (
	"context"
	"fmt"

	"github.com/carebridge/carebridge-backend/internal/types"
)

const searchLimit = 20

// SearchHealthRecords runs a case-insensitive containment search over
// record titles and ailments, scoped to what the requester may see:
// patients search records they own, doctors records they manage.
func (s *Service) SearchHealthRecords(ctx context.Context, query, userID string, role types.UserRole) ([]types.HealthRecord, error) {
	scope := `MATCH (patient:User {id: $user_id})-[:OWNS]->(hr:HealthRecord)`
	if role == types.RoleDoctor {
		scope = `MATCH (doctor:User {id: $user_id})-[:MANAGES]->(hr:HealthRecord)`
	}
	cypher := scope + `
WHERE toLower(hr.title) CONTAINS toLower($query)
   OR toLower(hr.ailment) CONTAINS toLower($query)
OPTIONAL MATCH (p:User)-[:OWNS]->(hr)
OPTIONAL MATCH (d:User)-[:MANAGES]->(hr)
RETURN hr, p.name AS patient_name, d.name AS doctor_name
LIMIT $limit
`
	rows, err := s.RunRead(ctx, cypher, map[string]any{
		"user_id": userID,
		"query":   query,
		"limit":   searchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search health records: %w", err)
	}
	records := make([]types.HealthRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeHealthRecord(row))
	}
	return records, nil
}

// SearchFiles searches filenames, parsed content, and the summary
// matching the requester's audience (layman for patients, doctor for
// clinicians), under the same ownership scoping as record search.
func (s *Service) SearchFiles(ctx context.Context, query, userID string, role types.UserRole) ([]types.MedicalFile, error) {
	scope := `MATCH (patient:User {id: $user_id})-[:OWNS]->(hr:HealthRecord)-[:HAS_FILE]->(f:File)`
	summaryField := "f.layman_summary"
	if role == types.RoleDoctor {
		scope = `MATCH (doctor:User {id: $user_id})-[:MANAGES]->(hr:HealthRecord)-[:HAS_FILE]->(f:File)`
		summaryField = "f.doctor_summary"
	}
	cypher := scope + `
WHERE toLower(` + summaryField + `) CONTAINS toLower($query)
   OR toLower(f.filename) CONTAINS toLower($query)
   OR toLower(f.parsed_content) CONTAINS toLower($query)
RETURN f, hr.title AS record_title
LIMIT $limit
`
	rows, err := s.RunRead(ctx, cypher, map[string]any{
		"user_id": userID,
		"query":   query,
		"limit":   searchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
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
