package types

import "time"

type FileStatus string

const (
	FileProcessing FileStatus = "PROCESSING"
	FileProcessed  FileStatus = "PROCESSED"
)

// MedicalFile is a document attached to exactly one health record.
type MedicalFile struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	Category      string     `json:"category"`
	ParsedContent string     `json:"parsed_content,omitempty"`
	LaymanSummary string     `json:"layman_summary,omitempty"`
	DoctorSummary string     `json:"doctor_summary,omitempty"`
	Status        FileStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}
