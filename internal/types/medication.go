package types

import "time"

type MedicationStatus string

const (
	MedicationActive       MedicationStatus = "ACTIVE"
	MedicationDiscontinued MedicationStatus = "DISCONTINUED"
	MedicationPending      MedicationStatus = "PENDING_APPROVAL"
)

type Medication struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Dosage       string           `json:"dosage"`
	Frequency    string           `json:"frequency"`
	Status       MedicationStatus `json:"status"`
	PrescribedBy string           `json:"prescribed_by"`
	CreatedAt    time.Time        `json:"created_at"`

	// Filled in when medications are collected across records.
	HealthRecordID    string `json:"health_record_id,omitempty"`
	HealthRecordTitle string `json:"health_record_title,omitempty"`
}
