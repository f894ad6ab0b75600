package types

import "time"

type HealthRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Ailment        string    `json:"ailment"`
	Status         string    `json:"status"`
	LaymanSummary  string    `json:"layman_summary,omitempty"`
	MedicalSummary string    `json:"medical_summary,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`

	// Relationship attributes carried along on reads; ownership itself
	// lives on the OWNS/MANAGES edges in the graph.
	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}
