package types

type UserRole string

const (
	RolePatient UserRole = "PATIENT"
	RoleDoctor  UserRole = "DOCTOR"
)

type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Role           UserRole `json:"role"`
	Specialization string   `json:"specialization,omitempty"`
}
