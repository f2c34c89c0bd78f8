package history

import "time"

// Snapshot is one paciente row: the patient's demographics as recorded at
// a visit. One is written per history and never updated.
type Snapshot struct {
	ID           int64
	ExpedienteID int64
	DoctorID     int64
	Fecha        time.Time
	CreatedAt    time.Time

	SexoID         *int32
	EstadoCivilID  *int32
	InformadoPorID *int32

	// Patient holds the scalar fields. On read the catalog fields carry
	// the joined display names, or "" when the foreign key is null.
	Patient PatientData

	DoctorNombre    string
	DoctorApellidos string
}

// History is a fully reconstructed clinical history.
type History struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	DoctorID        int64     `json:"doctor_id"`
	DoctorNombre    string    `json:"doctor_nombre"`
	DoctorApellidos string    `json:"doctor_apellidos"`
	Content         *Content  `json:"content"`
}

// Summary lists a history without its content.
type Summary struct {
	ID              int64     `json:"id"`
	Fecha           string    `json:"fecha"`
	CreatedAt       time.Time `json:"created_at"`
	DoctorID        int64     `json:"doctor_id"`
	DoctorNombre    string    `json:"doctor_nombre"`
	DoctorApellidos string    `json:"doctor_apellidos"`
}

type CreateRequest struct {
	Content *Content `json:"content"`
}

type CreateResponse struct {
	ID int64 `json:"id"`
}
