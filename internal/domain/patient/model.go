package patient

import "github.com/geriatria/historia-clinica/internal/domain/history"

// Patient is one row of the patient list: the entity keyed by record
// number, described by its most recent visit.
type Patient struct {
	ID             int64  `json:"id"`
	NumeroRecord   string `json:"numeroRecord"`
	Nombre         string `json:"nombre"`
	Apellidos      string `json:"apellidos"`
	Telefono       string `json:"telefono"`
	TotalHistorias int    `json:"totalHistorias"`
	UltimaVisita   string `json:"ultimaVisita"`
}

// Detail is one patient together with the demographics of its latest visit.
type Detail struct {
	Patient
	PatientData *history.PatientData `json:"patientData"`
}
