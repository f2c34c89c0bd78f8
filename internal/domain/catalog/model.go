// Package catalog resolves form display values against the small
// enumeration tables (sexo, estado civil, informante).
package catalog

import "fmt"

// Name identifies a catalog table.
type Name string

const (
	Sexo         Name = "sexo"
	EstadoCivil  Name = "estado_civil"
	InformadoPor Name = "informado_por"
)

// Known lists every catalog the service exposes.
var Known = []Name{Sexo, EstadoCivil, InformadoPor}

func ParseName(s string) (Name, error) {
	for _, n := range Known {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown catalog %q", s)
}

// Entry is one catalog value.
type Entry struct {
	ID     int32  `json:"id"`
	Nombre string `json:"nombre"`
}
