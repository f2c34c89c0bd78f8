package history

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

const dateLayout = "2006-01-02"

// Column widths of the parent snapshot table.
var maxLengths = []struct {
	field string
	max   int
	get   func(p *PatientData) string
}{
	{"nombre", 100, func(p *PatientData) string { return p.Nombre }},
	{"apellidos", 150, func(p *PatientData) string { return p.Apellidos }},
	{"numeroRecord", 50, func(p *PatientData) string { return p.NumeroRecord }},
	{"informadoPorOtro", 150, func(p *PatientData) string { return p.InformadoPorOtro }},
	{"direccion", 255, func(p *PatientData) string { return p.Direccion }},
	{"telefono", 50, func(p *PatientData) string { return p.Telefono }},
	{"registroGeriatria", 50, func(p *PatientData) string { return p.RegistroGeriatria }},
}

// Validator checks a document before it is persisted. When PhoneRegion is
// set, telefono must be a valid number for that region.
type Validator struct {
	PhoneRegion string
}

// Prepare trims identifying fields, defaults fecha to today and validates
// the document. All problems are reported together.
func (v Validator) Prepare(c *Content, today time.Time) error {
	p := &c.PatientData
	p.Nombre = strings.TrimSpace(p.Nombre)
	p.Apellidos = strings.TrimSpace(p.Apellidos)
	p.NumeroRecord = strings.TrimSpace(p.NumeroRecord)
	p.Fecha = strings.TrimSpace(p.Fecha)
	if p.Fecha == "" {
		p.Fecha = today.Format(dateLayout)
	}

	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if p.Nombre == "" {
		add("nombre is required")
	}
	if p.Apellidos == "" {
		add("apellidos is required")
	}
	if p.NumeroRecord == "" {
		add("numeroRecord is required")
	}
	if _, err := time.Parse(dateLayout, p.Fecha); err != nil {
		add("fecha must be a date in YYYY-MM-DD form, got %q", p.Fecha)
	}
	if p.Edad.Valid && (p.Edad.Value < 0 || p.Edad.Value > 150) {
		add("edad must be between 0 and 150, got %d", p.Edad.Value)
	}
	for _, f := range maxLengths {
		if n := utf8.RuneCountInString(f.get(p)); n > f.max {
			add("%s must be at most %d characters", f.field, f.max)
		}
	}
	if v.PhoneRegion != "" && !blank(p.Telefono) {
		if !validPhone(p.Telefono, v.PhoneRegion) {
			add("telefono %q is not a valid %s phone number", p.Telefono, v.PhoneRegion)
		}
	}

	for _, pair := range yesNoPairs(c) {
		if pair.value != nil && !validAnswer(pair.value.Value) {
			add("%s.value must be \"Sí\", \"No\" or \"\", got %q", pair.name, pair.value.Value)
		}
	}

	val := &c.Valuations
	for _, s := range []struct {
		name  string
		value int
	}{
		{"funcionalMesAntes", val.FuncionalMesAntes},
		{"funcionalIngreso", val.FuncionalIngreso},
		{"psiquicaMesAntes", val.PsiquicaMesAntes},
		{"psiquicaIngreso", val.PsiquicaIngreso},
	} {
		if s.value < 0 || s.value > 5 {
			add("%s must be between 0 and 5, got %d", s.name, s.value)
		}
	}
	if !livingArrangements[val.ConQuienVive] {
		add("conQuienVive must be one of Solo, Hijos, Conyuge, Cuidadores or empty, got %q", val.ConQuienVive)
	}
	for _, k := range sortedKeys(val.Geriatrico) {
		if !validAnswer(val.Geriatrico[k].Presente) {
			add("geriatrico.%s.presente must be \"Sí\", \"No\" or \"\", got %q", k, val.Geriatrico[k].Presente)
		}
		if blank(k) || utf8.RuneCountInString(k) > 50 {
			add("geriatrico key %q is not valid", k)
		}
	}
	for _, k := range sortedKeys(c.PhysicalExam.Areas) {
		if blank(k) || utf8.RuneCountInString(k) > 50 {
			add("areas key %q is not valid", k)
		}
	}

	if len(problems) > 0 {
		return apperr.Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

func validAnswer(s string) bool {
	return s == Si || s == No || s == ""
}

func validPhone(number, region string) bool {
	num, err := phonenumbers.Parse(number, strings.ToUpper(region))
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

type namedPair struct {
	name  string
	value *YesNoDetail
}

// yesNoPairs lists every tagged answer in the document, using the keyed
// section tables as the source of truth.
func yesNoPairs(c *Content) []namedPair {
	var out []namedPair
	for _, group := range []struct {
		prefix  string
		entries []keyedEntry
	}{
		{"antecedents", antecedentEntries},
		{"systemReview", systemReviewEntries},
	} {
		for _, e := range group.entries {
			if e.pair != nil {
				out = append(out, namedPair{name: group.prefix + "." + e.clave, value: *e.pair(c)})
			}
		}
	}
	return out
}
