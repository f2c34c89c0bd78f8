package history

import (
	"fmt"
	"sort"
)

// Column describes one child-table column. Int columns carry int values in
// a Row; all others carry string.
type Column struct {
	Name string
	Int  bool
}

// Row holds one child-table row in Section.Columns order, without the
// paciente_id foreign key.
type Row []any

// Section maps one part of the form onto one child table. Extract yields
// the rows to insert for a document; Apply rehydrates a document from the
// rows read back. Apply(Extract(c)) reproduces every field that is stored.
type Section struct {
	Name    string
	Table   string
	Columns []Column
	Extract func(c *Content) []Row
	Apply   func(c *Content, rows []Row) error
}

func (s Section) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Sections is the write and read order of the child tables.
var Sections = []Section{
	antecedentSection,
	medicationSection,
	consultationSection,
	systemReviewSection,
	physicalExamSection,
	examAreaSection,
	valuationSection,
	geriatricSection,
}

// -- keyed sections: (categoria, clave, detalle) --

type keyedEntry struct {
	categoria string
	clave     string
	pair      func(c *Content) **YesNoDetail
	text      func(c *Content) *string
}

func pairEntry(categoria, clave string, f func(c *Content) **YesNoDetail) keyedEntry {
	return keyedEntry{categoria: categoria, clave: clave, pair: f}
}

func textEntry(categoria, clave string, f func(c *Content) *string) keyedEntry {
	return keyedEntry{categoria: categoria, clave: clave, text: f}
}

var keyedColumns = []Column{{Name: "categoria"}, {Name: "clave"}, {Name: "detalle"}}

// keyedSection stores positive pairs and non-blank texts, one row each.
func keyedSection(name, table string, entries []keyedEntry) Section {
	index := make(map[[2]string]keyedEntry, len(entries))
	for _, e := range entries {
		index[[2]string{e.categoria, e.clave}] = e
	}

	return Section{
		Name:    name,
		Table:   table,
		Columns: keyedColumns,
		Extract: func(c *Content) []Row {
			var rows []Row
			for _, e := range entries {
				if e.pair != nil {
					if p := *e.pair(c); p.Positive() {
						rows = append(rows, Row{e.categoria, e.clave, p.Details})
					}
					continue
				}
				if v := *e.text(c); !blank(v) {
					rows = append(rows, Row{e.categoria, e.clave, v})
				}
			}
			return rows
		},
		Apply: func(c *Content, rows []Row) error {
			for _, r := range rows {
				cat, key, detalle := r[0].(string), r[1].(string), r[2].(string)
				e, ok := index[[2]string{cat, key}]
				if !ok {
					return fmt.Errorf("%s: unknown entry %s/%s", table, cat, key)
				}
				if e.pair != nil {
					*e.pair(c) = &YesNoDetail{Value: Si, Details: detalle}
				} else {
					*e.text(c) = detalle
				}
			}
			return nil
		},
	}
}

var antecedentEntries = []keyedEntry{
	pairEntry("patologico", "hipertension", func(c *Content) **YesNoDetail { return &c.Antecedents.Hipertension }),
	pairEntry("patologico", "diabetesMellitus", func(c *Content) **YesNoDetail { return &c.Antecedents.DiabetesMellitus }),
	pairEntry("patologico", "alergias", func(c *Content) **YesNoDetail { return &c.Antecedents.Alergias }),
	pairEntry("patologico", "epoc", func(c *Content) **YesNoDetail { return &c.Antecedents.Epoc }),
	pairEntry("patologico", "transfusiones", func(c *Content) **YesNoDetail { return &c.Antecedents.Transfusiones }),
	pairEntry("patologico", "cirugias", func(c *Content) **YesNoDetail { return &c.Antecedents.Cirugias }),
	textEntry("patologico", "otrosPatologicos", func(c *Content) *string { return &c.Antecedents.OtrosPatologicos }),

	pairEntry("toxico", "tabaco", func(c *Content) **YesNoDetail { return &c.Antecedents.Tabaco }),
	pairEntry("toxico", "alcohol", func(c *Content) **YesNoDetail { return &c.Antecedents.Alcohol }),
	pairEntry("toxico", "tisanas", func(c *Content) **YesNoDetail { return &c.Antecedents.Tisanas }),
	textEntry("toxico", "otrosToxicos", func(c *Content) *string { return &c.Antecedents.OtrosToxicos }),

	textEntry("familiar", "hipertensionFam", func(c *Content) *string { return &c.Antecedents.HipertensionFam }),
	textEntry("familiar", "diabetesFam", func(c *Content) *string { return &c.Antecedents.DiabetesFam }),
	textEntry("familiar", "tbpFam", func(c *Content) *string { return &c.Antecedents.TbpFam }),
	textEntry("familiar", "cancerFam", func(c *Content) *string { return &c.Antecedents.CancerFam }),
	textEntry("familiar", "enfermedadCardiacaFam", func(c *Content) *string { return &c.Antecedents.EnfermedadCardiacaFam }),
	textEntry("familiar", "demenciasFam", func(c *Content) *string { return &c.Antecedents.DemenciasFam }),
	textEntry("familiar", "otrosFam", func(c *Content) *string { return &c.Antecedents.OtrosFam }),
}

var antecedentSection = keyedSection("antecedents", "antecedente", antecedentEntries)

func symptom(clave string, f func(r *SystemReview) **YesNoDetail) keyedEntry {
	return pairEntry("sintoma", clave, func(c *Content) **YesNoDetail { return f(&c.SystemReview) })
}

var systemReviewEntries = []keyedEntry{
	symptom("fiebre", func(r *SystemReview) **YesNoDetail { return &r.Fiebre }),
	symptom("altVision", func(r *SystemReview) **YesNoDetail { return &r.AltVision }),
	symptom("altAudicion", func(r *SystemReview) **YesNoDetail { return &r.AltAudicion }),
	symptom("altMasticacion", func(r *SystemReview) **YesNoDetail { return &r.AltMasticacion }),
	symptom("altDeglucion", func(r *SystemReview) **YesNoDetail { return &r.AltDeglucion }),
	symptom("mareos", func(r *SystemReview) **YesNoDetail { return &r.Mareos }),
	symptom("cefalea", func(r *SystemReview) **YesNoDetail { return &r.Cefalea }),
	symptom("altCognicion", func(r *SystemReview) **YesNoDetail { return &r.AltCognicion }),
	symptom("dolorToracico", func(r *SystemReview) **YesNoDetail { return &r.DolorToracico }),
	symptom("disnea", func(r *SystemReview) **YesNoDetail { return &r.Disnea }),
	symptom("nauseas", func(r *SystemReview) **YesNoDetail { return &r.Nauseas }),
	symptom("vomito", func(r *SystemReview) **YesNoDetail { return &r.Vomito }),
	symptom("pirosis", func(r *SystemReview) **YesNoDetail { return &r.Pirosis }),
	symptom("diarrea", func(r *SystemReview) **YesNoDetail { return &r.Diarrea }),
	symptom("estrenimiento", func(r *SystemReview) **YesNoDetail { return &r.Estrenimiento }),
	symptom("altOsteoarticulares", func(r *SystemReview) **YesNoDetail { return &r.AltOsteoarticulares }),
	symptom("altPiel", func(r *SystemReview) **YesNoDetail { return &r.AltPiel }),
	symptom("altGenitourinarias", func(r *SystemReview) **YesNoDetail { return &r.AltGenitourinarias }),
	symptom("alteracionSueno", func(r *SystemReview) **YesNoDetail { return &r.AlteracionSueno }),
	textEntry("otros", "otros", func(c *Content) *string { return &c.SystemReview.Otros }),
}

var systemReviewSection = keyedSection("systemReview", "revision_sistema", systemReviewEntries)

// -- singleton sections: at most one row, written when any field is set --

type scalarField struct {
	column string
	text   func(c *Content) *string
	num    func(c *Content) *int
}

func textField(column string, f func(c *Content) *string) scalarField {
	return scalarField{column: column, text: f}
}

func intField(column string, f func(c *Content) *int) scalarField {
	return scalarField{column: column, num: f}
}

func singletonSection(name, table string, fields []scalarField) Section {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Name: f.column, Int: f.num != nil}
	}

	return Section{
		Name:    name,
		Table:   table,
		Columns: cols,
		Extract: func(c *Content) []Row {
			row := make(Row, len(fields))
			set := false
			for i, f := range fields {
				if f.num != nil {
					v := *f.num(c)
					row[i] = v
					set = set || v != 0
					continue
				}
				v := *f.text(c)
				row[i] = v
				set = set || !blank(v)
			}
			if !set {
				return nil
			}
			return []Row{row}
		},
		Apply: func(c *Content, rows []Row) error {
			if len(rows) > 1 {
				return fmt.Errorf("%s: expected at most one row, got %d", table, len(rows))
			}
			for _, r := range rows {
				for i, f := range fields {
					if f.num != nil {
						*f.num(c) = r[i].(int)
					} else {
						*f.text(c) = r[i].(string)
					}
				}
			}
			return nil
		},
	}
}

var consultationSection = singletonSection("consultationReason", "motivo_consulta", []scalarField{
	textField("motivo", func(c *Content) *string { return &c.ConsultationReason.Motivo }),
	textField("desarrollo", func(c *Content) *string { return &c.ConsultationReason.Desarrollo }),
})

func exam(column string, f func(e *PhysicalExam) *string) scalarField {
	return textField(column, func(c *Content) *string { return f(&c.PhysicalExam) })
}

var physicalExamSection = singletonSection("physicalExam", "examen_fisico", []scalarField{
	exam("peso", func(e *PhysicalExam) *string { return &e.Peso }),
	exam("talla", func(e *PhysicalExam) *string { return &e.Talla }),
	exam("temp", func(e *PhysicalExam) *string { return &e.Temp }),
	exam("pulso", func(e *PhysicalExam) *string { return &e.Pulso }),
	exam("ta_acostado", func(e *PhysicalExam) *string { return &e.TaAcostado }),
	exam("ta_sentado", func(e *PhysicalExam) *string { return &e.TaSentado }),
	exam("ta_de_pie", func(e *PhysicalExam) *string { return &e.TaDePie }),
	exam("frecuencia_respiratoria", func(e *PhysicalExam) *string { return &e.FrecuenciaRespiratoria }),
	exam("frecuencia_cardiaca", func(e *PhysicalExam) *string { return &e.FrecuenciaCardiaca }),
	exam("perimetro_abdominal", func(e *PhysicalExam) *string { return &e.PerimetroAbdominal }),
	exam("examen_mental", func(e *PhysicalExam) *string { return &e.ExamenMental }),
	exam("apariencia", func(e *PhysicalExam) *string { return &e.Apariencia }),
	exam("hidratacion", func(e *PhysicalExam) *string { return &e.Hidratacion }),
	exam("piel_anexos", func(e *PhysicalExam) *string { return &e.PielAnexos }),
	exam("fuerza_muscular_grados", func(e *PhysicalExam) *string { return &e.FuerzaMuscularGrados }),
	exam("tono_muscular_grados", func(e *PhysicalExam) *string { return &e.TonoMuscularGrados }),
	exam("rot_bicipital", func(e *PhysicalExam) *string { return &e.Rots.Bicipital }),
	exam("rot_rotuliano", func(e *PhysicalExam) *string { return &e.Rots.Rotuliano }),
	exam("rot_aquiliano", func(e *PhysicalExam) *string { return &e.Rots.Aquiliano }),
	exam("cutaneo_plantar", func(e *PhysicalExam) *string { return &e.CutaneoPlantar }),
})

func valuation(column string, f func(v *Valuations) *string) scalarField {
	return textField(column, func(c *Content) *string { return f(&c.Valuations) })
}

func scale(column string, f func(v *Valuations) *int) scalarField {
	return intField(column, func(c *Content) *int { return f(&c.Valuations) })
}

var valuationSection = singletonSection("valuations", "valoracion", []scalarField{
	scale("funcional_mes_antes", func(v *Valuations) *int { return &v.FuncionalMesAntes }),
	scale("funcional_ingreso", func(v *Valuations) *int { return &v.FuncionalIngreso }),
	scale("psiquica_mes_antes", func(v *Valuations) *int { return &v.PsiquicaMesAntes }),
	scale("psiquica_ingreso", func(v *Valuations) *int { return &v.PsiquicaIngreso }),
	valuation("peso_actual", func(v *Valuations) *string { return &v.PesoActual }),
	valuation("peso_ideal", func(v *Valuations) *string { return &v.PesoIdeal }),
	valuation("diferencia_peso", func(v *Valuations) *string { return &v.DiferenciaPeso }),
	valuation("valoracion_social_resumida", func(v *Valuations) *string { return &v.ValoracionSocialResumida }),
	valuation("con_quien_vive", func(v *Valuations) *string { return &v.ConQuienVive }),
	valuation("soporte_medicamentos", func(v *Valuations) *string { return &v.SoporteMedicamentos }),
	valuation("soporte_cuidados", func(v *Valuations) *string { return &v.SoporteCuidados }),
	valuation("soporte_alimentos", func(v *Valuations) *string { return &v.SoporteAlimentos }),
	valuation("realizado_por", func(v *Valuations) *string { return &v.RealizadoPor }),
})

// -- list and map sections --

var medicationSection = Section{
	Name:  "medicamentos",
	Table: "medicamento",
	Columns: []Column{
		{Name: "orden", Int: true},
		{Name: "medicamento"}, {Name: "dosis"}, {Name: "tiempo_uso"},
		{Name: "prescrito"}, {Name: "no_prescrito"},
	},
	Extract: func(c *Content) []Row {
		var rows []Row
		for i, m := range c.Antecedents.Medicamentos {
			if m.Blank() {
				continue
			}
			rows = append(rows, Row{i, m.Medicamento, m.Dosis, m.TiempoUso, m.Prescrito, m.NoPrescrito})
		}
		return rows
	},
	Apply: func(c *Content, rows []Row) error {
		sorted := append([]Row(nil), rows...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i][0].(int) < sorted[j][0].(int) })

		meds := make([]Medication, 0, len(sorted))
		for _, r := range sorted {
			meds = append(meds, Medication{
				Medicamento: r[1].(string),
				Dosis:       r[2].(string),
				TiempoUso:   r[3].(string),
				Prescrito:   r[4].(string),
				NoPrescrito: r[5].(string),
			})
		}
		c.Antecedents.Medicamentos = meds
		return nil
	},
}

var examAreaSection = Section{
	Name:    "areas",
	Table:   "examen_fisico_area",
	Columns: []Column{{Name: "area"}, {Name: "normal"}, {Name: "patologico"}},
	Extract: func(c *Content) []Row {
		var rows []Row
		for _, area := range sortedKeys(c.PhysicalExam.Areas) {
			f := c.PhysicalExam.Areas[area]
			if blank(f.Normal) && blank(f.Patologico) {
				continue
			}
			rows = append(rows, Row{area, f.Normal, f.Patologico})
		}
		return rows
	},
	Apply: func(c *Content, rows []Row) error {
		if c.PhysicalExam.Areas == nil {
			c.PhysicalExam.Areas = make(map[string]AreaFinding, len(rows))
		}
		for _, r := range rows {
			c.PhysicalExam.Areas[r[0].(string)] = AreaFinding{Normal: r[1].(string), Patologico: r[2].(string)}
		}
		return nil
	},
}

var geriatricSection = Section{
	Name:    "geriatrico",
	Table:   "valoracion_geriatrica",
	Columns: []Column{{Name: "sindrome"}, {Name: "intervencion"}},
	Extract: func(c *Content) []Row {
		var rows []Row
		for _, s := range sortedKeys(c.Valuations.Geriatrico) {
			f := c.Valuations.Geriatrico[s]
			if f.Presente != Si {
				continue
			}
			rows = append(rows, Row{s, f.Intervencion})
		}
		return rows
	},
	Apply: func(c *Content, rows []Row) error {
		if c.Valuations.Geriatrico == nil {
			c.Valuations.Geriatrico = make(map[string]GeriatricFinding, len(rows))
		}
		for _, r := range rows {
			c.Valuations.Geriatrico[r[0].(string)] = GeriatricFinding{Presente: Si, Intervencion: r[1].(string)}
		}
		return nil
	},
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
