package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Yes/No answer literals used by the form.
const (
	Si = "Sí"
	No = "No"
)

// YesNoDetail is a tagged answer; Details only matters when Value is Si.
// Only positive answers are stored, so a pair read back is either nil or
// has Value Si.
type YesNoDetail struct {
	Value   string `json:"value"`
	Details string `json:"details"`
}

func (p *YesNoDetail) Positive() bool {
	return p != nil && p.Value == Si
}

// OptionalInt is a number that the form may send as "" when unset.
type OptionalInt struct {
	Value int
	Valid bool
}

func IntOf(v int) OptionalInt { return OptionalInt{Value: v, Valid: true} }

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null.
func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*o = OptionalInt{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*o = OptionalInt{}
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected a whole number or \"\", got %s", string(b))
	}
	*o = IntOf(n)
	return nil
}

// Content is the full clinical history form.
type Content struct {
	PatientData        PatientData        `json:"patientData"`
	Antecedents        Antecedents        `json:"antecedents"`
	ConsultationReason ConsultationReason `json:"consultationReason"`
	SystemReview       SystemReview       `json:"systemReview"`
	PhysicalExam       PhysicalExam       `json:"physicalExam"`
	Valuations         Valuations         `json:"valuations"`
}

// NewContent returns an empty document with non-nil collections.
func NewContent() *Content {
	return &Content{
		Antecedents:  Antecedents{Medicamentos: []Medication{}},
		PhysicalExam: PhysicalExam{Areas: map[string]AreaFinding{}},
		Valuations:   Valuations{Geriatrico: map[string]GeriatricFinding{}},
	}
}

type PatientData struct {
	Fecha             string      `json:"fecha"`
	InformadoPor      string      `json:"informadoPor"`
	InformadoPorOtro  string      `json:"informadoPorOtro"`
	Nombre            string      `json:"nombre"`
	Apellidos         string      `json:"apellidos"`
	Edad              OptionalInt `json:"edad"`
	Sexo              string      `json:"sexo"`
	EstadoCivil       string      `json:"estadoCivil"`
	Direccion         string      `json:"direccion"`
	Telefono          string      `json:"telefono"`
	NumeroRecord      string      `json:"numeroRecord"`
	RegistroGeriatria string      `json:"registroGeriatria"`
}

type Medication struct {
	Medicamento string `json:"medicamento"`
	Dosis       string `json:"dosis"`
	TiempoUso   string `json:"tiempoUso"`
	Prescrito   string `json:"prescrito"`
	NoPrescrito string `json:"noPrescrito"`
}

func (m Medication) Blank() bool {
	return blank(m.Medicamento) && blank(m.Dosis) && blank(m.TiempoUso) &&
		blank(m.Prescrito) && blank(m.NoPrescrito)
}

type Antecedents struct {
	Hipertension     *YesNoDetail `json:"hipertension,omitempty"`
	DiabetesMellitus *YesNoDetail `json:"diabetesMellitus,omitempty"`
	Alergias         *YesNoDetail `json:"alergias,omitempty"`
	Epoc             *YesNoDetail `json:"epoc,omitempty"`
	Transfusiones    *YesNoDetail `json:"transfusiones,omitempty"`
	Cirugias         *YesNoDetail `json:"cirugias,omitempty"`
	OtrosPatologicos string       `json:"otrosPatologicos"`

	Tabaco       *YesNoDetail `json:"tabaco,omitempty"`
	Alcohol      *YesNoDetail `json:"alcohol,omitempty"`
	Tisanas      *YesNoDetail `json:"tisanas,omitempty"`
	OtrosToxicos string       `json:"otrosToxicos"`

	Medicamentos []Medication `json:"medicamentos"`

	HipertensionFam       string `json:"hipertensionFam"`
	DiabetesFam           string `json:"diabetesFam"`
	TbpFam                string `json:"tbpFam"`
	CancerFam             string `json:"cancerFam"`
	EnfermedadCardiacaFam string `json:"enfermedadCardiacaFam"`
	DemenciasFam          string `json:"demenciasFam"`
	OtrosFam              string `json:"otrosFam"`
}

type ConsultationReason struct {
	Motivo     string `json:"motivo"`
	Desarrollo string `json:"desarrollo"`
}

type SystemReview struct {
	Fiebre              *YesNoDetail `json:"fiebre,omitempty"`
	AltVision           *YesNoDetail `json:"altVision,omitempty"`
	AltAudicion         *YesNoDetail `json:"altAudicion,omitempty"`
	AltMasticacion      *YesNoDetail `json:"altMasticacion,omitempty"`
	AltDeglucion        *YesNoDetail `json:"altDeglucion,omitempty"`
	Mareos              *YesNoDetail `json:"mareos,omitempty"`
	Cefalea             *YesNoDetail `json:"cefalea,omitempty"`
	AltCognicion        *YesNoDetail `json:"altCognicion,omitempty"`
	DolorToracico       *YesNoDetail `json:"dolorToracico,omitempty"`
	Disnea              *YesNoDetail `json:"disnea,omitempty"`
	Nauseas             *YesNoDetail `json:"nauseas,omitempty"`
	Vomito              *YesNoDetail `json:"vomito,omitempty"`
	Pirosis             *YesNoDetail `json:"pirosis,omitempty"`
	Diarrea             *YesNoDetail `json:"diarrea,omitempty"`
	Estrenimiento       *YesNoDetail `json:"estrenimiento,omitempty"`
	AltOsteoarticulares *YesNoDetail `json:"altOsteoarticulares,omitempty"`
	AltPiel             *YesNoDetail `json:"altPiel,omitempty"`
	AltGenitourinarias  *YesNoDetail `json:"altGenitourinarias,omitempty"`
	AlteracionSueno     *YesNoDetail `json:"alteracionSueno,omitempty"`
	Otros               string       `json:"otros"`
}

type AreaFinding struct {
	Normal     string `json:"normal"`
	Patologico string `json:"patologico"`
}

type Reflexes struct {
	Bicipital string `json:"bicipital"`
	Rotuliano string `json:"rotuliano"`
	Aquiliano string `json:"aquiliano"`
}

type PhysicalExam struct {
	Peso                   string                 `json:"peso"`
	Talla                  string                 `json:"talla"`
	Temp                   string                 `json:"temp"`
	Pulso                  string                 `json:"pulso"`
	TaAcostado             string                 `json:"taAcostado"`
	TaSentado              string                 `json:"taSentado"`
	TaDePie                string                 `json:"taDePie"`
	FrecuenciaRespiratoria string                 `json:"frecuenciaRespiratoria"`
	FrecuenciaCardiaca     string                 `json:"frecuenciaCardiaca"`
	PerimetroAbdominal     string                 `json:"perimetroAbdominal"`
	ExamenMental           string                 `json:"examenMental"`
	Apariencia             string                 `json:"apariencia"`
	Hidratacion            string                 `json:"hidratacion"`
	PielAnexos             string                 `json:"pielAnexos"`
	Areas                  map[string]AreaFinding `json:"areas"`
	FuerzaMuscularGrados   string                 `json:"fuerzaMuscularGrados"`
	TonoMuscularGrados     string                 `json:"tonoMuscularGrados"`
	Rots                   Reflexes               `json:"rots"`
	CutaneoPlantar         string                 `json:"cutaneoPlantar"`
}

// Living arrangements accepted for Valuations.ConQuienVive.
var livingArrangements = map[string]bool{
	"": true, "Solo": true, "Hijos": true, "Conyuge": true, "Cuidadores": true,
}

type GeriatricFinding struct {
	Presente     string `json:"presente"`
	Intervencion string `json:"intervencion"`
}

type Valuations struct {
	FuncionalMesAntes        int                         `json:"funcionalMesAntes"`
	FuncionalIngreso         int                         `json:"funcionalIngreso"`
	PsiquicaMesAntes         int                         `json:"psiquicaMesAntes"`
	PsiquicaIngreso          int                         `json:"psiquicaIngreso"`
	PesoActual               string                      `json:"pesoActual"`
	PesoIdeal                string                      `json:"pesoIdeal"`
	DiferenciaPeso           string                      `json:"diferenciaPeso"`
	ValoracionSocialResumida string                      `json:"valoracionSocialResumida"`
	ConQuienVive             string                      `json:"conQuienVive"`
	SoporteMedicamentos      string                      `json:"soporteMedicamentos"`
	SoporteCuidados          string                      `json:"soporteCuidados"`
	SoporteAlimentos         string                      `json:"soporteAlimentos"`
	Geriatrico               map[string]GeriatricFinding `json:"geriatrico"`
	RealizadoPor             string                      `json:"realizadoPor"`
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
