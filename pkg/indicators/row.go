// Package indicators define a tabela de indicadores por município e o snapshot
// gravado a cada ciclo de carga.
package indicators

import (
	"math"
	"strconv"

	"github.com/raywall/healthdata-loader/pkg/municipality"
)

// Faixas realistas de cada indicador.
type Range struct {
	Min, Max float64
}

func (r Range) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	OccupancyRange    = Range{45, 95}
	PenetrationRange  = Range{8, 45}
	ConnectivityRange = Range{15, 120}
	ResolutionRange   = Range{35, 90}
	Coverage4GRange   = Range{65, 99}
)

// IndicatorRow é uma linha da tabela de trabalho.
type IndicatorRow struct {
	Municipality     string                `json:"municipio"`
	Code             string                `json:"codigo_ibge,omitempty"`
	State            string                `json:"uf"`
	Category         municipality.Category `json:"tipo"`
	Population       int                   `json:"populacao"`
	SUSBeds          int                   `json:"leitos_sus,omitempty"`
	Occupancy        float64               `json:"ocupacao_hospitalar"`
	PlanPenetration  float64               `json:"penetracao_planos"`
	Connectivity     float64               `json:"conectividade_mbps"`
	LocalResolution  float64               `json:"resolutividade_local"`
	Coverage4G       float64               `json:"cobertura_4g"`
	Latitude         float64               `json:"latitude"`
	Longitude        float64               `json:"longitude"`
	PerformanceScore float64               `json:"performance_score"`
}

// Round1 arredonda para uma casa decimal (meio para longe de zero).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scoreNormalization divide a soma ponderada. Os pesos já somam 1, então a
// nota fica na mesma escala 0-100 dos indicadores.
const scoreNormalization = 1.0

// PerformanceScore é a nota composta usada tanto nos dados reais quanto nos
// simulados. Ocupação entra invertida (menor ocupação é melhor) e a
// conectividade, em Mbps, tem teto em 100.
func PerformanceScore(occupancy, penetration, connectivity, resolution float64) float64 {
	conn := math.Min(connectivity, 100)
	score := (0.30*(100-occupancy) + 0.25*penetration + 0.25*conn + 0.20*resolution) / scoreNormalization
	return Round1(score)
}

// Score calcula a nota composta da linha.
func (r IndicatorRow) Score() float64 {
	return PerformanceScore(r.Occupancy, r.PlanPenetration, r.Connectivity, r.LocalResolution)
}

// InRange indica se os cinco indicadores estão dentro das faixas realistas.
func (r IndicatorRow) InRange() bool {
	return OccupancyRange.Contains(r.Occupancy) &&
		PenetrationRange.Contains(r.PlanPenetration) &&
		ConnectivityRange.Contains(r.Connectivity) &&
		ResolutionRange.Contains(r.LocalResolution) &&
		Coverage4GRange.Contains(r.Coverage4G)
}

// CSVHeader é o cabeçalho do arquivo tabular.
func CSVHeader() []string {
	return []string{
		"municipio", "codigo_ibge", "uf", "tipo", "populacao", "leitos_sus",
		"ocupacao_hospitalar", "penetracao_planos", "conectividade_mbps",
		"resolutividade_local", "cobertura_4g", "latitude", "longitude",
		"performance_score",
	}
}

// CSVRecord serializa a linha na mesma ordem de CSVHeader.
func (r IndicatorRow) CSVRecord() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		r.Municipality,
		r.Code,
		r.State,
		string(r.Category),
		strconv.Itoa(r.Population),
		strconv.Itoa(r.SUSBeds),
		f(r.Occupancy),
		f(r.PlanPenetration),
		f(r.Connectivity),
		f(r.LocalResolution),
		f(r.Coverage4G),
		f(r.Latitude),
		f(r.Longitude),
		f(r.PerformanceScore),
	}
}
