package indicators

import (
	"time"

	"github.com/raywall/healthdata-loader/pkg/municipality"
)

// Provenance diferencia dados vindos da fonte real dos gerados por simulação.
type Provenance string

const (
	Real      Provenance = "REAL"
	Simulated Provenance = "SIMULATED"
)

// Summary agrega a tabela por categoria e média de cada indicador.
type Summary struct {
	Total              int     `json:"total_municipalities"`
	Capitals           int     `json:"capitals"`
	Interior           int     `json:"interior"`
	AvgOccupancy       float64 `json:"avg_occupancy"`
	AvgPlanPenetration float64 `json:"avg_plan_penetration"`
	AvgConnectivity    float64 `json:"avg_connectivity"`
	AvgLocalResolution float64 `json:"avg_local_resolution"`
	Avg4GCoverage      float64 `json:"avg_4g_coverage"`
	AvgPerformance     float64 `json:"avg_performance_score"`
}

// Snapshot é o resultado de um ciclo. Depois de gravado não é mais alterado.
type Snapshot struct {
	ID             string         `json:"id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Source         Provenance     `json:"source"`
	Compliance     string         `json:"compliance"`
	Municipalities []IndicatorRow `json:"municipalities"`
	Summary        Summary        `json:"summary"`
	Rejected       int            `json:"rejected"`
}

// Summarize calcula os agregados. Médias são arredondadas para 1 casa.
func Summarize(rows []IndicatorRow) Summary {
	s := Summary{Total: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var occ, pen, conn, res, cov, perf float64
	for _, r := range rows {
		switch r.Category {
		case municipality.Capital:
			s.Capitals++
		case municipality.Interior:
			s.Interior++
		}
		occ += r.Occupancy
		pen += r.PlanPenetration
		conn += r.Connectivity
		res += r.LocalResolution
		cov += r.Coverage4G
		perf += r.PerformanceScore
	}

	n := float64(len(rows))
	s.AvgOccupancy = Round1(occ / n)
	s.AvgPlanPenetration = Round1(pen / n)
	s.AvgConnectivity = Round1(conn / n)
	s.AvgLocalResolution = Round1(res / n)
	s.Avg4GCoverage = Round1(cov / n)
	s.AvgPerformance = Round1(perf / n)
	return s
}
