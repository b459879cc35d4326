package indicators

import (
	"encoding/json"
	"testing"

	"github.com/raywall/healthdata-loader/pkg/municipality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name                     string
		occ, pen, conn, res, out float64
	}{
		// 0.3*22 + 0.25*32 + 0.25*84 + 0.2*75 = 6.6 + 8 + 21 + 15
		{"Capital típica", 78, 32, 84, 75, 50.6},
		// 0.3*28 + 0.25*18 + 0.25*42 + 0.2*58 = 8.4 + 4.5 + 10.5 + 11.6 = 35.0
		{"Interior típico", 72, 18, 42, 58, 35.0},
		// conectividade acima de 100 Mbps satura em 100
		{"Conectividade saturada", 45, 40, 120, 90, 69.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.out, PerformanceScore(tt.occ, tt.pen, tt.conn, tt.res), 1e-9)
		})
	}

	t.Run("Conectividade conta em Mbps até o teto", func(t *testing.T) {
		assert.Equal(t, PerformanceScore(60, 20, 100, 50), PerformanceScore(60, 20, 250, 50))
		// cada Mbps abaixo do teto vale 0.25 ponto
		assert.InDelta(t, 2.5, PerformanceScore(60, 20, 100, 50)-PerformanceScore(60, 20, 90, 50), 1e-9)
	})

	t.Run("Menor ocupação melhora a nota", func(t *testing.T) {
		assert.Greater(t, PerformanceScore(50, 20, 50, 50), PerformanceScore(90, 20, 50, 50))
	})
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 78.3, Round1(78.25))
	assert.Equal(t, -8.3, Round1(-8.25))
	assert.Equal(t, 12.0, Round1(11.96))
}

func TestRange(t *testing.T) {
	assert.Equal(t, 45.0, OccupancyRange.Clamp(10))
	assert.Equal(t, 120.0, ConnectivityRange.Clamp(400))
	assert.Equal(t, 70.0, Coverage4GRange.Clamp(70))
	assert.True(t, ResolutionRange.Contains(35))
	assert.False(t, PenetrationRange.Contains(45.1))
}

func TestIndicatorRow_Serialization(t *testing.T) {
	row := IndicatorRow{
		Municipality:     "São Luís",
		Code:             "2111300",
		State:            "MA",
		Category:         municipality.Capital,
		Population:       1108975,
		Occupancy:        81.2,
		PlanPenetration:  29.4,
		Connectivity:     88,
		LocalResolution:  71.5,
		Coverage4G:       96.1,
		Latitude:         -2.5387,
		Longitude:        -44.2825,
		PerformanceScore: 48.9,
	}

	t.Run("JSON canônico", func(t *testing.T) {
		b, err := json.Marshal(row)
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &m))
		assert.Equal(t, "São Luís", m["municipio"])
		assert.Equal(t, "CAPITAL", m["tipo"])
		assert.Equal(t, 81.2, m["ocupacao_hospitalar"])
		assert.NotContains(t, m, "leitos_sus")
	})

	t.Run("CSV alinhado ao cabeçalho", func(t *testing.T) {
		rec := row.CSVRecord()
		require.Len(t, rec, len(CSVHeader()))
		assert.Equal(t, "São Luís", rec[0])
		assert.Equal(t, "CAPITAL", rec[3])
		assert.Equal(t, "88", rec[8])
		assert.Equal(t, "-44.2825", rec[12])
	})

	assert.True(t, row.InRange())
	row.Coverage4G = 100
	assert.False(t, row.InRange())
}

func TestSummarize(t *testing.T) {
	rows := []IndicatorRow{
		{Category: municipality.Capital, Occupancy: 80, PlanPenetration: 30, Connectivity: 90, LocalResolution: 70, Coverage4G: 95, PerformanceScore: 50},
		{Category: municipality.Capital, Occupancy: 70, PlanPenetration: 34, Connectivity: 80, LocalResolution: 80, Coverage4G: 97, PerformanceScore: 54},
		{Category: municipality.Interior, Occupancy: 60, PlanPenetration: 20, Connectivity: 40, LocalResolution: 60, Coverage4G: 80, PerformanceScore: 40},
	}

	s := Summarize(rows)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Capitals)
	assert.Equal(t, 1, s.Interior)
	assert.Equal(t, 70.0, s.AvgOccupancy)
	assert.Equal(t, 28.0, s.AvgPlanPenetration)
	assert.Equal(t, 70.0, s.AvgConnectivity)
	assert.Equal(t, 70.0, s.AvgLocalResolution)
	assert.Equal(t, 90.7, s.Avg4GCoverage)
	assert.Equal(t, 48.0, s.AvgPerformance)

	assert.Equal(t, Summary{}, Summarize(nil))
}
