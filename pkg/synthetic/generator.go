// Package synthetic gera uma tabela de indicadores estatisticamente realista
// quando a fonte real não está disponível.
package synthetic

import (
	"math/rand/v2"

	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/raywall/healthdata-loader/pkg/municipality"
)

// DefaultSeed garante que execuções repetidas do fallback sejam idênticas.
const DefaultSeed uint64 = 42

// Normal é uma distribuição normal N(Mean, StdDev) truncada em Range.
type Normal struct {
	Mean   float64
	StdDev float64
	Range  indicators.Range
}

// Profile agrupa as distribuições dos cinco indicadores de uma categoria.
type Profile struct {
	Occupancy       Normal
	PlanPenetration Normal
	Connectivity    Normal
	LocalResolution Normal
	Coverage4G      Normal
}

// Perfis observados nas capitais e no interior do Nordeste. Capitais têm
// distribuições mais estreitas e centradas mais alto.
var (
	CapitalProfile = Profile{
		Occupancy:       Normal{78, 8, indicators.OccupancyRange},
		PlanPenetration: Normal{32, 6, indicators.PenetrationRange},
		Connectivity:    Normal{85, 12, indicators.ConnectivityRange},
		LocalResolution: Normal{75, 8, indicators.ResolutionRange},
		Coverage4G:      Normal{95, 3, indicators.Coverage4GRange},
	}
	InteriorProfile = Profile{
		Occupancy:       Normal{72, 10, indicators.OccupancyRange},
		PlanPenetration: Normal{18, 5, indicators.PenetrationRange},
		Connectivity:    Normal{42, 15, indicators.ConnectivityRange},
		LocalResolution: Normal{58, 12, indicators.ResolutionRange},
		Coverage4G:      Normal{82, 8, indicators.Coverage4GRange},
	}
)

// Generator não é seguro para uso concorrente: cada ciclo usa o seu.
type Generator struct {
	rng      *rand.Rand
	profiles map[municipality.Category]Profile
}

// New cria um gerador com PCG semeado. A mesma semente produz a mesma tabela.
func New(seed uint64) *Generator {
	return NewWithSource(rand.NewPCG(seed, seed))
}

// NewWithSource permite injetar qualquer fonte de aleatoriedade.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{
		rng: rand.New(src),
		profiles: map[municipality.Category]Profile{
			municipality.Capital:  CapitalProfile,
			municipality.Interior: InteriorProfile,
		},
	}
}

// sample sorteia, limita à faixa e arredonda para 1 casa.
func (g *Generator) sample(n Normal) float64 {
	v := n.Mean + n.StdDev*g.rng.NormFloat64()
	return indicators.Round1(n.Range.Clamp(v))
}

func (g *Generator) profile(c municipality.Category) Profile {
	if p, ok := g.profiles[c]; ok {
		return p
	}
	return InteriorProfile
}

// Generate produz uma linha por município, na ordem recebida. Os cinco
// indicadores são sorteados na ordem ocupação, planos, conectividade,
// resolutividade e 4G.
func (g *Generator) Generate(records []municipality.Record) []indicators.IndicatorRow {
	rows := make([]indicators.IndicatorRow, 0, len(records))
	for _, rec := range records {
		p := g.profile(rec.Category)
		row := indicators.IndicatorRow{
			Municipality:    rec.Name,
			Code:            rec.Code,
			State:           rec.State,
			Category:        rec.Category,
			Population:      rec.Population,
			Latitude:        rec.Latitude,
			Longitude:       rec.Longitude,
			Occupancy:       g.sample(p.Occupancy),
			PlanPenetration: g.sample(p.PlanPenetration),
			Connectivity:    g.sample(p.Connectivity),
			LocalResolution: g.sample(p.LocalResolution),
			Coverage4G:      g.sample(p.Coverage4G),
		}
		row.PerformanceScore = row.Score()
		rows = append(rows, row)
	}
	return rows
}
