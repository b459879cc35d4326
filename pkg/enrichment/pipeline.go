// Package enrichment transforma linhas brutas no esquema canônico do painel:
// renomeia colunas, junta coordenadas, calcula a nota composta e rejeita
// linhas sem os indicadores obrigatórios.
package enrichment

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/raywall/healthdata-loader/pkg/municipality"
	"github.com/raywall/healthdata-loader/pkg/rules"
	"github.com/rs/zerolog"
)

var ErrInvalidOutput = errors.New("tabela enriquecida inválida")

// Report resume o que aconteceu com as linhas de entrada.
type Report struct {
	Input               int            `json:"input"`
	Accepted            int            `json:"accepted"`
	Rejected            int            `json:"rejected"`
	Reasons             map[string]int `json:"reasons,omitempty"`
	FallbackCoordinates int            `json:"fallback_coordinates"`
}

func (r *Report) reject(reasons ...string) {
	r.Rejected++
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	for _, reason := range reasons {
		r.Reasons[reason]++
	}
}

// Pipeline é sem estado entre chamadas e pode ser compartilhado.
type Pipeline struct {
	dir   *municipality.Directory
	rules *rules.RowRuleSet
	log   zerolog.Logger
}

func NewPipeline(dir *municipality.Directory, ruleSet *rules.RowRuleSet, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		dir:   dir,
		rules: ruleSet,
		log:   log.With().Str("component", "enrichment").Logger(),
	}
}

// Enrich processa as linhas brutas do backend (ou as simuladas convertidas por
// ToRaw). A ordem de entrada é preservada.
func (p *Pipeline) Enrich(raw []map[string]interface{}, source indicators.Provenance) ([]indicators.IndicatorRow, Report) {
	report := Report{Input: len(raw)}
	rows := make([]indicators.IndicatorRow, 0, len(raw))

	for i, r := range raw {
		row, reasons, fallback := p.enrichOne(Normalize(r))
		if len(reasons) > 0 {
			report.reject(reasons...)
			p.log.Warn().Int("index", i).Strs("reasons", reasons).Str("source", string(source)).Msg("linha rejeitada")
			continue
		}

		if id, err := p.rules.Check(RuleInput(row), string(source)); id != "" {
			report.reject("rule:" + id)
			ev := p.log.Warn().Int("index", i).Str("rule", id).Str("municipio", row.Municipality)
			if err != nil {
				ev = ev.Err(err)
			}
			ev.Msg("linha reprovada por regra")
			continue
		}

		if fallback {
			report.FallbackCoordinates++
			p.log.Debug().Str("municipio", row.Municipality).Msg("município sem coordenadas, usando fallback")
		}
		rows = append(rows, row)
	}

	report.Accepted = len(rows)
	p.log.Info().
		Str("source", string(source)).
		Int("input", report.Input).
		Int("accepted", report.Accepted).
		Int("rejected", report.Rejected).
		Int("fallback_coordinates", report.FallbackCoordinates).
		Msg("enriquecimento concluído")

	return rows, report
}

// enrichOne devolve a linha, os motivos de rejeição e se usou coordenada de fallback.
func (p *Pipeline) enrichOne(n map[string]interface{}) (indicators.IndicatorRow, []string, bool) {
	var row indicators.IndicatorRow
	var reasons []string

	row.Municipality = toString(n[FieldMunicipality])
	if row.Municipality == "" {
		reasons = append(reasons, FieldMunicipality)
	}

	required := []struct {
		field string
		dst   *float64
	}{
		{FieldOccupancy, &row.Occupancy},
		{FieldPenetration, &row.PlanPenetration},
		{FieldConnectivity, &row.Connectivity},
		{FieldResolution, &row.LocalResolution},
		{FieldCoverage4G, &row.Coverage4G},
	}
	for _, f := range required {
		v, ok := n[f.field]
		if !ok {
			reasons = append(reasons, f.field)
			continue
		}
		parsed, err := toFloat(v)
		if err != nil {
			reasons = append(reasons, "invalid:"+f.field)
			continue
		}
		*f.dst = parsed
	}
	if len(reasons) > 0 {
		return row, reasons, false
	}

	row.Code = toString(n[FieldCode])
	row.State = strings.ToUpper(toString(n[FieldState]))
	if c, err := municipality.ParseCategory(toString(n[FieldCategory])); err == nil {
		row.Category = c
	}
	if v, ok := n[FieldPopulation]; ok {
		if f, err := toFloat(v); err == nil {
			row.Population = int(f)
		}
	}
	if v, ok := n[FieldSUSBeds]; ok {
		if f, err := toFloat(v); err == nil {
			row.SUSBeds = int(f)
		}
	}

	rec, found := p.dir.Lookup(row.Municipality)
	if !found && row.Code != "" {
		rec, found = p.dir.ByCode(row.Code)
	}
	if found {
		row.Latitude, row.Longitude = rec.Latitude, rec.Longitude
		if row.State == "" {
			row.State = rec.State
		}
		if row.Category == "" {
			row.Category = rec.Category
		}
		if row.Code == "" {
			row.Code = rec.Code
		}
		if row.Population == 0 {
			row.Population = rec.Population
		}
	} else {
		row.Latitude, row.Longitude = municipality.FallbackLatitude, municipality.FallbackLongitude
	}
	if row.Category == "" {
		row.Category = municipality.Interior
	}

	if v, ok := n[FieldScore]; ok {
		if f, err := toFloat(v); err == nil {
			row.PerformanceScore = indicators.Round1(f)
		} else {
			row.PerformanceScore = row.Score()
		}
	} else {
		row.PerformanceScore = row.Score()
	}

	return row, nil, !found
}

// ToRaw converte linhas tipadas (ex.: simuladas) para o formato bruto canônico.
func ToRaw(rows []indicators.IndicatorRow) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, RuleInput(r))
	}
	return out
}

// RuleInput é a linha exposta às regras CEL como "row".
func RuleInput(r indicators.IndicatorRow) map[string]interface{} {
	return map[string]interface{}{
		FieldMunicipality: r.Municipality,
		FieldCode:         r.Code,
		FieldState:        r.State,
		FieldCategory:     string(r.Category),
		FieldPopulation:   int64(r.Population),
		FieldSUSBeds:      int64(r.SUSBeds),
		FieldOccupancy:    r.Occupancy,
		FieldPenetration:  r.PlanPenetration,
		FieldConnectivity: r.Connectivity,
		FieldResolution:   r.LocalResolution,
		FieldCoverage4G:   r.Coverage4G,
		FieldLatitude:     r.Latitude,
		FieldLongitude:    r.Longitude,
		FieldScore:        r.PerformanceScore,
	}
}

// Validate confere o formato da tabela de saída.
func Validate(rows []indicators.IndicatorRow) error {
	var problems []string
	for i, r := range rows {
		if strings.TrimSpace(r.Municipality) == "" {
			problems = append(problems, fmt.Sprintf("linha %d: município vazio", i))
		}
		if r.Category != municipality.Capital && r.Category != municipality.Interior {
			problems = append(problems, fmt.Sprintf("linha %d: categoria '%s'", i, r.Category))
		}
		for name, v := range map[string]float64{
			FieldOccupancy:    r.Occupancy,
			FieldPenetration:  r.PlanPenetration,
			FieldConnectivity: r.Connectivity,
			FieldResolution:   r.LocalResolution,
			FieldCoverage4G:   r.Coverage4G,
			FieldScore:        r.PerformanceScore,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				problems = append(problems, fmt.Sprintf("linha %d: %s não finito", i, name))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidOutput, strings.Join(problems, "\n- "))
	}
	return nil
}
