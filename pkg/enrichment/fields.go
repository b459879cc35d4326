package enrichment

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Nomes canônicos das colunas.
const (
	FieldMunicipality = "municipio"
	FieldCode         = "codigo_ibge"
	FieldState        = "uf"
	FieldCategory     = "tipo"
	FieldPopulation   = "populacao"
	FieldSUSBeds      = "leitos_sus"
	FieldOccupancy    = "ocupacao_hospitalar"
	FieldPenetration  = "penetracao_planos"
	FieldConnectivity = "conectividade_mbps"
	FieldResolution   = "resolutividade_local"
	FieldCoverage4G   = "cobertura_4g"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
	FieldScore        = "performance_score"
)

// aliases lista, por nome canônico, os nomes aceitos na ordem de prioridade:
// o próprio nome canônico, depois o nome do backend, depois aliases em inglês.
var aliases = []struct {
	canonical string
	names     []string
}{
	{FieldMunicipality, []string{FieldMunicipality, "municipio_nome", "nome", "municipality", "name"}},
	{FieldCode, []string{FieldCode, "municipio_codigo", "code"}},
	{FieldState, []string{FieldState, "state"}},
	{FieldCategory, []string{FieldCategory, "category"}},
	{FieldPopulation, []string{FieldPopulation, "population"}},
	{FieldSUSBeds, []string{FieldSUSBeds, "sus_beds"}},
	{FieldOccupancy, []string{FieldOccupancy, "hospital_occupancy"}},
	{FieldPenetration, []string{FieldPenetration, "plan_penetration"}},
	{FieldConnectivity, []string{FieldConnectivity, "connectivity_mbps"}},
	{FieldResolution, []string{FieldResolution, "local_resolution"}},
	{FieldCoverage4G, []string{FieldCoverage4G, "coverage_4g"}},
	{FieldLatitude, []string{FieldLatitude, "lat"}},
	{FieldLongitude, []string{FieldLongitude, "lon"}},
	{FieldScore, []string{FieldScore, "performance_geral"}},
}

// RequiredFields precisam existir após a renomeação; sem eles a linha é rejeitada.
var RequiredFields = []string{
	FieldMunicipality,
	FieldOccupancy,
	FieldPenetration,
	FieldConnectivity,
	FieldResolution,
	FieldCoverage4G,
}

// Normalize renomeia as chaves para o esquema canônico. Chaves desconhecidas
// são descartadas e nulos contam como ausentes. Quando mais de um nome aceito
// está presente vence o de maior prioridade em aliases; chaves que só diferem
// por caixa ou espaços resolvem pela menor chave original.
func Normalize(raw map[string]interface{}) map[string]interface{} {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]interface{}, len(raw))
	for _, k := range keys {
		v := raw[k]
		if v == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(k))
		if _, exists := folded[name]; !exists {
			folded[name] = v
		}
	}

	out := make(map[string]interface{}, len(aliases))
	for _, a := range aliases {
		for _, name := range a.names {
			if v, ok := folded[name]; ok {
				out[a.canonical] = v
				break
			}
		}
	}
	return out
}

// toFloat aceita os tipos produzidos por encoding/json (inclusive json.Number).
func toFloat(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("tipo numérico não suportado: %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("valor não finito")
	}
	return f, nil
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
