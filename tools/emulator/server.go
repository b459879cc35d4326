package emulator

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/raywall/healthdata-loader/pkg/acquisition"
	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/raywall/healthdata-loader/pkg/municipality"
	"github.com/raywall/healthdata-loader/pkg/synthetic"
)

// dataSources é o que o backend real declara em metadata.data_sources.
var dataSources = []string{"DataSUS", "ANS", "IBGE", "Anatel", "CETIC.br"}

// Rows monta as linhas no formato do backend (nomes municipio_*, tipo em
// minúsculas) a partir do gerador sintético.
func (s ServerConfig) Rows() []map[string]interface{} {
	dir := municipality.NewDirectory()
	records := dir.All()
	if len(s.Municipalities) > 0 {
		records = records[:0]
		for _, name := range s.Municipalities {
			if rec, ok := dir.Lookup(name); ok {
				records = append(records, rec)
			}
		}
	}

	seed := synthetic.DefaultSeed
	if s.Seed != nil {
		seed = *s.Seed
	}

	rows := synthetic.New(seed).Generate(records)
	out := make([]map[string]interface{}, 0, len(rows))
	for i, r := range rows {
		row := backendRow(r)
		if s.Mode == ModePartial && i%3 == 2 {
			delete(row, "ocupacao_hospitalar")
			delete(row, "cobertura_4g")
		}
		out = append(out, row)
	}
	return out
}

func backendRow(r indicators.IndicatorRow) map[string]interface{} {
	return map[string]interface{}{
		"municipio_codigo":     r.Code,
		"municipio_nome":       r.Municipality,
		"uf":                   r.State,
		"tipo":                 strings.ToLower(string(r.Category)),
		"populacao":            r.Population,
		"ocupacao_hospitalar":  r.Occupancy,
		"penetracao_planos":    r.PlanPenetration,
		"conectividade_mbps":   r.Connectivity,
		"resolutividade_local": r.LocalResolution,
		"cobertura_4g":         r.Coverage4G,
	}
}

// NewHandler devolve o roteador do backend emulado.
func (s ServerConfig) NewHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(acquisition.IndicatorsPath, s.indicatorsHandler).
		Queries("source", "completo").
		Methods(http.MethodGet)
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		sendResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet, http.MethodHead)
	return r
}

func (s ServerConfig) indicatorsHandler(w http.ResponseWriter, r *http.Request) {
	switch s.Mode {
	case ModeError:
		sendResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "backend indisponível"})
		return
	case ModeMalformed:
		sendResponse(w, http.StatusOK, map[string]interface{}{"rows": "não é um array"})
		return
	case ModeSlow:
		select {
		case <-time.After(s.DelayDuration()):
		case <-r.Context().Done():
			return
		}
	}

	rows := s.Rows()
	sendResponse(w, http.StatusOK, map[string]interface{}{
		"data": rows,
		"metadata": map[string]interface{}{
			"total_municipalities": len(rows),
			"data_sources":         dataSources,
			"purpose":              r.Header.Get("X-Data-Purpose"),
		},
	})
}

func sendResponse(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("Erro ao codificar resposta: %v", err)
		}
	}
}

// Start bloqueia servindo o backend emulado.
func (s *ServerConfig) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	log.Printf("Backend emulado (%s) ouvindo em %s", s.modeName(), addr)
	if err := http.ListenAndServe(addr, s.NewHandler()); err != nil {
		log.Printf("Servidor %s encerrado: %v", addr, err)
	}
}

func (s ServerConfig) modeName() string {
	if s.Mode == "" {
		return ModeOK
	}
	return s.Mode
}
