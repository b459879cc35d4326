// Package transport expõe o ciclo de carga para os runtimes suportados:
// agendamento Lambda, fila SQS e um endpoint HTTP operacional.
package transport

import (
	"context"

	"github.com/raywall/healthdata-loader/pkg/engine"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type ctxKey string

// ContextKeyCorrID guarda o correlation id no contexto do ciclo.
const ContextKeyCorrID ctxKey = "correlation_id"

// CycleRunner é satisfeito por *engine.Service.
type CycleRunner interface {
	RunCycle(ctx context.Context, purpose string) (*engine.CycleResult, error)
}

// Reloader relê a configuração (satisfeito por *engine.Service).
type Reloader interface {
	Reload() error
}

// EnvironmentChecker é satisfeito por *engine.Service.
type EnvironmentChecker interface {
	ValidateEnvironment(ctx context.Context) engine.EnvironmentReport
}

// CycleSummary é a resposta devolvida pelos transportes.
type CycleSummary struct {
	SnapshotID     string `json:"snapshot_id"`
	Provenance     string `json:"provenance"`
	Compliance     string `json:"compliance"`
	Cached         bool   `json:"cached"`
	Municipalities int    `json:"municipalities"`
	Rejected       int    `json:"rejected"`
	Failure        string `json:"failure,omitempty"`
	JSONPath       string `json:"json_path"`
	CSVPath        string `json:"csv_path"`
}

// Summarize reduz o resultado de um ciclo ao que interessa a quem o disparou.
func Summarize(res *engine.CycleResult) CycleSummary {
	s := CycleSummary{
		SnapshotID:     res.Snapshot.ID,
		Provenance:     string(res.Snapshot.Source),
		Compliance:     res.Snapshot.Compliance,
		Cached:         res.Cached,
		Municipalities: len(res.Snapshot.Municipalities),
		Rejected:       res.Snapshot.Rejected,
		JSONPath:       res.Artifacts.JSONPath,
		CSVPath:        res.Artifacts.CSVPath,
	}
	if res.Failure != nil {
		s.Failure = string(res.Failure.Kind)
	}
	return s
}
