package metrics

import (
	"fmt"
	"time"
)

// Recorder traduz eventos do ciclo de carga em chamadas ao Provider.
// Um Recorder com Provider nil descarta tudo.
type Recorder struct {
	provider Provider
	baseTags []string
}

func NewRecorder(provider Provider, baseTags ...string) *Recorder {
	return &Recorder{provider: provider, baseTags: baseTags}
}

// Emit envia um valor para a métrica de acordo com o tipo da definição.
func (r *Recorder) Emit(def MetricDefinition, value float64, tags ...string) error {
	if r == nil || r.provider == nil {
		return nil
	}
	all := make([]string, 0, len(r.baseTags)+len(tags))
	all = append(all, r.baseTags...)
	all = append(all, tags...)

	switch def.Type {
	case TypeCount:
		return r.provider.Count(def.Name, value, all)
	case TypeGauge:
		return r.provider.Gauge(def.Name, value, all)
	case TypeHistogram:
		return r.provider.Histogram(def.Name, value, all)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}

// Cycle registra o desfecho de um ciclo: proveniência, linhas gravadas e rejeitadas.
func (r *Recorder) Cycle(provenance string, rows, rejected int, cached bool) {
	tag := "provenance:" + provenance
	if cached {
		_ = r.Emit(CycleCached, 1, tag)
		return
	}
	_ = r.Emit(CycleCompleted, 1, tag)
	_ = r.Emit(RowsWritten, float64(rows), tag)
	if rejected > 0 {
		_ = r.Emit(RowsRejected, float64(rejected), tag)
	}
}

// Fetch registra a duração de uma busca e, se houver, o tipo de falha.
func (r *Recorder) Fetch(source string, d time.Duration, failureKind string) {
	tag := "source:" + source
	_ = r.Emit(FetchDuration, float64(d.Milliseconds()), tag)
	if failureKind != "" {
		_ = r.Emit(FetchFailure, 1, tag, "kind:"+failureKind)
	}
}

// Failed registra um ciclo abortado por erro.
func (r *Recorder) Failed(reason string) {
	_ = r.Emit(CycleFailed, 1, "reason:"+reason)
}
