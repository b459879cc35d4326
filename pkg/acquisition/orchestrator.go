// Package acquisition busca os indicadores reais no backend de agregação e,
// em qualquer falha esperada, substitui a tabela inteira por dados simulados.
package acquisition

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/healthdata-loader/pkg/compliance"
	"github.com/raywall/healthdata-loader/pkg/enrichment"
	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/raywall/healthdata-loader/pkg/metrics"
	"github.com/raywall/healthdata-loader/pkg/municipality"
	"github.com/raywall/healthdata-loader/pkg/registry"
	"github.com/raywall/healthdata-loader/pkg/synthetic"
	"github.com/rs/zerolog"
)

// IndicatorsPath é o endpoint do backend que agrega todas as fontes.
const IndicatorsPath = "/api/analytics/indicators"

// State é um estado da máquina de aquisição.
type State string

const (
	AttemptLive State = "ATTEMPT_LIVE"
	Success     State = "SUCCESS"
	Fallback    State = "FALLBACK"
	Enrich      State = "ENRICH"
	Done        State = "DONE"
)

// Transition registra uma mudança de estado e o motivo.
type Transition struct {
	From   State     `json:"from"`
	To     State     `json:"to"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason,omitempty"`
}

// Result é o desfecho de um ciclo. Failure só é preenchido quando houve fallback
// causado por falha da busca real.
type Result struct {
	Snapshot indicators.Snapshot
	Trace    []Transition
	Failure  *FetchError
	Report   enrichment.Report
	Sources  []string
}

// Provenance é um atalho para Snapshot.Source.
func (r *Result) Provenance() indicators.Provenance {
	return r.Snapshot.Source
}

// Options configura o orquestrador.
type Options struct {
	BackendURL   string
	PolicySource string
	Seed         uint64
}

// Orchestrator liga registro, compliance, gerador, diretório e pipeline.
type Orchestrator struct {
	opts      Options
	fetcher   Fetcher
	registry  *registry.Registry
	gate      *compliance.Gate
	directory *municipality.Directory
	pipeline  *enrichment.Pipeline
	recorder  *metrics.Recorder
	log       zerolog.Logger
	now       func() time.Time
	locks     keyedMutex
}

func NewOrchestrator(
	opts Options,
	fetcher Fetcher,
	reg *registry.Registry,
	gate *compliance.Gate,
	dir *municipality.Directory,
	pipeline *enrichment.Pipeline,
	recorder *metrics.Recorder,
	log zerolog.Logger,
) *Orchestrator {
	if opts.PolicySource == "" {
		opts.PolicySource = "datasus"
	}
	return &Orchestrator{
		opts:      opts,
		fetcher:   fetcher,
		registry:  reg,
		gate:      gate,
		directory: dir,
		pipeline:  pipeline,
		recorder:  recorder,
		log:       log.With().Str("component", "orchestrator").Logger(),
		now:       time.Now,
	}
}

// WithClock substitui o relógio (usado em testes).
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// PolicySource é a fonte cujo timeout, retries e TTL governam o backend.
func (o *Orchestrator) PolicySource() string {
	return o.opts.PolicySource
}

// IndicatorsURL monta {backend}/api/analytics/indicators?source=completo.
func IndicatorsURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + IndicatorsPath)
	if err != nil {
		return "", fmt.Errorf("url do backend inválida: %w", err)
	}
	q := u.Query()
	q.Set("source", "completo")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RunRequest parametriza um ciclo.
type RunRequest struct {
	Purpose string
	// SkipLive vai direto ao fallback (ex.: compliance não pronto).
	SkipLive bool
}

type machine struct {
	state State
	trace []Transition
	now   func() time.Time
}

func (m *machine) to(next State, reason string) {
	m.trace = append(m.trace, Transition{From: m.state, To: next, At: m.now(), Reason: reason})
	m.state = next
}

// Run executa ATTEMPT_LIVE -> {SUCCESS, FALLBACK} -> ENRICH -> DONE. Um
// SUCCESS sem linhas válidas após o ENRICH volta para FALLBACK.
// Falhas de conectividade, upstream e payload nunca viram erro; apenas
// violações de contrato (URL inválida, tabela de saída inválida) são devolvidas.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*Result, error) {
	unlock := o.locks.lock(o.opts.PolicySource)
	defer unlock()

	src, err := o.registry.Get(o.opts.PolicySource)
	if err != nil {
		o.log.Warn().Err(err).Str("source", o.opts.PolicySource).Msg("fonte de política desconhecida, usando defaults")
		src = registry.SourceConfig{
			ID:                 strings.ToLower(o.opts.PolicySource),
			Timeout:            30 * time.Second,
			RetryAttempts:      registry.DefaultRetryAttempts,
			RateLimitPerMinute: registry.DefaultRateLimit,
		}
	}

	target, err := IndicatorsURL(o.opts.BackendURL)
	if err != nil {
		return nil, err
	}

	m := &machine{state: AttemptLive, now: o.now}
	result := &Result{}

	var raw []map[string]interface{}
	provenance := indicators.Simulated

	if req.SkipLive {
		m.to(Fallback, "live ignorado: "+ErrComplianceBlocked.Error())
	} else {
		started := o.now()
		payload, ferr := o.fetcher.Fetch(ctx, FetchRequest{
			Source:  src,
			URL:     target,
			Headers: o.gate.BuildHeaders(req.Purpose),
			Limiter: o.registry.Limiter(src.ID),
		})
		elapsed := o.now().Sub(started)

		if ferr != nil {
			fe := asFetchError(ferr, src.ID, target)
			result.Failure = fe
			o.recorder.Fetch(src.ID, elapsed, string(fe.Kind))
			o.log.Warn().
				Str("source", fe.Source).
				Str("url", fe.URL).
				Int("status", fe.StatusCode).
				Str("failure", string(fe.Kind)).
				Err(fe.Err).
				Msg("busca real falhou, usando dados simulados")
			m.to(Fallback, string(fe.Kind))
		} else {
			o.recorder.Fetch(src.ID, elapsed, "")
			if payload.Metadata.TotalMunicipalities != len(payload.Data) {
				o.log.Warn().
					Int("declared", payload.Metadata.TotalMunicipalities).
					Int("received", len(payload.Data)).
					Msg("total_municipalities diverge do tamanho de data")
			}
			raw = payload.Data
			provenance = indicators.Real
			result.Sources = payload.Metadata.DataSources
			m.to(Success, fmt.Sprintf("%d linhas", len(raw)))
		}
	}

	if provenance == indicators.Simulated {
		raw = o.simulate(result)
	}

	m.to(Enrich, "")
	rows, report := o.pipeline.Enrich(raw, provenance)

	// Uma tabela real vazia não pode chegar ao painel nem ao cache.
	if provenance == indicators.Real && len(rows) == 0 {
		result.Failure = &FetchError{Kind: Empty, Source: src.ID, URL: target, Err: ErrNoValidRows}
		o.log.Warn().
			Str("source", src.ID).
			Str("url", target).
			Str("failure", string(Empty)).
			Int("received", len(raw)).
			Int("rejected", report.Rejected).
			Interface("reasons", report.Reasons).
			Msg("resposta real sem linhas válidas, usando dados simulados")
		m.to(Fallback, string(Empty))

		provenance = indicators.Simulated
		raw = o.simulate(result)
		m.to(Enrich, "")
		rows, report = o.pipeline.Enrich(raw, provenance)
	}
	if err := enrichment.Validate(rows); err != nil {
		return nil, err
	}

	m.to(Done, string(provenance))

	result.Report = report
	result.Trace = m.trace
	result.Snapshot = indicators.Snapshot{
		ID:             uuid.NewString(),
		GeneratedAt:    o.now().UTC(),
		Source:         provenance,
		Compliance:     o.gate.Tag(),
		Municipalities: rows,
		Summary:        indicators.Summarize(rows),
		Rejected:       report.Rejected,
	}
	return result, nil
}

// simulate gera a tabela sintética com um gerador novo a cada chamada, de
// modo que fallbacks com a mesma semente produzem a mesma tabela.
func (o *Orchestrator) simulate(result *Result) []map[string]interface{} {
	generated := synthetic.New(o.opts.Seed).Generate(o.directory.All())
	result.Sources = []string{"synthetic"}
	o.log.Info().Uint64("seed", o.opts.Seed).Int("rows", len(generated)).Msg("tabela simulada gerada")
	return enrichment.ToRaw(generated)
}

// asFetchError garante o tipo mesmo para Fetchers de terceiros.
func asFetchError(err error, source, target string) *FetchError {
	if fe, ok := err.(*FetchError); ok {
		return fe
	}
	return &FetchError{Kind: Connectivity, Source: source, URL: target, Err: err}
}
