package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/healthdata-loader/pkg/acquisition"
	"github.com/raywall/healthdata-loader/pkg/cache"
	"github.com/raywall/healthdata-loader/pkg/cloud"
	"github.com/raywall/healthdata-loader/pkg/compliance"
	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/raywall/healthdata-loader/pkg/enrichment"
	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/raywall/healthdata-loader/pkg/logger"
	"github.com/raywall/healthdata-loader/pkg/metrics"
	"github.com/raywall/healthdata-loader/pkg/municipality"
	"github.com/raywall/healthdata-loader/pkg/observability"
	"github.com/raywall/healthdata-loader/pkg/registry"
	"github.com/raywall/healthdata-loader/pkg/rules"
	"github.com/raywall/healthdata-loader/pkg/snapshot"
	"github.com/raywall/healthdata-loader/pkg/synthetic"
	"github.com/rs/zerolog"
)

// DefaultPurpose é usado quando nem a chamada nem o YAML informam finalidade.
const DefaultPurpose = "ANALYTICAL_DASHBOARD"

// ErrPurposeNotAllowed é uma violação de contrato: nenhuma busca é feita.
var ErrPurposeNotAllowed = errors.New("finalidade não permitida")

// Publisher espelha os artefatos gravados (implementado por snapshot.S3Mirror).
type Publisher interface {
	Publish(ctx context.Context, a snapshot.Artifacts) ([]string, error)
}

// Deps permite substituir as integrações externas. Campos nulos usam o padrão
// derivado da configuração.
type Deps struct {
	Logger     *zerolog.Logger
	Metrics    metrics.Provider
	Fetcher    acquisition.Fetcher
	Store      cache.Store
	Mirror     Publisher
	SnapshotS3 snapshot.S3Downloader
	ProbeDoer  acquisition.HTTPDoer
	Clock      func() time.Time
}

// CycleResult é o que um ciclo produziu.
type CycleResult struct {
	Snapshot  indicators.Snapshot
	Cached    bool
	Artifacts snapshot.Artifacts
	Mirrored  []string
	Failure   *acquisition.FetchError
	Report    enrichment.Report
	Trace     []acquisition.Transition
}

// Service monta todas as peças a partir da configuração e executa ciclos.
// Ciclos são serializados; Reload troca as peças sob o mesmo lock.
type Service struct {
	mu           sync.Mutex
	ConfigSource string
	Config       *config.LoaderConfig
	Logger       zerolog.Logger
	Metrics      metrics.Provider

	deps         Deps
	recorder     *metrics.Recorder
	registry     *registry.Registry
	gate         *compliance.Gate
	oracle       *cache.Oracle
	store        cache.Store
	directory    *municipality.Directory
	orchestrator *acquisition.Orchestrator
	writer       *snapshot.Writer
	reader       *snapshot.Reader
	mirror       Publisher
	now          func() time.Time
}

func NewService(cfg *config.LoaderConfig, configSource string, deps Deps) (*Service, error) {
	log := logger.Configure(cfg.Service.Logging, cfg.Service.Name)
	if deps.Logger != nil {
		log = *deps.Logger
	}

	provider := deps.Metrics
	if provider == nil {
		var err error
		provider, err = observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name)
		if err != nil {
			return nil, fmt.Errorf("falha métricas: %w", err)
		}
	}

	svc := &Service{
		ConfigSource: configSource,
		Logger:       log,
		Metrics:      provider,
		deps:         deps,
		recorder:     metrics.NewRecorder(provider),
		now:          time.Now,
	}
	if deps.Clock != nil {
		svc.now = deps.Clock
	}

	if err := svc.build(cfg); err != nil {
		return nil, err
	}
	return svc, nil
}

// build monta as peças dependentes da configuração. Chamado sob lock no Reload.
func (s *Service) build(cfg *config.LoaderConfig) error {
	ctx := context.Background()

	reg, err := registry.New(registry.OverridesFromConfig(cfg.Sources))
	if err != nil {
		return fmt.Errorf("falha registro de fontes: %w", err)
	}

	policy := cfg.Backend.PolicySource
	if policy == "" {
		policy = "datasus"
	}
	if _, err := reg.Get(policy); err != nil {
		return fmt.Errorf("backend.policy_source '%s': %w", policy, err)
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
	}
	ruleSet, err := rm.CompileRowRules(cfg.Enrichment.Rules)
	if err != nil {
		return fmt.Errorf("falha compilando regras de enriquecimento: %w", err)
	}

	gate := compliance.NewGate(compliance.FromConfig(cfg.Compliance))
	dir := municipality.NewDirectory()
	pipeline := enrichment.NewPipeline(dir, ruleSet, s.Logger)

	store := s.deps.Store
	if store == nil {
		switch mem, ok := s.store.(*cache.MemoryStore); {
		case cfg.Cache.Backend == "redis":
			store = cache.NewRedisStore(cache.NewRedisClient(cfg.Cache.Redis), reg)
		case ok:
			// Reload sem troca de backend preserva os refreshes já registrados.
			store = mem
		default:
			store = cache.NewMemoryStore()
		}
	}

	fetcher := s.deps.Fetcher
	if fetcher == nil {
		fetcher = acquisition.NewHTTPFetcher(s.Logger)
	}

	seed := synthetic.DefaultSeed
	if cfg.Simulation.Seed != nil {
		seed = *cfg.Simulation.Seed
	}

	orch := acquisition.NewOrchestrator(
		acquisition.Options{BackendURL: cfg.Backend.URL, PolicySource: policy, Seed: seed},
		fetcher, reg, gate, dir, pipeline, s.recorder, s.Logger,
	)
	orch.WithClock(s.now)

	mirror := s.deps.Mirror
	snapshotS3 := s.deps.SnapshotS3
	if cfg.Snapshot.S3.Enabled && (mirror == nil || snapshotS3 == nil) {
		awsCfg, err := cloud.AWSConfig(ctx, cfg.Snapshot.S3.Region)
		if err != nil {
			return fmt.Errorf("falha config AWS para espelho S3: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		if mirror == nil {
			mirror = snapshot.NewS3Mirror(client, cfg.Snapshot.S3.Bucket, cfg.Snapshot.S3.Prefix, s.Logger)
		}
		if snapshotS3 == nil {
			snapshotS3 = client
		}
	}

	s.Config = cfg
	s.registry = reg
	s.gate = gate
	s.oracle = cache.NewOracle(reg).WithClock(s.now)
	s.store = store
	s.directory = dir
	s.orchestrator = orch
	s.writer = snapshot.FromConfig(cfg.Snapshot)
	s.reader = &snapshot.Reader{S3: snapshotS3}
	s.mirror = mirror
	return nil
}

// Reload relê a configuração da origem e reconstrói as peças.
func (s *Service) Reload() error {
	s.Logger.Info().Str("source", s.ConfigSource).Msg("recarregando configuração")
	newCfg, err := Load(s.ConfigSource)
	if err != nil {
		return fmt.Errorf("falha ao carregar nova configuração: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.build(newCfg); err != nil {
		return err
	}
	s.Logger.Info().Msg("configuração recarregada")
	return nil
}

// Gate expõe o gate de compliance corrente.
func (s *Service) Gate() *compliance.Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate
}

// RunCycle executa um ciclo completo:
//  1. finalidade fora da lista => ErrPurposeNotAllowed
//  2. refresh da fonte de política ainda válido e snapshot em disco => cache
//  3. compliance não pronto => pula a busca real
//  4. orquestra, grava, espelha, marca refresh (só REAL) e audita
func (s *Service) RunCycle(ctx context.Context, purpose string) (*CycleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purpose = normalizePurpose(purpose)
	if purpose == "" {
		purpose = normalizePurpose(s.Config.Service.Purpose)
	}
	if purpose == "" {
		purpose = DefaultPurpose
	}

	log := s.Logger.With().Str("purpose", purpose).Logger()

	if !s.gate.ValidatePurpose(purpose) {
		s.recorder.Failed("purpose")
		log.Error().Strs("allowed", s.gate.Purposes()).Msg("finalidade recusada")
		return nil, fmt.Errorf("%w: %s", ErrPurposeNotAllowed, purpose)
	}

	policy := s.orchestrator.PolicySource()

	if cached, ok := s.cachedSnapshot(ctx, policy, log); ok {
		s.recorder.Cycle(string(cached.Source), len(cached.Municipalities), cached.Rejected, true)
		s.audit(purpose, "serve_cached", []string{policy}, cached)
		return &CycleResult{Snapshot: *cached, Cached: true, Artifacts: s.writer.Paths()}, nil
	}

	skipLive := !s.gate.IsReady()
	if skipLive {
		log.Warn().Msg("compliance não está pronto, busca real desativada")
	}

	res, err := s.orchestrator.Run(ctx, acquisition.RunRequest{Purpose: purpose, SkipLive: skipLive})
	if err != nil {
		s.recorder.Failed("orchestration")
		return nil, err
	}
	snap := res.Snapshot

	artifacts, err := s.writer.Write(snap)
	if err != nil {
		s.recorder.Failed("persistence")
		log.Error().Err(err).Msg("falha ao gravar snapshot")
		return nil, err
	}

	out := &CycleResult{
		Snapshot:  snap,
		Artifacts: artifacts,
		Failure:   res.Failure,
		Report:    res.Report,
		Trace:     res.Trace,
	}

	if s.mirror != nil {
		keys, err := s.mirror.Publish(ctx, artifacts)
		if err != nil {
			log.Warn().Err(err).Msg("falha ao espelhar snapshot, cópia local mantida")
		}
		out.Mirrored = keys
	}

	if snap.Source == indicators.Real && len(snap.Municipalities) > 0 {
		if err := s.store.MarkRefreshed(ctx, policy, snap.GeneratedAt); err != nil {
			log.Warn().Err(err).Str("source", policy).Msg("falha ao registrar refresh")
		}
	}

	s.recorder.Cycle(string(snap.Source), len(snap.Municipalities), snap.Rejected, false)
	s.audit(purpose, "refresh", res.Sources, &snap)

	log.Info().
		Str("snapshot_id", snap.ID).
		Str("provenance", string(snap.Source)).
		Int("municipalities", len(snap.Municipalities)).
		Int("rejected", snap.Rejected).
		Str("json", artifacts.JSONPath).
		Str("csv", artifacts.CSVPath).
		Msg("ciclo concluído")

	return out, nil
}

// cachedSnapshot só serve o cache se o refresh ainda é válido e o JSON existe.
func (s *Service) cachedSnapshot(ctx context.Context, policy string, log zerolog.Logger) (*indicators.Snapshot, bool) {
	last, found, err := s.store.LastRefresh(ctx, policy)
	if err != nil {
		log.Warn().Err(err).Msg("falha consultando último refresh, ignorando cache")
		return nil, false
	}
	if !found || !s.oracle.IsValid(policy, last) {
		return nil, false
	}

	snap, err := s.reader.Load(ctx, s.writer.Paths().JSONPath)
	if err != nil {
		log.Warn().Err(err).Msg("refresh válido mas snapshot ilegível, refazendo ciclo")
		return nil, false
	}
	expires, _ := s.oracle.ExpiresAt(policy, last)
	log.Info().Time("expires_at", expires).Str("snapshot_id", snap.ID).Msg("servindo snapshot em cache")
	return snap, true
}

func (s *Service) audit(purpose, action string, sources []string, snap *indicators.Snapshot) {
	s.gate.Audit(s.Logger, compliance.AuditEvent{
		Action:         action,
		Purpose:        purpose,
		Actor:          s.Config.Service.Name,
		Sources:        sources,
		Municipalities: len(snap.Municipalities),
		Provenance:     string(snap.Source),
	})
}

// EnvironmentReport resume se o ambiente consegue executar ciclos reais.
type EnvironmentReport struct {
	APIAccess       map[string]bool `json:"api_access"`
	ComplianceReady bool            `json:"compliance_ready"`
	CacheAvailable  bool            `json:"cache_available"`
	Municipalities  int             `json:"municipalities"`
	Indicators      []string        `json:"indicators"`
}

// pinger é implementado por stores com conexão remota (redis).
type pinger interface {
	Ping(ctx context.Context) error
}

// ValidateEnvironment sonda as fontes em paralelo e verifica o cache.
func (s *Service) ValidateEnvironment(ctx context.Context) EnvironmentReport {
	s.mu.Lock()
	reg, gate, store, dir := s.registry, s.gate, s.store, s.directory
	s.mu.Unlock()

	report := EnvironmentReport{
		APIAccess:       acquisition.Probe(ctx, s.deps.ProbeDoer, reg, nil, s.Logger),
		ComplianceReady: gate.IsReady(),
		CacheAvailable:  true,
		Municipalities:  dir.Len(),
		Indicators: []string{
			enrichment.FieldOccupancy,
			enrichment.FieldPenetration,
			enrichment.FieldConnectivity,
			enrichment.FieldResolution,
			enrichment.FieldCoverage4G,
		},
	}

	if p, ok := store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			s.Logger.Warn().Err(err).Msg("cache indisponível")
			report.CacheAvailable = false
		}
	}

	reachable := 0
	for _, ok := range report.APIAccess {
		if ok {
			reachable++
		}
	}
	s.Logger.Info().
		Int("sources_reachable", reachable).
		Int("sources_total", len(report.APIAccess)).
		Bool("compliance_ready", report.ComplianceReady).
		Bool("cache_available", report.CacheAvailable).
		Msg("ambiente validado")
	return report
}

// Shutdown descarrega métricas pendentes.
func (s *Service) Shutdown(ctx context.Context) error {
	if c, ok := s.Metrics.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// normalizePurpose remove espaços; a comparação continua case-sensitive.
func normalizePurpose(p string) string {
	return strings.TrimSpace(p)
}
