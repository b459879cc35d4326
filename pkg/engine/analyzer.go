package engine

import (
	"fmt"

	"github.com/raywall/healthdata-loader/pkg/compliance"
	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/raywall/healthdata-loader/pkg/registry"
	"github.com/raywall/healthdata-loader/pkg/rules"
)

// ValidationReport contém o resultado detalhado da análise.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Analyze inspeciona uma configuração já validada estruturalmente e aponta o
// que impediria o serviço de subir ou degradaria os ciclos.
func Analyze(cfg *config.LoaderConfig) (*ValidationReport, error) {
	report := &ValidationReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha interna ao iniciar analisador de regras: %w", err)
	}

	// 1. Regras CEL de enriquecimento
	for _, rule := range cfg.Enrichment.Rules {
		if _, err := rm.CompileProgram(rule.Expr); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Enrichment.Rule[%s]: Erro de sintaxe CEL: %v", rule.ID, err))
		}
	}

	// 2. Fontes e fonte de política
	reg, err := registry.New(registry.OverridesFromConfig(cfg.Sources))
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Sources: %v", err))
	} else {
		policy := cfg.Backend.PolicySource
		if policy == "" {
			policy = "datasus"
		}
		if _, err := reg.Get(policy); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Backend.PolicySource[%s]: %v", policy, err))
		}
	}

	// 3. Compliance
	gate := compliance.NewGate(compliance.FromConfig(cfg.Compliance))
	if !gate.IsReady() {
		report.Warnings = append(report.Warnings, "Compliance não está pronto: todos os ciclos usarão dados simulados")
	}
	purpose := cfg.Service.Purpose
	if purpose == "" {
		purpose = DefaultPurpose
	}
	if !gate.ValidatePurpose(purpose) {
		report.Errors = append(report.Errors, fmt.Sprintf("Service.Purpose[%s]: finalidade fora de allowed_purposes", purpose))
	}

	// 4. Combinações que funcionam mas degradam o cache
	if cfg.Service.Runtime == "lambda" && cfg.Cache.Backend != "redis" {
		report.Warnings = append(report.Warnings, "Runtime lambda com cache em memória: o último refresh se perde entre invocações")
	}
	if cfg.Snapshot.S3.Enabled && cfg.Snapshot.S3.Region == "" {
		report.Warnings = append(report.Warnings, "Snapshot.S3 sem região: será usada a região padrão do ambiente")
	}

	if len(report.Errors) > 0 {
		report.Valid = false
	}
	return report, nil
}
