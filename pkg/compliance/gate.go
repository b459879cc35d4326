// Package compliance implementa a checagem de finalidade (LGPD) exigida antes
// de qualquer requisição a fontes governamentais.
package compliance

import (
	"sort"
	"strconv"
	"strings"

	"github.com/raywall/healthdata-loader/pkg/config"
)

const (
	TagCompliant = "LGPD_COMPLIANT"
	TagPending   = "LGPD_PENDING"

	DefaultHeaderPurpose = "PUBLIC_HEALTH_ANALYTICS"
	AnalyticsVersion     = "1.0"

	HeaderPurpose    = "X-Data-Purpose"
	HeaderLegalBasis = "X-Legal-Basis"
	HeaderRetention  = "X-Retention-Days"
	HeaderVersion    = "X-Analytics-Version"
)

// Config é a configuração de conformidade do processo.
type Config struct {
	DataRetentionDays     int
	AnonymizationRequired bool
	AuditLogging          bool
	EncryptionInTransit   bool
	AllowedPurposes       []string
	LegalBasis            string
}

func DefaultConfig() Config {
	return Config{
		DataRetentionDays:     730,
		AnonymizationRequired: false,
		AuditLogging:          true,
		EncryptionInTransit:   true,
		AllowedPurposes: []string{
			"ANALYTICAL_DASHBOARD",
			"PUBLIC_HEALTH_RESEARCH",
			"HEALTHCARE_PLANNING",
			"EPIDEMIOLOGICAL_SURVEILLANCE",
		},
		LegalBasis: "LEGITIMATE_INTEREST_PUBLIC_DATA",
	}
}

// FromConfig usa a seção do YAML ou o default quando ela não foi informada.
func FromConfig(c config.ComplianceConf) Config {
	if c.IsZero() {
		return DefaultConfig()
	}
	return Config{
		DataRetentionDays:     c.DataRetentionDays,
		AnonymizationRequired: c.AnonymizationRequired,
		AuditLogging:          c.AuditLogging,
		EncryptionInTransit:   c.EncryptionInTransit,
		AllowedPurposes:       c.AllowedPurposes,
		LegalBasis:            c.LegalBasis,
	}
}

// Gate avalia finalidades sobre um snapshot imutável da configuração.
type Gate struct {
	cfg      Config
	purposes map[string]struct{}
}

func NewGate(cfg Config) *Gate {
	g := &Gate{cfg: cfg, purposes: make(map[string]struct{}, len(cfg.AllowedPurposes))}
	g.cfg.AllowedPurposes = nil
	for _, p := range cfg.AllowedPurposes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g.purposes[p] = struct{}{}
		g.cfg.AllowedPurposes = append(g.cfg.AllowedPurposes, p)
	}
	return g
}

// Config devolve uma cópia da configuração.
func (g *Gate) Config() Config {
	c := g.cfg
	c.AllowedPurposes = g.Purposes()
	return c
}

// Purposes lista as finalidades permitidas em ordem alfabética.
func (g *Gate) Purposes() []string {
	out := make([]string, 0, len(g.purposes))
	for p := range g.purposes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ValidatePurpose é um teste de pertinência exato (case-sensitive).
func (g *Gate) ValidatePurpose(purpose string) bool {
	_, ok := g.purposes[purpose]
	return ok
}

// IsReady exige auditoria, criptografia em trânsito e ao menos uma finalidade.
func (g *Gate) IsReady() bool {
	return g.cfg.AuditLogging && g.cfg.EncryptionInTransit && len(g.purposes) > 0
}

// Tag é o marcador de conformidade gravado no snapshot.
func (g *Gate) Tag() string {
	if g.IsReady() {
		return TagCompliant
	}
	return TagPending
}

// BuildHeaders monta os cabeçalhos que acompanham toda requisição a uma fonte.
func (g *Gate) BuildHeaders(purpose string) map[string]string {
	if purpose == "" {
		purpose = DefaultHeaderPurpose
	}
	return map[string]string{
		HeaderPurpose:    purpose,
		HeaderLegalBasis: g.cfg.LegalBasis,
		HeaderRetention:  strconv.Itoa(g.cfg.DataRetentionDays),
		HeaderVersion:    AnalyticsVersion,
	}
}
