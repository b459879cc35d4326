// Package registry mantém o catálogo imutável de fontes externas e suas
// políticas de acesso (timeout, retries, rate limit, TTL de cache).
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/raywall/healthdata-loader/pkg/config"
	"golang.org/x/time/rate"
)

var (
	ErrSourceUnknown = errors.New("fonte não registrada")
	ErrInvalidSource = errors.New("configuração de fonte inválida")
)

// SourceConfig descreve uma fonte de dados externa.
type SourceConfig struct {
	ID                 string
	Name               string
	BaseURL            string
	Timeout            time.Duration
	RetryAttempts      int
	RateLimitPerMinute int
	RequiresAuth       bool
	AuthToken          string
	CacheTTL           time.Duration
}

// Override altera a política de uma fonte conhecida. Campos zero são ignorados.
type Override struct {
	Timeout            time.Duration
	RetryAttempts      *int
	RateLimitPerMinute int
	RequiresAuth       bool
	AuthToken          string
	CacheTTL           time.Duration
}

// Registry é construído uma única vez e não possui operações de escrita.
type Registry struct {
	sources  map[string]SourceConfig
	limiters map[string]*rate.Limiter
	fallback *rate.Limiter
}

// New constrói o registro a partir do catálogo embutido aplicando overrides.
func New(overrides map[string]Override) (*Registry, error) {
	return NewFromSources(Catalog(), overrides)
}

// NewFromSources constrói o registro a partir de uma lista arbitrária de fontes.
func NewFromSources(sources []SourceConfig, overrides map[string]Override) (*Registry, error) {
	r := &Registry{
		sources:  make(map[string]SourceConfig, len(sources)),
		limiters: make(map[string]*rate.Limiter, len(sources)),
		fallback: newLimiter(DefaultRateLimit),
	}

	for _, src := range sources {
		src.ID = normalizeID(src.ID)
		if src.ID == "" {
			return nil, fmt.Errorf("%w: id vazio", ErrInvalidSource)
		}
		if _, dup := r.sources[src.ID]; dup {
			return nil, fmt.Errorf("%w: id duplicado '%s'", ErrInvalidSource, src.ID)
		}
		r.sources[src.ID] = src
	}

	for id, ov := range overrides {
		key := normalizeID(id)
		src, ok := r.sources[key]
		if !ok {
			return nil, fmt.Errorf("%w: override para '%s'", ErrSourceUnknown, id)
		}
		r.sources[key] = applyOverride(src, ov)
	}

	for id, src := range r.sources {
		if err := validate(src); err != nil {
			return nil, err
		}
		r.limiters[id] = newLimiter(src.RateLimitPerMinute)
	}

	return r, nil
}

// OverridesFromConfig converte a seção "sources" do YAML.
func OverridesFromConfig(sources map[string]config.SourceConf) map[string]Override {
	out := make(map[string]Override, len(sources))
	for id, s := range sources {
		out[id] = Override{
			Timeout:            config.ParseDuration(s.Timeout, 0),
			RetryAttempts:      s.RetryAttempts,
			RateLimitPerMinute: s.RateLimitPerMinute,
			RequiresAuth:       s.RequiresAuth,
			AuthToken:          s.AuthToken,
			CacheTTL:           config.ParseDuration(s.CacheTTL, 0),
		}
	}
	return out
}

func applyOverride(src SourceConfig, ov Override) SourceConfig {
	if ov.Timeout > 0 {
		src.Timeout = ov.Timeout
	}
	if ov.RetryAttempts != nil {
		src.RetryAttempts = *ov.RetryAttempts
	}
	if ov.RateLimitPerMinute > 0 {
		src.RateLimitPerMinute = ov.RateLimitPerMinute
	}
	if ov.RequiresAuth {
		src.RequiresAuth = true
	}
	if ov.AuthToken != "" {
		src.AuthToken = ov.AuthToken
	}
	if ov.CacheTTL > 0 {
		src.CacheTTL = ov.CacheTTL
	}
	return src
}

func validate(src SourceConfig) error {
	if src.CacheTTL <= 0 {
		return fmt.Errorf("%w: '%s' cache_ttl deve ser positivo", ErrInvalidSource, src.ID)
	}
	if src.RetryAttempts < 0 {
		return fmt.Errorf("%w: '%s' retry_attempts não pode ser negativo", ErrInvalidSource, src.ID)
	}
	if src.Timeout <= 0 {
		return fmt.Errorf("%w: '%s' timeout deve ser positivo", ErrInvalidSource, src.ID)
	}
	if src.RequiresAuth && src.AuthToken == "" {
		return fmt.Errorf("%w: '%s' exige autenticação sem token", ErrInvalidSource, src.ID)
	}
	return nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// newLimiter cria um token bucket com rajada de uma requisição.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = DefaultRateLimit
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Get retorna uma cópia da configuração da fonte (id case-insensitive).
func (r *Registry) Get(id string) (SourceConfig, error) {
	src, ok := r.sources[normalizeID(id)]
	if !ok {
		return SourceConfig{}, fmt.Errorf("%w: '%s'", ErrSourceUnknown, id)
	}
	return src, nil
}

// RateLimit retorna o limite por minuto da fonte ou DefaultRateLimit.
func (r *Registry) RateLimit(id string) int {
	src, ok := r.sources[normalizeID(id)]
	if !ok || src.RateLimitPerMinute <= 0 {
		return DefaultRateLimit
	}
	return src.RateLimitPerMinute
}

// TTL retorna o tempo de vida do cache da fonte.
func (r *Registry) TTL(id string) (time.Duration, bool) {
	src, ok := r.sources[normalizeID(id)]
	if !ok {
		return 0, false
	}
	return src.CacheTTL, true
}

// IDs lista as fontes registradas em ordem alfabética.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Limiter retorna o limitador compartilhado da fonte. Fontes desconhecidas
// compartilham um limitador na taxa padrão.
func (r *Registry) Limiter(id string) *rate.Limiter {
	if l, ok := r.limiters[normalizeID(id)]; ok {
		return l
	}
	return r.fallback
}
