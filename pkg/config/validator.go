package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *LoaderConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *LoaderConfig) error {
	// 1. Esquema do backend
	u, err := url.Parse(cfg.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("backend.url deve usar http ou https: '%s'", cfg.Backend.URL)
	}

	// 2. Unicidade dos IDs de regras de enriquecimento
	seenIDs := make(map[string]bool)
	for _, r := range cfg.Enrichment.Rules {
		if seenIDs[r.ID] {
			return fmt.Errorf("regra de enriquecimento duplicada: '%s'", r.ID)
		}
		seenIDs[r.ID] = true
	}

	// 3. Durações das fontes precisam ser parseáveis e positivas
	for id, src := range cfg.Sources {
		for field, raw := range map[string]string{"timeout": src.Timeout, "cache_ttl": src.CacheTTL} {
			if raw == "" {
				continue
			}
			if d := ParseDuration(raw, -1); d <= 0 {
				return fmt.Errorf("fonte '%s': %s inválido '%s'", id, field, raw)
			}
		}
	}

	// 4. Cache redis exige endereço
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr é obrigatório quando cache.backend é 'redis'")
	}

	// 5. Runtime http precisa de porta
	if cfg.Service.Runtime == "http" && cfg.Service.Port == 0 {
		return fmt.Errorf("service.port é obrigatório quando service.runtime é 'http'")
	}

	// 6. Nomes dos arquivos de snapshot não podem conter diretórios
	for _, name := range []string{cfg.Snapshot.JSONName, cfg.Snapshot.CSVName} {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("nome de arquivo de snapshot inválido: '%s'", name)
		}
	}

	return nil
}
