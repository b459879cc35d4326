package config

import "time"

// LoaderConfig representa a estrutura raiz do arquivo YAML do carregador.
type LoaderConfig struct {
	Version    string                `yaml:"version" validate:"required"`
	Service    ServiceDetails        `yaml:"service" validate:"required"`
	Backend    BackendConf           `yaml:"backend" validate:"required"`
	Sources    map[string]SourceConf `yaml:"sources" validate:"dive"`
	Compliance ComplianceConf        `yaml:"compliance"`
	Cache      CacheConf             `yaml:"cache"`
	Simulation SimulationConf        `yaml:"simulation"`
	Enrichment EnrichmentConf        `yaml:"enrichment"`
	Snapshot   SnapshotConf          `yaml:"snapshot" validate:"required"`
}

// ServiceDetails contém os metadados e configurações de runtime do carregador.
type ServiceDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" validate:"omitempty,oneof=once lambda sqs http"`
	Purpose string      `yaml:"purpose"`
	Port    int         `yaml:"port" env:"LOADER_PORT" validate:"omitempty,min=1,max=65535"`
	Queue   string      `yaml:"queue_url" env:"LOADER_QUEUE_URL" validate:"required_if=Runtime sqs"`
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

// BackendConf aponta para o serviço de agregação que expõe os indicadores.
// PolicySource define qual fonte do catálogo empresta timeout, retries e TTL.
type BackendConf struct {
	URL          string `yaml:"url" validate:"required,url"`
	PolicySource string `yaml:"policy_source"`
}

// SourceConf sobrescreve a política de uma fonte conhecida do catálogo.
type SourceConf struct {
	Timeout            string `yaml:"timeout"`
	RetryAttempts      *int   `yaml:"retry_attempts" validate:"omitempty,gte=0"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" validate:"gte=0"`
	RequiresAuth       bool   `yaml:"requires_auth"`
	AuthToken          string `yaml:"auth_token" validate:"required_if=RequiresAuth true"`
	CacheTTL           string `yaml:"cache_ttl"`
}

// ComplianceConf espelha a configuração LGPD do processo.
type ComplianceConf struct {
	DataRetentionDays     int      `yaml:"data_retention_days" validate:"gte=0"`
	AnonymizationRequired bool     `yaml:"anonymization_required"`
	AuditLogging          bool     `yaml:"audit_logging"`
	EncryptionInTransit   bool     `yaml:"encryption_in_transit"`
	AllowedPurposes       []string `yaml:"allowed_purposes"`
	LegalBasis            string   `yaml:"legal_basis"`
}

// IsZero indica que a seção não foi informada no YAML (usa o default embutido).
func (c ComplianceConf) IsZero() bool {
	return len(c.AllowedPurposes) == 0 && c.LegalBasis == "" && c.DataRetentionDays == 0
}

type CacheConf struct {
	Backend string    `yaml:"backend" validate:"omitempty,oneof=memory redis"`
	Redis   RedisConf `yaml:"redis"`
}

type RedisConf struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type SimulationConf struct {
	Seed *uint64 `yaml:"seed"`
}

type EnrichmentConf struct {
	Rules []RowRule `yaml:"rules" validate:"dive"`
}

// RowRule é uma expressão CEL avaliada para cada linha enriquecida.
type RowRule struct {
	ID   string `yaml:"id" validate:"required"`
	Expr string `yaml:"expr" validate:"required"`
}

type SnapshotConf struct {
	Dir      string       `yaml:"dir" validate:"required"`
	JSONName string       `yaml:"json_name"`
	CSVName  string       `yaml:"csv_name"`
	S3       S3MirrorConf `yaml:"s3"`
}

type S3MirrorConf struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Bucket  string `yaml:"bucket" validate:"required_if=Enabled true"`
	Prefix  string `yaml:"prefix"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

// ParseDuration converte durações do YAML ("45s", "168h"); vazio ou inválido retorna def.
func ParseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
