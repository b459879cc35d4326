package registry

import "time"

const (
	// DefaultRateLimit é aplicado a fontes não registradas.
	DefaultRateLimit = 10
	// DefaultRetryAttempts é o número de novas tentativas do catálogo.
	DefaultRetryAttempts = 3
)

// Catalog devolve o catálogo embutido das cinco fontes governamentais.
func Catalog() []SourceConfig {
	return []SourceConfig{
		{
			ID:                 "datasus",
			Name:               "DATASUS - Ministério da Saúde",
			BaseURL:            "http://tabnet.datasus.gov.br",
			Timeout:            45 * time.Second,
			RetryAttempts:      DefaultRetryAttempts,
			RateLimitPerMinute: 30,
			CacheTTL:           24 * time.Hour,
		},
		{
			ID:                 "ans",
			Name:               "ANS - Agência Nacional de Saúde Suplementar",
			BaseURL:            "https://www.ans.gov.br/anstabnet",
			Timeout:            30 * time.Second,
			RetryAttempts:      DefaultRetryAttempts,
			RateLimitPerMinute: 20,
			CacheTTL:           168 * time.Hour,
		},
		{
			ID:                 "ibge",
			Name:               "IBGE - Instituto Brasileiro de Geografia e Estatística",
			BaseURL:            "https://servicodados.ibge.gov.br/api",
			Timeout:            20 * time.Second,
			RetryAttempts:      DefaultRetryAttempts,
			RateLimitPerMinute: 60,
			CacheTTL:           720 * time.Hour,
		},
		{
			ID:                 "anatel",
			Name:               "Anatel - Agência Nacional de Telecomunicações",
			BaseURL:            "https://sistemas.anatel.gov.br",
			Timeout:            30 * time.Second,
			RetryAttempts:      DefaultRetryAttempts,
			RateLimitPerMinute: 15,
			CacheTTL:           168 * time.Hour,
		},
		{
			ID:                 "cetic",
			Name:               "CETIC.br - Centro Regional de Estudos TIC",
			BaseURL:            "https://cetic.br",
			Timeout:            25 * time.Second,
			RetryAttempts:      DefaultRetryAttempts,
			RateLimitPerMinute: 10,
			CacheTTL:           8760 * time.Hour,
		},
	}
}
