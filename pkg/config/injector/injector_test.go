package injector_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/raywall/healthdata-loader/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestConfig struct {
	Name        string                 `yaml:"name" env:"SERVICE_NAME"` // Caso 1: Tag
	APIKey      string                 `yaml:"api_key"`                 // Caso 2: Interpolação String "${env.KEY}"
	Description string                 `yaml:"description"`             // Caso 3: Texto misto
	Meta        map[string]interface{} // Caso 4: Map Dinâmico
	Sources     map[string]SourceEntry // Caso 5: Map de structs
	Tags        []string
	Nested      *NestedConfig
	Enabled     bool `env:"FEATURE_ENABLED"`
}

type SourceEntry struct {
	Token string
}

type NestedConfig struct {
	URL string
}

func fakeResolvers() (injector.ResolveFunc, injector.ResolveFunc) {
	ssm := func(ctx context.Context, key string) (string, error) {
		if key == "/healthdata/ans/token" {
			return "ssm-token", nil
		}
		return "", errors.New("ParameterNotFound")
	}
	secret := func(ctx context.Context, key string) (string, error) {
		return "secret:" + key, nil
	}
	return ssm, secret
}

func TestInjector_Inject_Environment(t *testing.T) {
	t.Setenv("SERVICE_NAME", "healthdata-loader")
	t.Setenv("API_KEY", "12345-abcde")
	t.Setenv("REGION", "sa-east-1")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("FEATURE_ENABLED", "true")

	inj := injector.NewWithResolvers(fakeResolvers())

	target := &TestConfig{
		Name:        "Placeholder",
		APIKey:      "${env.API_KEY}",
		Description: "Loader running in ${env.REGION}",
		Meta: map[string]interface{}{
			"db_host": "${env.DB_HOST}",
			"timeout": 5000,
		},
		Tags: []string{"${env.REGION}", "fixo"},
		Nested: &NestedConfig{
			URL: "https://${env.REGION}.api.com",
		},
	}

	err := inj.Inject(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "healthdata-loader", target.Name, "Tag env não funcionou")
	assert.Equal(t, "12345-abcde", target.APIKey, "Interpolação direta falhou")
	assert.Equal(t, "Loader running in sa-east-1", target.Description, "Interpolação mista falhou")
	assert.Equal(t, "localhost", target.Meta["db_host"], "Interpolação em mapa falhou")
	assert.Equal(t, 5000, target.Meta["timeout"])
	assert.Equal(t, []string{"sa-east-1", "fixo"}, target.Tags)
	assert.Equal(t, "https://sa-east-1.api.com", target.Nested.URL, "Interpolação aninhada falhou")
	assert.True(t, target.Enabled)
}

func TestInjector_Inject_Remote(t *testing.T) {
	inj := injector.NewWithResolvers(fakeResolvers())

	t.Run("SSM e Secret em mapa de structs", func(t *testing.T) {
		target := &TestConfig{
			Sources: map[string]SourceEntry{
				"ans":    {Token: "${ssm./healthdata/ans/token}"},
				"anatel": {Token: "${secret.healthdata/anatel#token}"},
			},
		}

		require.NoError(t, inj.Inject(context.Background(), target))
		assert.Equal(t, "ssm-token", target.Sources["ans"].Token)
		assert.Equal(t, "secret:healthdata/anatel#token", target.Sources["anatel"].Token)
	})

	t.Run("Erro de resolução é propagado", func(t *testing.T) {
		target := &TestConfig{APIKey: "${ssm./nao/existe}"}
		err := inj.Inject(context.Background(), target)
		assert.Error(t, err)
	})

	t.Run("Env inexistente vira vazio", func(t *testing.T) {
		os.Unsetenv("HEALTHDATA_NAO_DEFINIDA")
		target := &TestConfig{APIKey: "${env.HEALTHDATA_NAO_DEFINIDA}"}
		require.NoError(t, inj.Inject(context.Background(), target))
		assert.Equal(t, "", target.APIKey)
	})
}

func TestInjector_Inject_InvalidTarget(t *testing.T) {
	inj := injector.New()
	err := inj.Inject(context.Background(), TestConfig{})
	assert.Error(t, err)
}
