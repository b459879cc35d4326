package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type MockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

// --- Testes ---

func TestParameter(t *testing.T) {
	t.Run("Sucesso", func(t *testing.T) {
		val := "token-ans"
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				assert.Equal(t, "/healthdata/ans/token", *params.Name)
				assert.True(t, *params.WithDecryption)
				return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: &val}}, nil
			},
		}

		res, err := parameterInternal(context.Background(), client, "/healthdata/ans/token")
		require.NoError(t, err)
		assert.Equal(t, val, res)
	})

	t.Run("Erro na AWS", func(t *testing.T) {
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("AWS down")
			},
		}

		_, err := parameterInternal(context.Background(), client, "/x")
		assert.Error(t, err)
	})

	t.Run("Parametro sem valor", func(t *testing.T) {
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return &ssm.GetParameterOutput{}, nil
			},
		}

		_, err := parameterInternal(context.Background(), client, "/x")
		assert.Error(t, err)
	})
}

func TestSecret(t *testing.T) {
	secretJSON := `{"token": "abc123", "user": "loader"}`
	client := &MockSecrets{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			if *params.SecretId != "healthdata/backend" {
				return nil, errors.New("ResourceNotFoundException")
			}
			return &secretsmanager.GetSecretValueOutput{SecretString: &secretJSON}, nil
		},
	}

	t.Run("Segredo inteiro", func(t *testing.T) {
		res, err := secretInternal(context.Background(), client, "healthdata/backend")
		require.NoError(t, err)
		assert.JSONEq(t, secretJSON, res)
	})

	t.Run("Campo do JSON", func(t *testing.T) {
		res, err := secretInternal(context.Background(), client, "healthdata/backend#token")
		require.NoError(t, err)
		assert.Equal(t, "abc123", res)
	})

	t.Run("Campo ausente", func(t *testing.T) {
		_, err := secretInternal(context.Background(), client, "healthdata/backend#senha")
		assert.Error(t, err)
	})

	t.Run("Segredo inexistente", func(t *testing.T) {
		_, err := secretInternal(context.Background(), client, "outro")
		assert.Error(t, err)
	})
}
