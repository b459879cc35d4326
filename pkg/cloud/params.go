package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Parameter lê um parâmetro (descriptografado) do SSM Parameter Store.
func Parameter(ctx context.Context, region, path string) (string, error) {
	cfg, err := AWSConfig(ctx, region)
	if err != nil {
		return "", err
	}
	return parameterInternal(ctx, ssm.NewFromConfig(cfg), path)
}

func parameterInternal(ctx context.Context, client SSMClient, path string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parâmetro '%s' sem valor", path)
	}
	return *out.Parameter.Value, nil
}

// Secret lê um segredo do Secrets Manager. O formato "id#campo" extrai um campo
// de segredos armazenados como JSON.
func Secret(ctx context.Context, region, ref string) (string, error) {
	cfg, err := AWSConfig(ctx, region)
	if err != nil {
		return "", err
	}
	return secretInternal(ctx, secretsmanager.NewFromConfig(cfg), ref)
}

func secretInternal(ctx context.Context, client SecretsClient, ref string) (string, error) {
	secretID, field, _ := strings.Cut(ref, "#")

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo '%s' sem SecretString", secretID)
	}

	val := *out.SecretString
	if field == "" {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("segredo '%s' não é JSON: %w", secretID, err)
	}
	v, ok := data[field]
	if !ok {
		return "", fmt.Errorf("campo '%s' ausente no segredo '%s'", field, secretID)
	}
	return fmt.Sprintf("%v", v), nil
}
