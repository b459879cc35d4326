package engine

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/healthdata-loader/pkg/cloud"
	localConfig "github.com/raywall/healthdata-loader/pkg/config"
	"github.com/raywall/healthdata-loader/pkg/config/injector"
	"gopkg.in/yaml.v3"
)

// Load abstrai a criação do UniversalLoader para quem só precisa da config.
func Load(source string) (*localConfig.LoaderConfig, error) {
	return NewUniversalLoader().Load(context.Background(), source)
}

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// UniversalLoader lê a configuração de arquivo local, S3 ou DynamoDB.
type UniversalLoader struct {
	validator *localConfig.ConfigValidator
	injector  *injector.Injector
}

func NewUniversalLoader() *UniversalLoader {
	return &UniversalLoader{
		validator: localConfig.NewValidator(),
		injector:  injector.New(),
	}
}

// WithInjector troca o injector (testes usam resolvers em memória).
func (ul *UniversalLoader) WithInjector(inj *injector.Injector) *UniversalLoader {
	ul.injector = inj
	return ul
}

// Load detecta o esquema da fonte e carrega a configuração.
func (ul *UniversalLoader) Load(ctx context.Context, source string) (*localConfig.LoaderConfig, error) {
	var rawData []byte
	var err error

	switch {
	case strings.HasPrefix(source, "s3://"):
		cfg, cerr := cloud.AWSConfig(ctx, os.Getenv("AWS_REGION"))
		if cerr != nil {
			return nil, fmt.Errorf("falha config AWS: %w", cerr)
		}
		rawData, err = ul.loadFromS3Internal(ctx, s3.NewFromConfig(cfg), source)

	case strings.HasPrefix(source, "dynamodb://"):
		cfg, cerr := cloud.AWSConfig(ctx, os.Getenv("AWS_REGION"))
		if cerr != nil {
			return nil, fmt.Errorf("falha config AWS: %w", cerr)
		}
		rawData, err = ul.loadFromDynamoDBInternal(ctx, dynamodb.NewFromConfig(cfg), source)

	default:
		rawData, err = ul.loadFromFile(source)
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura config (%s): %w", source, err)
	}

	return ul.parseAndValidate(ctx, rawData)
}

// --- Estratégias de carregamento (métodos internos testáveis) ---

func (ul *UniversalLoader) loadFromFile(path string) ([]byte, error) {
	// Aceita "file://loader.yaml" e "loader.yaml"
	return os.ReadFile(strings.TrimPrefix(path, "file://"))
}

func (ul *UniversalLoader) loadFromS3Internal(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// loadFromDynamoDBInternal lê dynamodb://tabela/chave?col=config&pk=id
func (ul *UniversalLoader) loadFromDynamoDBInternal(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "config"
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok || content == "" {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}
	return []byte(content), nil
}

// parseAndValidate: YAML -> injeção (env/ssm/secret) -> validação.
func (ul *UniversalLoader) parseAndValidate(ctx context.Context, data []byte) (*localConfig.LoaderConfig, error) {
	var cfg localConfig.LoaderConfig

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("YAML malformado: %w", err)
	}

	if ul.injector != nil {
		if err := ul.injector.Inject(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
		}
	}

	if ul.validator != nil {
		if err := ul.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("validação da configuração falhou: %w", err)
		}
	}

	return &cfg, nil
}
