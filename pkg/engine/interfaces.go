package engine

import (
	"context"

	"github.com/raywall/healthdata-loader/pkg/config"
)

// Loader carrega e valida a configuração a partir de uma origem
// (arquivo local, S3 ou DynamoDB).
type Loader interface {
	Load(ctx context.Context, source string) (*config.LoaderConfig, error)
}

// Runner é o contrato usado pelos transportes (Lambda, SQS, CLI).
// Implementações serializam ciclos concorrentes.
type Runner interface {
	RunCycle(ctx context.Context, purpose string) (*CycleResult, error)
}

// Reloader relê a configuração sem reiniciar o processo.
type Reloader interface {
	Reload() error
}

var (
	_ Loader   = (*UniversalLoader)(nil)
	_ Runner   = (*Service)(nil)
	_ Reloader = (*Service)(nil)
)
