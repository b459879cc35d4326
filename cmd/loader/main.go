package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/healthdata-loader/envloader"
	"github.com/raywall/healthdata-loader/pkg/cloud"
	"github.com/raywall/healthdata-loader/pkg/engine"
	"github.com/raywall/healthdata-loader/pkg/transport"
	"github.com/rs/zerolog/log"
)

// Bootstrap é lido do ambiente antes da configuração YAML.
type Bootstrap struct {
	ConfigSource string        `env:"LOADER_CONFIG" envDefault:"config.yaml"`
	Mode         string        `env:"LOADER_MODE"`
	Purpose      string        `env:"LOADER_PURPOSE"`
	CycleTimeout time.Duration `env:"LOADER_CYCLE_TIMEOUT" envDefault:"2m"`
	CheckEnv     bool          `env:"LOADER_CHECK_ENV" envDefault:"false"`
}

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = lambda.Start
	sqsFactory    = func(ctx context.Context) (transport.SQSClient, error) {
		cfg, err := cloud.AWSConfig(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			return nil, err
		}
		return sqs.NewFromConfig(cfg), nil
	}
	output io.Writer = os.Stdout
)

func main() {
	var boot Bootstrap
	if err := envloader.Load(&boot); err != nil {
		log.Fatal().Err(err).Msg("falha ao ler variáveis de bootstrap")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, boot); err != nil {
		log.Fatal().Err(err).Msg("carregador encerrado com erro")
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, boot Bootstrap) error {
	cfg, err := engine.NewUniversalLoader().Load(ctx, boot.ConfigSource)
	if err != nil {
		return err
	}

	svc, err := engine.NewService(cfg, boot.ConfigSource, engine.Deps{})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Shutdown(context.Background()); err != nil {
			svc.Logger.Warn().Err(err).Msg("falha ao descarregar métricas")
		}
	}()

	mode := boot.Mode
	if mode == "" {
		mode = cfg.Service.Runtime
	}
	if mode == "" {
		mode = "once"
	}

	switch mode {
	case "once":
		return runOnce(ctx, svc, boot)

	case "lambda":
		handler := transport.NewLambdaHandler(svc, svc.Logger)
		lambdaStarter(handler.Handle)
		return nil

	case "sqs":
		client, err := sqsFactory(ctx)
		if err != nil {
			return fmt.Errorf("falha ao criar cliente SQS: %w", err)
		}
		transport.NewSQSTrigger(client, cfg.Service.Queue, svc, svc, svc.Logger).Start(ctx)
		return nil

	case "http":
		return serverStarter(ctx, cfg.Service.Port, transport.NewRouter(svc, svc, svc.Logger), svc.Logger)

	default:
		return fmt.Errorf("runtime desconhecido: %s", mode)
	}
}

func runOnce(ctx context.Context, svc *engine.Service, boot Bootstrap) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")

	if boot.CheckEnv {
		if err := enc.Encode(svc.ValidateEnvironment(ctx)); err != nil {
			return err
		}
	}

	if boot.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, boot.CycleTimeout)
		defer cancel()
	}

	res, err := svc.RunCycle(ctx, boot.Purpose)
	if err != nil {
		return err
	}
	return enc.Encode(transport.Summarize(res))
}
