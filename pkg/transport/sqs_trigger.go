package transport

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/raywall/healthdata-loader/pkg/engine"
	"github.com/rs/zerolog"
)

// SQSClient define a interface necessária para o trigger (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Ações aceitas no corpo da mensagem. Corpo vazio equivale a ActionCycle.
const (
	ActionCycle  = "cycle"
	ActionReload = "reload"
)

// TriggerMessage é o corpo esperado: {"action":"cycle","purpose":"..."}.
type TriggerMessage struct {
	Action  string `json:"action"`
	Purpose string `json:"purpose"`
}

// SQSTrigger faz long polling na fila; cada mensagem dispara um ciclo
// (serializado pelo Service) ou um reload da configuração.
type SQSTrigger struct {
	client     SQSClient
	queueURL   string
	runner     CycleRunner
	reloader   Reloader
	logger     zerolog.Logger
	waitSecs   int32
	retryDelay time.Duration
}

func NewSQSTrigger(client SQSClient, queueURL string, runner CycleRunner, reloader Reloader, logger zerolog.Logger) *SQSTrigger {
	return &SQSTrigger{
		client:     client,
		queueURL:   queueURL,
		runner:     runner,
		reloader:   reloader,
		logger:     logger.With().Str("component", "sqs_trigger").Logger(),
		waitSecs:   20,
		retryDelay: 5 * time.Second,
	}
}

// Start bloqueia até o contexto ser cancelado.
func (s *SQSTrigger) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada, trigger desativado")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("monitorando fila SQS")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("parando monitoramento SQS")
			return
		default:
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     s.waitSecs,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("erro no SQS")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
			continue
		}

		for _, msg := range out.Messages {
			if s.handle(ctx, msg) {
				_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(s.queueURL),
					ReceiptHandle: msg.ReceiptHandle,
				})
				if err != nil {
					s.logger.Warn().Err(err).Msg("falha ao remover mensagem")
				}
			}
		}
	}
}

// handle devolve true quando a mensagem pode ser removida da fila. Falhas
// transitórias mantêm a mensagem para nova entrega.
func (s *SQSTrigger) handle(ctx context.Context, msg types.Message) bool {
	log := s.logger.With().Str("message_id", aws.ToString(msg.MessageId)).Logger()

	var tm TriggerMessage
	if body := strings.TrimSpace(aws.ToString(msg.Body)); body != "" {
		if err := json.Unmarshal([]byte(body), &tm); err != nil {
			log.Error().Err(err).Msg("mensagem malformada descartada")
			return true
		}
	}

	switch tm.Action {
	case ActionReload:
		if s.reloader == nil {
			log.Warn().Msg("reload solicitado sem reloader configurado")
			return true
		}
		if err := s.reloader.Reload(); err != nil {
			log.Error().Err(err).Msg("falha no reload")
			return false
		}
		return true

	case "", ActionCycle:
		res, err := s.runner.RunCycle(ctx, tm.Purpose)
		if errors.Is(err, engine.ErrPurposeNotAllowed) {
			log.Error().Err(err).Msg("finalidade recusada, mensagem descartada")
			return true
		}
		if err != nil {
			log.Error().Err(err).Msg("ciclo falhou, mensagem mantida na fila")
			return false
		}
		sum := Summarize(res)
		log.Info().Str("provenance", sum.Provenance).Bool("cached", sum.Cached).Msg("ciclo disparado via SQS concluído")
		return true

	default:
		log.Warn().Str("action", tm.Action).Msg("ação desconhecida descartada")
		return true
	}
}
