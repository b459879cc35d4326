package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LambdaHandler executa um ciclo a cada evento agendado do EventBridge.
// O campo "detail" pode trazer {"purpose": "..."}.
type LambdaHandler struct {
	runner CycleRunner
	logger zerolog.Logger
}

func NewLambdaHandler(runner CycleRunner, logger zerolog.Logger) *LambdaHandler {
	return &LambdaHandler{
		runner: runner,
		logger: logger.With().Str("component", "lambda_handler").Logger(),
	}
}

type scheduleDetail struct {
	Purpose string `json:"purpose"`
}

// Handle devolve erro apenas quando o ciclo falha (finalidade recusada ou
// falha de persistência); fallback para dados simulados é sucesso.
func (h *LambdaHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (CycleSummary, error) {
	start := time.Now()

	corrID := event.ID
	if corrID == "" {
		corrID = uuid.NewString()
	}
	logger := h.logger.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)
	ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

	var detail scheduleDetail
	if len(event.Detail) > 0 {
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			logger.Warn().Err(err).Msg("detail do evento ignorado")
		}
	}

	res, err := h.runner.RunCycle(ctx, detail.Purpose)
	if err != nil {
		logger.Error().Err(err).Int64("latency_ms", time.Since(start).Milliseconds()).Msg("ciclo lambda falhou")
		return CycleSummary{}, err
	}

	summary := Summarize(res)
	logger.Info().
		Str("source", event.Source).
		Str("provenance", summary.Provenance).
		Bool("cached", summary.Cached).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("ciclo lambda concluído")
	return summary, nil
}
