package transport

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/raywall/healthdata-loader/pkg/acquisition"
	"github.com/raywall/healthdata-loader/pkg/engine"
	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/raywall/healthdata-loader/pkg/snapshot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_Handle(t *testing.T) {
	t.Run("evento agendado com finalidade", func(t *testing.T) {
		var corrID interface{}
		runner := &MockRunner{RunCycleFn: func(ctx context.Context, purpose string) (*engine.CycleResult, error) {
			corrID = ctx.Value(ContextKeyCorrID)
			return &engine.CycleResult{
				Snapshot: indicators.Snapshot{
					ID:             "snap-42",
					Source:         indicators.Simulated,
					Compliance:     "LGPD_COMPLIANT",
					Municipalities: make([]indicators.IndicatorRow, 18),
				},
				Artifacts: snapshot.Artifacts{JSONPath: "/tmp/a.json", CSVPath: "/tmp/a.csv"},
				Failure:   &acquisition.FetchError{Kind: acquisition.Connectivity},
			}, nil
		}}
		handler := NewLambdaHandler(runner, zerolog.Nop())

		event := events.CloudWatchEvent{
			ID:         "evt-1",
			Source:     "aws.events",
			DetailType: "Scheduled Event",
			Detail:     json.RawMessage(`{"purpose":"HEALTHCARE_PLANNING"}`),
		}
		summary, err := handler.Handle(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, []string{"HEALTHCARE_PLANNING"}, runner.Purposes())
		assert.Equal(t, "evt-1", corrID)
		assert.Equal(t, "snap-42", summary.SnapshotID)
		assert.Equal(t, "SIMULATED", summary.Provenance)
		assert.Equal(t, 18, summary.Municipalities)
		assert.Equal(t, "connectivity", summary.Failure)
		assert.Equal(t, "/tmp/a.csv", summary.CSVPath)
	})

	t.Run("detail vazio usa finalidade padrão", func(t *testing.T) {
		runner := &MockRunner{}
		handler := NewLambdaHandler(runner, zerolog.Nop())

		_, err := handler.Handle(context.Background(), events.CloudWatchEvent{Detail: json.RawMessage(`{}`)})

		require.NoError(t, err)
		assert.Equal(t, []string{""}, runner.Purposes())
	})

	t.Run("falha do ciclo é devolvida", func(t *testing.T) {
		runner := &MockRunner{RunCycleFn: func(ctx context.Context, purpose string) (*engine.CycleResult, error) {
			return nil, errors.New("falha ao persistir snapshot")
		}}

		_, err := NewLambdaHandler(runner, zerolog.Nop()).Handle(context.Background(), events.CloudWatchEvent{})

		assert.Error(t, err)
	})
}
