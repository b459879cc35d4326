package engine

import (
	"testing"

	"github.com/raywall/healthdata-loader/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Detection(t *testing.T) {
	cfg := &config.LoaderConfig{
		Service: config.ServiceDetails{Name: "healthdata-loader", Runtime: "lambda", Purpose: "MARKETING"},
		Backend: config.BackendConf{URL: "http://localhost:8000", PolicySource: "siops"},
		Enrichment: config.EnrichmentConf{Rules: []config.RowRule{
			{ID: "r1", Expr: "row.ocupacao_hospitalar > "},
			{ID: "r2", Expr: "row.cobertura_4g >= 65.0"},
		}},
	}

	report, err := Analyze(cfg)
	require.NoError(t, err)

	assert.False(t, report.Valid)
	assert.Len(t, report.Errors, 3)
	assert.Contains(t, report.Errors[0], "Enrichment.Rule[r1]")
	assert.Contains(t, report.Errors[1], "Backend.PolicySource[siops]")
	assert.Contains(t, report.Errors[2], "Service.Purpose[MARKETING]")
	assert.Len(t, report.Warnings, 1)
}

func TestAnalyze_ConfigValida(t *testing.T) {
	cfg := &config.LoaderConfig{
		Service: config.ServiceDetails{Name: "healthdata-loader"},
		Backend: config.BackendConf{URL: "http://localhost:8000"},
	}

	report, err := Analyze(cfg)
	require.NoError(t, err)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}
