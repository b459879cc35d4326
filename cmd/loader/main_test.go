package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raywall/healthdata-loader/pkg/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, runtime string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	content := strings.NewReplacer("RUNTIME", runtime, "DIR", dir).Replace(`
version: "1.0"
service:
  name: "boot-test"
  runtime: "RUNTIME"
  port: 9999
  purpose: "ANALYTICAL_DASHBOARD"
  logging: {level: "error", format: "json"}
  metrics: {datadog: {enabled: false}}
backend:
  url: "http://127.0.0.1:1"
sources:
  datasus:
    timeout: "1s"
    retry_attempts: 0
    rate_limit_per_minute: 600
snapshot:
  dir: "DIR"
`)
	path := filepath.Join(dir, "loader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, dir
}

func TestRun_Once(t *testing.T) {
	path, dir := writeConfig(t, "once")
	var buf bytes.Buffer
	original := output
	output = &buf
	defer func() { output = original }()

	err := run(context.Background(), Bootstrap{ConfigSource: path})

	require.NoError(t, err)
	var summary transport.CycleSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, "SIMULATED", summary.Provenance)
	assert.Equal(t, 18, summary.Municipalities)
	assert.Equal(t, "connectivity", summary.Failure)
	assert.FileExists(t, filepath.Join(dir, "indicadores_saude.json"))
	assert.FileExists(t, filepath.Join(dir, "indicadores_saude.csv"))
}

func TestRun_OncePurposeRecusada(t *testing.T) {
	path, _ := writeConfig(t, "once")
	original := output
	output = &bytes.Buffer{}
	defer func() { output = original }()

	err := run(context.Background(), Bootstrap{ConfigSource: path, Purpose: "MARKETING"})

	assert.Error(t, err)
}

func TestRun_Lambda(t *testing.T) {
	path, _ := writeConfig(t, "lambda")
	called := false
	original := lambdaStarter
	lambdaStarter = func(handler interface{}) { called = true }
	defer func() { lambdaStarter = original }()

	require.NoError(t, run(context.Background(), Bootstrap{ConfigSource: path}))
	assert.True(t, called, "Handler Lambda não foi registrado")
}

func TestRun_HTTP(t *testing.T) {
	path, _ := writeConfig(t, "once")
	var gotPort int
	original := serverStarter
	serverStarter = func(ctx context.Context, port int, handler http.Handler, logger zerolog.Logger) error {
		gotPort = port
		return nil
	}
	defer func() { serverStarter = original }()

	require.NoError(t, run(context.Background(), Bootstrap{ConfigSource: path, Mode: "http"}))
	assert.Equal(t, 9999, gotPort)
}

func TestRun_ModoDesconhecido(t *testing.T) {
	path, _ := writeConfig(t, "once")

	err := run(context.Background(), Bootstrap{ConfigSource: path, Mode: "daemon"})

	assert.ErrorContains(t, err, "runtime desconhecido")
}
