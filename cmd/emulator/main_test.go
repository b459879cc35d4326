package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/raywall/healthdata-loader/tools/emulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStarts(t *testing.T) func() []int {
	t.Helper()
	var (
		mu    sync.Mutex
		ports []int
	)
	original := serverStarter
	serverStarter = func(s *emulator.ServerConfig) {
		mu.Lock()
		ports = append(ports, s.Port)
		mu.Unlock()
	}
	t.Cleanup(func() { serverStarter = original })
	return func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), ports...)
	}
}

func TestRun(t *testing.T) {
	t.Run("sobe um servidor por entrada", func(t *testing.T) {
		started := captureStarts(t)
		path := filepath.Join(t.TempDir(), "emulator.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"port": 8101, "mode": "ok"}, {"port": 8102, "mode": "error"}]`), 0o644))

		require.NoError(t, run(path))
		assert.ElementsMatch(t, []int{8101, 8102}, started())
	})

	t.Run("modo inválido", func(t *testing.T) {
		captureStarts(t)
		path := filepath.Join(t.TempDir(), "emulator.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"port": 8101, "mode": "caos"}]`), 0o644))

		assert.Error(t, run(path))
	})

	t.Run("sem caminho usa backend padrão", func(t *testing.T) {
		started := captureStarts(t)
		t.Setenv("EMULATOR_CONFIG_PATH", filepath.Join(t.TempDir(), "ausente.json"))

		require.NoError(t, run(""))
		assert.Equal(t, []int{8000}, started())
	})
}
