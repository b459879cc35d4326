package emulator

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Modos suportados pelo servidor.
const (
	ModeOK        = "ok"
	ModeError     = "error"
	ModeMalformed = "malformed"
	ModePartial   = "partial"
	ModeSlow      = "slow"
)

// ServerConfig descreve um backend emulado.
type ServerConfig struct {
	Port           int      `json:"port"`
	Seed           *uint64  `json:"seed,omitempty"`
	Mode           string   `json:"mode,omitempty"`
	Delay          string   `json:"delay,omitempty"`
	Municipalities []string `json:"municipalities,omitempty"`
}

// DelayDuration interpreta "delay"; inválido ou vazio vira zero.
func (s ServerConfig) DelayDuration() time.Duration {
	d, err := time.ParseDuration(s.Delay)
	if err != nil {
		return 0
	}
	return d
}

type Config []ServerConfig

// Load lê EMULATOR_CONFIG_PATH (padrão emulator.json). Sem arquivo, sobe um
// único backend na porta 8000.
func Load() Config {
	path := os.Getenv("EMULATOR_CONFIG_PATH")
	if path == "" {
		path = "emulator.json"
	}

	var cfg Config
	if err := cfg.LoadFromFile(path); err != nil {
		log.Printf("Aviso: Não foi possível carregar %s: %v. Usando backend padrão na porta 8000.", path, err)
		return Config{{Port: 8000, Mode: ModeOK}}
	}
	return cfg
}

func (cfg *Config) LoadFromFile(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("erro ao ler arquivo: %v", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("erro ao parsear json: %v", err)
	}
	for i, s := range *cfg {
		switch s.Mode {
		case "", ModeOK, ModeError, ModeMalformed, ModePartial, ModeSlow:
		default:
			return fmt.Errorf("servidor %d: modo desconhecido '%s'", i, s.Mode)
		}
		if s.Port <= 0 {
			return fmt.Errorf("servidor %d: porta inválida %d", i, s.Port)
		}
	}
	return nil
}
