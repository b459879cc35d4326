package main

import (
	"log"
	"os"
	"sync"

	"github.com/raywall/healthdata-loader/tools/emulator"
)

// Injetável para testes
var serverStarter = func(s *emulator.ServerConfig) {
	s.Start()
}

func main() {
	if err := run(os.Getenv("EMULATOR_CONFIG_PATH")); err != nil {
		log.Fatalln(err)
	}
}

// run sobe um backend emulado por entrada da configuração. Sem caminho,
// usa emulator.Load e seu backend padrão.
func run(configPath string) error {
	var cfg emulator.Config
	if configPath == "" {
		cfg = emulator.Load()
	} else if err := cfg.LoadFromFile(configPath); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, server := range cfg {
		wg.Add(1)
		go func(s emulator.ServerConfig) {
			defer wg.Done()
			serverStarter(&s)
		}(server)
	}
	wg.Wait()
	return nil
}
