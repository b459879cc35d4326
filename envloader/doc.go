// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package envloader carrega variáveis de ambiente diretamente para campos de
// uma struct Go, com suporte a tags de ambiente (`env`), valores padrão
// (`envDefault`), obrigatoriedade (`envRequired`) e separador de listas
// (`envSeparator`).
//
// Tipos suportados: string, int*, uint*, bool, float*, time.Duration e slices
// desses tipos. Structs aninhadas (inclusive ponteiros) são processadas
// recursivamente.
//
// Exemplo:
//
//	type Bootstrap struct {
//	    ConfigSource string        `env:"LOADER_CONFIG" envDefault:"config.yaml"`
//	    Mode         string        `env:"LOADER_MODE" envDefault:"once"`
//	    Timeout      time.Duration `env:"LOADER_CYCLE_TIMEOUT" envDefault:"2m"`
//	    Sources      []string      `env:"LOADER_PROBE_SOURCES" envSeparator:";"`
//	}
//
//	var boot Bootstrap
//	if err := envloader.Load(&boot); err != nil {
//	    log.Fatal(err)
//	}
//
// Uma variável definida porém vazia é tratada como ausente e cai no envDefault.
// Campos com `envRequired:"true"` sem valor algum geram MissingVariableError.
package envloader
