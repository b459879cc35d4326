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
// Package emulator sobe um backend de agregação falso, configurável via JSON,
// para desenvolvimento local e testes de integração do carregador sem depender
// das APIs governamentais.
//
// O servidor responde em GET /api/analytics/indicators?source=completo com o
// mesmo envelope do backend real ({"data": [...], "metadata": {...}}). As
// linhas vêm do gerador sintético com a seed configurada, então duas execuções
// com a mesma configuração devolvem exatamente o mesmo corpo.
//
// Modos de falha (campo "mode"):
//   - "ok": resposta válida (padrão)
//   - "error": HTTP 503
//   - "malformed": JSON fora do contrato
//   - "partial": algumas linhas sem indicadores obrigatórios
//   - "slow": responde após "delay"
//
// Exemplo de configuração:
//
//	[
//	  {"port": 8000, "seed": 42, "mode": "ok"},
//	  {"port": 8001, "mode": "slow", "delay": "90s"}
//	]
package emulator
