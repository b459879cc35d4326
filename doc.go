// Package healthdata reúne o carregador de indicadores de saúde por município.
//
// Visão Geral:
// A cada ciclo o carregador tenta buscar os indicadores reais no serviço de
// agregação. Quando a busca falha, gera um conjunto simulado determinístico
// para as capitais e cidades do catálogo, de modo que o painel analítico
// nunca fique sem dados. Toda linha passa pelo mesmo enriquecimento (categoria,
// região e score) antes de ser gravada em JSON e CSV.
//
// Sub-Pacotes Principais:
//
// 1. pkg/acquisition:
//   - Busca HTTP com retries, rate limit e classificação de falhas.
//   - Orquestrador com máquina de estados (busca real, fallback, enriquecimento).
//
// 2. pkg/synthetic e pkg/enrichment:
//   - Gerador semeado por faixa de categoria.
//   - Pipeline de enriquecimento, score composto e regras CEL por linha.
//
// 3. pkg/compliance, pkg/registry e pkg/cache:
//   - Gate LGPD (finalidades, auditoria, tag de conformidade).
//   - Catálogo de fontes com políticas de timeout, retries e TTL.
//   - Registro do último refresh em memória ou Redis.
//
// 4. pkg/snapshot:
//   - Escrita atômica dos artefatos, leitura local/S3 e espelho S3.
//
// 5. pkg/engine e pkg/transport:
//   - Carregamento da configuração (arquivo, S3, DynamoDB) e montagem do serviço.
//   - Gatilhos Lambda (EventBridge), SQS e HTTP.
//
// Binários:
//   - cmd/loader: executa ciclos (once, lambda, sqs ou http).
//   - cmd/toolkit: valida configurações e o ambiente.
//   - cmd/emulator: backend de indicadores para desenvolvimento local.
package healthdata
