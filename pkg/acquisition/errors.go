package acquisition

import (
	"errors"
	"fmt"
)

// FailureKind classifica por que a busca real falhou. Todas levam ao fallback.
type FailureKind string

const (
	// Connectivity cobre DNS, conexão recusada, timeout e cancelamento.
	Connectivity FailureKind = "connectivity"
	// Upstream é uma resposta HTTP fora da faixa 2xx.
	Upstream FailureKind = "upstream"
	// Malformed é um corpo que não respeita o contrato {data, metadata}.
	Malformed FailureKind = "malformed"
	// Empty é uma resposta válida sem nenhuma linha aproveitável após o
	// enriquecimento (data vazio ou todas as linhas rejeitadas).
	Empty FailureKind = "empty"
)

var (
	ErrMalformedPayload  = errors.New("payload fora do contrato")
	ErrUnexpectedStatus  = errors.New("status HTTP inesperado")
	ErrComplianceBlocked = errors.New("compliance não está pronto para requisições reais")
	ErrNoValidRows       = errors.New("nenhuma linha válida na resposta real")
)

// FetchError descreve a última falha da busca real. Nunca sai do orquestrador
// como erro; fica registrado em Result.Failure.
type FetchError struct {
	Kind       FailureKind
	Source     string
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: fonte=%s url=%s status=%d tentativas=%d: %v", e.Kind, e.Source, e.URL, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s: fonte=%s url=%s tentativas=%d: %v", e.Kind, e.Source, e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// retryable indica se uma nova tentativa pode ter resultado diferente.
func (e *FetchError) retryable() bool {
	return e.Kind == Connectivity || e.Kind == Upstream
}
