// Package cache decide se dados já carregados de uma fonte ainda podem ser servidos.
package cache

import (
	"time"
)

// TTLSource é a parte do registro de fontes consultada pelo oráculo.
type TTLSource interface {
	TTL(id string) (time.Duration, bool)
}

// Oracle compara o último refresh de uma fonte com o seu TTL.
type Oracle struct {
	ttls TTLSource
	now  func() time.Time
}

func NewOracle(ttls TTLSource) *Oracle {
	return &Oracle{ttls: ttls, now: time.Now}
}

// WithClock substitui o relógio (usado em testes).
func (o *Oracle) WithClock(now func() time.Time) *Oracle {
	return &Oracle{ttls: o.ttls, now: now}
}

// IsValid retorna true enquanto now < lastRefreshedAt + ttl. No instante exato
// da expiração o cache já é inválido. Fontes desconhecidas nunca são válidas.
func (o *Oracle) IsValid(sourceID string, lastRefreshedAt time.Time) bool {
	expires, ok := o.ExpiresAt(sourceID, lastRefreshedAt)
	if !ok {
		return false
	}
	return o.now().Before(expires)
}

// ExpiresAt retorna o instante em que o cache da fonte deixa de ser válido.
func (o *Oracle) ExpiresAt(sourceID string, lastRefreshedAt time.Time) (time.Time, bool) {
	ttl, ok := o.ttls.TTL(sourceID)
	if !ok || lastRefreshedAt.IsZero() {
		return time.Time{}, false
	}
	return lastRefreshedAt.Add(ttl), true
}
