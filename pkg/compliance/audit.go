package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"
)

// AuditEvent descreve um acesso a dados para a trilha de auditoria.
type AuditEvent struct {
	Action         string
	Purpose        string
	Actor          string
	Sources        []string
	Municipalities int
	Provenance     string
}

// Audit grava o evento quando a auditoria está habilitada. O ator nunca é
// registrado em claro, apenas os 16 primeiros caracteres do sha256.
func (g *Gate) Audit(log zerolog.Logger, ev AuditEvent) {
	if !g.cfg.AuditLogging {
		return
	}
	log.Info().
		Bool("audit", true).
		Str("action", ev.Action).
		Str("purpose", ev.Purpose).
		Str("legal_basis", g.cfg.LegalBasis).
		Int("retention_days", g.cfg.DataRetentionDays).
		Strs("sources", ev.Sources).
		Int("municipalities", ev.Municipalities).
		Str("provenance", ev.Provenance).
		Str("actor_hash", ActorHash(ev.Actor)).
		Msg("acesso a dados registrado")
}

func ActorHash(actor string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(actor)))
	return hex.EncodeToString(sum[:])[:16]
}
