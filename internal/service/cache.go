package service

import (
	"context"
	"fmt"
	"time"

	"crovpos/internal/kpi"

	"github.com/google/uuid"
)

// Cache stores JSON-encoded values with a TTL. Lookups and writes are best
// effort: a miss or a backend failure falls through to the database.
// Services treat a nil Cache as disabled.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	// Incr atomically bumps an integer counter and returns the new value,
	// or 0 when the backend failed.
	Incr(ctx context.Context, key string) int64
}

// KPI summaries are keyed by a per-branch generation. Every write that moves
// sales, returns, expenses or purchases bumps it, so summaries computed
// before the write are never served again and simply expire.

func kpiGenKey(sucursalID uuid.UUID) string {
	return "kpi:gen:" + sucursalID.String()
}

func kpiKey(ctx context.Context, c Cache, sucursalID uuid.UUID, v kpi.Ventana) string {
	var gen int64
	if c != nil {
		c.GetJSON(ctx, kpiGenKey(sucursalID), &gen)
	}
	return fmt.Sprintf("kpi:%s:%d:%d:%d", sucursalID, gen, v.Desde.UnixMilli(), v.Hasta.UnixMilli())
}

func invalidarKpis(ctx context.Context, c Cache, sucursalID uuid.UUID) {
	if c != nil {
		c.Incr(ctx, kpiGenKey(sucursalID))
	}
}
