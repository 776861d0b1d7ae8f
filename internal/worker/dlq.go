package worker

// Jobs that exhaust their retries, or that no handler understands, land in
// dlq:{cola} so an operator can see which branch and report they belonged to.

import (
	"context"
	"encoding/json"
	"time"

	"crovpos/internal/infra"

	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is one dead-lettered job. The report and email fields are copied
// out of the payload when it can be read, so crovctl can list failures
// without decoding every job by hand.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`

	SucursalID string `json:"sucursal_id,omitempty"`
	Tipo       string `json:"tipo,omitempty"`
	Fecha      string `json:"fecha,omitempty"`
	Asunto     string `json:"asunto,omitempty"`
}

func nuevaEntradaDLQ(queue, jobType string, payload json.RawMessage, reason string, attempts int) DLQEntry {
	e := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}
	switch jobType {
	case TipoReporte:
		var job ReporteJob
		if json.Unmarshal(payload, &job) == nil {
			e.SucursalID, e.Tipo, e.Fecha = job.SucursalID, job.Tipo, job.Fecha
		}
	case TipoEmail:
		var correo infra.Correo
		if json.Unmarshal(payload, &correo) == nil {
			e.Asunto = correo.Asunto
		}
	}
	return e
}

// SendToDLQ records a failed job. Failures to write the entry are only logged.
func SendToDLQ(ctx context.Context, rdb Broker, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	e := nuevaEntradaDLQ(queue, jobType, payload, reason, attempts)
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed")
		return
	}
	ev := log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts)
	if e.SucursalID != "" {
		ev = ev.Str("sucursal_id", e.SucursalID).Str("tipo", e.Tipo).Str("fecha", e.Fecha)
	}
	ev.Msg("dlq: job dead-lettered")
}

func DLQLength(ctx context.Context, rdb Broker, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ListDLQ returns up to n entries of the queue's DLQ, newest first.
// Entries that no longer decode are skipped.
func ListDLQ(ctx context.Context, rdb Broker, queue string, n int64) ([]DLQEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: corrupt entry")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
