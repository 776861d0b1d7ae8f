package infra

import (
	"context"
	"errors"
	"net/smtp"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crovpos/internal/config"
	"crovpos/internal/kpi"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Circuit breaker ──────────────────────────────────────────────────────────

func TestCircuitBreaker_AbreCierraYSondea(t *testing.T) {
	ahora := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return ahora }
	boom := errors.New("503")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)

	ahora = ahora.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestCircuitBreaker_SondaFallidaReabre(t *testing.T) {
	ahora := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	cb.now = func() time.Time { return ahora }

	_ = cb.Execute(func() error { return errors.New("x") })
	ahora = ahora.Add(time.Second)
	require.Equal(t, CBHalfOpen, cb.State())
	_ = cb.Execute(func() error { return errors.New("x") })
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_CancelacionNoCuenta(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(func() error { return context.Canceled })
	assert.Equal(t, CBClosed, cb.State())
}

// ── Retry ────────────────────────────────────────────────────────────────────

func TestWithBackoff_ReintentaHastaElExito(t *testing.T) {
	intentos := 0
	err := WithBackoff(context.Background(), 3, time.Millisecond, func(attempt int) error {
		assert.Equal(t, intentos, attempt)
		intentos++
		if intentos < 3 {
			return errors.New("transitorio")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, intentos)
}

func TestWithBackoff_DevuelveElUltimoError(t *testing.T) {
	intentos := 0
	err := WithBackoff(context.Background(), 3, time.Millisecond, func(int) error {
		intentos++
		return errors.New("fallo " + string(rune('0'+intentos)))
	})
	assert.EqualError(t, err, "fallo 3")
}

func TestWithBackoff_PermanenteCorta(t *testing.T) {
	fatal := errors.New("fatal")
	intentos := 0
	err := WithBackoff(context.Background(), 3, time.Millisecond, func(int) error {
		intentos++
		return Permanent(fatal)
	})
	assert.Same(t, fatal, err)
	assert.Equal(t, 1, intentos)
	assert.Nil(t, Permanent(nil))
}

func TestWithBackoff_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := WithBackoff(ctx, 3, time.Hour, func(int) error {
		cancel()
		return errors.New("x")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// ── PDF ──────────────────────────────────────────────────────────────────────

func TestGenerateReportePDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reportes")
	ayer := kpi.Dia(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	r := ReporteKPI{
		Titulo:   "Reporte diario",
		Sucursal: "Centro Mérida",
		Resumen: kpi.Resumen{
			Ventana:             ayer,
			TotalVentas:         decimal.NewFromInt(1500),
			NumeroTransacciones: 12,
			TicketPromedio:      decimal.NewFromInt(125),
		},
		Top:      []kpi.TopItem{{Nombre: "Café de olla", Cantidad: 20, Monto: decimal.NewFromInt(400)}},
		Generado: time.Date(2025, 6, 11, 7, 0, 0, 0, time.UTC),
	}

	path, err := GenerateReportePDF(r, "suc-1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reporte_suc-1_20250610_20250610.pdf"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

// ── SMTP ─────────────────────────────────────────────────────────────────────

func TestMailer_SendConAdjunto(t *testing.T) {
	adjunto := filepath.Join(t.TempDir(), "reporte.pdf")
	require.NoError(t, os.WriteFile(adjunto, []byte("%PDF-1.3"), 0o600))

	m := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "reportes@crov.mx"})
	var enviado *email.Email
	var addr string
	m.send = func(e *email.Email, a string, _ smtp.Auth) error {
		enviado, addr = e, a
		return nil
	}

	err := m.Send(Correo{Para: []string{"gerente@crov.mx"}, Asunto: "Reporte", Cuerpo: "Adjunto.", Adjunto: adjunto})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", addr)
	assert.Equal(t, "reportes@crov.mx", enviado.From)
	assert.Equal(t, []string{"gerente@crov.mx"}, enviado.To)
	require.Len(t, enviado.Attachments, 1)
	assert.Equal(t, "reporte.pdf", enviado.Attachments[0].Filename)
}

func TestMailer_Rechazos(t *testing.T) {
	sinHost := NewMailer(&config.Config{})
	assert.ErrorIs(t, sinHost.Send(Correo{Para: []string{"a@b.mx"}}), ErrSMTPNoConfigurado)

	m := NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 25})
	m.send = func(*email.Email, string, smtp.Auth) error { t.Fatal("must not send"); return nil }
	assert.Error(t, m.Send(Correo{Asunto: "sin destinatarios"}))
	assert.Error(t, m.Send(Correo{Para: []string{"a@b.mx"}, Adjunto: "/no/existe.pdf"}))
}
