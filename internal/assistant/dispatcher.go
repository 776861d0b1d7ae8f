package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"crovpos/internal/metrics"
	"crovpos/internal/repository"
	"crovpos/internal/service"

	"github.com/rs/zerolog/log"
)

// Chat roles accepted in the history.
const (
	RolUsuario   = "user"
	RolAsistente = "assistant"
)

const (
	// HistorialPorDefecto is the number of previous turns kept when the
	// configuration does not say otherwise.
	HistorialPorDefecto = 10
	maxRunasMensaje     = 2000
	accionConsulta      = "consulta"
)

// Canned replies.
const (
	msgFallaGenerica = "Lo siento, algo salió mal al procesar tu mensaje. Intenta de nuevo en un momento."
	msgAclaracion    = "No pude convertir tu pregunta en una consulta (%s). ¿Puedes decirme qué dato necesitas y de qué periodo?"
	msgAccionFallida = "No pude completar la acción: %s"
)

// ErrEjecucionConsulta wraps a database failure of the fallback query. It
// is the only dispatcher outcome that is not a chat reply.
var ErrEjecucionConsulta = errors.New("no se pudo ejecutar la consulta")

// Mensaje is one chat turn.
type Mensaje struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionService is the language model behind the assistant.
type CompletionService interface {
	// ChooseAction picks at most one catalog action; nil means none fits.
	ChooseAction(ctx context.Context, mensaje string, historial []Mensaje, catalogo []Accion) (*ActionCall, error)
	// GenerateQuery writes a structured query over the described schema.
	// A nil query means the model could not express the request.
	GenerateQuery(ctx context.Context, mensaje string, historial []Mensaje, esquema SchemaDescription) (*StructuredQuery, error)
	// Summarize answers the message in prose from the query rows.
	Summarize(ctx context.Context, mensaje string, filas []map[string]any) (string, error)
}

// Entrada is one chat request.
type Entrada struct {
	Mensaje   string
	Historial []Mensaje
	Solicitud
}

// Respuesta is the chat reply. Accion is empty on the fallback path.
type Respuesta struct {
	Texto  string
	Accion ActionKind
	Data   any
	Filas  []map[string]any
}

// Dispatcher resolves one chat message per call and keeps no state between
// calls.
type Dispatcher struct {
	llm       CompletionService
	servicios *Servicios
	consultas repository.ConsultaRepository
	esquema   SchemaDescription
	turnos    int
}

func NewDispatcher(llm CompletionService, servicios *Servicios, consultas repository.ConsultaRepository, esquema SchemaDescription, turnos int) *Dispatcher {
	if turnos <= 0 {
		turnos = HistorialPorDefecto
	}
	return &Dispatcher{llm: llm, servicios: servicios, consultas: consultas, esquema: esquema, turnos: turnos}
}

// Handle answers a chat message. The returned error is always
// ErrEjecucionConsulta; every other failure becomes the reply text.
func (d *Dispatcher) Handle(ctx context.Context, in Entrada) (*Respuesta, error) {
	mensaje := strings.TrimSpace(in.Mensaje)
	historial := SanearHistorial(in.Historial, d.turnos)

	call, err := d.llm.ChooseAction(ctx, mensaje, historial, Catalogo())
	if err != nil {
		log.Error().Err(err).Str("sucursal_id", in.SucursalID.String()).Msg("asistente: fallo al elegir acción")
		return &Respuesta{Texto: msgFallaGenerica}, nil
	}
	if call != nil {
		resp, err := d.Accion(ctx, *call, in.Solicitud)
		if err != nil {
			return &Respuesta{Texto: d.disculpa(call.Kind, err), Accion: call.Kind}, nil
		}
		return resp, nil
	}
	return d.consulta(ctx, mensaje, historial, in.Solicitud)
}

// Accion runs one catalog action and formats its result. It backs both the
// chat path and the direct action endpoints, which surface err as is.
func (d *Dispatcher) Accion(ctx context.Context, call ActionCall, sol Solicitud) (*Respuesta, error) {
	if _, ok := BuscarAccion(call.Kind); !ok {
		err := fmt.Errorf("%w: acción %q desconocida", service.ErrDatosInvalidos, call.Kind)
		metrics.ObserveAction(string(call.Kind), err)
		return nil, err
	}
	data, err := d.servicios.Ejecutar(ctx, call, sol)
	metrics.ObserveAction(string(call.Kind), err)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("accion", string(call.Kind)).
		Str("sucursal_id", sol.SucursalID.String()).
		Msg("asistente: acción ejecutada")
	return &Respuesta{Texto: Formatear(call.Kind, data), Accion: call.Kind, Data: data}, nil
}

func (d *Dispatcher) disculpa(kind ActionKind, err error) string {
	if service.IsDomainError(err) {
		return fmt.Sprintf(msgAccionFallida, err.Error())
	}
	log.Error().Err(err).Str("accion", string(kind)).Msg("asistente: la acción falló")
	return msgFallaGenerica
}

func (d *Dispatcher) consulta(ctx context.Context, mensaje string, historial []Mensaje, sol Solicitud) (*Respuesta, error) {
	q, err := d.llm.GenerateQuery(ctx, mensaje, historial, d.esquema)
	if err != nil {
		log.Error().Err(err).Msg("asistente: fallo al generar la consulta")
		metrics.ObserveAction(accionConsulta, err)
		return &Respuesta{Texto: msgFallaGenerica}, nil
	}
	if q == nil {
		metrics.ObserveAction(accionConsulta, ErrConsultaInvalida)
		return &Respuesta{Texto: fmt.Sprintf(msgAclaracion, "no encontré a qué se refiere")}, nil
	}
	plan, err := d.esquema.Plan(*q, sol)
	if err != nil {
		log.Warn().Err(err).Interface("consulta", q).Msg("asistente: consulta rechazada")
		metrics.ObserveAction(accionConsulta, err)
		return &Respuesta{Texto: fmt.Sprintf(msgAclaracion, strings.TrimPrefix(err.Error(), ErrConsultaInvalida.Error()+": "))}, nil
	}

	filas, err := d.consultas.Ejecutar(ctx, plan)
	metrics.ObserveAction(accionConsulta, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEjecucionConsulta, err)
	}

	texto, err := d.llm.Summarize(ctx, mensaje, filas)
	if err != nil || strings.TrimSpace(texto) == "" {
		log.Warn().Err(err).Msg("asistente: sin resumen, se responde con la tabla")
		texto = tablaFilas(filas)
	}
	return &Respuesta{Texto: texto, Filas: filas}, nil
}

// SanearHistorial keeps the last turnos user/assistant turns, trimmed,
// without empty entries and capped at 2000 runes each.
func SanearHistorial(historial []Mensaje, turnos int) []Mensaje {
	out := make([]Mensaje, 0, len(historial))
	for _, m := range historial {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != RolUsuario && role != RolAsistente {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if utf8.RuneCountInString(content) > maxRunasMensaje {
			content = string([]rune(content)[:maxRunasMensaje])
		}
		out = append(out, Mensaje{Role: role, Content: content})
	}
	if turnos > 0 && len(out) > turnos {
		out = out[len(out)-turnos:]
	}
	return out
}
