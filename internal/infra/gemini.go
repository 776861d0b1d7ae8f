package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"crovpos/internal/assistant"
	"crovpos/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ── Gemini completion service ────────────────────────────────────────────────
// Implements assistant.CompletionService. Every call goes through the rate
// limiter, the circuit breaker and WithRetry, under LLM_TIMEOUT.

const (
	llamadaAccion   = "choose_action"
	llamadaConsulta = "generate_query"
	llamadaResumen  = "summarize"

	intentosLLM = 3
)

// generador is the part of *genai.Models the adapter uses.
type generador interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	RatePerSecond float64
	// Location is the zone of the "hoy" written in the query prompt.
	Location *time.Location
}

type GeminiCompletion struct {
	models   generador
	model    string
	timeout  time.Duration
	loc      *time.Location
	limiter  *rate.Limiter
	breaker  *CircuitBreaker
	intentos int
	espera   time.Duration
	now      func() time.Time
}

var _ assistant.CompletionService = (*GeminiCompletion)(nil)

// NewGeminiCompletion creates the Gemini API client.
func NewGeminiCompletion(ctx context.Context, cfg GeminiConfig) (*GeminiCompletion, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGeminiCompletion(client.Models, cfg), nil
}

func newGeminiCompletion(models generador, cfg GeminiConfig) *GeminiCompletion {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &GeminiCompletion{
		models:   models,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		loc:      cfg.Location,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		breaker:  NewCircuitBreaker(DefaultCBConfig()),
		intentos: intentosLLM,
		espera:   time.Second,
		now:      time.Now,
	}
}

// BreakerState is exposed on /health.
func (g *GeminiCompletion) BreakerState() CBState { return g.breaker.State() }

func (g *GeminiCompletion) generar(ctx context.Context, llamada string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var resp *genai.GenerateContentResponse
	err := WithBackoff(ctx, g.intentos, g.espera, func(attempt int) error {
		if err := g.limiter.Wait(ctx); err != nil {
			return Permanent(err)
		}
		err := g.breaker.Execute(func() error {
			r, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Permanent(err)
		}
		if err != nil {
			log.Warn().Err(err).Str("llamada", llamada).Int("intento", attempt+1).Msg("gemini: llamada fallida")
		}
		return err
	})
	metrics.ObserveLLM(llamada, err)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", llamada, err)
	}
	return resp, nil
}

// ── ChooseAction ─────────────────────────────────────────────────────────────

const promptAcciones = `Eres el asistente del gerente de una tienda con punto de venta CROV.
Si el mensaje pide algo que una de las funciones hace, llama exactamente una función con sus argumentos.
Usa los nombres tal como los escribe el usuario; no inventes valores que no dio.
Si ninguna función aplica (por ejemplo, una pregunta libre sobre los datos), responde sin llamar funciones.`

func (g *GeminiCompletion) ChooseAction(ctx context.Context, mensaje string, historial []assistant.Mensaje, catalogo []assistant.Accion) (*assistant.ActionCall, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(catalogo))
	for _, a := range catalogo {
		decls = append(decls, declaracion(a))
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(promptAcciones, genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: decls}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		},
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := g.generar(ctx, llamadaAccion, conversacion(historial, mensaje), cfg)
	if err != nil {
		return nil, err
	}
	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return nil, nil
	}
	if len(calls) > 1 {
		log.Warn().Int("llamadas", len(calls)).Str("primera", calls[0].Name).Msg("gemini: más de una función, se usa la primera")
	}
	return &assistant.ActionCall{Kind: assistant.ActionKind(calls[0].Name), Args: calls[0].Args}, nil
}

func declaracion(a assistant.Accion) *genai.FunctionDeclaration {
	params := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	for _, p := range a.Params {
		s := &genai.Schema{Type: tipoGenai(p.Tipo), Description: p.Descripcion}
		if len(p.Enum) > 0 {
			s.Enum = p.Enum
		}
		params.Properties[p.Nombre] = s
		if p.Requerido {
			params.Required = append(params.Required, p.Nombre)
		}
	}
	return &genai.FunctionDeclaration{Name: string(a.Kind), Description: a.Descripcion, Parameters: params}
}

func tipoGenai(tipo string) genai.Type {
	switch tipo {
	case assistant.TipoNumero:
		return genai.TypeNumber
	case assistant.TipoEntero:
		return genai.TypeInteger
	}
	return genai.TypeString
}

func conversacion(historial []assistant.Mensaje, mensaje string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(historial)+1)
	for _, m := range historial {
		role := genai.Role(genai.RoleUser)
		if m.Role == assistant.RolAsistente {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(mensaje, genai.RoleUser))
}

// ── GenerateQuery ────────────────────────────────────────────────────────────

const promptConsulta = `Traduce la pregunta del gerente a una consulta estructurada sobre estas tablas:
%s
Operaciones: listar, contar, sumar, promedio, maximo, minimo. "campo" es la columna a agregar.
Operadores de filtro: eq, ne, gt, gte, lt, lte, contiene. Usa "valor" para texto, "valor_numero" para números y "valor_booleano" para sí/no.
"desde" y "hasta" son fechas YYYY-MM-DD inclusivas. Hoy es %s.
Las consultas ya se limitan a la sucursal del usuario; no filtres por sucursal_id.
Si la pregunta no se puede responder con estas tablas, omite "entidad".`

// filtroGemini carries the value in one typed field per JSON type, since
// the response schema cannot declare a field of any type.
type filtroGemini struct {
	Campo         string   `json:"campo"`
	Operador      string   `json:"operador"`
	Valor         *string  `json:"valor,omitempty"`
	ValorNumero   *float64 `json:"valor_numero,omitempty"`
	ValorBooleano *bool    `json:"valor_booleano,omitempty"`
}

type consultaGemini struct {
	assistant.StructuredQuery
	Filtros []filtroGemini `json:"filtros,omitempty"`
}

func (g *GeminiCompletion) GenerateQuery(ctx context.Context, mensaje string, historial []assistant.Mensaje, esquema assistant.SchemaDescription) (*assistant.StructuredQuery, error) {
	hoy := g.now().In(g.loc).Format(time.DateOnly)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fmt.Sprintf(promptConsulta, esquema.Texto(), hoy), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    esquemaConsulta(esquema),
		Temperature:       genai.Ptr[float32](0),
	}

	resp, err := g.generar(ctx, llamadaConsulta, conversacion(historial, mensaje), cfg)
	if err != nil {
		return nil, err
	}
	return decodificarConsulta(resp.Text())
}

func decodificarConsulta(texto string) (*assistant.StructuredQuery, error) {
	var c consultaGemini
	if err := json.Unmarshal([]byte(strings.TrimSpace(texto)), &c); err != nil {
		// unusable output is a clarification, not a failure
		log.Warn().Err(err).Msg("gemini: consulta ilegible")
		return nil, nil
	}
	if strings.TrimSpace(c.Entidad) == "" {
		return nil, nil
	}
	q := c.StructuredQuery
	q.Filtros = nil
	for _, f := range c.Filtros {
		filtro := assistant.Filtro{Campo: f.Campo, Operador: f.Operador}
		switch {
		case f.ValorNumero != nil:
			filtro.Valor = *f.ValorNumero
		case f.ValorBooleano != nil:
			filtro.Valor = *f.ValorBooleano
		case f.Valor != nil:
			filtro.Valor = *f.Valor
		}
		q.Filtros = append(q.Filtros, filtro)
	}
	return &q, nil
}

func esquemaConsulta(esquema assistant.SchemaDescription) *genai.Schema {
	entidades := make([]string, 0, len(esquema.Entidades))
	for _, e := range esquema.Entidades {
		entidades = append(entidades, e.Nombre)
	}
	texto := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeString, Description: desc} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"entidad":   {Type: genai.TypeString, Enum: entidades, Description: "Tabla a consultar"},
			"operacion": {Type: genai.TypeString, Enum: []string{"listar", "contar", "sumar", "promedio", "maximo", "minimo"}},
			"campo":     texto("Columna a agregar"),
			"campos":    {Type: genai.TypeArray, Items: texto("Columna"), Description: "Columnas a listar"},
			"filtros": {Type: genai.TypeArray, Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"campo":          texto("Columna"),
					"operador":       {Type: genai.TypeString, Enum: []string{"eq", "ne", "gt", "gte", "lt", "lte", "contiene"}},
					"valor":          texto("Valor de texto"),
					"valor_numero":   {Type: genai.TypeNumber},
					"valor_booleano": {Type: genai.TypeBoolean},
				},
				Required: []string{"campo", "operador"},
			}},
			"agrupar_por": texto("Columna de agrupación"),
			"desde":       texto("YYYY-MM-DD"),
			"hasta":       texto("YYYY-MM-DD"),
			"ordenar_por": texto("Columna de orden, o total en consultas agregadas"),
			"descendente": {Type: genai.TypeBoolean},
			"limite":      {Type: genai.TypeInteger},
		},
		Required: []string{"operacion"},
	}
}

// ── Summarize ────────────────────────────────────────────────────────────────

const promptResumen = `Responde la pregunta del gerente en español, breve y en texto plano, usando solo estos resultados (JSON).
Escribe los montos como $1,234.50. Si no hay resultados, dilo.`

func (g *GeminiCompletion) Summarize(ctx context.Context, mensaje string, filas []map[string]any) (string, error) {
	datos, err := json.Marshal(filas)
	if err != nil {
		return "", fmt.Errorf("gemini summarize: %w", err)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(promptResumen, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}
	contents := []*genai.Content{
		genai.NewContentFromText("Pregunta: "+mensaje+"\nResultados: "+string(datos), genai.RoleUser),
	}
	resp, err := g.generar(ctx, llamadaResumen, contents, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
