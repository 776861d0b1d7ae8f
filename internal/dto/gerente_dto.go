package dto

import "crovpos/internal/kpi"

// The /gerente surface speaks camelCase, matching the dashboard client.

// MensajeHistorial is one previous turn of the chat.
type MensajeHistorial struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ConsultaRequest struct {
	Message    string             `json:"message"    validate:"required,min=1,max=4000"`
	History    []MensajeHistorial `json:"history"`
	SucursalID string             `json:"sucursalId" validate:"required,uuid"`
	Timezone   string             `json:"timezone"   validate:"omitempty,timezone"`
}

type ConsultaResponse struct {
	Respuesta string `json:"respuesta"`
	// Accion is the catalog action that ran, empty on the query fallback.
	Accion string           `json:"accion,omitempty"`
	Data   any              `json:"data,omitempty"`
	Filas  []map[string]any `json:"filas,omitempty"`
}

type DashboardResponse struct {
	Dia    kpi.Resumen `json:"dia"`
	Semana kpi.Resumen `json:"semana"`
	Mes    kpi.Resumen `json:"mes"`
}

type TopResponse struct {
	Desde string        `json:"desde"`
	Hasta string        `json:"hasta"`
	Items []kpi.TopItem `json:"items"`
}
