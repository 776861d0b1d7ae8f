package dto

// ResultadoAccion is what every write operation of the back office returns,
// both to REST callers and to the assistant.
type ResultadoAccion struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Ok builds a successful ResultadoAccion.
func Ok(message string, data any) *ResultadoAccion {
	return &ResultadoAccion{Success: true, Message: message, Data: data}
}

// EstadoRequest toggles the activo flag of a catalog record.
type EstadoRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}
