package dto

type CrearTicketRequest struct {
	Titulo      string `json:"titulo"      validate:"required,min=3,max=150"`
	Descripcion string `json:"descripcion" validate:"omitempty,max=2000"`
	Prioridad   string `json:"prioridad"   validate:"omitempty,oneof=baja media alta"`
}

type CambiarEstadoTicketRequest struct {
	Estado string `json:"estado" validate:"required,oneof=abierto en_proceso cerrado"`
}

type TicketResponse struct {
	ID          string  `json:"id"`
	Folio       int     `json:"folio"`
	Titulo      string  `json:"titulo"`
	Descripcion string  `json:"descripcion"`
	Prioridad   string  `json:"prioridad"`
	Estado      string  `json:"estado"`
	CreatedAt   string  `json:"created_at"`
	CerradoAt   *string `json:"cerrado_at"`
}
