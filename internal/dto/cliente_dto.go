package dto

import "github.com/shopspring/decimal"

type CrearClienteRequest struct {
	Nombre        string           `json:"nombre"         validate:"required,min=2,max=150"`
	Telefono      *string          `json:"telefono"       validate:"omitempty,max=20"`
	Email         *string          `json:"email"          validate:"omitempty,email"`
	RFC           *string          `json:"rfc"            validate:"omitempty,min=12,max=13"`
	LimiteCredito *decimal.Decimal `json:"limite_credito" validate:"omitempty,min=0"`
}

type ClienteResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Telefono      *string         `json:"telefono"`
	Email         *string         `json:"email"`
	RFC           *string         `json:"rfc"`
	LimiteCredito decimal.Decimal `json:"limite_credito"`
	Activo        bool            `json:"activo"`
}
