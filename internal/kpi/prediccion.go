package kpi

import "github.com/shopspring/decimal"

// DiasBasePrediccion is the history the forecast averages over.
const DiasBasePrediccion = 30

// Prediccion is a naive forecast: the daily average of the last 30 days
// projected over Dias days.
type Prediccion struct {
	Dias               int             `json:"dias"`
	TotalUltimos30Dias decimal.Decimal `json:"totalUltimos30Dias"`
	PromedioDiario     decimal.Decimal `json:"promedioDiario"`
	Prediccion         decimal.Decimal `json:"prediccion"`
}

// Predecir projects total30 (sales of the last 30 days) over dias days.
func Predecir(total30 decimal.Decimal, dias int) Prediccion {
	if dias < 0 {
		dias = 0
	}
	promedio := total30.Div(decimal.NewFromInt(DiasBasePrediccion)).Round(2)
	return Prediccion{
		Dias:               dias,
		TotalUltimos30Dias: total30,
		PromedioDiario:     promedio,
		Prediccion:         promedio.Mul(decimal.NewFromInt(int64(dias))).Round(2),
	}
}
