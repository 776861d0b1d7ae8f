// Package kpi holds the pure read-side arithmetic behind the manager
// dashboard: date windows, sales aggregation, goals, rankings and the
// naive sales forecast. Nothing here touches the database.
package kpi

import "time"

// Ventana is a closed time interval [Desde, Hasta].
type Ventana struct {
	Desde time.Time `json:"desde"`
	Hasta time.Time `json:"hasta"`
}

// finDeDia is the last instant counted as part of a day.
const finDeDia = time.Millisecond

// Dia returns [00:00:00.000, 23:59:59.999] of t's calendar day in t's location.
func Dia(t time.Time) Ventana {
	desde := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Ventana{Desde: desde, Hasta: desde.AddDate(0, 0, 1).Add(-finDeDia)}
}

// Semana returns the Monday-to-Sunday week containing t.
func Semana(t time.Time) Ventana {
	offset := (int(t.Weekday()) + 6) % 7
	desde := Dia(t).Desde.AddDate(0, 0, -offset)
	return Ventana{Desde: desde, Hasta: desde.AddDate(0, 0, 7).Add(-finDeDia)}
}

// Mes returns the calendar month containing t.
func Mes(t time.Time) Ventana {
	desde := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Ventana{Desde: desde, Hasta: desde.AddDate(0, 1, 0).Add(-finDeDia)}
}

// UltimosDias returns the n calendar days ending with t's day, today included.
func UltimosDias(t time.Time, n int) Ventana {
	if n < 1 {
		n = 1
	}
	hoy := Dia(t)
	return Ventana{Desde: hoy.Desde.AddDate(0, 0, -(n - 1)), Hasta: hoy.Hasta}
}

// DiaAnterior is the day before t.
func DiaAnterior(t time.Time) Ventana { return Dia(t.AddDate(0, 0, -1)) }

// MesAnterior is the calendar month before the one containing t.
func MesAnterior(t time.Time) Ventana {
	return Mes(Mes(t).Desde.AddDate(0, 0, -1))
}

// Contiene reports whether t falls inside the window, bounds included.
func (v Ventana) Contiene(t time.Time) bool {
	return !t.Before(v.Desde) && !t.After(v.Hasta)
}

// Dias counts the calendar days covered by the window.
func (v Ventana) Dias() int {
	n := 0
	for d := v.Desde; !d.After(v.Hasta); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}
