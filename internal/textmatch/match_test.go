package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct{ nombre string }

func nombre(i item) string { return i.nombre }

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cafe de olla", Normalize("  Café  de OLLA "))
	assert.Equal(t, "jose nunez", Normalize("JOSÉ Núñez"))
	assert.Equal(t, "", Normalize("   "))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Juan Pérez", Title("juan   pérez"))
}

func TestFind_ExactMatchWinsOverSubstring(t *testing.T) {
	items := []item{{"Coca Cola 600ml"}, {"Coca"}, {"Coca Cola Light"}}

	r := Find(items, nombre, "coca")

	require.True(t, r.Found())
	assert.Equal(t, "Coca", r.Match.nombre)
}

func TestFind_SingleSubstringIgnoringAccents(t *testing.T) {
	items := []item{{"Panadería El Trigal"}, {"Lácteos del Norte"}}

	r := Find(items, nombre, "lacteos")

	require.True(t, r.Found())
	assert.Equal(t, "Lácteos del Norte", r.Match.nombre)
}

func TestFind_Ambiguous(t *testing.T) {
	items := []item{{"Juan Pérez"}, {"Juan López"}, {"María"}}

	r := Find(items, nombre, "juan")

	assert.False(t, r.Found())
	assert.True(t, r.Ambiguous())
	assert.Len(t, r.Candidates, 2)
}

func TestFind_NoMatch(t *testing.T) {
	r := Find([]item{{"Juan"}}, nombre, "Pedro")
	assert.False(t, r.Found())
	assert.False(t, r.Ambiguous())

	r = Find([]item{{"Juan"}}, nombre, "  ")
	assert.False(t, r.Found())
}
