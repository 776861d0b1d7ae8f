package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crovpos/internal/textmatch"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxCandidatos caps the names listed in an ambiguity error.
const maxCandidatos = 5

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// resolver picks the single record whose name matches query.
// entidad is used in the error messages ("cliente", "producto", ...).
func resolver[T any](items []T, nombre func(T) string, query, entidad string) (*T, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalido("falta el nombre del %s", entidad)
	}
	r := textmatch.Find(items, nombre, query)
	switch {
	case r.Found():
		return r.Match, nil
	case r.Ambiguous():
		nombres := make([]string, 0, maxCandidatos)
		for i, c := range r.Candidates {
			if i == maxCandidatos {
				break
			}
			nombres = append(nombres, nombre(c))
		}
		return nil, fmt.Errorf("%w: %d registros de %s coinciden con %q (%s); sé más específico",
			ErrAmbiguo, len(r.Candidates), entidad, query, strings.Join(nombres, ", "))
	default:
		return nil, fmt.Errorf("%w: ningún %s coincide con %q", ErrNoEncontrado, entidad, query)
	}
}

// existeNombre reports whether any item has exactly the same normalized name.
func existeNombre[T any](items []T, nombre func(T) string, query string) bool {
	q := textmatch.Normalize(query)
	for _, it := range items {
		if textmatch.Normalize(nombre(it)) == q {
			return true
		}
	}
	return false
}

func parseOptionalUUID(s *string, campo string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, invalido("%s inválido", campo)
	}
	return &id, nil
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func formatFecha(t time.Time) string { return t.Format(time.RFC3339) }

func estadoTexto(activo bool) string {
	if activo {
		return "activo"
	}
	return "inactivo"
}
