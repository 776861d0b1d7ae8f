package service

import (
	"errors"
	"fmt"

	"crovpos/internal/repository"

	"gorm.io/gorm"
)

// Business errors. Callers wrap them with detail via fmt.Errorf("%w: ...")
// and check them with errors.Is.
var (
	ErrNoEncontrado      = errors.New("no encontrado")
	ErrDuplicado         = errors.New("ya existe")
	ErrAmbiguo           = errors.New("búsqueda ambigua")
	ErrInactivo          = errors.New("registro inactivo")
	ErrStockInsuficiente = repository.ErrStockInsuficiente
	ErrDatosInvalidos    = errors.New("datos inválidos")
)

// IsDomainError reports whether err is a business rule violation rather than
// an infrastructure failure. Handlers show the message of domain errors to
// the user and hide everything else.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNoEncontrado, ErrDuplicado, ErrAmbiguo, ErrInactivo, ErrStockInsuficiente, ErrDatosInvalidos,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// noEncontrado turns gorm.ErrRecordNotFound into ErrNoEncontrado and leaves
// other errors untouched.
func noEncontrado(err error, entidad string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNoEncontrado, entidad)
	}
	return err
}

func invalido(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDatosInvalidos, fmt.Sprintf(format, args...))
}
