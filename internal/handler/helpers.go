package handler

import (
	"net/http"
	"strconv"
	"time"

	"crovpos/internal/apierror"
	"crovpos/internal/dto"
	"crovpos/internal/middleware"
	"crovpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := dto.Validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(dto.CamposInvalidos(err)))
		return false
	}
	return true
}

// responderError renders a service error. Business rule violations are 400
// with {error}; anything else is logged and hidden behind a 500.
func responderError(c *gin.Context, err error) {
	if service.IsDomainError(err) {
		c.JSON(http.StatusBadRequest, apierror.NewDomain(err.Error()))
		return
	}
	log.Error().Err(err).
		Str("route", c.FullPath()).
		Str(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey)).
		Msg("handler: error inesperado")
	c.JSON(http.StatusInternalServerError, apierror.New("Error interno"))
}

// sucursalDe resolves the branch of a request from query parameter name.
// Without the parameter it falls back to the requester's own branch when
// fallback is set. Writes 400/403 and returns false on failure.
func sucursalDe(c *gin.Context, name string, fallback bool) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	raw := c.Query(name)
	if raw == "" && fallback && claims != nil {
		raw = claims.SucursalID
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New(name+" es requerido"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return uuid.Nil, false
	}
	if claims != nil && !claims.PuedeOperar(id) {
		c.JSON(http.StatusForbidden, apierror.New("Sin acceso a la sucursal"))
		return uuid.Nil, false
	}
	return id, true
}

// puedeOperar is sucursalDe for ids that arrive in a JSON body.
func puedeOperar(c *gin.Context, id uuid.UUID) bool {
	if claims := middleware.GetClaims(c); claims != nil && !claims.PuedeOperar(id) {
		c.JSON(http.StatusForbidden, apierror.New("Sin acceso a la sucursal"))
		return false
	}
	return true
}

func usuarioDe(c *gin.Context) *uuid.UUID {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UsuarioID()
	}
	return nil
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

func incluirInactivos(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("inactivos"))
	return v
}

// reloj resolves the requester's clock: tz when given, the server default
// otherwise.
type reloj struct {
	loc *time.Location
	now func() time.Time
}

func nuevoReloj(defaultTZ string) reloj {
	loc, err := time.LoadLocation(defaultTZ)
	if err != nil {
		log.Warn().Str("timezone", defaultTZ).Msg("zona horaria por defecto invalida, usando UTC")
		loc = time.UTC
	}
	return reloj{loc: loc, now: time.Now}
}

func (r reloj) ahora(tz string) (time.Time, error) {
	loc := r.loc
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, err
		}
		loc = l
	}
	return r.now().In(loc), nil
}

// fechaDe reads the optional YYYY-MM-DD parameter name in the location of
// ahora; today when absent.
func fechaDe(c *gin.Context, name string, ahora time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return ahora, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, ahora.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" debe tener formato YYYY-MM-DD"))
		return time.Time{}, false
	}
	return t, true
}

// ahoraDe is reloj.ahora for the timezone query parameter.
func (r reloj) ahoraDe(c *gin.Context) (time.Time, bool) {
	t, err := r.ahora(c.Query("timezone"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("timezone invalida"))
		return time.Time{}, false
	}
	return t, true
}
