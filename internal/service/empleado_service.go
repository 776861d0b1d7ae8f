package service

import (
	"context"
	"fmt"
	"strings"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/repository"
	"crovpos/internal/textmatch"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is shared with the crovctl hash command.
const BcryptCost = 12

// EmpleadoService manages the employees (usuarios) of a branch.
type EmpleadoService interface {
	Crear(ctx context.Context, req dto.CrearEmpleadoRequest) (*dto.UsuarioResponse, error)
	Listar(ctx context.Context, sucursalID *uuid.UUID, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEmpleadoRequest) (*dto.UsuarioResponse, error)
	CambiarEstado(ctx context.Context, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error)
	CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error)
}

type empleadoService struct {
	repo repository.UsuarioRepository
}

func NewEmpleadoService(repo repository.UsuarioRepository) EmpleadoService {
	return &empleadoService{repo: repo}
}

func (s *empleadoService) Crear(ctx context.Context, req dto.CrearEmpleadoRequest) (*dto.UsuarioResponse, error) {
	username := strings.TrimSpace(req.Username)
	existe, err := s.repo.ExisteUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, fmt.Errorf("%w: el usuario %q", ErrDuplicado, username)
	}
	sucursalID, err := parseOptionalUUID(req.SucursalID, "sucursal_id")
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		SucursalID:   sucursalID,
		Username:     username,
		Nombre:       strings.TrimSpace(req.Nombre),
		Email:        trimPtr(req.Email),
		Telefono:     trimPtr(req.Telefono),
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *empleadoService) Listar(ctx context.Context, sucursalID *uuid.UUID, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.ListBySucursal(ctx, sucursalID, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = *usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *empleadoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEmpleadoRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "empleado")
	}
	if req.Nombre != "" {
		user.Nombre = strings.TrimSpace(req.Nombre)
	}
	if req.Email != nil {
		user.Email = trimPtr(req.Email)
	}
	if req.Telefono != nil {
		user.Telefono = trimPtr(req.Telefono)
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *empleadoService) CambiarEstado(ctx context.Context, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "empleado")
	}
	return s.aplicarEstado(ctx, user, activo)
}

// CambiarEstadoPorNombre matches the username exactly before trying a fuzzy
// match on the display name.
func (s *empleadoService) CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	users, err := s.repo.ListBySucursal(ctx, &sucursalID, true)
	if err != nil {
		return nil, err
	}
	q := textmatch.Normalize(nombre)
	for i := range users {
		if textmatch.Normalize(users[i].Username) == q {
			return s.aplicarEstado(ctx, &users[i], activo)
		}
	}
	user, err := resolver(users, func(u model.Usuario) string { return u.Nombre }, nombre, "empleado")
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, user, activo)
}

func (s *empleadoService) aplicarEstado(ctx context.Context, u *model.Usuario, activo bool) (*dto.ResultadoAccion, error) {
	if u.Activo == activo {
		return dto.Ok(fmt.Sprintf("El empleado %s ya estaba %s.", u.Nombre, estadoTexto(activo)), usuarioToResponse(u)), nil
	}
	if err := s.repo.SetActivo(ctx, u.ID, activo); err != nil {
		return nil, err
	}
	u.Activo = activo
	return dto.Ok(fmt.Sprintf("Empleado %s marcado como %s.", u.Nombre, estadoTexto(activo)), usuarioToResponse(u)), nil
}

func usuarioToResponse(u *model.Usuario) *dto.UsuarioResponse {
	return &dto.UsuarioResponse{
		ID:         u.ID.String(),
		SucursalID: uuidPtrString(u.SucursalID),
		Username:   u.Username,
		Nombre:     u.Nombre,
		Email:      u.Email,
		Telefono:   u.Telefono,
		Rol:        u.Rol,
		Activo:     u.Activo,
	}
}
