package service

import (
	"context"
	"fmt"
	"strings"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
)

type ProveedorService interface {
	Crear(ctx context.Context, sucursalID uuid.UUID, req dto.CrearProveedorRequest) (*dto.ResultadoAccion, error)
	Listar(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, sucursalID, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	CambiarEstado(ctx context.Context, sucursalID, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error)
	CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error)
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func proveedorNombre(p model.Proveedor) string { return p.Nombre }

func (s *proveedorService) Crear(ctx context.Context, sucursalID uuid.UUID, req dto.CrearProveedorRequest) (*dto.ResultadoAccion, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, invalido("el nombre del proveedor es obligatorio")
	}
	existentes, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	if existeNombre(existentes, proveedorNombre, nombre) {
		return nil, fmt.Errorf("%w: el proveedor %q", ErrDuplicado, nombre)
	}

	p := &model.Proveedor{
		SucursalID: sucursalID,
		Nombre:     nombre,
		RFC:        trimPtr(req.RFC),
		Contacto:   trimPtr(req.Contacto),
		Telefono:   trimPtr(req.Telefono),
		Email:      trimPtr(req.Email),
		Direccion:  trimPtr(req.Direccion),
		Activo:     true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return dto.Ok(fmt.Sprintf("Proveedor %s registrado.", p.Nombre), proveedorToResponse(p)), nil
}

func (s *proveedorService) Listar(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.ListBySucursal(ctx, sucursalID, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProveedorResponse, len(proveedores))
	for i := range proveedores {
		resp[i] = *proveedorToResponse(&proveedores[i])
	}
	return resp, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, sucursalID, id uuid.UUID, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.buscar(ctx, sucursalID, id)
	if err != nil {
		return nil, err
	}
	if nombre := strings.TrimSpace(req.Nombre); nombre != "" {
		p.Nombre = nombre
	}
	if req.RFC != nil {
		p.RFC = trimPtr(req.RFC)
	}
	if req.Contacto != nil {
		p.Contacto = trimPtr(req.Contacto)
	}
	if req.Telefono != nil {
		p.Telefono = trimPtr(req.Telefono)
	}
	if req.Email != nil {
		p.Email = trimPtr(req.Email)
	}
	if req.Direccion != nil {
		p.Direccion = trimPtr(req.Direccion)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) CambiarEstado(ctx context.Context, sucursalID, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error) {
	p, err := s.buscar(ctx, sucursalID, id)
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, p, activo)
}

func (s *proveedorService) CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	proveedores, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	p, err := resolver(proveedores, proveedorNombre, nombre, "proveedor")
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, p, activo)
}

func (s *proveedorService) aplicarEstado(ctx context.Context, p *model.Proveedor, activo bool) (*dto.ResultadoAccion, error) {
	if p.Activo == activo {
		return dto.Ok(fmt.Sprintf("El proveedor %s ya estaba %s.", p.Nombre, estadoTexto(activo)), proveedorToResponse(p)), nil
	}
	if err := s.repo.SetActivo(ctx, p.ID, activo); err != nil {
		return nil, err
	}
	p.Activo = activo
	return dto.Ok(fmt.Sprintf("Proveedor %s marcado como %s.", p.Nombre, estadoTexto(activo)), proveedorToResponse(p)), nil
}

func (s *proveedorService) buscar(ctx context.Context, sucursalID, id uuid.UUID) (*model.Proveedor, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor")
	}
	if p.SucursalID != sucursalID {
		return nil, fmt.Errorf("%w: proveedor", ErrNoEncontrado)
	}
	return p, nil
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		RFC:       p.RFC,
		Contacto:  p.Contacto,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
		Activo:    p.Activo,
	}
}
