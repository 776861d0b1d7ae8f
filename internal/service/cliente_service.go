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

type ClienteService interface {
	Crear(ctx context.Context, sucursalID uuid.UUID, req dto.CrearClienteRequest) (*dto.ResultadoAccion, error)
	Listar(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, sucursalID, id uuid.UUID, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	CambiarEstado(ctx context.Context, sucursalID, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error)
	CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func clienteNombre(c model.Cliente) string { return c.Nombre }

func (s *clienteService) Crear(ctx context.Context, sucursalID uuid.UUID, req dto.CrearClienteRequest) (*dto.ResultadoAccion, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, invalido("el nombre del cliente es obligatorio")
	}
	existentes, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	if existeNombre(existentes, clienteNombre, nombre) {
		return nil, fmt.Errorf("%w: el cliente %q", ErrDuplicado, nombre)
	}

	c := &model.Cliente{
		SucursalID: sucursalID,
		Nombre:     nombre,
		Telefono:   trimPtr(req.Telefono),
		Email:      trimPtr(req.Email),
		RFC:        trimPtr(req.RFC),
		Activo:     true,
	}
	if req.LimiteCredito != nil {
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return dto.Ok(fmt.Sprintf("Cliente %s registrado.", c.Nombre), clienteToResponse(c)), nil
}

func (s *clienteService) Listar(ctx context.Context, sucursalID uuid.UUID, incluirInactivos bool) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.ListBySucursal(ctx, sucursalID, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		resp[i] = *clienteToResponse(&clientes[i])
	}
	return resp, nil
}

func (s *clienteService) Actualizar(ctx context.Context, sucursalID, id uuid.UUID, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.buscar(ctx, sucursalID, id)
	if err != nil {
		return nil, err
	}
	if nombre := strings.TrimSpace(req.Nombre); nombre != "" {
		c.Nombre = nombre
	}
	if req.Telefono != nil {
		c.Telefono = trimPtr(req.Telefono)
	}
	if req.Email != nil {
		c.Email = trimPtr(req.Email)
	}
	if req.RFC != nil {
		c.RFC = trimPtr(req.RFC)
	}
	if req.LimiteCredito != nil {
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) CambiarEstado(ctx context.Context, sucursalID, id uuid.UUID, activo bool) (*dto.ResultadoAccion, error) {
	c, err := s.buscar(ctx, sucursalID, id)
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, c, activo)
}

func (s *clienteService) CambiarEstadoPorNombre(ctx context.Context, sucursalID uuid.UUID, nombre string, activo bool) (*dto.ResultadoAccion, error) {
	clientes, err := s.repo.ListBySucursal(ctx, sucursalID, true)
	if err != nil {
		return nil, err
	}
	c, err := resolver(clientes, clienteNombre, nombre, "cliente")
	if err != nil {
		return nil, err
	}
	return s.aplicarEstado(ctx, c, activo)
}

func (s *clienteService) aplicarEstado(ctx context.Context, c *model.Cliente, activo bool) (*dto.ResultadoAccion, error) {
	if c.Activo == activo {
		return dto.Ok(fmt.Sprintf("El cliente %s ya estaba %s.", c.Nombre, estadoTexto(activo)), clienteToResponse(c)), nil
	}
	if err := s.repo.SetActivo(ctx, c.ID, activo); err != nil {
		return nil, err
	}
	c.Activo = activo
	return dto.Ok(fmt.Sprintf("Cliente %s marcado como %s.", c.Nombre, estadoTexto(activo)), clienteToResponse(c)), nil
}

func (s *clienteService) buscar(ctx context.Context, sucursalID, id uuid.UUID) (*model.Cliente, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	if c.SucursalID != sucursalID {
		return nil, fmt.Errorf("%w: cliente", ErrNoEncontrado)
	}
	return c, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:            c.ID.String(),
		Nombre:        c.Nombre,
		Telefono:      c.Telefono,
		Email:         c.Email,
		RFC:           c.RFC,
		LimiteCredito: c.LimiteCredito,
		Activo:        c.Activo,
	}
}
