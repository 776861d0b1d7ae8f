package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crovpos/internal/dto"
	"crovpos/internal/model"
	"crovpos/internal/repository"

	"github.com/google/uuid"
)

// TicketService handles internal support tickets. Folios are sequential per branch.
type TicketService interface {
	Crear(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.CrearTicketRequest) (*dto.ResultadoAccion, error)
	Listar(ctx context.Context, sucursalID uuid.UUID, estado string) ([]dto.TicketResponse, error)
	CambiarEstado(ctx context.Context, sucursalID uuid.UUID, folio int, estado string) (*dto.ResultadoAccion, error)
}

type ticketService struct {
	repo repository.TicketRepository
	now  func() time.Time
}

func NewTicketService(repo repository.TicketRepository) TicketService {
	return &ticketService{repo: repo, now: time.Now}
}

func (s *ticketService) Crear(ctx context.Context, sucursalID uuid.UUID, usuarioID *uuid.UUID, req dto.CrearTicketRequest) (*dto.ResultadoAccion, error) {
	titulo := strings.TrimSpace(req.Titulo)
	if titulo == "" {
		return nil, invalido("el ticket necesita un título")
	}
	prioridad := req.Prioridad
	switch prioridad {
	case "":
		prioridad = model.PrioridadMedia
	case model.PrioridadBaja, model.PrioridadMedia, model.PrioridadAlta:
	default:
		return nil, invalido("prioridad %q no soportada", prioridad)
	}

	t := &model.TicketSoporte{
		SucursalID:  sucursalID,
		UsuarioID:   usuarioID,
		Titulo:      titulo,
		Descripcion: strings.TrimSpace(req.Descripcion),
		Prioridad:   prioridad,
		Estado:      model.TicketAbierto,
	}
	if err := s.repo.CreateWithFolio(ctx, t); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Ticket de soporte #%d creado (%s, prioridad %s).", t.Folio, t.Titulo, t.Prioridad)
	return dto.Ok(msg, ticketToResponse(t)), nil
}

func (s *ticketService) Listar(ctx context.Context, sucursalID uuid.UUID, estado string) ([]dto.TicketResponse, error) {
	tickets, err := s.repo.List(ctx, sucursalID, estado)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TicketResponse, len(tickets))
	for i := range tickets {
		resp[i] = *ticketToResponse(&tickets[i])
	}
	return resp, nil
}

func (s *ticketService) CambiarEstado(ctx context.Context, sucursalID uuid.UUID, folio int, estado string) (*dto.ResultadoAccion, error) {
	switch estado {
	case model.TicketAbierto, model.TicketEnProceso, model.TicketCerrado:
	default:
		return nil, invalido("estado %q no soportado", estado)
	}
	t, err := s.repo.FindByFolio(ctx, sucursalID, folio)
	if err != nil {
		return nil, noEncontrado(err, fmt.Sprintf("ticket #%d", folio))
	}
	if t.Estado == estado {
		return nil, invalido("el ticket #%d ya está %s", folio, strings.ReplaceAll(estado, "_", " "))
	}

	t.Estado = estado
	if estado == model.TicketCerrado {
		now := s.now()
		t.CerradoAt = &now
	} else {
		t.CerradoAt = nil
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Ticket #%d ahora está %s.", t.Folio, strings.ReplaceAll(t.Estado, "_", " "))
	return dto.Ok(msg, ticketToResponse(t)), nil
}

func ticketToResponse(t *model.TicketSoporte) *dto.TicketResponse {
	resp := &dto.TicketResponse{
		ID:          t.ID.String(),
		Folio:       t.Folio,
		Titulo:      t.Titulo,
		Descripcion: t.Descripcion,
		Prioridad:   t.Prioridad,
		Estado:      t.Estado,
		CreatedAt:   formatFecha(t.CreatedAt),
	}
	if t.CerradoAt != nil {
		s := formatFecha(*t.CerradoAt)
		resp.CerradoAt = &s
	}
	return resp
}
