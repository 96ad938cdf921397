package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/andescredit/loan-engine/internal/domain"
	"github.com/andescredit/loan-engine/pkg/response"
)

// ClientService is the surface this handler needs from the service layer.
type ClientService interface {
	Create(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error)
	List(ctx context.Context, query, dniPrefix string) ([]*domain.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ClientDetail, error)
}

type ClientHandler struct {
	service   ClientService
	validator *validator.Validate
}

func NewClientHandler(service ClientService) *ClientHandler {
	return &ClientHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "request validation failed", err)
		return
	}

	client, err := h.service.Create(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.List(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("dni"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "clientId")
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, detail)
}
