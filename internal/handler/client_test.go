package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/andescredit/loan-engine/internal/domain"
	customError "github.com/andescredit/loan-engine/pkg/errors"
	"github.com/andescredit/loan-engine/tests/mocks"
)

func clientRouter(service *mocks.MockClientService) *mux.Router {
	h := NewClientHandler(service)
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/clients", h.Create).Methods(http.MethodPost)
	api.HandleFunc("/clients", h.List).Methods(http.MethodGet)
	api.HandleFunc("/clients/{clientId}", h.Get).Methods(http.MethodGet)
	return router
}

func TestCreateClientHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		service := &mocks.MockClientService{}
		service.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.CreateClientRequest) bool {
			return r.DNI == "12345678"
		})).Return(&domain.Client{ID: uuid.New(), DNI: "12345678"}, nil)

		recorder := doRequest(t, clientRouter(service), http.MethodPost, "/api/v1/clients",
			`{"dni":"12345678","first_name":"Maria","last_name":"Quispe"}`)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("short DNI fails validation", func(t *testing.T) {
		service := &mocks.MockClientService{}

		recorder := doRequest(t, clientRouter(service), http.MethodPost, "/api/v1/clients",
			`{"dni":"123","first_name":"Maria","last_name":"Quispe"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate", func(t *testing.T) {
		service := &mocks.MockClientService{}
		service.On("Create", mock.Anything, mock.Anything).
			Return(nil, customError.WrapClientAlreadyExists("12345678"))

		recorder := doRequest(t, clientRouter(service), http.MethodPost, "/api/v1/clients",
			`{"dni":"12345678","first_name":"Maria","last_name":"Quispe"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, customError.ErrCodeClientAlreadyExists, decodeErrorCode(t, recorder))
	})
}

func TestListClientsHandler(t *testing.T) {
	service := &mocks.MockClientService{}
	service.On("List", mock.Anything, "maria", "123").Return([]*domain.Client{}, nil)

	recorder := doRequest(t, clientRouter(service), http.MethodGet, "/api/v1/clients?q=maria&dni=123", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	service.AssertExpectations(t)
}

func TestGetClientHandler(t *testing.T) {
	clientID := uuid.New()
	service := &mocks.MockClientService{}
	service.On("Get", mock.Anything, clientID).Return(nil, customError.WrapClientNotFound(clientID.String()))

	recorder := doRequest(t, clientRouter(service), http.MethodGet, "/api/v1/clients/"+clientID.String(), "")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, customError.ErrCodeClientNotFound, decodeErrorCode(t, recorder))
}
