package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbuapp/oficina-api/services"
)

// CreateClientRequest represents the request body for creating a client
type CreateClientRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone"`
}

// UpdateClientRequest represents the request body for updating a client.
// Omitted fields are left unchanged.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func (r UpdateClientRequest) empty() bool {
	return r.Name == nil && r.Phone == nil
}

type ClientController struct {
	clients *services.ClientService
}

func NewClientController(clients *services.ClientService) *ClientController {
	return &ClientController{clients: clients}
}

// Create handles POST /api/v1/clients
func (ctl *ClientController) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := ctl.clients.Create(c.Request.Context(), scope, services.ClientInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, client)
}

// List handles GET /api/v1/clients
func (ctl *ClientController) List(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}

	clients, err := ctl.clients.List(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, clients)
}

// Update handles PUT /api/v1/clients/:id
func (ctl *ClientController) Update(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.empty() {
		respondFailure(c, http.StatusBadRequest, services.CodeValidation, "at least one field must be provided")
		return
	}

	client, err := ctl.clients.Update(c.Request.Context(), scope, id, services.ClientUpdate{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, client)
}

// Delete handles DELETE /api/v1/clients/:id
func (ctl *ClientController) Delete(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.clients.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, id)
}
