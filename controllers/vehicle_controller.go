package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbuapp/oficina-api/services"
)

// CreateVehicleRequest represents the request body for creating a vehicle
type CreateVehicleRequest struct {
	ClientID   uint    `json:"client_id" binding:"required,gt=0"`
	Plate      string  `json:"plate" binding:"required"`
	Model      string  `json:"model" binding:"required"`
	Year       *string `json:"year"`
	Engine     *string `json:"engine"`
	FuelSystem *string `json:"fuel_system"`
}

// UpdateVehicleRequest represents the request body for updating a vehicle.
// Omitted fields are left unchanged.
type UpdateVehicleRequest struct {
	ClientID   *uint   `json:"client_id" binding:"omitempty,gt=0"`
	Plate      *string `json:"plate"`
	Model      *string `json:"model"`
	Year       *string `json:"year"`
	Engine     *string `json:"engine"`
	FuelSystem *string `json:"fuel_system"`
}

func (r UpdateVehicleRequest) empty() bool {
	return r.ClientID == nil && r.Plate == nil && r.Model == nil &&
		r.Year == nil && r.Engine == nil && r.FuelSystem == nil
}

type VehicleController struct {
	vehicles *services.VehicleService
}

func NewVehicleController(vehicles *services.VehicleService) *VehicleController {
	return &VehicleController{vehicles: vehicles}
}

// Create handles POST /api/v1/vehicles
func (ctl *VehicleController) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	vehicle, err := ctl.vehicles.Create(c.Request.Context(), scope, services.VehicleInput{
		ClientID:   req.ClientID,
		Plate:      req.Plate,
		Model:      req.Model,
		Year:       req.Year,
		Engine:     req.Engine,
		FuelSystem: req.FuelSystem,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, vehicle)
}

// List handles GET /api/v1/vehicles?client_id=
func (ctl *VehicleController) List(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	clientID, ok := queryID(c, "client_id")
	if !ok {
		return
	}

	vehicles, err := ctl.vehicles.List(c.Request.Context(), scope, clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, vehicles)
}

// Update handles PUT /api/v1/vehicles/:id
func (ctl *VehicleController) Update(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.empty() {
		respondFailure(c, http.StatusBadRequest, services.CodeValidation, "at least one field must be provided")
		return
	}

	vehicle, err := ctl.vehicles.Update(c.Request.Context(), scope, id, services.VehicleUpdate{
		ClientID:   req.ClientID,
		Plate:      req.Plate,
		Model:      req.Model,
		Year:       req.Year,
		Engine:     req.Engine,
		FuelSystem: req.FuelSystem,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, vehicle)
}

// Delete handles DELETE /api/v1/vehicles/:id
func (ctl *VehicleController) Delete(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.vehicles.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, id)
}
