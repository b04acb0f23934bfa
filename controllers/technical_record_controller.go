package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carbuapp/oficina-api/services"
)

// CreateTechnicalRecordRequest represents the request body for creating a technical record
type CreateTechnicalRecordRequest struct {
	VehicleID   uint    `json:"vehicle_id" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Pressure    *string `json:"pressure"`
	JetSize     *string `json:"jet_size"`
	FuelType    *string `json:"fuel_type"`
	Notes       *string `json:"notes"`
}

// UpdateTechnicalRecordRequest represents the request body for updating a
// technical record. Omitted fields are left unchanged.
type UpdateTechnicalRecordRequest struct {
	VehicleID   *uint   `json:"vehicle_id" binding:"omitempty,gt=0"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Pressure    *string `json:"pressure"`
	JetSize     *string `json:"jet_size"`
	FuelType    *string `json:"fuel_type"`
	Notes       *string `json:"notes"`
}

func (r UpdateTechnicalRecordRequest) empty() bool {
	return r.VehicleID == nil && r.Category == nil && r.Description == nil &&
		r.Pressure == nil && r.JetSize == nil && r.FuelType == nil && r.Notes == nil
}

type TechnicalRecordController struct {
	records *services.TechnicalRecordService
}

func NewTechnicalRecordController(records *services.TechnicalRecordService) *TechnicalRecordController {
	return &TechnicalRecordController{records: records}
}

// Create handles POST /api/v1/technical-records
func (ctl *TechnicalRecordController) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}

	var req CreateTechnicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := ctl.records.Create(c.Request.Context(), scope, services.TechnicalRecordInput{
		VehicleID:   req.VehicleID,
		Category:    req.Category,
		Description: req.Description,
		Pressure:    req.Pressure,
		JetSize:     req.JetSize,
		FuelType:    req.FuelType,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, record)
}

// List handles GET /api/v1/technical-records?vehicle_id=&category=
func (ctl *TechnicalRecordController) List(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	vehicleID, ok := queryID(c, "vehicle_id")
	if !ok {
		return
	}

	records, err := ctl.records.List(c.Request.Context(), scope, services.TechnicalRecordFilter{
		VehicleID: vehicleID,
		Category:  strings.TrimSpace(c.Query("category")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, records)
}

// Update handles PUT /api/v1/technical-records/:id
func (ctl *TechnicalRecordController) Update(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateTechnicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.empty() {
		respondFailure(c, http.StatusBadRequest, services.CodeValidation, "at least one field must be provided")
		return
	}

	record, err := ctl.records.Update(c.Request.Context(), scope, id, services.TechnicalRecordUpdate{
		VehicleID:   req.VehicleID,
		Category:    req.Category,
		Description: req.Description,
		Pressure:    req.Pressure,
		JetSize:     req.JetSize,
		FuelType:    req.FuelType,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/technical-records/:id
func (ctl *TechnicalRecordController) Delete(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.records.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, id)
}
