package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbuapp/oficina-api/services"
	"github.com/carbuapp/oficina-api/utils"
)

// QuoteItemRequest is one line of a quote request. unit_price defaults to 0.
type QuoteItemRequest struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
}

// CreateQuoteRequest represents the request body for creating a quote
type CreateQuoteRequest struct {
	VehicleID uint               `json:"vehicle_id" binding:"required,gt=0"`
	Items     []QuoteItemRequest `json:"items" binding:"required"`
}

// UpdateQuoteRequest represents the request body for updating a quote. A
// present items array replaces every item of the quote.
type UpdateQuoteRequest struct {
	VehicleID *uint               `json:"vehicle_id" binding:"omitempty,gt=0"`
	Items     *[]QuoteItemRequest `json:"items"`
}

func toItemInputs(items []QuoteItemRequest) []services.QuoteItemInput {
	inputs := make([]services.QuoteItemInput, len(items))
	for i, item := range items {
		inputs[i] = services.QuoteItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return inputs
}

type QuoteController struct {
	quotes    *services.QuoteService
	documents *services.DocumentService
}

func NewQuoteController(quotes *services.QuoteService, documents *services.DocumentService) *QuoteController {
	return &QuoteController{quotes: quotes, documents: documents}
}

// Create handles POST /api/v1/quotes - numbers the quote and computes totals
func (ctl *QuoteController) Create(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quote, err := ctl.quotes.Create(c.Request.Context(), scope, services.QuoteInput{
		VehicleID: req.VehicleID,
		Items:     toItemInputs(req.Items),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, quote)
}

// List handles GET /api/v1/quotes?vehicle_id=
func (ctl *QuoteController) List(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	vehicleID, ok := queryID(c, "vehicle_id")
	if !ok {
		return
	}

	quotes, err := ctl.quotes.List(c.Request.Context(), scope, vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, quotes)
}

// Get handles GET /api/v1/quotes/:id
func (ctl *QuoteController) Get(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	quote, err := ctl.quotes.Get(c.Request.Context(), scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, quote)
}

// Update handles PUT /api/v1/quotes/:id
func (ctl *QuoteController) Update(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.VehicleID == nil && req.Items == nil {
		respondFailure(c, http.StatusBadRequest, services.CodeValidation, "at least one field must be provided")
		return
	}

	update := services.QuoteUpdate{VehicleID: req.VehicleID}
	if req.Items != nil {
		items := toItemInputs(*req.Items)
		update.Items = &items
	}

	quote, err := ctl.quotes.Update(c.Request.Context(), scope, id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, quote)
}

// Delete handles DELETE /api/v1/quotes/:id
func (ctl *QuoteController) Delete(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.quotes.Delete(c.Request.Context(), scope, id); err != nil {
		respondError(c, err)
		return
	}
	deleted(c, id)
}

// PDF handles GET /api/v1/quotes/:id/pdf - streams the rendered quote
func (ctl *QuoteController) PDF(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	doc, err := ctl.documents.Render(c.Request.Context(), scope, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", utils.SafeFileName(doc.FileName)))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// ArchiveDocument handles POST /api/v1/quotes/:id/document - renders the
// quote, stores it and returns a time-limited download link
func (ctl *QuoteController) ArchiveDocument(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	archived, err := ctl.documents.Archive(c.Request.Context(), scope, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, archived)
}
