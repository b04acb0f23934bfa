package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbuapp/oficina-api/services"
)

type WorkshopController struct {
	workshops *services.WorkshopService
}

func NewWorkshopController(workshops *services.WorkshopService) *WorkshopController {
	return &WorkshopController{workshops: workshops}
}

// ListPublic handles GET /api/v1/public/workshops - the pre-login workshop picker
func (ctl *WorkshopController) ListPublic(c *gin.Context) {
	workshops, err := ctl.workshops.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, workshops)
}
