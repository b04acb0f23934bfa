package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbuapp/oficina-api/services"
)

// LoginRequest represents the request body for POST /api/v1/auth/login
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	WorkshopID uint   `json:"workshop_id" binding:"required,gt=0"`
}

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Login handles POST /api/v1/auth/login - exchanges credentials for a token
func (ctl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ctl.auth.Login(c.Request.Context(), services.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		WorkshopID: req.WorkshopID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// Me handles GET /api/v1/auth/me - returns the authenticated user
func (ctl *AuthController) Me(c *gin.Context) {
	scope, ok := requireScope(c)
	if !ok {
		return
	}

	user, err := ctl.auth.Me(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}
