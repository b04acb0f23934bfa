package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carbuapp/oficina-api/logger"
	"github.com/carbuapp/oficina-api/middleware"
	"github.com/carbuapp/oficina-api/services"
	"github.com/carbuapp/oficina-api/utils"
)

var statusByCode = map[string]int{
	services.CodeValidation:      http.StatusBadRequest,
	services.CodeNotFound:        http.StatusNotFound,
	services.CodeConflict:        http.StatusConflict,
	services.CodeUnauthorized:    http.StatusUnauthorized,
	services.CodeDatabase:        http.StatusInternalServerError,
	services.CodeArchiveDisabled: http.StatusServiceUnavailable,
}

// StatusFor maps a service error code to its HTTP status.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError writes the envelope for a service error. Internal failures are
// logged with their cause and reported without it.
func respondError(c *gin.Context, err error) {
	code := services.CodeOf(err)
	status := StatusFor(code)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.L().Error("request failed",
			zap.String("request_id", logger.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	respondFailure(c, status, code, services.MessageOf(err))
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    services.CodeValidation,
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

func respondParamError(c *gin.Context, err error) {
	var paramErr *utils.ParamError
	if errors.As(err, &paramErr) {
		respondFailure(c, http.StatusBadRequest, paramErr.Code, paramErr.Message)
		return
	}
	respondFailure(c, http.StatusBadRequest, services.CodeValidation, err.Error())
}

// requireScope fetches the caller's scope or writes a 401 and returns false.
func requireScope(c *gin.Context) (services.Scope, bool) {
	scope, err := middleware.GetScope(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, services.CodeUnauthorized, "Could not extract user information")
		return services.Scope{}, false
	}
	return scope, true
}

// pathID parses the ":id" route parameter or writes a 400 and returns false.
func pathID(c *gin.Context) (uint, bool) {
	id, err := utils.ParseID("id", c.Param("id"))
	if err != nil {
		respondParamError(c, err)
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (*uint, bool) {
	id, err := utils.ParseOptionalID(name, c.Query(name))
	if err != nil {
		respondParamError(c, err)
		return nil, false
	}
	return id, true
}

func deleted(c *gin.Context, id uint) {
	respondOK(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
