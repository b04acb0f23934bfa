package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/middleware"
	"github.com/carbuapp/oficina-api/models"
	"github.com/carbuapp/oficina-api/services"
	"github.com/carbuapp/oficina-api/tests/testutil"
)

type harness struct {
	db      *gorm.DB
	router  *gin.Engine
	scope   services.Scope
	vehicle models.Vehicle
}

// newHarness mounts the controllers behind a middleware that injects a fixed
// scope, so handlers are exercised without token handling.
func newHarness(t *testing.T, archive services.DocumentArchive) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	workshop := testutil.SeedWorkshop(t, db, "Oficina Teste")
	user := testutil.SeedUser(t, db, workshop.ID, "admin@teste.local", models.RoleAdmin, true)
	client := testutil.SeedClient(t, db, workshop.ID, "Maria")
	vehicle := testutil.SeedVehicle(t, db, workshop.ID, client.ID, "ABC1D23")

	store := services.NewStore(db)
	quotes := services.NewQuoteService(store)
	scope := services.Scope{UserID: user.ID, Role: user.Role, WorkshopID: workshop.ID}

	router := gin.New()
	router.GET("/noscope/clients", NewClientController(services.NewClientService(store)).List)

	api := router.Group("", func(c *gin.Context) {
		middleware.SetScope(c, scope)
		c.Next()
	})
	clientCtl := NewClientController(services.NewClientService(store))
	api.GET("/clients", clientCtl.List)
	api.PUT("/clients/:id", clientCtl.Update)
	vehicleCtl := NewVehicleController(services.NewVehicleService(store))
	api.GET("/vehicles", vehicleCtl.List)
	api.PUT("/vehicles/:id", vehicleCtl.Update)
	recordCtl := NewTechnicalRecordController(services.NewTechnicalRecordService(store))
	api.POST("/technical-records", recordCtl.Create)
	api.GET("/technical-records", recordCtl.List)
	api.PUT("/technical-records/:id", recordCtl.Update)
	quoteCtl := NewQuoteController(quotes, services.NewDocumentService(quotes, services.NewPDFRenderer(), archive))
	api.POST("/quotes", quoteCtl.Create)
	api.GET("/quotes/:id", quoteCtl.Get)
	api.PUT("/quotes/:id", quoteCtl.Update)
	api.POST("/quotes/:id/document", quoteCtl.ArchiveDocument)
	api.GET("/auth/me", NewAuthController(services.NewAuthService(store, testutil.TestConfig())).Me)

	return &harness{db: db, router: router, scope: scope, vehicle: vehicle}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func errorOf(response map[string]interface{}) map[string]interface{} {
	e, _ := response["error"].(map[string]interface{})
	return e
}

func (h *harness) createQuote(t *testing.T) uint {
	t.Helper()
	w, response := h.do(t, http.MethodPost, "/quotes", gin.H{
		"vehicle_id": h.vehicle.ID,
		"items":      []gin.H{{"description": "Carburetor kit", "quantity": 1, "unit_price": 120}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := response["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{services.CodeValidation, http.StatusBadRequest},
		{services.CodeNotFound, http.StatusNotFound},
		{services.CodeConflict, http.StatusConflict},
		{services.CodeUnauthorized, http.StatusUnauthorized},
		{services.CodeDatabase, http.StatusInternalServerError},
		{services.CodeArchiveDisabled, http.StatusServiceUnavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.code))
		})
	}
}

func TestRespondError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, &services.ServiceError{
		Code:    services.CodeDatabase,
		Message: "failed to list clients",
		Err:     errors.New("connection refused"),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "failed to list clients")
	assert.Len(t, c.Errors, 1)
}

func TestRequireScope_Missing(t *testing.T) {
	h := newHarness(t, nil)

	w, response := h.do(t, http.MethodGet, "/noscope/clients", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "UNAUTHORIZED", errorOf(response)["code"])
}

func TestMe_ReturnsUserWithoutPassword(t *testing.T) {
	h := newHarness(t, nil)

	w, response := h.do(t, http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "admin@teste.local", data["email"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUpdate_RequiresAField(t *testing.T) {
	h := newHarness(t, nil)

	for _, path := range []string{
		"/clients/1",
		fmt.Sprintf("/vehicles/%d", h.vehicle.ID),
		"/technical-records/1",
		"/quotes/1",
	} {
		t.Run(path, func(t *testing.T) {
			w, response := h.do(t, http.MethodPut, path, gin.H{})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "at least one field must be provided", errorOf(response)["message"])
		})
	}
}

func TestBindError_IncludesDetails(t *testing.T) {
	h := newHarness(t, nil)

	w, response := h.do(t, http.MethodPost, "/technical-records", gin.H{"vehicle_id": h.vehicle.ID})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := errorOf(response)
	assert.Equal(t, services.CodeValidation, e["code"])
	assert.Equal(t, "Invalid request data", e["message"])
	assert.NotEmpty(t, e["details"])
}

func TestInvalidIDs(t *testing.T) {
	h := newHarness(t, nil)

	w, response := h.do(t, http.MethodGet, "/quotes/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorOf(response)["code"])
	assert.Equal(t, "id must be a positive integer", errorOf(response)["message"])

	w, response = h.do(t, http.MethodGet, "/technical-records?vehicle_id=-3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "vehicle_id must be a positive integer", errorOf(response)["message"])
}

func TestTechnicalRecords_FilterByCategory(t *testing.T) {
	h := newHarness(t, nil)

	for _, category := range []string{"carburetor", "ignition", "carburetor"} {
		w, _ := h.do(t, http.MethodPost, "/technical-records", gin.H{
			"vehicle_id":  h.vehicle.ID,
			"category":    category,
			"description": "check " + category,
			"jet_size":    "135",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, response := h.do(t, http.MethodGet, fmt.Sprintf("/technical-records?vehicle_id=%d&category=carburetor", h.vehicle.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"], 2)

	w, response = h.do(t, http.MethodGet, "/technical-records?category=brakes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, response["data"])
}

func TestQuoteCreate_InvalidItem(t *testing.T) {
	h := newHarness(t, nil)

	w, response := h.do(t, http.MethodPost, "/quotes", gin.H{
		"vehicle_id": h.vehicle.ID,
		"items":      []gin.H{{"description": "ok", "quantity": 1}, {"description": "bad", "quantity": 0}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "item 2: quantity must be greater than 0", errorOf(response)["message"])
}

func TestQuoteCreate_OverflowingTotalIsRejected(t *testing.T) {
	h := newHarness(t, nil)

	w, response := h.do(t, http.MethodPost, "/quotes", gin.H{
		"vehicle_id": h.vehicle.ID,
		"items":      []gin.H{{"description": "Engine rebuild", "quantity": 1e200, "unit_price": 1e200}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "item 1: line value is out of range", errorOf(response)["message"])

	var count int64
	require.NoError(t, h.db.Model(&models.Quote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestArchiveDocument(t *testing.T) {
	t.Run("disabled without an archive", func(t *testing.T) {
		h := newHarness(t, nil)
		id := h.createQuote(t)

		w, response := h.do(t, http.MethodPost, fmt.Sprintf("/quotes/%d/document", id), nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, services.CodeArchiveDisabled, errorOf(response)["code"])
	})

	t.Run("upload failure", func(t *testing.T) {
		archive := services.NewMockArchive()
		archive.UploadErr = errors.New("bucket unreachable")
		h := newHarness(t, archive)
		id := h.createQuote(t)

		w, response := h.do(t, http.MethodPost, fmt.Sprintf("/quotes/%d/document", id), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "failed to archive document", errorOf(response)["message"])
		assert.NotContains(t, w.Body.String(), "bucket unreachable")
	})

	t.Run("stored and signed", func(t *testing.T) {
		archive := services.NewMockArchive()
		h := newHarness(t, archive)
		id := h.createQuote(t)

		w, response := h.do(t, http.MethodPost, fmt.Sprintf("/quotes/%d/document", id), nil)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "orcamento-0.pdf", data["file_name"])
		assert.Contains(t, data["key"], fmt.Sprintf("workshops/%d/quotes/%d/", h.scope.WorkshopID, id))
		require.Len(t, archive.Documents(), 1)
	})
}
