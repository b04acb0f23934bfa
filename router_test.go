package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/carbuapp/oficina-api/config"
	"github.com/carbuapp/oficina-api/models"
	"github.com/carbuapp/oficina-api/services"
	"github.com/carbuapp/oficina-api/tests/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RouterTestSuite drives the full router against an in-memory database.
type RouterTestSuite struct {
	suite.Suite
	cfg     *config.Config
	db      *gorm.DB
	archive *services.MockArchive
	router  *gin.Engine

	w1, w2 models.Workshop
}

func (s *RouterTestSuite) SetupTest() {
	testutil.RequireTestEnvironment(s.T())

	s.cfg = testutil.TestConfig()
	s.db = testutil.NewTestDB(s.T())
	s.archive = services.NewMockArchive()
	s.router = setupRouter(s.cfg, buildDependencies(s.cfg, s.db, s.archive))

	s.w1 = testutil.SeedWorkshop(s.T(), s.db, "Oficina Um")
	s.w2 = testutil.SeedWorkshop(s.T(), s.db, "Oficina Dois")
	testutil.SeedUser(s.T(), s.db, s.w1.ID, "admin@um.local", models.RoleAdmin, true)
	testutil.SeedUser(s.T(), s.db, s.w2.ID, "admin@dois.local", models.RoleAdmin, true)
}

func (s *RouterTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, data interface{}) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		s.Require().NoError(json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *RouterTestSuite) login(email string, workshopID uint) string {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":       email,
		"password":    testutil.TestPassword,
		"workshop_id": workshopID,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string `json:"token"`
	}
	s.decode(w, &result)
	s.Require().NotEmpty(result.Token)
	return result.Token
}

func (s *RouterTestSuite) createID(path, token string, body interface{}) uint {
	w := s.do(http.MethodPost, path, token, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	s.decode(w, &created)
	return created.ID
}

func (s *RouterTestSuite) TestHealthAndDatabaseStatus() {
	w := s.do(http.MethodGet, "/api/v1/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/api/v1/database/status", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "quotes")
	s.Contains(w.Body.String(), `"dialect":"sqlite"`)
}

func (s *RouterTestSuite) TestPublicWorkshops() {
	w := s.do(http.MethodGet, "/api/v1/public/workshops", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var workshops []map[string]interface{}
	s.decode(w, &workshops)
	s.Require().Len(workshops, 2)
	s.Equal("Oficina Um", workshops[0]["name"])
	s.Len(workshops[0], 3)
}

func (s *RouterTestSuite) TestLoginAndMe() {
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "admin@um.local", "password": "wrong", "workshop_id": s.w1.ID,
	})
	s.Equal(http.StatusUnauthorized, w.Code)
	env := s.decode(w, nil)
	s.Equal("UNAUTHORIZED", env.Error.Code)
	s.Equal("invalid password", env.Error.Message)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@um.local"})
	s.Equal(http.StatusBadRequest, w.Code)

	token := s.login("admin@um.local", s.w1.ID)
	w = s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "admin@um.local")
	s.NotContains(w.Body.String(), "password")
}

func (s *RouterTestSuite) TestProtectedRoutesRequireToken() {
	for _, path := range []string{"/api/v1/clients", "/api/v1/vehicles", "/api/v1/quotes", "/api/v1/technical-records", "/api/v1/auth/me"} {
		w := s.do(http.MethodGet, path, "", nil)
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}
}

func (s *RouterTestSuite) TestDeactivatedAccountLosesAccess() {
	token := s.login("admin@um.local", s.w1.ID)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/clients", token, nil).Code)

	s.Require().NoError(s.db.Model(&models.User{}).Where("email = ?", "admin@um.local").Update("active", false).Error)

	w := s.do(http.MethodGet, "/api/v1/clients", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "user account is deactivated")
}

func (s *RouterTestSuite) TestQuoteLifecycle() {
	token := s.login("admin@um.local", s.w1.ID)

	clientID := s.createID("/api/v1/clients", token, gin.H{"name": "Maria", "phone": "11999990000"})
	vehicleID := s.createID("/api/v1/vehicles", token, gin.H{"client_id": clientID, "plate": "ABC1D23", "model": "Opala"})

	w := s.do(http.MethodPost, "/api/v1/quotes", token, gin.H{
		"vehicle_id": vehicleID,
		"items":      []gin.H{{"description": "Oil filter", "quantity": 2, "unit_price": 25.0}},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var q0 models.Quote
	s.decode(w, &q0)
	s.Equal(0, q0.Number)
	s.Equal(50.0, q0.Total)

	w = s.do(http.MethodPost, "/api/v1/quotes", token, gin.H{
		"vehicle_id": vehicleID,
		"items":      []gin.H{{"description": "Labour", "quantity": 1}},
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var q1 models.Quote
	s.decode(w, &q1)
	s.Equal(1, q1.Number)
	s.Equal(0.0, q1.Total)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/v1/quotes/%d", q0.ID), token, gin.H{
		"items": []gin.H{{"description": "Spark plug", "quantity": 4, "unit_price": 10.0}},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated models.Quote
	s.decode(w, &updated)
	s.Equal(0, updated.Number)
	s.Equal(40.0, updated.Subtotal)
	s.Len(updated.Items, 1)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/quotes?vehicle_id=%d", vehicleID), token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []models.Quote
	s.decode(w, &list)
	s.Len(list, 2)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/quotes/%d/pdf", q0.ID), token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="orcamento-0.pdf"`, w.Header().Get("Content-Disposition"))
	s.True(strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/v1/quotes/%d/document", q0.ID), token, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var archived services.ArchivedDocument
	s.decode(w, &archived)
	s.Contains(archived.URL, archived.Key)
	s.Len(s.archive.Documents(), 1)

	// vehicle with quotes cannot be deleted; client with a vehicle neither
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/vehicles/%d", vehicleID), token, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "2 quote(s)")

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/clients/%d", clientID), token, nil)
	s.Equal(http.StatusConflict, w.Code)

	for _, id := range []uint{q0.ID, q1.ID} {
		s.Equal(http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/v1/quotes/%d", id), token, nil).Code)
	}
	s.Equal(http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/v1/vehicles/%d", vehicleID), token, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/v1/clients/%d", clientID), token, nil).Code)
}

func (s *RouterTestSuite) TestTenantIsolationOverHTTP() {
	token1 := s.login("admin@um.local", s.w1.ID)
	token2 := s.login("admin@dois.local", s.w2.ID)

	clientID := s.createID("/api/v1/clients", token1, gin.H{"name": "Maria"})
	vehicleID := s.createID("/api/v1/vehicles", token1, gin.H{"client_id": clientID, "plate": "ABC1D23", "model": "Opala"})
	recordID := s.createID("/api/v1/technical-records", token1, gin.H{
		"vehicle_id": vehicleID, "category": "carburetor", "description": "Weber rebuild",
	})
	quoteID := s.createID("/api/v1/quotes", token1, gin.H{
		"vehicle_id": vehicleID,
		"items":      []gin.H{{"description": "A", "quantity": 1, "unit_price": 1}},
	})

	notFound := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPut, fmt.Sprintf("/api/v1/clients/%d", clientID), gin.H{"name": "x"}},
		{http.MethodDelete, fmt.Sprintf("/api/v1/clients/%d", clientID), nil},
		{http.MethodPut, fmt.Sprintf("/api/v1/vehicles/%d", vehicleID), gin.H{"plate": "x"}},
		{http.MethodDelete, fmt.Sprintf("/api/v1/vehicles/%d", vehicleID), nil},
		{http.MethodPut, fmt.Sprintf("/api/v1/technical-records/%d", recordID), gin.H{"notes": "x"}},
		{http.MethodDelete, fmt.Sprintf("/api/v1/technical-records/%d", recordID), nil},
		{http.MethodGet, fmt.Sprintf("/api/v1/quotes/%d", quoteID), nil},
		{http.MethodGet, fmt.Sprintf("/api/v1/quotes/%d/pdf", quoteID), nil},
		{http.MethodDelete, fmt.Sprintf("/api/v1/quotes/%d", quoteID), nil},
		{http.MethodPost, "/api/v1/vehicles", gin.H{"client_id": clientID, "plate": "X", "model": "Y"}},
		{http.MethodPost, "/api/v1/quotes", gin.H{"vehicle_id": vehicleID, "items": []gin.H{{"description": "A", "quantity": 1}}}},
	}
	for _, tc := range notFound {
		w := s.do(tc.method, tc.path, token2, tc.body)
		s.Equal(http.StatusNotFound, w.Code, "%s %s: %s", tc.method, tc.path, w.Body.String())
	}

	for _, path := range []string{"/api/v1/clients", "/api/v1/vehicles", "/api/v1/quotes", "/api/v1/technical-records"} {
		w := s.do(http.MethodGet, path, token2, nil)
		s.Require().Equal(http.StatusOK, w.Code)
		var items []map[string]interface{}
		s.decode(w, &items)
		s.Empty(items, path)
	}
}

func (s *RouterTestSuite) TestValidationErrors() {
	token := s.login("admin@um.local", s.w1.ID)

	w := s.do(http.MethodPost, "/api/v1/clients", token, gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", s.decode(w, nil).Error.Code)

	w = s.do(http.MethodPut, "/api/v1/clients/abc", token, gin.H{"name": "x"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_ID", s.decode(w, nil).Error.Code)

	w = s.do(http.MethodPut, "/api/v1/clients/1", token, gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/vehicles?client_id=nope", token, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	clientID := s.createID("/api/v1/clients", token, gin.H{"name": "Maria"})
	vehicleID := s.createID("/api/v1/vehicles", token, gin.H{"client_id": clientID, "plate": "ABC1D23", "model": "Opala"})
	w = s.do(http.MethodPost, "/api/v1/quotes", token, gin.H{"vehicle_id": vehicleID, "items": []gin.H{}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("items must contain at least one item", s.decode(w, nil).Error.Message)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
