package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/dto"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/services"
	"github.com/stretchr/testify/require"

	"github.com/gin-gonic/gin"
)

func (env *testEnv) createShip(t *testing.T, name string) *models.Ship {
	t.Helper()
	ship, err := env.maintenanceService.CreateShip(name, "")
	require.NoError(t, err)
	return ship
}

func TestMaintenanceHandler_CreateShip(t *testing.T) {
	env := setupTestEnv(t)

	r := newRouter()
	r.POST("/api/ships", env.maintenanceHandler.CreateShip)
	r.GET("/api/ships", env.maintenanceHandler.ListShips)

	req := jsonRequest(t, http.MethodPost, "/api/ships", map[string]string{
		"name": "Nave Austral",
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var ship dto.ShipDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ship))
	require.NotEmpty(t, ship.FolioID)

	req = httptest.NewRequest(http.MethodGet, "/api/ships", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var ships []dto.ShipDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ships))
	require.Len(t, ships, 1)
}

func TestMaintenanceHandler_CreateRequestNumbersFolio(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	ship := env.createShip(t, "Nave Austral")

	r := newRouter()
	r.POST("/api/requests", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, reporter.ID)
		env.maintenanceHandler.CreateRequest(c)
	})

	prefix := strings.ToUpper(strings.SplitN(ship.FolioID, "-", 2)[0])
	for i := 1; i <= 2; i++ {
		req := jsonRequest(t, http.MethodPost, "/api/requests", map[string]interface{}{
			"title":   fmt.Sprintf("Falla de motor %d", i),
			"ship_id": ship.ID,
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		var response dto.MaintenanceRequestDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, fmt.Sprintf("%s-%04d", prefix, i), response.Folio)
		require.Equal(t, models.RequestStatusReported, response.Status)
	}
}

func TestMaintenanceHandler_CreateRequestFansOut(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	env.createVerifiedUser(t, "mantencion@sotex.app", "supersecret", models.RoleMantencion)
	ship := env.createShip(t, "Nave Austral")

	_, warning, err := env.maintenanceService.CreateRequest(services.CreateRequestInput{
		Title:      "Bomba de sentina con falla",
		ShipID:     ship.ID,
		ReporterID: reporter.ID,
	})
	require.NoError(t, err)
	require.Empty(t, warning)

	require.Len(t, env.mailer.subjects, 1)
	require.Contains(t, env.mailer.subjects[0], "Nuevo Requerimiento")
	require.Equal(t, []string{"mantencion@sotex.app"}, env.mailer.recipients[0])

	var count int64
	require.NoError(t, env.db.Model(&models.GeneratedNotification{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestMaintenanceHandler_CreateRequestUnknownShip(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)

	r := newRouter()
	r.POST("/api/requests", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, reporter.ID)
		env.maintenanceHandler.CreateRequest(c)
	})

	req := jsonRequest(t, http.MethodPost, "/api/requests", map[string]interface{}{
		"title":   "Falla sin nave",
		"ship_id": 9999,
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaintenanceHandler_CreateRequestValidatesResponsible(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	ship := env.createShip(t, "Nave Austral")

	r := newRouter()
	r.POST("/api/requests", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, reporter.ID)
		env.maintenanceHandler.CreateRequest(c)
	})

	req := jsonRequest(t, http.MethodPost, "/api/requests", map[string]interface{}{
		"title":          "Falla con responsable fantasma",
		"ship_id":        ship.ID,
		"responsible_id": 9999,
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.MaintenanceRequest{}).Count(&count).Error)
	require.Zero(t, count)

	responsible := models.Responsible{Name: "Juan Soto"}
	require.NoError(t, env.db.Create(&responsible).Error)

	req = jsonRequest(t, http.MethodPost, "/api/requests", map[string]interface{}{
		"title":          "Falla con responsable asignado",
		"ship_id":        ship.ID,
		"responsible_id": responsible.ID,
	})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.MaintenanceRequestDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.ResponsibleID)
	require.Equal(t, responsible.ID, *response.ResponsibleID)
}

func TestMaintenanceHandler_CompleteRequest(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	env.createVerifiedUser(t, "jefe@sotex.app", "supersecret", models.RoleJefeArea)
	ship := env.createShip(t, "Nave Austral")

	request, _, err := env.maintenanceService.CreateRequest(services.CreateRequestInput{
		Title:      "Bomba de sentina con falla",
		ShipID:     ship.ID,
		ReporterID: reporter.ID,
	})
	require.NoError(t, err)

	r := newRouter()
	r.POST("/api/requests/:id/complete", env.maintenanceHandler.CompleteRequest)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%d/complete", request.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.MaintenanceRequestDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.RequestStatusCompleted, response.Status)
	require.NotNil(t, response.CompletedAt)

	// The completion event reaches the area chief.
	last := len(env.mailer.subjects) - 1
	require.Contains(t, env.mailer.subjects[last], "Finalización")

	// Completing twice conflicts.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%d/complete", request.ID), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestMaintenanceHandler_ListRequests(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	ship := env.createShip(t, "Nave Austral")

	for i := 0; i < 3; i++ {
		_, _, err := env.maintenanceService.CreateRequest(services.CreateRequestInput{
			Title:      fmt.Sprintf("Falla %d", i),
			ShipID:     ship.ID,
			ReporterID: reporter.ID,
		})
		require.NoError(t, err)
	}

	r := newRouter()
	r.GET("/api/requests", env.maintenanceHandler.ListRequests)

	req := httptest.NewRequest(http.MethodGet, "/api/requests?page=1&limit=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.MaintenanceListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.EqualValues(t, 3, response.Pagination.Total)
	require.Len(t, response.Requests, 2)
	require.NotNil(t, response.Requests[0].Ship)
}

func TestMaintenanceHandler_DeadlineSweep(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	env.createVerifiedUser(t, "gerencia@sotex.app", "supersecret", models.RoleGerencia)
	ship := env.createShip(t, "Nave Austral")

	deadline := time.Now().Add(-time.Hour)
	request, _, err := env.maintenanceService.CreateRequest(services.CreateRequestInput{
		Title:      "Falla con plazo vencido",
		ShipID:     ship.ID,
		ReporterID: reporter.ID,
		Deadline:   &deadline,
	})
	require.NoError(t, err)

	r := newRouter()
	r.POST("/api/requests/deadline-sweep", env.maintenanceHandler.DeadlineSweep)

	req := httptest.NewRequest(http.MethodPost, "/api/requests/deadline-sweep", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		EventsFired int `json:"events_fired"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 1, response.EventsFired)

	last := len(env.mailer.subjects) - 1
	require.Contains(t, env.mailer.subjects[last], "Plazo de Solución Final")
	require.Equal(t, []string{"gerencia@sotex.app"}, env.mailer.recipients[last])

	var stored models.MaintenanceRequest
	require.NoError(t, env.db.First(&stored, request.ID).Error)
	require.True(t, stored.NotifiedDeadlineFinal)
	require.True(t, stored.NotifiedDeadline75)

	// A second sweep finds nothing new to fire.
	req = httptest.NewRequest(http.MethodPost, "/api/requests/deadline-sweep", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Zero(t, response.EventsFired)
}

func TestMaintenanceHandler_DeadlineSweep75Percent(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	env.createVerifiedUser(t, "gerencia@sotex.app", "supersecret", models.RoleGerencia)
	ship := env.createShip(t, "Nave Austral")

	// Three quarters of the window have elapsed but the deadline has
	// not: only the 75% milestone is due.
	deadline := time.Now().Add(time.Hour)
	request, _, err := env.maintenanceService.CreateRequest(services.CreateRequestInput{
		Title:      "Falla cerca del plazo",
		ShipID:     ship.ID,
		ReporterID: reporter.ID,
		Deadline:   &deadline,
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.MaintenanceRequest{}).
		Where("id = ?", request.ID).
		Update("created_at", time.Now().Add(-3*time.Hour)).Error)

	fired, warnings, err := env.maintenanceService.DeadlineSweep()
	require.NoError(t, err)
	require.Equal(t, 1, fired)
	require.Empty(t, warnings)

	var stored models.MaintenanceRequest
	require.NoError(t, env.db.First(&stored, request.ID).Error)
	require.True(t, stored.NotifiedDeadline75)
	require.False(t, stored.NotifiedDeadlineFinal)

	last := len(env.mailer.subjects) - 1
	require.Contains(t, env.mailer.subjects[last], "75%")
}

func TestMaintenanceHandler_ShipScopedFanOut(t *testing.T) {
	env := setupTestEnv(t)
	reporter := env.createVerifiedUser(t, "reporter@sotex.app", "supersecret", models.RoleUser)
	shipA := env.createShip(t, "Nave Austral")
	shipB := env.createShip(t, "Nave Boreal")

	env.createVerifiedUser(t, "shore@sotex.app", "supersecret", models.RoleMantencion)
	boardB := env.createVerifiedUser(t, "board-b@sotex.app", "supersecret", models.RoleMantencion)
	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", boardB.ID).
		Update("ship_id", shipB.ID).Error)

	_, _, err := env.maintenanceService.CreateRequest(services.CreateRequestInput{
		Title:      "Falla en nave A",
		ShipID:     shipA.ID,
		ReporterID: reporter.ID,
	})
	require.NoError(t, err)

	// Only shore personnel are in scope: the on-board account belongs
	// to a different installation.
	require.Len(t, env.mailer.recipients, 1)
	require.Equal(t, []string{"shore@sotex.app"}, env.mailer.recipients[0])
}
