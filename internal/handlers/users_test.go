package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sotex-app/mantencion-api/internal/dto"
	"github.com/sotex-app/mantencion-api/internal/middleware"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/services"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_CreateAndList(t *testing.T) {
	env := setupTestEnv(t)

	r := newRouter()
	r.POST("/api/users", env.userHandler.CreateUser)
	r.GET("/api/users", env.userHandler.ListUsers)

	req := jsonRequest(t, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "tecnico",
		"email":    "tecnico@sotex.app",
		"password": "supersecret",
		"roles":    []string{models.RoleMantencion},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var users []dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	require.Equal(t, "tecnico@sotex.app", users[0].Email)
	require.Len(t, users[0].Roles, 1)
	require.Equal(t, models.RoleMantencion, users[0].Roles[0].Name)
}

func TestUserHandler_CreateDuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	env.createVerifiedUser(t, "taken@sotex.app", "supersecret", models.RoleUser)

	r := newRouter()
	r.POST("/api/users", env.userHandler.CreateUser)

	req := jsonRequest(t, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "clone",
		"email":    "taken@sotex.app",
		"password": "supersecret",
		"roles":    []string{models.RoleUser},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Email ya está registrado")
}

func TestUserHandler_CreateUnknownRole(t *testing.T) {
	env := setupTestEnv(t)

	r := newRouter()
	r.POST("/api/users", env.userHandler.CreateUser)

	req := jsonRequest(t, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "ghost",
		"email":    "ghost@sotex.app",
		"password": "supersecret",
		"roles":    []string{"SUPERVISOR"},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_UpdateReconcilesRoles(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createVerifiedUser(t, "tecnico@sotex.app", "supersecret", models.RoleUser)

	r := newRouter()
	r.PUT("/api/users/:id", env.userHandler.UpdateUser)

	req := jsonRequest(t, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), map[string]interface{}{
		"username": "tecnico",
		"email":    "tecnico@sotex.app",
		"roles":    []string{models.RoleMantencion},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var roleNames []string
	err := env.db.Model(&models.UserRole{}).
		Distinct("roles.name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", user.ID).
		Pluck("roles.name", &roleNames).Error
	require.NoError(t, err)
	require.Equal(t, []string{models.RoleMantencion}, roleNames)

	// The new role's notification rows exist and the old role's are
	// gone.
	var rows []models.UserRole
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
}

func TestUserHandler_UpdateUnknownUser(t *testing.T) {
	env := setupTestEnv(t)

	r := newRouter()
	r.PUT("/api/users/:id", env.userHandler.UpdateUser)

	req := jsonRequest(t, http.MethodPut, "/api/users/9999", map[string]interface{}{
		"username": "ghost",
		"email":    "ghost@sotex.app",
		"roles":    []string{models.RoleUser},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_DeleteCascades(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createVerifiedUser(t, "leaver@sotex.app", "supersecret", models.RoleMantencion)

	_, _, err := env.tokenService.Issue(user.ID, models.TokenTypeResetUserPassword)
	require.NoError(t, err)

	r := newRouter()
	r.DELETE("/api/users/:id", env.userHandler.DeleteUser)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", user.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Token{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, env.db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestUserRoutes_RequireAdminRole(t *testing.T) {
	env := setupTestEnv(t)
	env.createVerifiedUser(t, "user@sotex.app", "supersecret", models.RoleUser)
	env.createVerifiedUser(t, "admin@sotex.app", "supersecret", models.RoleAdmin)

	r := newRouter()
	r.GET("/api/users",
		middleware.RequireAuth(),
		middleware.RequireAction(env.userRepo, services.ActionManageUsers),
		env.userHandler.ListUsers)

	userCookies := env.login(t, r, "user@sotex.app", "supersecret")
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	for _, cookie := range userCookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	r2 := newRouter()
	r2.GET("/api/users",
		middleware.RequireAuth(),
		middleware.RequireAction(env.userRepo, services.ActionManageUsers),
		env.userHandler.ListUsers)
	adminCookies := env.login(t, r2, "admin@sotex.app", "supersecret")
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	for _, cookie := range adminCookies {
		req.AddCookie(cookie)
	}
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// No session at all.
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
