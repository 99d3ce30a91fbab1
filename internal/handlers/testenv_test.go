package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/database"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// captureMailer records outbound messages instead of delivering them.
type captureMailer struct {
	subjects   []string
	bodies     []string
	recipients [][]string
}

func (m *captureMailer) IsEnabled() bool { return true }

func (m *captureMailer) Send(subject, htmlBody string, recipients []string) error {
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, htmlBody)
	m.recipients = append(m.recipients, recipients)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	mailer   *captureMailer
	userRepo repository.UserRepository

	tokenService        *services.TokenService
	notificationService *services.NotificationService
	authService         *services.AuthService
	userService         *services.UserService
	maintenanceService  *services.MaintenanceService

	authHandler         *AuthHandler
	passwordHandler     *PasswordHandler
	userHandler         *UserHandler
	notificationHandler *NotificationHandler
	maintenanceHandler  *MaintenanceHandler
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.NotificationGroup{},
		&models.NotificationGroupRole{},
		&models.Token{},
		&models.Ship{},
		&models.Responsible{},
		&models.MaintenanceRequest{},
		&models.GeneratedNotification{},
	)
	require.NoError(t, err)
	require.NoError(t, database.Seed(db))

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	mailer := &captureMailer{}
	tokenService := services.NewTokenService(tokenRepo, "http://localhost:8080")
	notificationService := services.NewNotificationService(notificationRepo, mailer)
	authService := services.NewAuthService(userRepo, roleRepo, tokenService, notificationService)
	userService := services.NewUserService(userRepo, roleRepo, tokenService, notificationService)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, notificationService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &testEnv{
		db:                  db,
		mailer:              mailer,
		userRepo:            userRepo,
		tokenService:        tokenService,
		notificationService: notificationService,
		authService:         authService,
		userService:         userService,
		maintenanceService:  maintenanceService,
		authHandler:         NewAuthHandler(authService),
		passwordHandler:     NewPasswordHandler(authService, userService, mailer),
		userHandler:         NewUserHandler(userService),
		notificationHandler: NewNotificationHandler(notificationService),
		maintenanceHandler:  NewMaintenanceHandler(maintenanceService),
	}
}

// newRouter builds a gin engine with cookie-backed sessions, matching
// the production middleware chain closely enough for handler tests.
func newRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	return r
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// createVerifiedUser registers a usable account through the service
// layer so role grants materialize their notification rows.
func (env *testEnv) createVerifiedUser(t *testing.T, email, password string, roles ...string) *models.User {
	t.Helper()
	user, err := env.userService.CreateVerifiedUser(email, email, password, roles)
	require.NoError(t, err)
	return user
}

// login performs a real login request and returns the session cookies
// to attach to subsequent requests.
func (env *testEnv) login(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()
	r.POST("/test/login", env.authHandler.Login)

	req := jsonRequest(t, http.MethodPost, "/test/login", map[string]string{
		"email":    email,
		"password": password,
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}
