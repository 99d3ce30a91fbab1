package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sotex-app/mantencion-api/internal/dto"
	apierrors "github.com/sotex-app/mantencion-api/internal/errors"
	"github.com/sotex-app/mantencion-api/internal/mail"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/services"
)

// genericResetMessage is returned by the self-service flow whether or
// not the email exists, so the endpoint cannot be used to probe for
// registered addresses.
const genericResetMessage = "Si su correo está registrado recibirá en su bandeja de entrada el link para poder cambiar su contraseña."

// PasswordHandler exposes the token-backed credential flows.
type PasswordHandler struct {
	authService *services.AuthService
	userService *services.UserService
	mailer      mail.Mailer
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(authService *services.AuthService, userService *services.UserService, mailer mail.Mailer) *PasswordHandler {
	return &PasswordHandler{
		authService: authService,
		userService: userService,
		mailer:      mailer,
	}
}

// ForgotPassword starts the self-service reset flow. It always
// answers 200 with a generic message for well-formed input.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	type ForgotRequest struct {
		Email string `json:"email" binding:"required,email"`
		Type  string `json:"type"`
	}

	var req ForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// The unauthenticated flow only ever mints reset tokens. Activation
	// tokens flip the verified flag on redemption and stay behind the
	// admin-only endpoint.
	if req.Type != "" && models.TokenType(req.Type) != models.TokenTypeResetUserPassword {
		apierrors.BadRequest(c, "Unknown token type")
		return
	}

	token, created, err := h.authService.ForgotPassword(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrResetBarredForRole) {
			c.JSON(http.StatusOK, gin.H{
				"message": "El rol de este usuario no permite cambiar la contraseña.",
			})
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	// Only a freshly minted token triggers an email; the idempotent
	// path means the link is already in the user's inbox.
	if token != nil && created {
		h.sendTokenMail(mail.SubjectResetPassword, mail.ResetPasswordBody(token.URL, req.Email), req.Email)
	}

	c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
}

// SetPassword redeems an activation or reset token and stores the new
// credential.
func (h *PasswordHandler) SetPassword(c *gin.Context) {
	type SetPasswordRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Token    string `json:"token" binding:"required"`
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.SetPassword(req.Email, req.Password, req.Token)
	if err != nil {
		respondTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ResetPassword is the admin-driven variant: it requires manage
// permission, takes an explicit token type, and reports a missing
// user instead of masking it.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	type ResetRequest struct {
		Email string `json:"email" binding:"required,email"`
		Type  string `json:"type" binding:"required"`
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tokenType := models.TokenType(req.Type)
	if tokenType != models.TokenTypeNewUserPassword && tokenType != models.TokenTypeResetUserPassword {
		apierrors.BadRequest(c, "Unknown token type")
		return
	}

	user, token, created, err := h.authService.AdminReset(req.Email, tokenType)
	if err != nil {
		respondTokenError(c, err)
		return
	}

	if created {
		h.sendTokenMail(mail.SubjectResetPassword, mail.ResetPasswordBody(token.URL, user.Email), user.Email)
	}

	c.JSON(http.StatusOK, gin.H{
		"email":    user.Email,
		"username": user.Username,
		"url":      token.URL,
	})
}

// NewUser is the admin-initiated signup: an unverified account plus
// its 24 hour activation token and email.
func (h *PasswordHandler) NewUser(c *gin.Context) {
	type NewUserRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required,min=3,max=50"`
	}

	var req NewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.userService.CreateNewUser(req.Email, req.Username)
	if err != nil {
		respondUserError(c, err)
		return
	}

	h.sendTokenMail(mail.SubjectNewUser, mail.NewUserBody(token.URL, user.Email), user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"email":    user.Email,
		"username": user.Username,
		"link":     token.URL,
	})
}

// sendTokenMail delivers a credential-flow email. Failures are logged
// only: the account or token mutation is already committed.
func (h *PasswordHandler) sendTokenMail(subject, body, email string) {
	if err := h.mailer.Send(subject, body, []string{email}); err != nil {
		log.Printf("Failed to send %q to %s: %v", subject, email, err)
	}
}

func respondTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTokenNotFound):
		apierrors.BadRequestCode(c, apierrors.ErrCodeTokenInvalid, "Token no válido")
	case errors.Is(err, services.ErrTokenExpired):
		apierrors.BadRequestCode(c, apierrors.ErrCodeTokenExpired, "Token expirado")
	case errors.Is(err, services.ErrTokenAlreadyUsed):
		apierrors.BadRequestCode(c, apierrors.ErrCodeTokenUsed, "Token ya utilizado")
	case errors.Is(err, services.ErrTokenUserMismatch):
		apierrors.BadRequestCode(c, apierrors.ErrCodeTokenInvalid, "Token no corresponde")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.BadRequest(c, "Usuario no encontrado")
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
