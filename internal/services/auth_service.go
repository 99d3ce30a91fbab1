package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotVerified      = errors.New("account has not been activated")
	ErrUserNotFound         = errors.New("user not found")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrResetBarredForRole   = errors.New("role does not allow self-service password reset")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles login and the token-backed credential flows.
type AuthService struct {
	users         repository.UserRepository
	roles         repository.RoleRepository
	tokens        *TokenService
	notifications *NotificationService
	now           func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, roles repository.RoleRepository, tokens *TokenService, notifications *NotificationService) *AuthService {
	return &AuthService{
		users:         users,
		roles:         roles,
		tokens:        tokens,
		notifications: notifications,
		now:           time.Now,
	}
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.users.FindByEmailWithRoles(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.Verified || user.Password == "" {
		return nil, ErrUserNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to stamp last login: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ForgotPassword issues a reset token for the account, if one exists.
// An unknown email returns (nil, false, nil) so the route can answer
// with the same generic message either way and never leak whether the
// address is registered. Installation accounts are barred from
// self-service reset.
func (s *AuthService) ForgotPassword(email string) (*models.Token, bool, error) {
	user, err := s.users.FindByEmailWithRoles(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	if hasRole(user, models.RoleNave) {
		return nil, false, ErrResetBarredForRole
	}

	token, created, err := s.tokens.Issue(user.ID, models.TokenTypeResetUserPassword)
	if err != nil {
		return nil, false, err
	}
	return token, created, nil
}

// AdminReset issues a token of an explicit type for a known user.
// Unlike ForgotPassword it reports a missing user, since only admins
// reach it.
func (s *AuthService) AdminReset(email string, tokenType models.TokenType) (*models.User, *models.Token, bool, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrUserNotFound
		}
		return nil, nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	token, created, err := s.tokens.Issue(user.ID, tokenType)
	if err != nil {
		return nil, nil, false, err
	}
	return user, token, created, nil
}

// SetPassword redeems a token and applies the credential mutation:
// the password hash always, plus the verified flag on activation
// tokens. Activation additionally swaps the NEW_USER role for USER
// once the redemption transaction commits.
func (s *AuthService) SetPassword(email, password, tokenString string) (*models.User, error) {
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	var redeemedType models.TokenType
	err = s.tokens.Redeem(tokenString, user.ID, func(tx *gorm.DB, token *models.Token) error {
		redeemedType = token.Type

		updates := map[string]interface{}{"password": string(hashed)}
		if token.Type == models.TokenTypeNewUserPassword {
			updates["verified"] = true
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if redeemedType == models.TokenTypeNewUserPassword {
		if err := s.promoteNewUser(user.ID); err != nil {
			return nil, err
		}
	}

	return s.users.FindByID(user.ID)
}

// promoteNewUser swaps NEW_USER for USER through the fan-out engine
// so the role change and its notification rows stay consistent.
func (s *AuthService) promoteNewUser(userID uint64) error {
	newUserRole, err := s.roles.FindByName(models.RoleNewUser)
	if err != nil {
		return fmt.Errorf("failed to resolve %s role: %w", models.RoleNewUser, err)
	}
	userRole, err := s.roles.FindByName(models.RoleUser)
	if err != nil {
		return fmt.Errorf("failed to resolve %s role: %w", models.RoleUser, err)
	}

	if err := s.notifications.RevokeRole(userID, newUserRole.ID); err != nil {
		return fmt.Errorf("failed to revoke %s role: %w", models.RoleNewUser, err)
	}
	if err := s.notifications.GrantRole(userID, userRole.ID); err != nil {
		return fmt.Errorf("failed to grant %s role: %w", models.RoleUser, err)
	}
	return nil
}

func hasRole(user *models.User, roleName string) bool {
	for _, row := range user.Roles {
		if row.Role.Name == roleName {
			return true
		}
	}
	return false
}
