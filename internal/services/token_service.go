package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenAlreadyUsed  = errors.New("token already used")
	ErrTokenUserMismatch = errors.New("token does not belong to this user")
)

// Token lifetimes per type.
const (
	newUserTokenTTL = 24 * time.Hour
	resetTokenTTL   = time.Hour
)

// TokenService issues, validates, and redeems the single-use tokens
// backing account activation and password reset.
type TokenService struct {
	tokens  repository.TokenRepository
	baseURL string
	now     func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(tokens repository.TokenRepository, baseURL string) *TokenService {
	return &TokenService{
		tokens:  tokens,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Issue returns the user's active token of the given type, minting a
// new one only when none is outstanding. The boolean reports whether
// a token was created, so callers can skip re-sending email on the
// idempotent path.
func (s *TokenService) Issue(userID uint64, tokenType models.TokenType) (*models.Token, bool, error) {
	tokenString, err := utils.GenerateTokenString()
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	candidate := &models.Token{
		Token:     tokenString,
		Type:      tokenType,
		UserID:    userID,
		URL:       s.redemptionURL(tokenType, tokenString),
		ExpiresAt: now.Add(ttlFor(tokenType)),
	}

	token, created, err := s.tokens.Issue(candidate, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, created, nil
}

// Validate resolves a token string to its row, rejecting absent,
// used, and expired tokens with distinct errors.
func (s *TokenService) Validate(tokenString string) (*models.Token, error) {
	token, err := s.tokens.FindByString(tokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if token.Active(s.now()) {
		return token, nil
	}
	if token.Used {
		return nil, ErrTokenAlreadyUsed
	}
	return nil, ErrTokenExpired
}

// Redeem validates the token, checks it belongs to userID, and runs
// the caller's credential mutation in the same transaction that marks
// the token used. A concurrent double-submission loses the guard
// update inside the repository and surfaces as ErrTokenAlreadyUsed.
func (s *TokenService) Redeem(tokenString string, userID uint64, mutate func(tx *gorm.DB, token *models.Token) error) error {
	token, err := s.Validate(tokenString)
	if err != nil {
		return err
	}
	if token.UserID != userID {
		return ErrTokenUserMismatch
	}

	err = s.tokens.Redeem(tokenString, mutate)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTokenAlreadyUsed
	}
	return err
}

func (s *TokenService) redemptionURL(tokenType models.TokenType, tokenString string) string {
	path := "/auth/forgot-newpassword/"
	if tokenType == models.TokenTypeNewUserPassword {
		path = "/auth/newpassword/"
	}
	return s.baseURL + path + tokenString
}

func ttlFor(tokenType models.TokenType) time.Duration {
	if tokenType == models.TokenTypeNewUserPassword {
		return newUserTokenTTL
	}
	return resetTokenTTL
}
