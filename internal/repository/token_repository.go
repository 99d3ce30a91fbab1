package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// FindActive returns the unexpired, unused token of the given type
func (r *GormTokenRepository) FindActive(userID uint64, tokenType models.TokenType, now time.Time) (*models.Token, error) {
	return findActive(r.db, userID, tokenType, now)
}

func findActive(db *gorm.DB, userID uint64, tokenType models.TokenType, now time.Time) (*models.Token, error) {
	var token models.Token
	err := db.Where("user_id = ? AND type = ? AND used = ? AND expires_at > ?",
		userID, tokenType, false, now).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Issue inserts candidate unless the user already holds an active
// token of the same type. The whole sequence runs in one transaction
// serialized per user: touching the user row takes a row lock on the
// transactional backends, so a racing issuer blocks until the first
// commit and then observes the inserted token.
func (r *GormTokenRepository) Issue(candidate *models.Token, now time.Time) (*models.Token, bool, error) {
	var issued *models.Token
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", candidate.UserID).
			Update("updated_at", now)
		if res.Error != nil {
			return fmt.Errorf("failed to lock user row: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		existing, err := findActive(tx, candidate.UserID, candidate.Type, now)
		if err == nil {
			issued = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(candidate).Error; err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}
		issued = candidate
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return issued, created, nil
}

// FindByString looks a token up by its opaque string
func (r *GormTokenRepository) FindByString(token string) (*models.Token, error) {
	var t models.Token
	if err := r.db.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Redeem consumes the token and runs the caller's credential mutation
// in the same transaction. The guard update flips used from false to
// true; when it affects zero rows a concurrent redemption already won
// and ErrRecordNotFound is returned so the caller reports the token
// as used.
func (r *GormTokenRepository) Redeem(tokenString string, mutate func(tx *gorm.DB, token *models.Token) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var token models.Token
		if err := tx.Where("token = ?", tokenString).First(&token).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Token{}).
			Where("token = ? AND used = ?", tokenString, false).
			Update("used", true)
		if res.Error != nil {
			return fmt.Errorf("failed to consume token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return mutate(tx, &token)
	})
}
