package models

import "time"

type TokenType string

const (
	TokenTypeNewUserPassword   TokenType = "newUserPassword"
	TokenTypeResetUserPassword TokenType = "resetUserPassword"
)

// Token is a single-use, time-limited credential-flow artifact for
// account activation or password reset. Redemption sets Used and is
// irreversible; expired or used tokens are permanently invalid.
type Token struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	Type      TokenType `gorm:"type:varchar(32);not null;index:idx_tokens_user_type" json:"type"`
	UserID    uint64    `gorm:"not null;index:idx_tokens_user_type" json:"user_id"`
	URL       string    `gorm:"type:varchar(512)" json:"url"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Active reports whether the token can still be redeemed.
func (t *Token) Active(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
