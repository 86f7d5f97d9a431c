// Package model defines database models
package model

import "time"

type Account struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	Fullname       string  `gorm:"not null"`
	Username       string  `gorm:"uniqueIndex;not null"`
	Email          string  `gorm:"uniqueIndex;not null"`
	Password       string  `gorm:"not null" json:"-"` // argon2id PHC string, never the plaintext
	ProfilePicture *string // Public URL returned by the image store
	EmailVerified  bool    `gorm:"default:false"`

	// Registration code. Overwritten on every registration attempt, never expires
	OTP *int `json:"-"`

	// Most recently issued refresh token. A new login overwrites it
	RefreshToken *string `gorm:"index" json:"-"`

	ResetToken       *string    `gorm:"uniqueIndex" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	Passcodes []OneTimePasscode `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicAccount is the only shape of an account that leaves the service
type PublicAccount struct {
	ID              uint    `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Fullname        string  `json:"fullname"`
	ProfilePicture  *string `json:"profilePicture"`
	IsEmailVerified bool    `json:"isEmailVerified"`
}

func (a *Account) Sanitize() PublicAccount {
	return PublicAccount{
		ID:              a.ID,
		Username:        a.Username,
		Email:           a.Email,
		Fullname:        a.Fullname,
		ProfilePicture:  a.ProfilePicture,
		IsEmailVerified: a.EmailVerified,
	}
}
