package model

import "time"

// OneTimePasscode is a login code sent by email. An account may have several
// outstanding codes, all of them are removed once one is used
type OneTimePasscode struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	AccountID uint      `gorm:"index;not null"`
	Code      int       `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// Valid reports whether the code can still be used at t
func (p *OneTimePasscode) Valid(t time.Time) bool {
	return t.Before(p.ExpiresAt)
}
