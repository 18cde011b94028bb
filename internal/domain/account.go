package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Account is the persisted identity record. Secret-bearing columns never
// serialize; handlers render AccountProfile instead.
type Account struct {
	ID                        string     `gorm:"primaryKey;size:36" json:"id"`
	DisplayName               string     `gorm:"size:120;not null" json:"display_name"`
	Email                     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash              string     `gorm:"size:1024;not null" json:"-"`
	VerificationCode          *string    `gorm:"size:6" json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	IsVerified                bool       `gorm:"not null;default:false" json:"is_verified"`
	Role                      Role       `gorm:"size:16;not null;default:student" json:"role"`
	ResetToken                *string    `gorm:"size:64;uniqueIndex" json:"-"`
	ResetTokenExpiresAt       *time.Time `json:"-"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

type AccountProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Account) Profile() *AccountProfile {
	return &AccountProfile{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Email:       a.Email,
		Role:        a.Role,
		IsVerified:  a.IsVerified,
		CreatedAt:   a.CreatedAt,
	}
}

// VerificationCodeMatches compares the submitted code with the stored one.
// A cleared or expired code never matches.
func (a *Account) VerificationCodeMatches(code string, now time.Time) bool {
	if a.IsVerified || a.VerificationCode == nil || code == "" {
		return false
	}
	if a.VerificationCodeExpiresAt != nil && !now.Before(*a.VerificationCodeExpiresAt) {
		return false
	}
	return *a.VerificationCode == code
}
