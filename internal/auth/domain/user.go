package domain

import "time"

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser      Role = "User"
	RoleAdmin     Role = "Admin"
	RoleModerator Role = "Moderator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the credential record. Email and Bio hold field-encrypted values;
// EmailDigest is the blind index that keeps plaintext emails unique.
type User struct {
	ID                   string     `json:"id" gorm:"primaryKey;size:36"`
	Username             string     `json:"username" gorm:"not null"`
	Name                 string     `json:"name,omitempty"`
	Email                string     `json:"-" gorm:"not null"`
	EmailDigest          string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	Bio                  string     `json:"-"`
	PasswordHash         *string    `json:"-"` // nil for OAuth-only accounts
	Provider             string     `json:"provider" gorm:"size:16;default:local"`
	Role                 Role       `json:"role" gorm:"size:16;default:User"`
	GoogleID             *string    `json:"-" gorm:"uniqueIndex"`
	RefreshToken         *string    `json:"-"`
	ResetPasswordToken   *string    `json:"-" gorm:"index"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// HasPassword reports whether the account can sign in with local credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Session is a server-side login record referenced by the sid cookie.
type Session struct {
	ID        string    `json:"-" gorm:"primaryKey;size:64"`
	UserID    string    `json:"user_id" gorm:"index;not null;size:36"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// ProviderProfile is the identity asserted by a third-party login.
type ProviderProfile struct {
	Provider    string
	ProviderID  string
	DisplayName string
	Email       string

	// EmailVerified is the provider's claim that Email belongs to the user.
	EmailVerified bool
}
