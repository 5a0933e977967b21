package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated account. Resellers expose a public
// storefront under Username.
type User struct {
	BaseModel
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string       `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Password     string       `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string       `gorm:"type:varchar(255)" json:"full_name"`
	PhoneNumber  string       `gorm:"type:varchar(20)" json:"phone_number"`
	Role         Role         `gorm:"type:varchar(20);not null;index" json:"role"`
	Bio          string       `gorm:"type:text" json:"bio"`
	AvatarURL    string       `gorm:"type:varchar(500)" json:"avatar_url"`
	SocialLinks  []SocialLink `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"social_links,omitempty"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	TokenVersion string       `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

// PublicProfile is the bio-link header shown on a storefront.
type PublicProfile struct {
	Username    string           `json:"username"`
	FullName    string           `json:"full_name"`
	Bio         string           `json:"bio"`
	AvatarURL   string           `json:"avatar_url,omitempty"`
	SocialLinks []SocialLinkView `json:"social_links"`
}

func (u *User) ToPublicProfile() PublicProfile {
	links := make([]SocialLinkView, 0, len(u.SocialLinks))
	for _, l := range u.SocialLinks {
		links = append(links, l.View())
	}
	return PublicProfile{
		Username:    u.Username,
		FullName:    u.FullName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		SocialLinks: links,
	}
}
