package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Image    string    `gorm:"column:image" json:"image"`

	// Places is the ordered inverse of Place.CreatorID. Only the place
	// aggregate writes it.
	Places datatypes.JSONSlice[uuid.UUID] `gorm:"column:places" json:"places"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

// HasPlace reports whether id is in the user's places.
func (u *User) HasPlace(id uuid.UUID) bool {
	for _, p := range u.Places {
		if p == id {
			return true
		}
	}
	return false
}

// HashPassword returns a salted bcrypt hash of raw.
func HashPassword(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares raw against the stored hash.
func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}
