package place

import (
	"time"

	"github.com/google/uuid"
)

// MinDescriptionLength is the shortest accepted description, in runes.
const MinDescriptionLength = 5

type Location struct {
	Lat float64 `gorm:"column:lat;not null" json:"lat"`
	Lng float64 `gorm:"column:lng;not null" json:"lng"`
}

type Place struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"not null;column:description" json:"description"`
	Address     string    `gorm:"not null;column:address" json:"address"`
	Location    Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Image       string    `gorm:"column:image" json:"image"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index;column:creator_id" json:"creator"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Place) TableName() string { return "place" }
