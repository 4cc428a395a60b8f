package product

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// State is the lifecycle position of a product.
type State string

const (
	// StateActive products are visible to reads and listings.
	StateActive State = "active"
	// StateSoftDeleted products are hidden but still stored.
	StateSoftDeleted State = "soft_deleted"
	// StatePurged products have been removed from storage.
	StatePurged State = "purged"
)

// Product represents a product in the catalog.
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	NameFolded  string         `gorm:"size:510;not null;default:'';index" json:"-"`
	Description *string        `gorm:"size:1000" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	Stock       int64          `gorm:"not null" json:"stock"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// BeforeCreate keeps the searchable copy of the name in sync.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	p.NameFolded = FoldName(p.Name)
	return nil
}

// FoldName lower-cases a name with Unicode rules, so name search does not
// depend on how the database folds non-ASCII letters.
func FoldName(name string) string {
	return strings.ToLower(name)
}

// State reports whether the product is active or soft-deleted.
func (p *Product) State() State {
	if p.DeletedAt.Valid {
		return StateSoftDeleted
	}
	return StateActive
}
