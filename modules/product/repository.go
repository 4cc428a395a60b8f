package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	domain "github.com/example/product-catalog/domain/product"
	"github.com/example/product-catalog/pkg/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns is the whitelist of columns a listing may be ordered by.
var sortColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"price":      true,
	"stock":      true,
	"created_at": true,
	"updated_at": true,
}

// MaxPerPage is the largest page size a listing returns.
const MaxPerPage = 100

// updatableColumns are the only columns an update may write.
var updatableColumns = []string{"name", "description", "price", "stock", "is_active"}

// ListQuery selects a page of products.
type ListQuery struct {
	// Name filters by case-insensitive substring when set.
	Name *string
	// IsActive filters by exact flag when set.
	IsActive  *bool
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Repository provides access to product storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the products table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&domain.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products: %w", err)
	}

	// Rows written before name_folded existed are searchable only after a backfill.
	var pending []*domain.Product
	err := r.db.Unscoped().Where("name_folded = '' OR name_folded IS NULL").
		FindInBatches(&pending, 500, func(_ *gorm.DB, _ int) error {
			for _, p := range pending {
				err := r.db.Unscoped().Model(p).UpdateColumn("name_folded", domain.FoldName(p.Name)).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
	if err != nil {
		return fmt.Errorf("failed to backfill folded names: %w", err)
	}
	return nil
}

// Find retrieves a product by ID. Soft-deleted products are only returned
// when includeSoftDeleted is set.
func (r *Repository) Find(ctx context.Context, id uint, includeSoftDeleted bool) (*domain.Product, error) {
	db := r.db.WithContext(ctx)
	if includeSoftDeleted {
		db = db.Unscoped()
	}

	var p domain.Product
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

// List returns one page of live products matching q and the total number of matches.
// An unknown sort column or direction is rejected before any query runs.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]*domain.Product, int64, error) {
	if !sortColumns[q.SortBy] {
		return nil, 0, &ArgumentError{Reason: fmt.Sprintf("Invalid sort column: %s", q.SortBy)}
	}
	desc, err := parseDirection(q.SortOrder)
	if err != nil {
		return nil, 0, err
	}
	if q.Page < 1 || q.PerPage < 1 || q.PerPage > MaxPerPage {
		return nil, 0, &ArgumentError{Reason: fmt.Sprintf("Page size must be between 1 and %d.", MaxPerPage)}
	}
	if !pageInRange(q.Page, q.PerPage) {
		return nil, 0, &ArgumentError{Reason: fmt.Sprintf("Invalid page value: %d", q.Page)}
	}

	filters := func(db *gorm.DB) *gorm.DB {
		if q.Name != nil && *q.Name != "" {
			db = db.Where("name_folded LIKE ? ESCAPE '!'", "%"+escapeLike(domain.FoldName(*q.Name))+"%")
		}
		if q.IsActive != nil {
			db = db.Where("is_active = ?", *q.IsActive)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(filters).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []*domain.Product
	err = r.db.WithContext(ctx).
		Scopes(filters).
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortBy}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Offset((q.Page - 1) * q.PerPage).
		Limit(q.PerPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// Insert saves a new product and fills in its generated fields.
func (r *Repository) Insert(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ApplyUpdate writes the whitelisted attributes to a live product and returns the result.
func (r *Repository) ApplyUpdate(ctx context.Context, id uint, attrs validation.Attributes) (*domain.Product, error) {
	updates := make(map[string]any, len(updatableColumns)+1)
	for _, column := range updatableColumns {
		if value, ok := attrs[column]; ok {
			updates[column] = value
		}
	}
	if name, ok := updates["name"].(string); ok {
		updates["name_folded"] = domain.FoldName(name)
	}

	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}
	return r.Find(ctx, id, false)
}

// SoftDelete marks a live product as deleted. ErrNotFound means no live row matched.
func (r *Repository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the deletion mark of a soft-deleted product.
// ErrNotFound means no soft-deleted row matched.
func (r *Repository) Restore(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().
		Model(&domain.Product{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to restore product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDelete permanently removes a product regardless of its deletion mark.
func (r *Repository) HardDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&domain.Product{}, id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to purge product: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// pageInRange reports whether every 1-based position on the page fits in an int.
func pageInRange(page, perPage int) bool {
	return page-1 <= (math.MaxInt-perPage)/perPage
}

func parseDirection(order string) (desc bool, err error) {
	switch strings.ToLower(order) {
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, &ArgumentError{Reason: fmt.Sprintf("Invalid sort direction: %s. Must be \"asc\" or \"desc\".", order)}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
