package product

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	domain "github.com/example/product-catalog/domain/product"
	"github.com/example/product-catalog/pkg/validation"
	"github.com/go-monolith/mono/pkg/types"
)

const (
	defaultSortBy    = "created_at"
	defaultSortOrder = "desc"
	defaultPerPage   = 15
)

// ListParams are the raw listing parameters of a request.
// Nil filters were not supplied.
type ListParams struct {
	Name      *string
	IsActive  *string
	SortBy    string
	SortOrder string
	PerPage   string
	Page      string
}

// Page is one page of a product listing.
type Page struct {
	Items       []*domain.Product
	Total       int64
	CurrentPage int
	PerPage     int
}

// LastPage returns the number of the last page, at least 1.
func (p *Page) LastPage() int {
	last := int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if last < 1 {
		return 1
	}
	return last
}

// From returns the 1-based position of the first item on the page, or 0 when empty.
func (p *Page) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PerPage + 1
}

// To returns the 1-based position of the last item on the page, or 0 when empty.
func (p *Page) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}

// Service implements the product lifecycle: Active, SoftDeleted and Purged.
type Service struct {
	repo   *Repository
	logger types.Logger
}

// NewService creates a new product service.
func NewService(repo *Repository, logger types.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates input and stores a new active product.
func (s *Service) Create(ctx context.Context, input map[string]any) (*domain.Product, error) {
	attrs, err := validation.Validate(CreationRules, input)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{IsActive: true}
	applyAttributes(p, attrs)

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", "id", p.ID, "name", p.Name)
	return p, nil
}

// Show returns a live product.
func (s *Service) Show(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repo.Find(ctx, id, false)
}

// List returns a filtered, sorted page of live products.
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	q, err := parseListParams(params)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:       items,
		Total:       total,
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
	}, nil
}

// Update validates the supplied fields and applies them to a live product.
func (s *Service) Update(ctx context.Context, id uint, input map[string]any) (*domain.Product, error) {
	attrs, err := validation.Validate(UpdateRules, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Find(ctx, id, false); err != nil {
		return nil, err
	}

	p, err := s.repo.ApplyUpdate(ctx, id, attrs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", "id", id, "fields", len(attrs))
	return p, nil
}

// SoftDelete moves an active product to the soft-deleted state.
func (s *Service) SoftDelete(ctx context.Context, id uint) error {
	p, err := s.repo.Find(ctx, id, true)
	if err != nil {
		return err
	}
	if p.State() == domain.StateSoftDeleted {
		return ErrAlreadyDeleted
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		// Lost a race with a concurrent delete.
		if errors.Is(err, ErrNotFound) {
			return ErrAlreadyDeleted
		}
		return err
	}

	s.logger.Info("Product soft-deleted", "id", id)
	return nil
}

// Restore moves a soft-deleted product back to the active state.
func (s *Service) Restore(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := s.repo.Find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if p.State() != domain.StateSoftDeleted {
		return nil, ErrNotDeleted
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotDeleted
		}
		return nil, err
	}

	s.logger.Info("Product restored", "id", id)
	return s.repo.Find(ctx, id, false)
}

// HardDestroy permanently removes a product from either the active or the
// soft-deleted state.
func (s *Service) HardDestroy(ctx context.Context, id uint) (domain.State, error) {
	if _, err := s.repo.Find(ctx, id, true); err != nil {
		return "", err
	}

	if err := s.repo.HardDelete(ctx, id); err != nil {
		return "", err
	}

	s.logger.Info("Product purged", "id", id)
	return domain.StatePurged, nil
}

// applyAttributes copies validated attributes onto p.
func applyAttributes(p *domain.Product, attrs validation.Attributes) {
	if v, ok := attrs["name"].(string); ok {
		p.Name = v
	}
	if v, ok := attrs["description"]; ok {
		if s, isString := v.(string); isString {
			p.Description = &s
		} else {
			p.Description = nil
		}
	}
	if v, ok := attrs["price"].(int64); ok {
		p.Price = v
	}
	if v, ok := attrs["stock"].(int64); ok {
		p.Stock = v
	}
	if v, ok := attrs["is_active"].(bool); ok {
		p.IsActive = v
	}
}

func parseListParams(params ListParams) (ListQuery, error) {
	q := ListQuery{
		Name:      params.Name,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Page:      1,
		PerPage:   defaultPerPage,
	}
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = defaultSortOrder
	}

	if params.IsActive != nil {
		active := parseFlag(*params.IsActive)
		q.IsActive = &active
	}

	if params.PerPage != "" {
		perPage, err := strconv.Atoi(params.PerPage)
		if err != nil || perPage < 1 {
			return ListQuery{}, &ArgumentError{Reason: fmt.Sprintf("Invalid per_page value: %s", params.PerPage)}
		}
		q.PerPage = min(perPage, MaxPerPage)
	}

	// An unusable page number falls back to the first page.
	if page, err := strconv.Atoi(params.Page); err == nil && page > 0 {
		q.Page = page
	}
	if !pageInRange(q.Page, q.PerPage) {
		return ListQuery{}, &ArgumentError{Reason: fmt.Sprintf("Invalid page value: %s", params.Page)}
	}

	return q, nil
}

// parseFlag interprets a query string flag. Anything but a truthy word is false.
func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
