package product

import domain "github.com/example/product-catalog/domain/product"

// GetProductRequest is the request for the product.get service.
type GetProductRequest struct {
	ID uint `json:"id"`
}

// ProductResponse is a product as returned by the request-reply services.
type ProductResponse struct {
	Product *domain.Product `json:"product"`
}

// ListProductsRequest is the request for the product.list service.
// Fields mirror the HTTP listing query parameters.
type ListProductsRequest struct {
	Name      *string `json:"name,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	SortBy    string  `json:"sort_by,omitempty"`
	SortOrder string  `json:"sort_order,omitempty"`
	PerPage   int     `json:"per_page,omitempty"`
	Page      int     `json:"page,omitempty"`
}

// ListProductsResponse is one page of products.
type ListProductsResponse struct {
	Products    []*domain.Product `json:"products"`
	Total       int64             `json:"total"`
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
	PerPage     int               `json:"per_page"`
}

func toListProductsResponse(page *Page) ListProductsResponse {
	return ListProductsResponse{
		Products:    page.Items,
		Total:       page.Total,
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage(),
		PerPage:     page.PerPage,
	}
}
