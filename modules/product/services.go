package product

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-monolith/mono"
)

// getProduct handles the product.get service request.
func (m *ProductModule) getProduct(ctx context.Context, req GetProductRequest, _ *mono.Msg) (ProductResponse, error) {
	if req.ID == 0 {
		return ProductResponse{}, fmt.Errorf("id is required")
	}

	p, err := m.service.Show(ctx, req.ID)
	if err != nil {
		return ProductResponse{}, err
	}
	return ProductResponse{Product: p}, nil
}

// listProducts handles the product.list service request.
func (m *ProductModule) listProducts(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	params := ListParams{
		Name:      req.Name,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.IsActive != nil {
		flag := strconv.FormatBool(*req.IsActive)
		params.IsActive = &flag
	}
	if req.PerPage != 0 {
		params.PerPage = strconv.Itoa(req.PerPage)
	}
	if req.Page != 0 {
		params.Page = strconv.Itoa(req.Page)
	}

	page, err := m.service.List(ctx, params)
	if err != nil {
		return ListProductsResponse{}, err
	}
	return toListProductsResponse(page), nil
}
