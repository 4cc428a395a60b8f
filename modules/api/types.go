package api

import (
	"fmt"

	domain "github.com/example/product-catalog/domain/product"
	"github.com/example/product-catalog/modules/product"
)

// MessageResponse is a body carrying only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Message string          `json:"message,omitempty"`
	Data    *domain.Product `json:"data"`
}

// ValidationErrorResponse lists failing fields.
type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// InternalErrorResponse describes an unexpected failure.
type InternalErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// PaginationLinks point at neighbouring pages of a listing.
type PaginationLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// PaginationMeta describes the position of a page within a listing.
type PaginationMeta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int64  `json:"total"`
}

// ListProductsResponse is a page of products.
type ListProductsResponse struct {
	Data  []*domain.Product `json:"data"`
	Links PaginationLinks   `json:"links"`
	Meta  PaginationMeta    `json:"meta"`
}

// WebhookTriggeredResponse reports a successful forward.
type WebhookTriggeredResponse struct {
	Message          string `json:"message"`
	SentPayload      any    `json:"sent_payload"`
	UpstreamResponse any    `json:"upstream_response"`
}

// WebhookUpstreamErrorResponse reports an error status from the automation service.
type WebhookUpstreamErrorResponse struct {
	Message               string `json:"message"`
	UpstreamStatus        int    `json:"upstream_status"`
	UpstreamErrorResponse any    `json:"upstream_error_response"`
}

// WebhookTransportErrorResponse reports that the automation service was unreachable.
type WebhookTransportErrorResponse struct {
	Message           string `json:"message"`
	ErrorDetails      string `json:"error_details"`
	UpstreamReachable bool   `json:"upstream_reachable"`
}

// HealthResponse aggregates module health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}

// ModuleHealth is the health of one module.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func toListProductsResponse(page *product.Page, path string) ListProductsResponse {
	pageURL := func(n int) string {
		return fmt.Sprintf("%s?page=%d", path, n)
	}

	items := page.Items
	if items == nil {
		items = []*domain.Product{}
	}

	last := page.LastPage()
	links := PaginationLinks{
		First: pageURL(1),
		Last:  pageURL(last),
	}
	if page.CurrentPage > 1 {
		prev := pageURL(page.CurrentPage - 1)
		links.Prev = &prev
	}
	if page.CurrentPage < last {
		next := pageURL(page.CurrentPage + 1)
		links.Next = &next
	}

	meta := PaginationMeta{
		CurrentPage: page.CurrentPage,
		LastPage:    last,
		Path:        path,
		PerPage:     page.PerPage,
		Total:       page.Total,
	}
	if len(items) > 0 {
		from, to := page.From(), page.To()
		meta.From = &from
		meta.To = &to
	}

	return ListProductsResponse{Data: items, Links: links, Meta: meta}
}
