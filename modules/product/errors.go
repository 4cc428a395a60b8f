package product

import "errors"

var (
	// ErrNotFound is returned when a product does not exist or is hidden by soft delete.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidArgument is returned when a listing parameter is outside its allowed set.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyDeleted is returned when soft-deleting a soft-deleted product.
	ErrAlreadyDeleted = errors.New("product is already deleted")
	// ErrNotDeleted is returned when restoring a product that is not soft-deleted.
	ErrNotDeleted = errors.New("product is not deleted")
)

// ArgumentError describes why a listing parameter was rejected.
// It matches ErrInvalidArgument with errors.Is.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}
