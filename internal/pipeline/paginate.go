package pipeline

import (
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/model"
)

// Paginate returns page pageNumber of items. The page number is clamped to
// [1, totalPages] and totalPages is at least 1.
func Paginate[T any](items []T, pageSize, pageNumber int) (model.Page[T], error) {
	if pageSize < 1 {
		return model.Page[T]{}, fmt.Errorf("%w: page size %d", ErrInvalidArgument, pageSize)
	}

	total := max(1, (len(items)+pageSize-1)/pageSize)
	page := min(max(pageNumber, 1), total)

	lo := min((page-1)*pageSize, len(items))
	hi := min(lo+pageSize, len(items))

	out := make([]T, hi-lo)
	copy(out, items[lo:hi])
	return model.Page[T]{
		Items:      out,
		PageNumber: page,
		TotalPages: total,
		TotalItems: len(items),
	}, nil
}
