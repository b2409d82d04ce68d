package service

import (
	"context"

	"github.com/tripdesk/supplier-contracts/internal/config"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

// Paging holds the page size limits applied to every listing.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

func PagingFromConfig(cfg *config.Config) Paging {
	return Paging{DefaultSize: cfg.Pagination.DefaultSize, MaxSize: cfg.Pagination.MaxSize}
}

// paginate counts first so the requested page can be clamped to
// [1, totalPages] before rows are fetched.
func paginate[T any](
	ctx context.Context,
	paging Paging,
	req model.PageRequest,
	count func(context.Context) (int64, error),
	list func(context.Context, model.PageRequest) ([]T, error),
) (model.Page[T], error) {
	req = req.Normalize(paging.DefaultSize, paging.MaxSize)

	total, err := count(ctx)
	if err != nil {
		return model.Page[T]{}, err
	}
	req.Page = model.ClampPage(req.Page, model.TotalPages(total, req.Size))
	if total == 0 {
		return model.NewPage[T](nil, 0, req), nil
	}

	items, err := list(ctx, req)
	if err != nil {
		return model.Page[T]{}, err
	}
	return model.NewPage(items, total, req), nil
}

func mapPage[T, U any](page model.Page[T], fn func(T) U) model.Page[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}
	return model.Page[U]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}
