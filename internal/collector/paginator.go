package collector

import (
	"context"
	"fmt"

	"github.com/kapu/youtube-data-go/internal/constants"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
)

// ListFunc fetches one page of resourceID starting at cursor ("" for the first page).
type ListFunc func(ctx context.Context, resourceID, cursor string, pageSize int64) (*Page, error)

// Paginator drains a cursor-paginated list endpoint.
type Paginator struct {
	pageSize int64
	maxPages int
	logger   *zap.Logger
}

func NewPaginator(maxPages int, logger *zap.Logger) *Paginator {
	if maxPages <= 0 {
		maxPages = constants.PaginationConfig.DefaultMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginator{
		pageSize: constants.PaginationConfig.PageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// FetchAll returns the concatenation of every page in API order. It gives up
// with an UpstreamError once maxPages pages were read and the upstream still
// returns a cursor.
func (p *Paginator) FetchAll(ctx context.Context, list ListFunc, resourceID string) ([]PageItem, error) {
	var items []PageItem
	cursor := ""

	for page := 0; ; page++ {
		if page >= p.maxPages {
			return nil, errors.NewUpstreamError(
				fmt.Sprintf("pagination did not finish within %d pages", p.maxPages),
				"paginate", nil)
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.NewUpstreamError("pagination cancelled", "paginate", err)
		}

		resp, err := list(ctx, resourceID, cursor, p.pageSize)
		if err != nil {
			return nil, asUpstream("paginate", err)
		}
		if resp == nil {
			return nil, errors.NewUpstreamError(
				fmt.Sprintf("empty response for page %d", page+1), "paginate", nil)
		}

		items = append(items, resp.Items...)

		p.logger.Debug("Page fetched",
			zap.String("resource_id", resourceID),
			zap.Int("page", page+1),
			zap.Int("page_items", len(resp.Items)),
			zap.Int("total_items", len(items)))

		if resp.NextCursor == "" {
			return items, nil
		}
		cursor = resp.NextCursor
	}
}

// asUpstream keeps classified errors as they are and wraps anything else.
func asUpstream(operation string, err error) error {
	if errors.IsInvalidInput(err) || errors.IsNotFound(err) || errors.IsUpstream(err) {
		return err
	}
	return errors.NewUpstreamError(operation+" failed", operation, err)
}
