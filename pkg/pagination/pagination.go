// Package pagination provides automatic pagination over Taiga list endpoints.
package pagination

import (
	"context"
	"errors"
	"iter"
	"net/url"
	"strconv"
)

const (
	// DefaultPageSize is the number of items requested per page
	DefaultPageSize = 100

	// DefaultMaxPages is the ceiling on page fetches per call
	DefaultMaxPages = 50

	// DefaultMaxTotalItems is the ceiling on items returned per call
	DefaultMaxTotalItems = 5000
)

var (
	// ErrInvalidPageSize is returned when the configured page size is not positive
	ErrInvalidPageSize = errors.New("pagination: page size must be greater than 0")

	// ErrInvalidMaxPages is returned when the configured page ceiling is not positive
	ErrInvalidMaxPages = errors.New("pagination: max pages must be greater than 0")

	// ErrInvalidMaxTotalItems is returned when the configured item ceiling is not positive
	ErrInvalidMaxTotalItems = errors.New("pagination: max total items must be greater than 0")
)

// Config holds the safety bounds for automatic pagination. Fields are
// unexported so a Config cannot be mutated after construction; build one
// with NewConfig or use DefaultConfig.
type Config struct {
	pageSize      int
	maxPages      int
	maxTotalItems int
}

// NewConfig creates a Config, validating that every bound is strictly
// positive.
func NewConfig(pageSize, maxPages, maxTotalItems int) (Config, error) {
	if pageSize <= 0 {
		return Config{}, ErrInvalidPageSize
	}
	if maxPages <= 0 {
		return Config{}, ErrInvalidMaxPages
	}
	if maxTotalItems <= 0 {
		return Config{}, ErrInvalidMaxTotalItems
	}
	return Config{
		pageSize:      pageSize,
		maxPages:      maxPages,
		maxTotalItems: maxTotalItems,
	}, nil
}

// DefaultConfig returns the shared default bounds.
func DefaultConfig() Config {
	return Config{
		pageSize:      DefaultPageSize,
		maxPages:      DefaultMaxPages,
		maxTotalItems: DefaultMaxTotalItems,
	}
}

// PageSize returns the configured per-page item count.
func (c Config) PageSize() int { return c.pageSize }

// MaxPages returns the configured page-fetch ceiling.
func (c Config) MaxPages() int { return c.maxPages }

// MaxTotalItems returns the configured total-item ceiling.
func (c Config) MaxTotalItems() int { return c.maxTotalItems }

// Result bundles the items collected by PaginateWithInfo with pagination
// metadata.
type Result struct {
	// Items holds the collected records in server order, pages concatenated
	// in fetch order.
	Items []map[string]any

	// TotalPages counts page fetches attempted, not pages that contained
	// data. When the run is cut short by the page ceiling the counter has
	// already advanced past the last fetched page, so it reads one higher
	// than the number of pages with data.
	TotalPages int

	// TotalItems is len(Items) after any truncation.
	TotalItems int

	// HasMore reports whether the server had additional data that was not
	// collected.
	HasMore bool

	// WasTruncated reports whether a safety bound, rather than server
	// end-of-data, stopped the run.
	WasTruncated bool
}

// Getter is the read capability the paginator needs from an HTTP client.
// The returned value is the decoded JSON body: nil, a map (optionally
// carrying "results", "next" and "count"), or a bare list.
type Getter interface {
	GetJSON(ctx context.Context, endpoint string, query url.Values) (any, error)
}

// AutoPaginator drives repeated GETs against a paged list endpoint,
// accumulating results under the bounds of its Config. It holds no state
// across calls, so concurrent calls on one instance are safe whenever the
// underlying Getter is.
type AutoPaginator struct {
	client Getter
	cfg    Config
}

// New creates an AutoPaginator around client with the given bounds.
func New(client Getter, cfg Config) *AutoPaginator {
	return &AutoPaginator{client: client, cfg: cfg}
}

// Paginate fetches every page of endpoint up to the configured bounds and
// returns the collected items.
func (ap *AutoPaginator) Paginate(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	res, err := ap.PaginateWithInfo(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// PaginateWithInfo fetches every page of endpoint up to the configured
// bounds and returns the collected items together with pagination metadata.
// Errors from the underlying Getter propagate unchanged; a mid-run failure
// discards everything collected so far.
func (ap *AutoPaginator) PaginateWithInfo(ctx context.Context, endpoint string, params url.Values) (*Result, error) {
	res := &Result{Items: []map[string]any{}}
	pageNum := 1

	for pageNum <= ap.cfg.maxPages {
		raw, err := ap.client.GetJSON(ctx, endpoint, ap.pageQuery(params, pageNum))
		if err != nil {
			return nil, err
		}

		pg := parsePage(raw)
		if len(pg.items) == 0 {
			break
		}
		res.Items = append(res.Items, pg.items...)

		// The item ceiling takes priority over the server indicating
		// more data.
		if len(res.Items) >= ap.cfg.maxTotalItems {
			res.Items = res.Items[:ap.cfg.maxTotalItems]
			res.WasTruncated = true
			res.HasMore = true
			break
		}

		if !pg.hasNext(ap.cfg.pageSize) {
			break
		}

		pageNum++
		if pageNum > ap.cfg.maxPages {
			res.WasTruncated = true
			res.HasMore = true
		}
	}

	res.TotalPages = pageNum
	res.TotalItems = len(res.Items)
	return res, nil
}

// PaginateLazy returns a single-use sequence that fetches pages on demand
// and yields items one at a time. The same page loop and shape rules as
// Paginate apply, except the item ceiling counts items already yielded: the
// sequence ends the moment the next yield would exceed it. A Getter error
// is yielded as the final element. Breaking out of the range abandons the
// sequence with no cleanup beyond the in-flight request.
func (ap *AutoPaginator) PaginateLazy(ctx context.Context, endpoint string, params url.Values) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		yielded := 0
		pageNum := 1

		for pageNum <= ap.cfg.maxPages {
			raw, err := ap.client.GetJSON(ctx, endpoint, ap.pageQuery(params, pageNum))
			if err != nil {
				yield(nil, err)
				return
			}

			pg := parsePage(raw)
			if len(pg.items) == 0 {
				return
			}
			for _, item := range pg.items {
				if yielded >= ap.cfg.maxTotalItems {
					return
				}
				if !yield(item, nil) {
					return
				}
				yielded++
			}

			if !pg.hasNext(ap.cfg.pageSize) {
				return
			}
			pageNum++
		}
	}
}

// PaginateFirstPage issues exactly one GET for page 1 and returns its
// items. No bound checks and no follow-up requests; callers opting out of
// auto-pagination use this.
func (ap *AutoPaginator) PaginateFirstPage(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	raw, err := ap.client.GetJSON(ctx, endpoint, ap.pageQuery(params, 1))
	if err != nil {
		return nil, err
	}
	return parsePage(raw).items, nil
}

// pageQuery copies the caller's params and injects the page and page_size
// keys, leaving the original untouched.
func (ap *AutoPaginator) pageQuery(params url.Values, pageNum int) url.Values {
	q := make(url.Values, len(params)+2)
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page", strconv.Itoa(pageNum))
	q.Set("page_size", strconv.Itoa(ap.cfg.pageSize))
	return q
}
