// Package pagination provides automatic pagination over Taiga list endpoints.
//
// Taiga list endpoints answer in one of several shapes: a paginated envelope
// ({"results": [...], "next": ..., "count": ...}), a bare JSON list with no
// envelope, or an empty body. AutoPaginator hides the difference and drives
// the page-fetch loop, enforcing a page ceiling and a total-item ceiling so a
// misbehaving endpoint can never pull unbounded data into memory. It provides:
//
//   - Paginate: eagerly collect every page's items into one slice
//   - PaginateWithInfo: the same, plus page counts and truncation flags
//   - PaginateLazy: a pull-based sequence yielding items as pages arrive
//   - PaginateFirstPage: exactly one fetch, for callers opting out
//
// # Collecting a bounded list
//
//	cfg, err := pagination.NewConfig(100, 50, 5000)
//	if err != nil {
//	    return err
//	}
//	paginator := pagination.New(client, cfg)
//
//	params := url.Values{}
//	params.Set("project", "42")
//	issues, err := paginator.Paginate(ctx, "/issues", params)
//
// # Streaming items
//
//	for item, err := range paginator.PaginateLazy(ctx, "/issues", params) {
//	    if err != nil {
//	        return err
//	    }
//	    process(item)
//	}
//
// The paginator fetches pages strictly sequentially: each page's
// continuation decision depends on the previous response, and Taiga's page
// cursors are not known to be stable under concurrent page requests.
// Transport errors from the underlying client propagate unchanged; there is
// no retry or partial-result recovery at this layer.
package pagination
