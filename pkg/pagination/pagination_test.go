package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGetter replays a fixed sequence of responses and records every call.
type fakeGetter struct {
	responses []any
	err       error
	errAt     int // 1-based call number the error fires on; 0 means never
	calls     []fakeCall
}

type fakeCall struct {
	endpoint string
	query    url.Values
}

func (f *fakeGetter) GetJSON(_ context.Context, endpoint string, query url.Values) (any, error) {
	f.calls = append(f.calls, fakeCall{endpoint: endpoint, query: query})
	n := len(f.calls)
	if f.err != nil && (f.errAt == 0 || f.errAt == n) {
		return nil, f.err
	}
	if n > len(f.responses) {
		return nil, nil
	}
	return f.responses[n-1], nil
}

func records(from, to int) []any {
	out := make([]any, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, map[string]any{"id": float64(i)})
	}
	return out
}

func envelope(items []any, next any) map[string]any {
	return map[string]any{
		"results": items,
		"next":    next,
	}
}

func mustConfig(t *testing.T, pageSize, maxPages, maxTotal int) Config {
	t.Helper()
	cfg, err := NewConfig(pageSize, maxPages, maxTotal)
	require.NoError(t, err)
	return cfg
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		maxPages int
		maxTotal int
		wantErr  error
	}{
		{"valid", 100, 50, 5000, nil},
		{"zero page size", 0, 50, 5000, ErrInvalidPageSize},
		{"negative page size", -1, 50, 5000, ErrInvalidPageSize},
		{"zero max pages", 100, 0, 5000, ErrInvalidMaxPages},
		{"negative max pages", 100, -5, 5000, ErrInvalidMaxPages},
		{"zero max total items", 100, 50, 0, ErrInvalidMaxTotalItems},
		{"negative max total items", 100, 50, -100, ErrInvalidMaxTotalItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.pageSize, tt.maxPages, tt.maxTotal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pageSize, cfg.PageSize())
			assert.Equal(t, tt.maxPages, cfg.MaxPages())
			assert.Equal(t, tt.maxTotal, cfg.MaxTotalItems())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultPageSize, cfg.PageSize())
	assert.Equal(t, DefaultMaxPages, cfg.MaxPages())
	assert.Equal(t, DefaultMaxTotalItems, cfg.MaxTotalItems())
}

func TestPaginateSinglePage(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 3), nil),
	}}
	ap := New(getter, DefaultConfig())

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, float64(1), items[0]["id"])
	assert.Equal(t, float64(3), items[2]["id"])
	assert.Len(t, getter.calls, 1)
}

func TestPaginateMultiPageConcatenation(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 100), "page2"),
		envelope(records(101, 200), "page3"),
		envelope(records(201, 250), nil),
	}}
	ap := New(getter, DefaultConfig())

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	require.Len(t, items, 250)
	for i, item := range items {
		assert.Equal(t, float64(i+1), item["id"])
	}
	assert.Len(t, getter.calls, 3)
}

func TestPaginateWithInfoMaxPagesBound(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
		envelope(records(11, 20), "more"),
		envelope(records(21, 30), "more"),
	}}
	ap := New(getter, mustConfig(t, 10, 2, 5000))

	res, err := ap.PaginateWithInfo(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Len(t, getter.calls, 2)
	assert.Len(t, res.Items, 20)
	assert.Equal(t, 20, res.TotalItems)
	assert.True(t, res.WasTruncated)
	assert.True(t, res.HasMore)
}

func TestPaginateWithInfoMaxTotalItemsBound(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
		envelope(records(11, 20), nil),
	}}
	ap := New(getter, mustConfig(t, 10, 50, 15))

	res, err := ap.PaginateWithInfo(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Len(t, getter.calls, 2)
	require.Len(t, res.Items, 15)
	assert.Equal(t, 15, res.TotalItems)
	assert.Equal(t, float64(15), res.Items[14]["id"])
	assert.True(t, res.WasTruncated)
	assert.True(t, res.HasMore)
}

func TestPaginateWithInfoItemBoundBeatsNextLink(t *testing.T) {
	// Exactly at the item ceiling with the server still advertising more:
	// the ceiling wins and the run stops truncated.
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
	}}
	ap := New(getter, mustConfig(t, 10, 50, 10))

	res, err := ap.PaginateWithInfo(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Len(t, getter.calls, 1)
	assert.Len(t, res.Items, 10)
	assert.True(t, res.WasTruncated)
	assert.True(t, res.HasMore)
}

func TestPaginateWithInfoServerEndOfData(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 4), nil),
	}}
	ap := New(getter, DefaultConfig())

	res, err := ap.PaginateWithInfo(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.TotalPages)
	assert.False(t, res.HasMore)
	assert.False(t, res.WasTruncated)
}

func TestPaginateNullResponse(t *testing.T) {
	getter := &fakeGetter{responses: []any{nil}}
	ap := New(getter, DefaultConfig())

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Empty(t, items)
	assert.Len(t, getter.calls, 1)
}

func TestPaginateBareListResponse(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		[]any{map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}},
	}}
	ap := New(getter, DefaultConfig())

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, float64(1), items[0]["id"])
	// Two items is a short page under the default page size, so no second
	// fetch happens.
	assert.Len(t, getter.calls, 1)
}

func TestPaginateBareListFullPageFetchesNext(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		records(1, 5),
		records(6, 8),
	}}
	ap := New(getter, mustConfig(t, 5, 50, 5000))

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Len(t, items, 8)
	assert.Len(t, getter.calls, 2)
}

func TestPaginateMapWithoutResults(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		map[string]any{"id": float64(7), "name": "single resource"},
	}}
	ap := New(getter, DefaultConfig())

	items, err := ap.Paginate(context.Background(), "/issues/7", nil)
	require.NoError(t, err)

	assert.Empty(t, items)
	assert.Len(t, getter.calls, 1)
}

func TestPaginateMalformedResultsValue(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		map[string]any{"results": "not a list", "next": "more"},
	}}
	ap := New(getter, DefaultConfig())

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Empty(t, items)
	assert.Len(t, getter.calls, 1)
}

func TestPaginateCountDrivenContinuation(t *testing.T) {
	// No "next" link; the envelope count exceeding the page's item count
	// drives the follow-up fetch.
	getter := &fakeGetter{responses: []any{
		map[string]any{"results": records(1, 10), "count": float64(13)},
		map[string]any{"results": records(11, 13), "count": float64(13)},
	}}
	ap := New(getter, mustConfig(t, 10, 50, 5000))

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Len(t, items, 13)
	assert.Len(t, getter.calls, 2)
}

func TestPaginateFirstPage(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
	}}
	ap := New(getter, mustConfig(t, 10, 1, 1))

	items, err := ap.PaginateFirstPage(context.Background(), "/issues", nil)
	require.NoError(t, err)

	// Exactly one fetch, no bound checks, no next-page inspection.
	assert.Len(t, items, 10)
	require.Len(t, getter.calls, 1)
	assert.Equal(t, "1", getter.calls[0].query.Get("page"))
	assert.Equal(t, "10", getter.calls[0].query.Get("page_size"))
}

func TestPaginateParameterPassThrough(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
		envelope(records(11, 20), nil),
	}}
	ap := New(getter, mustConfig(t, 10, 50, 5000))

	params := url.Values{}
	params.Set("project", "123")

	_, err := ap.Paginate(context.Background(), "/issues", params)
	require.NoError(t, err)

	require.Len(t, getter.calls, 2)
	for i, call := range getter.calls {
		assert.Equal(t, "/issues", call.endpoint)
		assert.Equal(t, "123", call.query.Get("project"))
		assert.Equal(t, fmt.Sprintf("%d", i+1), call.query.Get("page"))
		assert.Equal(t, "10", call.query.Get("page_size"))
	}

	// The caller's params must come back untouched.
	assert.Equal(t, url.Values{"project": []string{"123"}}, params)
}

func TestPaginateErrorPropagatesVerbatim(t *testing.T) {
	wantErr := errors.New("connection reset")
	getter := &fakeGetter{
		responses: []any{envelope(records(1, 10), "more")},
		err:       wantErr,
		errAt:     2,
	}
	ap := New(getter, mustConfig(t, 10, 50, 5000))

	items, err := ap.Paginate(context.Background(), "/issues", nil)
	assert.ErrorIs(t, err, wantErr)
	// A mid-run failure discards the pages already collected.
	assert.Nil(t, items)
}

func TestPaginateLazyMatchesEager(t *testing.T) {
	responses := []any{
		envelope(records(1, 10), "more"),
		envelope(records(11, 20), "more"),
		envelope(records(21, 23), nil),
	}

	eager := New(&fakeGetter{responses: responses}, mustConfig(t, 10, 50, 5000))
	want, err := eager.Paginate(context.Background(), "/issues", nil)
	require.NoError(t, err)

	lazyGetter := &fakeGetter{responses: responses}
	lazy := New(lazyGetter, mustConfig(t, 10, 50, 5000))

	var got []map[string]any
	for item, err := range lazy.PaginateLazy(context.Background(), "/issues", nil) {
		require.NoError(t, err)
		got = append(got, item)
	}

	assert.Equal(t, want, got)
	assert.Len(t, lazyGetter.calls, 3)
}

func TestPaginateLazyItemBound(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
		envelope(records(11, 20), "more"),
	}}
	ap := New(getter, mustConfig(t, 10, 50, 15))

	var got []map[string]any
	for item, err := range ap.PaginateLazy(context.Background(), "/issues", nil) {
		require.NoError(t, err)
		got = append(got, item)
	}

	// The sequence ends without yielding a partial excess.
	require.Len(t, got, 15)
	assert.Equal(t, float64(15), got[14]["id"])
	assert.Len(t, getter.calls, 2)
}

func TestPaginateLazyEarlyAbandonment(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
		envelope(records(11, 20), "more"),
		envelope(records(21, 30), nil),
	}}
	ap := New(getter, mustConfig(t, 10, 50, 5000))

	var got []map[string]any
	for item, err := range ap.PaginateLazy(context.Background(), "/issues", nil) {
		require.NoError(t, err)
		got = append(got, item)
		if len(got) == 3 {
			break
		}
	}

	assert.Len(t, got, 3)
	// Only the first page was ever fetched.
	assert.Len(t, getter.calls, 1)
}

func TestPaginateLazyYieldsError(t *testing.T) {
	wantErr := errors.New("bad gateway")
	getter := &fakeGetter{
		responses: []any{envelope(records(1, 10), "more")},
		err:       wantErr,
		errAt:     2,
	}
	ap := New(getter, mustConfig(t, 10, 50, 5000))

	var got []map[string]any
	var gotErr error
	for item, err := range ap.PaginateLazy(context.Background(), "/issues", nil) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, item)
	}

	// Items before the failure were delivered; the error ends the sequence.
	assert.Len(t, got, 10)
	assert.ErrorIs(t, gotErr, wantErr)
}

func TestPaginateLazyEmptyFirstPage(t *testing.T) {
	getter := &fakeGetter{responses: []any{
		envelope([]any{}, nil),
	}}
	ap := New(getter, DefaultConfig())

	count := 0
	for _, err := range ap.PaginateLazy(context.Background(), "/issues", nil) {
		require.NoError(t, err)
		count++
	}

	assert.Zero(t, count)
	assert.Len(t, getter.calls, 1)
}

func TestPaginateEmptyPageAfterData(t *testing.T) {
	// A page that comes back empty ends the run even though the previous
	// envelope advertised more.
	getter := &fakeGetter{responses: []any{
		envelope(records(1, 10), "more"),
		envelope([]any{}, "more"),
	}}
	ap := New(getter, mustConfig(t, 10, 50, 5000))

	res, err := ap.PaginateWithInfo(context.Background(), "/issues", nil)
	require.NoError(t, err)

	assert.Len(t, res.Items, 10)
	assert.Len(t, getter.calls, 2)
	assert.False(t, res.HasMore)
	assert.False(t, res.WasTruncated)
}

func TestParsePageSkipsNonRecordElements(t *testing.T) {
	p := parsePage([]any{
		map[string]any{"id": float64(1)},
		"stray string",
		float64(42),
		map[string]any{"id": float64(2)},
	})

	require.Len(t, p.items, 2)
	assert.Equal(t, float64(1), p.items[0]["id"])
	assert.Equal(t, float64(2), p.items[1]["id"])
}
