package pagination

// page is the normalized form of one raw list response. parsePage is the
// only place raw JSON shapes are inspected; the fetch loop works on this
// struct alone.
type page struct {
	items    []map[string]any
	next     bool // envelope carried a non-null "next"
	count    int  // server-side total, when the envelope carried one
	hasCount bool
}

// parsePage normalizes the decoded JSON body of a list response. Taiga
// endpoints answer with a paginated envelope ({"results": [...], "next":
// ..., "count": ...}), a bare list, or nothing; anything else degrades to
// zero items rather than an error.
func parsePage(raw any) page {
	switch v := raw.(type) {
	case nil:
		return page{}
	case []any:
		return page{items: toRecords(v)}
	case map[string]any:
		p := page{}
		if results, ok := v["results"]; ok {
			if list, ok := results.([]any); ok {
				p.items = toRecords(list)
			}
		}
		if next, ok := v["next"]; ok && next != nil {
			p.next = true
		}
		if c, ok := v["count"]; ok {
			if f, ok := c.(float64); ok {
				p.count = int(f)
				p.hasCount = true
			}
		}
		return p
	default:
		return page{}
	}
}

// hasNext decides whether another page should be fetched after this one.
// An envelope "next" link wins; otherwise a server-side count larger than
// this page's item count; otherwise a full page is taken as a hint that
// more may follow. An empty page always means the end.
func (p page) hasNext(pageSize int) bool {
	if len(p.items) == 0 {
		return false
	}
	if p.next {
		return true
	}
	if p.hasCount {
		return p.count > len(p.items)
	}
	return len(p.items) == pageSize
}

// toRecords keeps the object elements of a JSON list, dropping anything
// that is not a record.
func toRecords(list []any) []map[string]any {
	records := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}
