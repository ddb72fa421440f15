// Package pagination wraps a count query and a data query into a single
// paginated response with consistent metadata. The engine holds no state
// between calls; everything derives from the requested page, the limit, and
// the two query results.
package pagination

import (
	"context"
	"database/sql"
	"fmt"
)

// Metadata describes the position of a page within the full result set.
// Field names are part of the wire contract and must not change.
type Metadata struct {
	CurrentPage        int  `json:"currentPage"`
	TotalPages         int  `json:"totalPages"`
	TotalCount         int  `json:"totalCount"`
	Limit              int  `json:"limit"`
	Offset             int  `json:"offset"`
	HasNextPage        bool `json:"hasNextPage"`
	HasPreviousPage    bool `json:"hasPreviousPage"`
	NextPage           *int `json:"nextPage"`
	PreviousPage       *int `json:"previousPage"`
	ItemsOnCurrentPage int  `json:"itemsOnCurrentPage"`
	StartIndex         int  `json:"startIndex"`
	EndIndex           int  `json:"endIndex"`
}

// Result is the envelope returned by every paginated operation.
type Result[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// New computes provisional metadata before the data query has run.
// ItemsOnCurrentPage and EndIndex assume a full page; Finalize corrects them
// once the actual row count is known.
//
// A page beyond the last valid page is not clamped: the data query simply
// returns no rows for that offset and the metadata reports the requested page
// verbatim.
func New(page, limit, totalCount int) Metadata {
	offset := (page - 1) * limit
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	hasNext := page < totalPages
	hasPrev := page > 1

	m := Metadata{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalCount:      totalCount,
		Limit:           limit,
		Offset:          offset,
		HasNextPage:     hasNext,
		HasPreviousPage: hasPrev,
		StartIndex:      offset + 1,
		EndIndex:        min(offset+limit, totalCount),
	}
	if hasNext {
		next := page + 1
		m.NextPage = &next
	}
	if hasPrev {
		prev := page - 1
		m.PreviousPage = &prev
	}
	return m
}

// Finalize returns a copy patched with the number of rows the data query
// actually produced. Taking the count as an explicit late input avoids the
// ordering hazards of mutating shared metadata in place.
func (m Metadata) Finalize(actual int) Metadata {
	m.ItemsOnCurrentPage = actual
	m.EndIndex = m.Offset + actual
	return m
}

// Querier is the slice of the store handle the engine needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Query pairs a count statement with a data statement. DataSQL must accept
// two trailing placeholders for limit and offset, numbered after DataArgs;
// the engine appends both values when it executes the query.
type Query struct {
	CountSQL  string
	CountArgs []any
	DataSQL   string
	DataArgs  []any
}

// RowScanner reads one row of the data query into its raw row shape.
type RowScanner[R any] func(rows *sql.Rows) (R, error)

// Transformer maps a raw row into a response-shaped entity. Transformers must
// be total over the row shape their data query produces.
type Transformer[R, T any] func(R) T

// Identity is the pass-through transformer for call sites whose rows already
// have the response shape.
func Identity[T any](row T) T {
	return row
}

// Paginate executes the count query, derives the page window, executes the
// data query with limit and offset appended after the caller's arguments,
// and maps every row through the transformer. The first error from either
// query propagates; no partial result is returned.
func Paginate[R, T any](
	ctx context.Context,
	db Querier,
	q Query,
	page, limit int,
	scan RowScanner[R],
	transform Transformer[R, T],
) (*Result[T], error) {
	var total int
	if err := db.QueryRowContext(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	meta := New(page, limit, total)

	args := make([]any, 0, len(q.DataArgs)+2)
	args = append(args, q.DataArgs...)
	args = append(args, limit, meta.Offset)

	rows, err := db.QueryContext(ctx, q.DataSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("data query failed: %w", err)
	}
	defer rows.Close()

	data := make([]T, 0, limit)
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		data = append(data, transform(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &Result[T]{
		Data:       data,
		Pagination: meta.Finalize(len(data)),
	}, nil
}
