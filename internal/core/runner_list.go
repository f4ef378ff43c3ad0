package core

import (
	"context"
	"strconv"
)

// defaultListLimit is the page size used when the caller doesn't override
// it, per spec §4.8.
const defaultListLimit = 10

// ListPage is one page yielded by a ListStream: either a decoded list
// object or a terminal error (after which the stream halts without
// retrying, per spec §4.8).
type ListPage struct {
	Value any
	Err   error
}

// ListStream is a lazy, pull-based cursor over a paginated list call. It
// reissues op as a GET with limit/continue query parameters until the
// server reports no continuation token.
type ListStream struct {
	base *RunnerBase
	conn *Conn
	op   Operation

	limit      int
	cont       string
	halted     bool
	errEmitted bool
}

// NewListStream returns a ListStream for op against conn, using limit as
// the page size (defaultListLimit if limit <= 0).
func NewListStream(base *RunnerBase, conn *Conn, op Operation, limit int) *ListStream {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return &ListStream{base: base, conn: conn, op: op, limit: limit}
}

// Next fetches and returns the next page, or ok=false once the stream has
// halted (either because the server's metadata.continue was empty/absent,
// or because the previous page errored).
func (s *ListStream) Next(ctx context.Context) (ListPage, bool) {
	if s.halted || s.errEmitted {
		return ListPage{}, false
	}

	extra := []KV{{Key: "limit", Value: strconv.Itoa(s.limit)}}
	if s.cont != "" {
		extra = append(extra, KV{Key: "continue", Value: s.cont})
	}

	req, err := s.base.Render(ctx, s.conn, s.op, extra)
	if err != nil {
		s.errEmitted = true
		return ListPage{Err: err}, true
	}

	resp, err := s.conn.Transport.Do(ctx, *req)
	if err != nil {
		s.errEmitted = true
		return ListPage{Err: &HTTPError{Cause: err}}, true
	}

	result, err := classifyResponse(resp)
	if err != nil {
		s.errEmitted = true
		return ListPage{Err: err}, true
	}

	next, hasNext := extractContinueToken(result.Value)
	if !hasNext || next == "" {
		s.halted = true
	} else {
		s.cont = next
	}

	return ListPage{Value: result.Value}, true
}

// extractContinueToken reads metadata.continue from a decoded list object.
func extractContinueToken(value any) (string, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	meta, ok := obj["metadata"].(map[string]any)
	if !ok {
		return "", false
	}
	token, ok := meta["continue"].(string)
	return token, ok
}
