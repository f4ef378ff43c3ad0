package k8s

import (
	"context"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

// Result, ListPage, WatchEvent, and ConnectEvent are thin aliases over
// internal/core's runner outcome types, per spec §4.7-§4.10.
type (
	Result       = core.Result
	ListPage     = core.ListPage
	WatchEvent   = core.WatchEvent
	ConnectEvent = core.ConnectEvent
)

// runnerBase is shared by every call in this file; it carries no
// connection-specific state (that lives on Conn), so one value is reused
// across every Conn the process holds.
var runnerBase = core.NewRunnerBase()

// Do executes op against conn as a single request/response call, per spec
// §4.7.
func Do(ctx context.Context, conn *Conn, op Operation) (*Result, error) {
	return runnerBase.Do(ctx, conn, op)
}

// ListStream is a lazy, pull-based cursor over a paginated LIST operation,
// per spec §4.8. limit overrides the page size; pass 0 to use the Conn's
// configured default.
type ListStream struct {
	inner *core.ListStream
}

// NewListStream starts a ListStream for op against conn. limit overrides
// the page size; pass 0 to use conn's configured ListLimit.
func NewListStream(conn *Conn, op Operation, limit int) *ListStream {
	if limit <= 0 {
		limit = conn.ListLimit
	}
	return &ListStream{inner: core.NewListStream(runnerBase, conn, op, limit)}
}

// Next fetches the next page; ok is false once the stream has halted.
func (s *ListStream) Next(ctx context.Context) (ListPage, bool) {
	return s.inner.Next(ctx)
}

// WatchStream is a pull-based cursor over a resumable watch, per spec
// §4.9.
type WatchStream struct {
	inner *core.WatchStream
}

// NewWatchStream starts a WatchStream for op (Verb must be VerbWatch or
// VerbWatchAllNamespaces) against conn, bound to ctx.
func NewWatchStream(ctx context.Context, conn *Conn, op Operation) *WatchStream {
	return &WatchStream{inner: core.NewWatchStream(ctx, runnerBase, conn, op)}
}

// Next blocks for the next watch event. ok is false once the stream has
// ended; err carries the reason when non-nil.
func (s *WatchStream) Next(ctx context.Context) (WatchEvent, error, bool) {
	return s.inner.Next(ctx)
}

// Close stops the stream and releases its connection.
func (s *WatchStream) Close() { s.inner.Close() }

// ConnectStream is a full-duplex exec/attach session, per spec §4.10.
type ConnectStream struct {
	inner *core.ConnectStream
}

// NewConnectStream opens a ConnectStream for op (Verb must be
// VerbConnect) against conn, bound to ctx.
func NewConnectStream(ctx context.Context, conn *Conn, op Operation) *ConnectStream {
	return &ConnectStream{inner: core.NewConnectStream(ctx, runnerBase, conn, op)}
}

// WriteStdin sends payload to the session's stdin (channel 0x00).
func (s *ConnectStream) WriteStdin(ctx context.Context, payload []byte) error {
	return s.inner.WriteStdin(ctx, payload)
}

// Next blocks for the next demultiplexed event.
func (s *ConnectStream) Next(ctx context.Context) (ConnectEvent, bool) {
	return s.inner.Next(ctx)
}

// Err returns the terminal error recorded when the session ended, if any.
func (s *ConnectStream) Err() error { return s.inner.Err() }

// Close terminates the session.
func (s *ConnectStream) Close() { s.inner.Close() }
