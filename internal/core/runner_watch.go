package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/sentinel"
	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// watchReconnectSleep and watchReconnectBudget are T and R from spec §4.9:
// on a retryable condition (410, malformed event, or transport error) the
// stream sleeps T then reconnects, up to R total reconnects before
// aborting. Per the resolved Open Question (SPEC_FULL.md §9), all three
// triggers share this single counter rather than independent budgets.
const (
	watchReconnectSleep  = 5 * time.Second
	watchReconnectBudget = 5
)

// errWatchStatusHandled is an internal control-value: onLine/statusCallback
// set it to stop bufio scanning once a terminal condition (410, malformed
// event, non-200 status) has already been recorded in the closure's
// terminal variable.
const errWatchStatusHandled = sentinel.Error("k8s: watch terminal condition handled")

// WatchEvent is one delivered watch notification: ADDED, MODIFIED, or
// DELETED carrying the decoded object. BOOKMARK events update internal
// resourceVersion bookkeeping and are never delivered to the caller.
type WatchEvent struct {
	Type   string
	Object any
}

// WatchStream is a pull-based cursor over a resumable Kubernetes watch,
// implementing the state machine in spec §4.9: Bootstrap (LIST to learn
// resourceVersion) → Streaming (watch=1 GET) → reconnect on 410/malformed
// event/transport error.
type WatchStream struct {
	base *RunnerBase
	conn *Conn
	op   Operation

	events chan watchOutcome
	cancel func()
}

type watchOutcome struct {
	event WatchEvent
	err   error
}

// NewWatchStream starts the background worker for op (whose Verb must be
// VerbWatch or VerbWatchAllNamespaces) against conn, bound to ctx: cancelling
// ctx stops the worker and closes the underlying connection promptly, per
// spec §5's cancellation requirement.
func NewWatchStream(ctx context.Context, base *RunnerBase, conn *Conn, op Operation) *WatchStream {
	workerCtx, cancel := context.WithCancel(ctx)
	w := &WatchStream{
		base:   base,
		conn:   conn,
		op:     op,
		events: make(chan watchOutcome),
		cancel: cancel,
	}
	go w.run(workerCtx)
	return w
}

// Next blocks until the next non-bookmark event is available, the stream
// aborts (StreamInterruptedError or a terminal error), or ctx/the stream's
// own context is done. ok is false only once the stream is fully drained.
func (w *WatchStream) Next(ctx context.Context) (WatchEvent, error, bool) {
	select {
	case outcome, open := <-w.events:
		if !open {
			return WatchEvent{}, nil, false
		}
		return outcome.event, outcome.err, true
	case <-ctx.Done():
		return WatchEvent{}, ctx.Err(), true
	}
}

// Close stops the background worker and releases the underlying
// connection.
func (w *WatchStream) Close() {
	w.cancel()
}

func (w *WatchStream) run(ctx context.Context) {
	defer close(w.events)

	var resourceVersion string
	reconnects := 0

	for {
		if ctx.Err() != nil {
			return
		}

		if resourceVersion == "" {
			rv, err := w.bootstrap(ctx)
			if err != nil {
				w.emitErr(ctx, err)
				return
			}
			resourceVersion = rv
		}

		outcome := w.streamOnce(ctx, resourceVersion)
		switch {
		case outcome.abort != nil:
			w.emitErr(ctx, outcome.abort)
			return
		case outcome.reconnect:
			reconnects++
			if reconnects > watchReconnectBudget {
				cause := outcome.reconnectCause
				if !errors.Is(cause, ErrWatchAborted) {
					cause = fmt.Errorf("%w: %w", ErrWatchAborted, cause)
				}
				w.emitErr(ctx, &StreamInterruptedError{Reconnects: reconnects, Cause: cause})
				return
			}
			if outcome.resetRV {
				resourceVersion = ""
			} else {
				resourceVersion = outcome.lastRV
			}
			if err := SleepContext(ctx, watchReconnectSleep); err != nil {
				return
			}
		default:
			// streamOnce returned cleanly (context cancelled mid-read).
			return
		}
	}
}

// bootstrap issues a single LIST to learn the current
// metadata.resourceVersion, falling back to "0" per spec §4.9.
func (w *WatchStream) bootstrap(ctx context.Context) (string, error) {
	listOp := w.op
	listOp.Verb = listVerbFor(w.op.Verb)

	req, err := w.base.Render(ctx, w.conn, listOp, nil)
	if err != nil {
		return "", err
	}
	resp, err := w.conn.Transport.Do(ctx, *req)
	if err != nil {
		return "", &HTTPError{Cause: err}
	}
	result, err := classifyResponse(resp)
	if err != nil {
		return "", err
	}
	if rv, ok := extractResourceVersion(result.Value); ok && rv != "" {
		return rv, nil
	}
	return "0", nil
}

func listVerbFor(v Verb) Verb {
	if v == VerbWatchAllNamespaces {
		return VerbListAllNamespaces
	}
	return VerbList
}

type streamOutcome struct {
	reconnect      bool
	resetRV        bool
	lastRV         string
	reconnectCause error
	abort          error
}

// streamOnce issues the watch request at resourceVersion and demultiplexes
// NDJSON lines until the connection ends, emitting non-bookmark events to
// w.events as they're decoded.
func (w *WatchStream) streamOnce(ctx context.Context, resourceVersion string) streamOutcome {
	watchOp := w.op.
		WithQueryParam("watch", "1").
		WithQueryParam("allowWatchBookmarks", "true").
		WithQueryParam("resourceVersion", resourceVersion)

	req, err := w.base.Render(ctx, w.conn, watchOp, nil)
	if err != nil {
		return streamOutcome{abort: err}
	}

	currentRV := resourceVersion
	var terminal streamOutcome
	sawTerminal := false

	statusCallback := func(status int, body []byte) error {
		if status == 200 {
			return nil
		}
		if status == 410 {
			terminal = streamOutcome{reconnect: true, resetRV: true, reconnectCause: &HTTPError{Code: status, Body: body}}
			sawTerminal = true
			return errWatchStatusHandled
		}
		terminal = streamOutcome{abort: &HTTPError{Code: status, Body: body}}
		sawTerminal = true
		return errWatchStatusHandled
	}

	onLine := func(line []byte) error {
		var evt rawWatchEvent
		if err := json.Unmarshal(line, &evt); err != nil || evt.Kind() == "" {
			cause := &DiscoveryError{Path: "watch", Cause: err}
			xlog.Logger().Warn("malformed watch event, resetting resourceVersion and reconnecting", "error", cause)
			terminal = streamOutcome{reconnect: true, resetRV: true, reconnectCause: cause}
			sawTerminal = true
			return errWatchStatusHandled
		}

		switch evt.Type {
		case "BOOKMARK":
			if rv, ok := evt.ResourceVersion(); ok {
				currentRV = rv
			}
			return nil
		case "ERROR":
			if code, ok := evt.ErrorCode(); ok && code == 410 {
				terminal = streamOutcome{reconnect: true, resetRV: true, reconnectCause: &APIError{Code: code, Message: evt.ErrorMessage()}}
				sawTerminal = true
				return errWatchStatusHandled
			}
			terminal = streamOutcome{abort: &APIError{Message: evt.ErrorMessage()}}
			sawTerminal = true
			return errWatchStatusHandled
		default:
			rv, _ := evt.ResourceVersion()
			if rv != "" && rv == currentRV {
				return nil
			}
			if rv != "" {
				currentRV = rv
			}
			var object any
			_ = json.Unmarshal(evt.Object, &object)
			select {
			case w.events <- watchOutcome{event: WatchEvent{Type: evt.Type, Object: object}}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		}
	}

	err = w.conn.Transport.StreamLines(ctx, *req, statusCallback, onLine)
	if sawTerminal {
		return terminal
	}
	if err != nil {
		if ctx.Err() != nil {
			return streamOutcome{}
		}
		return streamOutcome{reconnect: true, lastRV: currentRV, reconnectCause: err}
	}
	// Body exhausted with no explicit terminal signal: server closed the
	// connection, treated as a transient transport condition to reconnect.
	return streamOutcome{reconnect: true, lastRV: currentRV, reconnectCause: ErrWatchAborted}
}

func (w *WatchStream) emitErr(ctx context.Context, err error) {
	select {
	case w.events <- watchOutcome{err: err}:
	case <-ctx.Done():
	}
}

// rawWatchEvent is the wire shape of one watch notification line.
type rawWatchEvent struct {
	Type   string          `json:"type"`
	Object json.RawMessage `json:"object"`
}

func (e rawWatchEvent) Kind() string {
	var probe struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(e.Object, &probe)
	if probe.Kind == "" && probe.Message != "" {
		return ""
	}
	if probe.Kind != "" {
		return probe.Kind
	}
	return e.Type
}

func (e rawWatchEvent) ResourceVersion() (string, bool) {
	var probe struct {
		Metadata struct {
			ResourceVersion string `json:"resourceVersion"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(e.Object, &probe); err != nil {
		return "", false
	}
	return probe.Metadata.ResourceVersion, probe.Metadata.ResourceVersion != ""
}

func (e rawWatchEvent) ErrorCode() (int, bool) {
	var probe struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(e.Object, &probe); err != nil {
		return 0, false
	}
	return probe.Code, true
}

func (e rawWatchEvent) ErrorMessage() string {
	var probe struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(e.Object, &probe)
	return probe.Message
}

func extractResourceVersion(value any) (string, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	meta, ok := obj["metadata"].(map[string]any)
	if !ok {
		return "", false
	}
	rv, ok := meta["resourceVersion"].(string)
	return rv, ok
}
