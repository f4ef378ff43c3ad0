package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Transport performs the actual network I/O for a rendered request: plain
// request/response, chunked NDJSON reads for watch streams, and the
// channel-framed WebSocket upgrade for exec/attach.
type Transport struct {
	client *http.Client
	dialer *websocket.Dialer
}

// NewTransport wraps an *http.Client (already configured with the Conn's
// TLS material) as a Transport, and derives a matching websocket.Dialer
// reusing the same TLS config.
func NewTransport(client *http.Client) *Transport {
	dialer := &websocket.Dialer{}
	if rt, ok := client.Transport.(*http.Transport); ok {
		dialer.TLSClientConfig = rt.TLSClientConfig
	}
	return &Transport{client: client, dialer: dialer}
}

// RenderedRequest is the fully-decorated request MiddlewareChain hands to
// Transport: method, URL, headers and an already-encoded body.
type RenderedRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the normalized outcome of a single-shot request, per spec
// §4.7's response-classification rules.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Do performs req and returns its normalized Response, or an error if the
// transport itself failed (DNS, TLS, connection refused, context
// cancellation) — never for a non-2xx status, which is a valid Response
// for the caller (Runner.Base) to classify.
func (t *Transport) Do(ctx context.Context, req RenderedRequest) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("k8s: building request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("k8s: reading response body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// StreamLines opens req and invokes onLine for every newline-delimited JSON
// object received, buffering partial chunks across reads exactly as the
// watch wire format requires (spec §4.9). onLine is called with the raw
// bytes between newlines, with no trailing newline. StreamLines returns
// when the body is exhausted, ctx is cancelled, or onLine returns a
// non-nil error (which StreamLines then returns).
//
// statusCallback, if non-nil, is invoked once with the HTTP status code
// before any line is read, so the caller can react to a non-200 response
// without scanning its (possibly non-NDJSON) body as watch events.
func (t *Transport) StreamLines(ctx context.Context, req RenderedRequest, statusCallback func(status int, body []byte) error, onLine func(line []byte) error) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return fmt.Errorf("k8s: building request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if statusCallback != nil {
			return statusCallback(resp.StatusCode, body)
		}
		return &HTTPError{Code: resp.StatusCode, Body: body}
	}
	if statusCallback != nil {
		if err := statusCallback(resp.StatusCode, nil); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := onLine(line); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return scanner.Err()
}

// ChannelFrame is one demultiplexed frame from an exec/attach WebSocket
// stream: Channel identifies the byte tag (0 stdin, 1 stdout, 2 stderr,
// 3 error/Status JSON, 4 resize, others forwarded as-is).
type ChannelFrame struct {
	Channel byte
	Payload []byte
}

// ConnectWS upgrades to a channel-framed WebSocket at url with the given
// headers and subprotocol, then invokes onFrame for every inbound binary
// frame (demultiplexed per spec §4.10) until the peer sends a normal-closure
// close frame, the context is cancelled, or onFrame returns an error.
// stdin, if non-nil, is drained concurrently and each payload is written as
// a channel-0x00-tagged outbound frame, implementing the write half of the
// duplex session.
func (t *Transport) ConnectWS(ctx context.Context, rawURL string, headers map[string]string, stdin <-chan []byte, onFrame func(ChannelFrame) error) error {
	wsURL, err := toWebSocketURL(rawURL)
	if err != nil {
		return err
	}

	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}

	dialer := *t.dialer
	dialer.Subprotocols = []string{"v4.channel.k8s.io"}

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			return &HTTPError{Code: resp.StatusCode, Body: body, Cause: err}
		}
		return fmt.Errorf("k8s: websocket dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	if stdin != nil {
		go func() {
			for {
				select {
				case payload, open := <-stdin:
					if !open {
						return
					}
					if err := t.WriteStdin(conn, payload); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("k8s: websocket read: %w", err)
		}
		if msgType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		frame := ChannelFrame{Channel: data[0], Payload: data[1:]}
		if err := onFrame(frame); err != nil {
			return err
		}
	}
}

// WriteStdin writes payload to the connection's stdin channel (byte 0x00).
// Exposed for Runner.ConnectStream's write-side of the duplex session.
func (t *Transport) WriteStdin(conn *websocket.Conn, payload []byte) error {
	framed := append([]byte{0x00}, payload...)
	return conn.WriteMessage(websocket.BinaryMessage, framed)
}

func toWebSocketURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("k8s: parsing connect URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "wss", "ws":
	default:
		return "", fmt.Errorf("k8s: unsupported connect URL scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// isJSONContentType reports whether ct names a JSON media type, ignoring
// any "; charset=" suffix.
func isJSONContentType(ct string) bool {
	return strings.HasPrefix(strings.TrimSpace(ct), "application/json")
}

// DecodeJSON is a small helper so Runner.Base doesn't need to import
// encoding/json directly for the common decode-into-any case.
func DecodeJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
