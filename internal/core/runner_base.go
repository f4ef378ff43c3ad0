package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Result is the decoded outcome of a single-shot call, per spec §4.7's
// response classification.
type Result struct {
	// Value holds the decoded JSON body for application/json responses.
	Value any
	// Raw holds the response bytes verbatim for non-JSON (e.g. text/plain)
	// 2xx responses.
	Raw []byte
	// ContentType is the response's Content-Type header, for callers that
	// need to distinguish Raw's encoding.
	ContentType string
}

// RunnerBase executes one Operation end to end: ResourceFinder resolves the
// REST resource, PathBuilder renders the path, MiddlewareChain decorates
// the request, and Transport performs the I/O. Exactly the pipeline named
// in spec §4.7.
type RunnerBase struct {
	pathBuilder PathBuilder
}

// NewRunnerBase returns a RunnerBase.
func NewRunnerBase() *RunnerBase {
	return &RunnerBase{}
}

// Do resolves and executes op against conn, returning its classified
// Result.
func (r *RunnerBase) Do(ctx context.Context, conn *Conn, op Operation) (*Result, error) {
	req, err := r.Render(ctx, conn, op, nil)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Transport.Do(ctx, *req)
	if err != nil {
		return nil, &HTTPError{Cause: err}
	}

	return classifyResponse(resp)
}

// Render resolves op into a RenderedRequest without performing I/O, so
// Runner.ListStream/WatchStream/ConnectStream can reuse the discovery +
// path-building + middleware pipeline while controlling the transport call
// themselves. extraQuery is appended after op's own query parameters (used
// for list/watch's limit/continue/resourceVersion/watch=1).
func (r *RunnerBase) Render(ctx context.Context, conn *Conn, op Operation, extraQuery []KV) (*RenderedRequest, error) {
	resource, err := r.resolveResource(ctx, conn, op)
	if err != nil {
		return nil, err
	}

	path, err := r.pathBuilder.Build(op, resource)
	if err != nil {
		return nil, err
	}

	query := append(append([]KV(nil), op.QueryParams()...), extraQuery...)
	if op.Verb == VerbConnect && resource.Name == "pods/exec" {
		set := make(map[string]bool, len(query))
		for _, kv := range query {
			set[kv.Key] = true
		}
		for _, def := range []KV{{Key: "stdin", Value: "true"}, {Key: "stdout", Value: "true"}, {Key: "stderr", Value: "true"}, {Key: "tty", Value: "false"}} {
			if !set[def.Key] {
				query = append(query, def)
			}
		}
	}
	headers := headerParamsToMap(op.HeaderParams())

	if op.Verb == VerbPatch && op.PatchType != "" {
		if headers == nil {
			headers = make(map[string]string)
		}
		headers["Content-Type"] = op.PatchType.ContentType()
		if op.PatchType == PatchApply {
			fieldManager := conn.FieldManager
			if fieldManager == "" {
				fieldManager = "k8s-go-client"
			}
			query = append(query, KV{Key: "fieldManager", Value: fieldManager}, KV{Key: "force", Value: "true"})
		}
	}

	rb := &RequestBuilder{
		Conn:      conn,
		Method:    op.Verb.Method(),
		Path:      path,
		Query:     query,
		Headers:   headers,
		Body:      op.Data,
		PatchType: op.PatchType,
	}

	chain := NewMiddlewareChain()
	if err := chain.Run(ctx, rb); err != nil {
		return nil, err
	}

	return &RenderedRequest{
		Method:  rb.Method,
		URL:     conn.BaseURL + rb.Path + renderQuery(rb.Query),
		Headers: rb.Headers,
		Body:    rb.EncodedBody,
	}, nil
}

func (r *RunnerBase) resolveResource(ctx context.Context, conn *Conn, op Operation) (ResourceDefinition, error) {
	kind, subkind, isSub := splitSubresourceName(op.Name)
	if isSub {
		return conn.Finder.FindSubresource(ctx, op.APIVersion, kind, subkind)
	}
	return conn.Finder.Find(ctx, op.APIVersion, op.Name)
}

// splitSubresourceName recognizes an Operation.Name encoded as "kind/subkind"
// for subresource addressing, per the Operation data model in spec §3.
func splitSubresourceName(name string) (kind, subkind string, ok bool) {
	i := strings.IndexByte(name, '/')
	if i < 0 {
		return name, "", false
	}
	return name[:i], name[i+1:], true
}

func headerParamsToMap(kvs []KV) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func renderQuery(kvs []KV) string {
	if len(kvs) == 0 {
		return ""
	}
	values := url.Values{}
	for _, kv := range kvs {
		values.Add(kv.Key, kv.Value)
	}
	return "?" + values.Encode()
}

func classifyResponse(resp *Response) (*Result, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if isJSONContentType(resp.ContentType) {
			var value any
			if len(resp.Body) > 0 {
				if err := DecodeJSON(resp.Body, &value); err != nil {
					return nil, fmt.Errorf("k8s: decoding JSON response: %w", err)
				}
			}
			return &Result{Value: value, ContentType: resp.ContentType}, nil
		}
		return &Result{Raw: resp.Body, ContentType: resp.ContentType}, nil
	}

	if isJSONContentType(resp.ContentType) {
		var status struct {
			Status  string `json:"status"`
			Reason  string `json:"reason"`
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		if err := DecodeJSON(resp.Body, &status); err == nil && status.Status == "Failure" {
			return nil, &APIError{Reason: status.Reason, Message: status.Message, Code: status.Code}
		}
	}

	return nil, &HTTPError{Code: resp.StatusCode, Body: resp.Body}
}
