// Package gateway dispatches tool-surface requests to registered units
// and wraps results in a uniform response envelope. The MCP server in
// this package is its only transport.
package gateway

import (
	"context"
	"time"

	"github.com/modelscout/modelscout/pkg/unit"
)

const (
	TypeCommand = "command"
	TypeQuery   = "query"

	DefaultTimeout = 30 * time.Second
)

type Request struct {
	Type    string         `json:"type"`
	Unit    string         `json:"unit"`
	Input   map[string]any `json:"input,omitempty"`
	Options RequestOptions `json:"options,omitempty"`
}

type RequestOptions struct {
	Timeout time.Duration `json:"timeout,omitempty"`
	TraceID string        `json:"trace_id,omitempty"`
}

type Response struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *ErrorInfo    `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

type ResponseMeta struct {
	RequestID string `json:"request_id"`
	Duration  int64  `json:"duration_ms"`
	TraceID   string `json:"trace_id,omitempty"`
}

type Gateway struct {
	registry       *unit.Registry
	requestTimeout time.Duration
}

type GatewayOption func(*Gateway)

func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.requestTimeout = timeout
	}
}

func NewGateway(registry *unit.Registry, opts ...GatewayOption) *Gateway {
	if registry == nil {
		registry = unit.NewRegistry()
	}

	g := &Gateway{
		registry:       registry,
		requestTimeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Gateway) Handle(ctx context.Context, req *Request) *Response {
	start := time.Now()
	requestID := unit.GenerateRequestID()

	resp := &Response{
		Meta: &ResponseMeta{
			RequestID: requestID,
		},
	}
	defer func() {
		resp.Meta.Duration = time.Since(start).Milliseconds()
	}()

	if err := g.validateRequest(req); err != nil {
		resp.Success = false
		resp.Error = err
		return resp
	}

	traceID := req.Options.TraceID
	if traceID == "" {
		traceID = unit.GenerateTraceID()
	}
	resp.Meta.TraceID = traceID

	ctx = unit.WithRequestID(ctx, requestID)
	ctx = unit.WithTraceID(ctx, traceID)
	ctx = unit.WithStartTime(ctx, start)

	timeout := req.Options.Timeout
	if timeout <= 0 {
		timeout = g.requestTimeout
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := g.execute(ctx, req)
	if err != nil {
		resp.Success = false
		resp.Error = ToErrorInfo(err)
		return resp
	}

	resp.Success = true
	resp.Data = result
	return resp
}

func (g *Gateway) validateRequest(req *Request) *ErrorInfo {
	if req == nil {
		return NewErrorInfo(ErrCodeInvalidRequest, "request is nil")
	}

	switch req.Type {
	case TypeCommand, TypeQuery:
	default:
		return NewErrorInfo(ErrCodeInvalidRequest, "invalid request type: "+req.Type)
	}

	if req.Unit == "" {
		return NewErrorInfo(ErrCodeInvalidRequest, "unit is required")
	}

	return nil
}

func (g *Gateway) execute(ctx context.Context, req *Request) (any, error) {
	switch req.Type {
	case TypeCommand:
		return g.executeCommand(ctx, req)
	case TypeQuery:
		return g.executeQuery(ctx, req)
	default:
		return nil, NewErrorInfo(ErrCodeInvalidRequest, "unknown request type: "+req.Type)
	}
}

func (g *Gateway) executeCommand(ctx context.Context, req *Request) (any, error) {
	cmd := g.registry.GetCommand(req.Unit)
	if cmd == nil {
		return nil, NewErrorInfo(ErrCodeUnitNotFound, "command not found: "+req.Unit)
	}
	return cmd.Execute(ctx, req.Input)
}

func (g *Gateway) executeQuery(ctx context.Context, req *Request) (any, error) {
	q := g.registry.GetQuery(req.Unit)
	if q == nil {
		return nil, NewErrorInfo(ErrCodeUnitNotFound, "query not found: "+req.Unit)
	}
	return q.Execute(ctx, req.Input)
}

func (g *Gateway) Registry() *unit.Registry {
	return g.registry
}

func (g *Gateway) Timeout() time.Duration {
	return g.requestTimeout
}
