// Package dispatch turns a decoded JSON-RPC message into a typed handler
// invocation. It implements the "pattern-match router" described in the
// server design: a chain of (method name, handler) registrations where at
// most one handler runs per message, and the message is carried forward
// through the chain so each registration gets a chance to claim it by
// method name.
package dispatch

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// RawRequestHandler handles an already-matched request's raw params. It
// is responsible for sending exactly one reply.
type RawRequestHandler func(ctx context.Context, reply jsonrpc2.Replier, params json.RawMessage) error

// RawNotificationHandler handles an already-matched notification's raw
// params.
type RawNotificationHandler func(ctx context.Context, params json.RawMessage) error

// Typed adapts a typed request handler into a RawRequestHandler. A
// params-unmarshal failure produces an InvalidParams error response
// rather than invoking handle.
func Typed[P any](handle func(ctx context.Context, reply jsonrpc2.Replier, params P) error) RawRequestHandler {
	return func(ctx context.Context, reply jsonrpc2.Replier, raw json.RawMessage) error {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return reply(ctx, nil, &jsonrpc2.Error{
					Code:    jsonrpc2.InvalidParams,
					Message: err.Error(),
				})
			}
		}
		return handle(ctx, reply, params)
	}
}

// TypedNotification adapts a typed notification handler into a
// RawNotificationHandler. A params-unmarshal failure logs via logger
// instead of replying, since notifications have no response channel.
func TypedNotification[P any](logger *zap.Logger, method string, handle func(ctx context.Context, params P) error) RawNotificationHandler {
	return func(ctx context.Context, raw json.RawMessage) error {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				logger.Warn("invalid notification params", zap.String("method", method), zap.Error(err))
				return nil
			}
		}
		return handle(ctx, params)
	}
}

// RequestDispatcher is a one-shot builder for a single incoming request:
// each call to On tries to claim the request by method name; once
// claimed, subsequent On calls are no-ops. Default synthesizes a
// MethodNotFound response if nothing claimed the request.
type RequestDispatcher struct {
	ctx     context.Context
	reply   jsonrpc2.Replier
	req     jsonrpc2.Request
	handled bool
	err     error
}

// NewRequestDispatcher begins dispatch of req.
func NewRequestDispatcher(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) *RequestDispatcher {
	return &RequestDispatcher{ctx: ctx, reply: reply, req: req}
}

// On claims req if its method matches and no earlier registration already
// claimed it. Returns the dispatcher so calls can be chained.
func (d *RequestDispatcher) On(method string, handle RawRequestHandler) *RequestDispatcher {
	if d.handled || d.req.Method() != method {
		return d
	}
	d.handled = true
	d.err = handle(d.ctx, d.reply, d.req.Params())
	return d
}

// Default finishes dispatch: if some On call claimed the request, its
// result is returned; otherwise a MethodNotFound error response is sent.
// Reports whether any handler claimed the request.
func (d *RequestDispatcher) Default() (handled bool, err error) {
	if d.handled {
		return true, d.err
	}
	return false, d.reply(d.ctx, nil, jsonrpc2.ErrMethodNotFound)
}

// NotificationDispatcher mirrors RequestDispatcher for notifications.
// There is no response channel, so an unmatched notification is simply
// logged rather than erroring.
type NotificationDispatcher struct {
	ctx     context.Context
	req     jsonrpc2.Request
	logger  *zap.Logger
	handled bool
	err     error
}

// NewNotificationDispatcher begins dispatch of a notification.
func NewNotificationDispatcher(ctx context.Context, req jsonrpc2.Request, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{ctx: ctx, req: req, logger: logger}
}

// On claims req if its method matches and nothing earlier already claimed
// it.
func (d *NotificationDispatcher) On(method string, handle RawNotificationHandler) *NotificationDispatcher {
	if d.handled || d.req.Method() != method {
		return d
	}
	d.handled = true
	d.err = handle(d.ctx, d.req.Params())
	return d
}

// Default finishes dispatch, logging if nothing claimed the
// notification. Returns the error from whichever handler claimed it, if
// any.
func (d *NotificationDispatcher) Default() error {
	if d.handled {
		return d.err
	}
	d.logger.Debug("unhandled notification", zap.String("method", d.req.Method()))
	return nil
}
