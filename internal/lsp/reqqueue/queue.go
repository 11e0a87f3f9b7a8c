// Package reqqueue tracks in-flight LSP requests in both directions: the
// client's requests into this server (paired with a cancellation flag)
// and this server's requests out to the client (paired with a reply
// channel). It is the bookkeeping that lets $/cancelRequest reach the
// right worker and lets outgoing workspace/configuration pulls match
// their responses.
package reqqueue

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.lsp.dev/jsonrpc2"
)

// ErrDuplicateID is returned by RegisterIncoming when id is already
// registered.
var ErrDuplicateID = errors.New("duplicate request id")

// ErrUnknownOutgoingID is returned by CompleteOutgoing when id has no
// matching registration — a protocol violation, since every response
// the client sends us must match a request we sent it.
var ErrUnknownOutgoingID = errors.New("response for unknown outgoing request id")

// CancelFlag is a shared, monotonically settable boolean: once Set, it
// stays set. Readers poll IsSet cooperatively at coarse checkpoints. It
// is lock-free: a single writer (the handler processing $/cancelRequest)
// and many readers (the worker goroutine executing the request).
type CancelFlag struct {
	set atomic.Bool
}

// Set marks the flag as canceled. Idempotent.
func (f *CancelFlag) Set() { f.set.Store(true) }

// IsSet reports whether the flag has been canceled.
func (f *CancelFlag) IsSet() bool { return f.set.Load() }

// OutgoingResult is what arrives on an outgoing request's reply channel:
// either a decoded result or an error, mirroring a JSON-RPC response.
type OutgoingResult struct {
	Result []byte
	Err    error
}

// Queue is the dual-direction registry described in spec.md §4.2. All
// operations are serialized under a single exclusive lock; contention is
// expected to be short since entries are only touched at request
// registration and completion.
type Queue struct {
	mu sync.Mutex

	incoming map[jsonrpc2.ID]*CancelFlag
	outgoing map[jsonrpc2.ID]chan OutgoingResult
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{
		incoming: make(map[jsonrpc2.ID]*CancelFlag),
		outgoing: make(map[jsonrpc2.ID]chan OutgoingResult),
	}
}

// RegisterIncoming creates a new cancel flag for id and stores it. Fails
// with ErrDuplicateID if id is already registered.
func (q *Queue) RegisterIncoming(id jsonrpc2.ID) (*CancelFlag, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.incoming[id]; ok {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateID, id)
	}
	flag := &CancelFlag{}
	q.incoming[id] = flag
	return flag, nil
}

// CompleteIncoming removes and returns the flag registered for id, or nil
// if id was never registered (or was already completed). Idempotent.
func (q *Queue) CompleteIncoming(id jsonrpc2.ID) *CancelFlag {
	q.mu.Lock()
	defer q.mu.Unlock()

	flag, ok := q.incoming[id]
	if !ok {
		return nil
	}
	delete(q.incoming, id)
	return flag
}

// RegisterOutgoing stores reply under id, to be delivered to when the
// matching response arrives.
func (q *Queue) RegisterOutgoing(id jsonrpc2.ID, reply chan OutgoingResult) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.outgoing[id] = reply
}

// CompleteOutgoing removes and returns the reply channel registered for
// id. A missing id is a protocol violation: every response the client
// sends must match an outstanding server-initiated request.
func (q *Queue) CompleteOutgoing(id jsonrpc2.ID) (chan OutgoingResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	reply, ok := q.outgoing[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownOutgoingID, id)
	}
	delete(q.outgoing, id)
	return reply, nil
}

// Cancel sets the cancel flag registered for id, if any, without
// removing the registration — the worker that owns id is still
// responsible for completing it via CompleteIncoming once it observes
// the flag and replies. Reports whether a registration was found.
func (q *Queue) Cancel(id jsonrpc2.ID) bool {
	q.mu.Lock()
	flag, ok := q.incoming[id]
	q.mu.Unlock()

	if !ok {
		return false
	}
	flag.Set()
	return true
}

// PendingIncoming reports the number of in-flight client requests. Used
// by the orchestrator's shutdown path to log how much work is still
// draining.
func (q *Queue) PendingIncoming() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.incoming)
}
