// Package xmlrpctest provides a recording fake of the host application's
// XML-RPC endpoint for tests.
package xmlrpctest

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/xmlrpc"
)

// Methods served by the fake host.
var Methods = []string{
	"displayMessage",
	"insertUnicodeAtCursor",
	"getUnicodeSelection",
	"registerCommand",
	"setCommandValidPostfixes",
	"unregisterCommand",
}

// Call is one recorded inbound call.
type Call struct {
	Method string
	Params []interface{}
}

// Host is an httptest server answering the host methods and recording every
// call it receives.
type Host struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []Call
	selection string
	failures  map[string]string
	notify    chan struct{}
}

// NewHost starts a fake host. Callers must Close it.
func NewHost() *Host {
	h := &Host{
		failures: make(map[string]string),
		notify:   make(chan struct{}, 1),
	}
	srv := xmlrpc.NewServer("", nil)
	for _, m := range Methods {
		method := m
		srv.Register(method, func(ctx context.Context, params []interface{}) (interface{}, error) {
			return h.handle(method, params)
		})
	}
	h.Server = httptest.NewServer(srv)
	return h
}

func (h *Host) handle(method string, params []interface{}) (interface{}, error) {
	h.mu.Lock()
	h.calls = append(h.calls, Call{Method: method, Params: params})
	msg, fail := h.failures[method]
	selection := h.selection
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}

	if fail {
		return nil, errors.New(msg)
	}
	if method == "getUnicodeSelection" {
		return selection, nil
	}
	return true, nil
}

// SetSelection sets what getUnicodeSelection returns.
func (h *Host) SetSelection(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selection = s
}

// Fail makes method answer with a fault carrying msg.
func (h *Host) Fail(method, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[method] = msg
}

// Calls returns a copy of every call received so far.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallsTo returns the recorded calls to method.
func (h *Host) CallsTo(method string) []Call {
	var out []Call
	for _, c := range h.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// WaitForCalls blocks until at least n calls have been recorded or timeout
// elapses, and returns what was recorded.
func (h *Host) WaitForCalls(n int, timeout time.Duration) []Call {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if calls := h.Calls(); len(calls) >= n {
			return calls
		}
		select {
		case <-h.notify:
		case <-deadline.C:
			return h.Calls()
		}
	}
}
