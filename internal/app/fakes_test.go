package app

import (
	"context"
	"errors"
	"sync"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

type hostCall struct {
	method string
	args   []string
}

type recordingHost struct {
	mu        sync.Mutex
	calls     []hostCall
	selection string
	selErr    error
	insertErr error
}

func (h *recordingHost) record(method string, args ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hostCall{method: method, args: args})
}

func (h *recordingHost) DisplayMessage(ctx context.Context, html string) error {
	h.record("display", html)
	return nil
}

func (h *recordingHost) InsertAtCursor(ctx context.Context, markup, commandName string) error {
	h.record("insert", markup, commandName)
	return h.insertErr
}

func (h *recordingHost) Selection(ctx context.Context) (string, error) {
	h.record("selection")
	return h.selection, h.selErr
}

func (h *recordingHost) Calls() []hostCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]hostCall, len(h.calls))
	copy(out, h.calls)
	return out
}

type fakeFetcher struct {
	mu      sync.Mutex
	docs    map[string]domain.FeedDocument
	fetched []string
	block   chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{docs: make(map[string]domain.FeedDocument)}
}

func (f *fakeFetcher) FetchAndValidate(ctx context.Context, url, expectedRoot string) (domain.FeedDocument, bool) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	doc, ok := f.docs[url]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.FeedDocument{}, false
		}
	}
	if !ok || doc.Root != expectedRoot {
		return domain.FeedDocument{}, false
	}
	return doc, true
}

func (f *fakeFetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

type registrarCall struct {
	method string
	name   string
	values []string
}

type fakeRegistrar struct {
	mu       sync.Mutex
	calls    []registrarCall
	failOn   map[string]bool
	endpoint string
}

var errRegistrar = errors.New("host unreachable")

func (r *fakeRegistrar) fail(method, name string) bool {
	return r.failOn != nil && r.failOn[method+" "+name]
}

func (r *fakeRegistrar) RegisterCommand(ctx context.Context, endpointURL string, cmd domain.RegisteredCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoint = endpointURL
	r.calls = append(r.calls, registrarCall{method: "register", name: cmd.Name})
	if r.fail("register", cmd.Name) {
		return errRegistrar
	}
	return nil
}

func (r *fakeRegistrar) SetValidArguments(ctx context.Context, endpointURL, name string, values []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, registrarCall{method: "postfixes", name: name, values: values})
	if r.fail("postfixes", name) {
		return errRegistrar
	}
	return nil
}

func (r *fakeRegistrar) UnregisterCommand(ctx context.Context, endpointURL, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, registrarCall{method: "unregister", name: name})
	if r.fail("unregister", name) {
		return errRegistrar
	}
	return nil
}

func (r *fakeRegistrar) Calls() []registrarCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]registrarCall(nil), r.calls...)
}
